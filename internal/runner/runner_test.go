package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svnmigrate/internal/layout"
	"svnmigrate/internal/logging"
	"svnmigrate/internal/process"
)

func makeProjects(n int) []layout.Project {
	projects := make([]layout.Project, n)
	for i := range projects {
		projects[i] = layout.Project{
			RelativePath: fmt.Sprintf("p%02d", i),
			AbsolutePath: "/apps",
			HasTrunk:     true,
		}
	}
	return projects
}

// tracker records how many tasks run at the same time.
type tracker struct {
	active    atomic.Int32
	maxActive atomic.Int32
	mu        sync.Mutex
	spans     map[string][2]time.Time
}

func newTracker() *tracker {
	return &tracker{spans: make(map[string][2]time.Time)}
}

func (tr *tracker) task(hold time.Duration, fail func(layout.Project) error) Task {
	return func(_ context.Context, p layout.Project) error {
		n := tr.active.Add(1)
		for {
			m := tr.maxActive.Load()
			if n <= m || tr.maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		start := time.Now()
		time.Sleep(hold)
		end := time.Now()
		tr.active.Add(-1)

		tr.mu.Lock()
		tr.spans[p.RelativePath] = [2]time.Time{start, end}
		tr.mu.Unlock()

		if fail != nil {
			return fail(p)
		}
		return nil
	}
}

func TestConfig_EffectiveConcurrency(t *testing.T) {
	tests := []struct {
		cfg  Config
		want int
	}{
		{Config{Concurrency: 4}, 4},
		{Config{Concurrency: 64}, 64},
		{Config{Concurrency: 8, PushMode: true}, 1},
		{Config{Concurrency: 0}, 1},
		{Config{Concurrency: -3}, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cfg.EffectiveConcurrency(), "%+v", tt.cfg)
	}
}

func TestRun_IsolatesFailures(t *testing.T) {
	projects := makeProjects(10)
	tr := newTracker()
	boom := errors.New("svn2git exited with code 1")

	r := New(Config{Concurrency: 4}, logging.NopLogger())
	outcomes, err := r.Run(context.Background(), projects, tr.task(5*time.Millisecond, func(p layout.Project) error {
		if p.RelativePath == "p03" {
			return boom
		}
		return nil
	}))

	require.NoError(t, err)
	require.Len(t, outcomes, 10)

	s := Summarize(outcomes)
	assert.Equal(t, 10, s.Total)
	assert.Equal(t, 9, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	require.Len(t, s.Failures, 1)
	assert.Equal(t, "p03", s.Failures[0].Project.RelativePath)
	assert.ErrorIs(t, s.Failures[0].Err, boom)
	assert.Equal(t, boom.Error(), s.Failures[0].ErrorDetail())

	seen := map[string]bool{}
	for _, o := range outcomes {
		seen[o.Project.RelativePath] = true
	}
	assert.Len(t, seen, 10, "every project should have exactly one outcome")
}

func TestRun_HonorsConcurrencyLimit(t *testing.T) {
	tr := newTracker()

	r := New(Config{Concurrency: 4}, logging.NopLogger())
	outcomes, err := r.Run(context.Background(), makeProjects(12), tr.task(40*time.Millisecond, nil))

	require.NoError(t, err)
	assert.Len(t, outcomes, 12)
	assert.LessOrEqual(t, tr.maxActive.Load(), int32(4), "Max parallelism exceeded")
	assert.Greater(t, tr.maxActive.Load(), int32(1), "tasks should run in parallel")
}

func TestRun_PushModeSerializes(t *testing.T) {
	tr := newTracker()

	r := New(Config{Concurrency: 8, PushMode: true}, logging.NopLogger())
	outcomes, err := r.Run(context.Background(), makeProjects(6), tr.task(10*time.Millisecond, nil))

	require.NoError(t, err)
	require.Len(t, outcomes, 6)
	assert.Equal(t, int32(1), tr.maxActive.Load())

	// No two task spans may overlap.
	var spans [][2]time.Time
	for _, s := range tr.spans {
		spans = append(spans, s)
	}
	for i := range spans {
		for j := range spans {
			if i == j {
				continue
			}
			overlap := spans[i][0].Before(spans[j][1]) && spans[j][0].Before(spans[i][1])
			assert.False(t, overlap, "tasks %d and %d overlapped", i, j)
		}
	}
}

func TestRun_PushFailureDoesNotStopQueue(t *testing.T) {
	tr := newTracker()

	r := New(Config{Concurrency: 1, PushMode: true}, logging.NopLogger())
	outcomes, err := r.Run(context.Background(), makeProjects(4), tr.task(0, func(p layout.Project) error {
		if p.RelativePath == "p00" {
			return &process.ExitError{Command: process.Command{Name: "git"}, Code: 128}
		}
		return nil
	}))

	require.NoError(t, err)
	assert.Len(t, outcomes, 4)
	assert.Equal(t, 1, Summarize(outcomes).Failed)
}

func TestRun_SpawnFailureAbortsRun(t *testing.T) {
	var calls atomic.Int32

	r := New(Config{Concurrency: 1}, logging.NopLogger())
	outcomes, err := r.Run(context.Background(), makeProjects(5), func(_ context.Context, p layout.Project) error {
		calls.Add(1)
		if p.RelativePath == "p01" {
			return fmt.Errorf("%w: svn2git: executable file not found in $PATH", process.ErrSpawn)
		}
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, process.ErrSpawn)
	assert.Equal(t, int32(2), calls.Load(), "no task should start after a spawn failure")
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Success)
	assert.False(t, outcomes[1].Success)
}

func TestRun_NoProjects(t *testing.T) {
	r := New(Config{Concurrency: 4}, logging.NopLogger())
	outcomes, err := r.Run(context.Background(), nil, func(context.Context, layout.Project) error {
		t.Fatal("task should not be called")
		return nil
	})

	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestRun_LogsFailures(t *testing.T) {
	lm := logging.NewTestLogManager(100)
	defer func() { _ = lm.Close() }()

	r := New(Config{Concurrency: 2}, lm.For("runner"))
	_, err := r.Run(context.Background(), makeProjects(2), func(_ context.Context, p layout.Project) error {
		if p.RelativePath == "p01" {
			return errors.New("exit status 1")
		}
		return nil
	})
	require.NoError(t, err)

	var failed []logging.LogEntry
	for _, e := range lm.Drain() {
		if e.Message == "task failed" {
			failed = append(failed, e)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "/apps/p01", failed[0].Field("project"))
	assert.Equal(t, "ERROR", failed[0].Level)
}

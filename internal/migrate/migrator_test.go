package migrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svnmigrate/internal/layout"
	"svnmigrate/internal/logging"
	"svnmigrate/internal/process"
)

// recordingExecutor records commands and fails those whose name matches.
type recordingExecutor struct {
	mu       sync.Mutex
	commands []process.Command
	failOn   string
	err      error
}

func (r *recordingExecutor) Run(_ context.Context, c process.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, c)
	if r.failOn != "" && c.Name == r.failOn {
		return r.err
	}
	return nil
}

func newTestMigrator(t *testing.T, exec process.Executor) (*Migrator, string) {
	t.Helper()
	workDir := t.TempDir()
	opts := testOptions()
	opts.WorkDir = workDir
	return NewMigrator(opts, exec, logging.NopLogger()), workDir
}

func TestPrepareWorkspace(t *testing.T) {
	m, workDir := newTestMigrator(t, &recordingExecutor{})
	projects := []layout.Project{
		{RelativePath: "app", AbsolutePath: "/apps", HasTrunk: true},
		{RelativePath: "lib", AbsolutePath: "/", HasTrunk: true},
	}

	require.NoError(t, m.PrepareWorkspace(projects))

	for _, rel := range []string{"apps/app", "lib"} {
		info, err := os.Stat(filepath.Join(workDir, rel))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestConvertTask_FreshClone(t *testing.T) {
	exec := &recordingExecutor{}
	m, workDir := newTestMigrator(t, exec)
	p := layout.Project{RelativePath: "app", AbsolutePath: "/apps", HasTrunk: true}
	require.NoError(t, m.PrepareWorkspace([]layout.Project{p}))

	require.NoError(t, m.ConvertTask()(context.Background(), p))

	require.Len(t, exec.commands, 2)
	assert.Equal(t, "svn2git", exec.commands[0].Name)
	assert.Equal(t, "git", exec.commands[1].Name)
	assert.Equal(t, filepath.Join(workDir, "apps", "app"), exec.commands[0].Dir)
}

func TestConvertTask_ExistingWorkingCopyRebases(t *testing.T) {
	exec := &recordingExecutor{}
	m, workDir := newTestMigrator(t, exec)
	p := layout.Project{RelativePath: "app", AbsolutePath: "/", HasTrunk: true}
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "app", ".git"), 0755))

	require.NoError(t, m.ConvertTask()(context.Background(), p))

	require.Len(t, exec.commands, 1)
	assert.Equal(t, "--rebase", exec.commands[0].Args[0])
}

func TestConvertTask_StopsAtFirstFailure(t *testing.T) {
	exitErr := &process.ExitError{Command: process.Command{Name: "svn2git"}, Code: 1}
	exec := &recordingExecutor{failOn: "svn2git", err: exitErr}
	m, _ := newTestMigrator(t, exec)
	p := layout.Project{RelativePath: "app", AbsolutePath: "/", HasTrunk: true}

	err := m.ConvertTask()(context.Background(), p)

	require.Error(t, err)
	var target *process.ExitError
	assert.True(t, errors.As(err, &target))
	assert.Contains(t, err.Error(), "/app")
	assert.Len(t, exec.commands, 1, "git remote add must not run after svn2git fails")
}

func TestConvertTask_SpawnErrorPropagates(t *testing.T) {
	exec := &recordingExecutor{failOn: "svn2git", err: fmt.Errorf("%w: svn2git", process.ErrSpawn)}
	m, _ := newTestMigrator(t, exec)
	p := layout.Project{RelativePath: "app", AbsolutePath: "/", HasTrunk: true}

	err := m.ConvertTask()(context.Background(), p)

	assert.ErrorIs(t, err, process.ErrSpawn)
}

func TestPushTask(t *testing.T) {
	exec := &recordingExecutor{}
	m, workDir := newTestMigrator(t, exec)
	p := layout.Project{RelativePath: "app", AbsolutePath: "/apps", HasTrunk: true}
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "apps", "app", ".git"), 0755))

	require.NoError(t, m.PushTask()(context.Background(), p))

	require.Len(t, exec.commands, 1)
	assert.Equal(t, "git push --all -u", exec.commands[0].String())
}

func TestPushTask_NotConverted(t *testing.T) {
	exec := &recordingExecutor{}
	m, _ := newTestMigrator(t, exec)
	p := layout.Project{RelativePath: "app", AbsolutePath: "/", HasTrunk: true}

	err := m.PushTask()(context.Background(), p)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "has not been converted")
	assert.Empty(t, exec.commands)
}

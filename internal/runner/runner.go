// pattern: Imperative Shell

package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"svnmigrate/internal/layout"
	"svnmigrate/internal/logging"
	"svnmigrate/internal/process"
)

// Task performs the work for one project. A returned error marks the
// project failed; an error wrapping process.ErrSpawn stops the whole run.
type Task func(ctx context.Context, p layout.Project) error

// Config controls how many tasks run at once.
type Config struct {
	Concurrency int  // Worker count, honored as given
	PushMode    bool // Forces a single worker
}

// EffectiveConcurrency returns the worker limit actually used. Pushes are
// always serialized so the remote never sees two pushes at once.
func (c Config) EffectiveConcurrency() int {
	if c.PushMode || c.Concurrency < 1 {
		return 1
	}
	return c.Concurrency
}

// Outcome is the result of one task.
type Outcome struct {
	Project  layout.Project
	Success  bool
	Err      error
	Duration time.Duration
}

// ErrorDetail returns the failure message, or "" for successful tasks.
func (o Outcome) ErrorDetail() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Runner executes one task per project on a bounded pool of workers.
type Runner struct {
	cfg    Config
	logger *logging.ScopedLogger
}

// New creates a Runner.
func New(cfg Config, logger *logging.ScopedLogger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// collector gathers outcomes from all workers.
type collector struct {
	mu       sync.Mutex
	outcomes []Outcome
	fatal    error
}

func (c *collector) add(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
	if c.fatal == nil && errors.Is(o.Err, process.ErrSpawn) {
		c.fatal = o.Err
	}
}

func (c *collector) stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fatal != nil
}

// Run executes task for every project and returns one outcome per executed
// project, in completion order. Failed tasks do not stop the others. The
// returned error is non-nil only when a task could not spawn its command;
// projects not yet started at that point are skipped.
func (r *Runner) Run(ctx context.Context, projects []layout.Project, task Task) ([]Outcome, error) {
	workers := r.cfg.EffectiveConcurrency()
	if workers > len(projects) {
		workers = len(projects)
	}

	r.logger.Info("starting tasks",
		"projects", len(projects),
		"workers", workers,
		"push_mode", r.cfg.PushMode,
	)

	queue := make(chan layout.Project, len(projects))
	for _, p := range projects {
		queue <- p
	}
	close(queue)

	results := &collector{outcomes: make([]Outcome, 0, len(projects))}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r.work(ctx, id, queue, task, results)
		}(i)
	}
	wg.Wait()

	if results.fatal != nil {
		skipped := len(projects) - len(results.outcomes)
		r.logger.Error("run aborted", "error", results.fatal, "skipped", skipped)
		return results.outcomes, fmt.Errorf("run aborted after %d of %d projects: %w",
			len(results.outcomes), len(projects), results.fatal)
	}
	return results.outcomes, nil
}

func (r *Runner) work(ctx context.Context, id int, queue <-chan layout.Project, task Task, results *collector) {
	for p := range queue {
		if results.stopped() {
			return
		}

		logger := r.logger.With("worker", id, "project", p.FullPath())
		logger.Info("task started")

		start := time.Now()
		err := task(ctx, p)
		o := Outcome{
			Project:  p,
			Success:  err == nil,
			Err:      err,
			Duration: time.Since(start),
		}
		results.add(o)

		if err != nil {
			logger.Error("task failed", "error", err, "duration", o.Duration)
			continue
		}
		logger.Info("task succeeded", "duration", o.Duration)
	}
}

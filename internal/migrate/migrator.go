// pattern: Imperative Shell

package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"svnmigrate/internal/layout"
	"svnmigrate/internal/logging"
	"svnmigrate/internal/process"
	"svnmigrate/internal/runner"
)

// Migrator turns projects into runner tasks backed by an Executor.
type Migrator struct {
	opts   Options
	exec   process.Executor
	logger *logging.ScopedLogger
}

// NewMigrator creates a Migrator.
func NewMigrator(opts Options, exec process.Executor, logger *logging.ScopedLogger) *Migrator {
	return &Migrator{opts: opts, exec: exec, logger: logger}
}

// ProjectDir returns the staging directory of a project.
func (m *Migrator) ProjectDir(p layout.Project) string {
	return filepath.Join(m.opts.WorkDir, filepath.FromSlash(p.FullPath()))
}

// HasWorkingCopy reports whether a previous run already cloned the project.
func (m *Migrator) HasWorkingCopy(p layout.Project) bool {
	info, err := os.Stat(filepath.Join(m.ProjectDir(p), ".git"))
	return err == nil && info.IsDir()
}

// PrepareWorkspace creates the staging directory of every project.
func (m *Migrator) PrepareWorkspace(projects []layout.Project) error {
	m.logger.Info("creating project directories", "workdir", m.opts.WorkDir, "projects", len(projects))
	for _, p := range projects {
		if err := os.MkdirAll(m.ProjectDir(p), 0755); err != nil {
			return fmt.Errorf("preparing workspace for %s: %w", p.FullPath(), err)
		}
	}
	return nil
}

// ConvertTask returns a task running svn2git for each project.
func (m *Migrator) ConvertTask() runner.Task {
	return func(ctx context.Context, p layout.Project) error {
		dir := m.ProjectDir(p)
		update := m.HasWorkingCopy(p)
		m.logger.Info("converting", "project", p.FullPath(), "url", m.opts.RepoURL+p.FullPath(), "update", update)
		return m.runPlan(ctx, p, ConvertPlan(p, m.opts, dir, update))
	}
}

// PushTask returns a task pushing each converted project.
func (m *Migrator) PushTask() runner.Task {
	return func(ctx context.Context, p layout.Project) error {
		dir := m.ProjectDir(p)
		if !m.HasWorkingCopy(p) {
			return fmt.Errorf("%s has not been converted: no git repository in %s", p.FullPath(), dir)
		}
		m.logger.Info("pushing", "project", p.FullPath(), "remote", RemoteURL(p, m.opts.GitURL))
		return m.runPlan(ctx, p, PushPlan(dir))
	}
}

// runPlan executes commands in order and stops at the first failure.
func (m *Migrator) runPlan(ctx context.Context, p layout.Project, cmds []process.Command) error {
	for _, c := range cmds {
		m.logger.Debug("running", "project", p.FullPath(), "command", c.String())
		if err := m.exec.Run(ctx, c); err != nil {
			return fmt.Errorf("%s: %w", p.FullPath(), err)
		}
	}
	return nil
}

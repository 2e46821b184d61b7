// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"svnmigrate/internal/config"
	"svnmigrate/internal/instance"
	"svnmigrate/internal/layout"
	"svnmigrate/internal/migrate"
	"svnmigrate/internal/process"
	"svnmigrate/internal/runner"
)

// DefaultExternalsScript is where the externals command writes its script.
const DefaultExternalsScript = "git-externals.sh"

// runLayout discovers projects and writes the layout file. Nothing is
// written when discovery fails.
func (e *Env) runLayout(ctx context.Context) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	exclude, err := cfg.ExcludePattern()
	if err != nil {
		return err
	}

	logger := e.logger("layout")
	logger.Info("scanning repository", "repo", cfg.RepoURL(), "root", cfg.SVNPath)

	discoverer := layout.NewDiscoverer(e.NewSVN(&cfg), exclude, e.logger("discovery"))
	projects, err := discoverer.Discover(ctx, cfg.SVNPath)
	if err != nil {
		return err
	}

	for _, p := range projects {
		logger.Info("project",
			"url", cfg.RepoURL()+p.FullPath(),
			"trunk", p.HasTrunk,
			"branches", p.HasBranches,
			"tags", p.HasTags,
		)
	}

	l := layout.Layout{
		Source:      sourceURL(&cfg),
		GeneratedAt: e.Now().UTC(),
		Projects:    projects,
	}
	if err := layout.WriteFile(e.Options.LayoutFile, l); err != nil {
		return err
	}
	logger.Info("layout written", "file", e.Options.LayoutFile, "projects", len(projects))

	_, err = fmt.Fprintf(e.Out, "Found %d project(s), layout written to %s\n", len(projects), e.Options.LayoutFile)
	return err
}

func sourceURL(cfg *config.Config) string {
	root := strings.Trim(cfg.SVNPath, "/ ")
	if root == "" {
		return cfg.RepoURL()
	}
	return cfg.RepoURL() + "/" + root
}

// runMigration converts (or pushes) every project of the layout file. Task
// failures are summarized, not returned; only fatal conditions are errors.
func (e *Env) runMigration(ctx context.Context, push bool) error {
	start := e.Now()

	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireWorkDir(); err != nil {
		return err
	}
	if push && cfg.GitBaseURL() == "" {
		return fmt.Errorf("%w: git_url is required to push", config.ErrInvalidConfig)
	}

	binaries := []string{"svn2git", "git"}
	if push {
		binaries = []string{"git"}
	}
	if err := process.RequireBinaries(e.LookPath, binaries...); err != nil {
		return err
	}

	l, err := layout.ReadFile(e.Options.LayoutFile)
	if err != nil {
		return err
	}

	authorsFile, err := filepath.Abs(cfg.AuthorsFile)
	if err != nil {
		return fmt.Errorf("resolving authors file: %w", err)
	}

	logger := e.logger("migrate")
	if !push {
		if _, err := os.Stat(authorsFile); err != nil {
			logger.Warn("authors file not readable, svn2git will fail for every project", "file", authorsFile, "error", err)
		}
	}

	fl, err := instance.Lock(cfg.WorkDir, e.RunID)
	if err != nil {
		return err
	}
	defer instance.Cleanup(cfg.WorkDir, fl)

	m := migrate.NewMigrator(migrate.Options{
		RepoURL:     cfg.RepoURL(),
		WorkDir:     cfg.WorkDir,
		GitURL:      cfg.GitBaseURL(),
		AuthorsFile: authorsFile,
		Verbose:     e.Options.Verbose,
	}, e.Exec, logger)

	if err := m.PrepareWorkspace(l.Projects); err != nil {
		return err
	}

	title, task := "Conversion", m.ConvertTask()
	if push {
		title, task = "Push", m.PushTask()
	}

	r := runner.New(runner.Config{Concurrency: e.Options.Threads, PushMode: push}, e.logger("runner"))
	outcomes, runErr := r.Run(ctx, l.Projects, task)

	summary := runner.Summarize(outcomes)
	logger.Info("run finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	if err := WriteSummary(e.Out, title, summary, e.Now().Sub(start)); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// runExternals writes the git-external script for the layout file.
func (e *Env) runExternals(output string) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if cfg.GitBaseURL() == "" {
		return fmt.Errorf("%w: git_url is required for git-external entries", config.ErrInvalidConfig)
	}

	l, err := layout.ReadFile(e.Options.LayoutFile)
	if err != nil {
		return err
	}

	if output == "-" {
		return migrate.WriteExternalsScript(e.Out, l.Projects, cfg.GitBaseURL())
	}

	if err := writeScript(output, func(w io.Writer) error {
		return migrate.WriteExternalsScript(w, l.Projects, cfg.GitBaseURL())
	}); err != nil {
		return err
	}
	e.logger("externals").Info("git-external script written", "file", output, "projects", len(l.Projects))

	_, err = fmt.Fprintf(e.Out, "Wrote git-external entries for %d project(s) to %s\n", len(l.Projects), output)
	return err
}

func writeScript(path string, write func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("creating script: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing script: %w", err)
	}
	return f.Close()
}

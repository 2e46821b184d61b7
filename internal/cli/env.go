// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	"svnmigrate/internal/config"
	"svnmigrate/internal/logging"
	"svnmigrate/internal/process"
	"svnmigrate/internal/svn"
)

// Options are the global flags shared by every command.
type Options struct {
	ConfigFile string
	LayoutFile string
	Threads    int
	Verbose    bool
}

// SVN is the Subversion access the commands need.
type SVN interface {
	svn.Lister
	QuietLog(ctx context.Context) (string, error)
}

// Env wires commands to the outside world. Tests replace its fields with fakes.
type Env struct {
	Options  Options
	Out      io.Writer
	Logs     logging.LoggerProvider
	RunID    string
	NewSVN   func(cfg *config.Config) SVN
	Exec     process.Executor
	LookPath process.LookPathFunc
	Now      func() time.Time
}

// NewEnv creates an Env backed by the svn, svn2git and git binaries on PATH.
func NewEnv(opts Options, out io.Writer, logs logging.LoggerProvider) *Env {
	runID := uuid.NewString()
	return &Env{
		Options: opts,
		Out:     out,
		Logs:    logs,
		RunID:   runID,
		NewSVN: func(cfg *config.Config) SVN {
			return svn.NewClient(cfg.RepoURL(), svn.Credentials{
				Username: cfg.SVNUser,
				Password: cfg.Password(),
			})
		},
		Exec:     process.NewLocalExecutor(logs.For("process").With("run_id", runID)),
		LookPath: exec.LookPath,
		Now:      time.Now,
	}
}

// logger returns a scoped logger tagged with the run id.
func (e *Env) logger(scope string) *logging.ScopedLogger {
	return e.Logs.For(scope).With("run_id", e.RunID)
}

// loadConfig reads and validates the configuration file.
func (e *Env) loadConfig() (config.Config, error) {
	cfg, err := config.LoadFrom(e.Options.ConfigFile)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// parseFlags parses command flags, rejecting stray positional arguments.
func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: %s: unexpected arguments: %s", ErrUsage, fs.Name(), strings.Join(fs.Args(), " "))
	}
	return nil
}

// LegacyCommand maps the mode flags of older releases to a command when no
// command was named. --layout wins over --gitexternal, which wins over --push.
func LegacyCommand(args []string, layoutMode, externalsMode, pushMode bool) []string {
	if len(args) > 0 {
		return args
	}
	switch {
	case layoutMode:
		return []string{"layout"}
	case externalsMode:
		return []string{"externals"}
	case pushMode:
		return []string{"push"}
	}
	return args
}

// pattern: Imperative Shell

package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"svnmigrate/internal/logging"
)

// ErrSpawn means a command could not be started at all (missing binary,
// bad working directory, exhausted process table). Callers treat it as fatal.
var ErrSpawn = errors.New("process: cannot spawn command")

// Command is one external invocation described as argument tokens, never as
// a shell string.
type Command struct {
	Dir  string
	Name string
	Args []string
}

// String renders the command for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// ExitError reports a command that ran and exited non-zero.
type ExitError struct {
	Command Command
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q in %s exited with code %d", e.Command.String(), e.Command.Dir, e.Code)
}

// Executor runs a command to completion.
type Executor interface {
	Run(ctx context.Context, cmd Command) error
}

// LocalExecutor runs commands on the local machine and forwards their
// output to a scoped logger line by line.
type LocalExecutor struct {
	logger *logging.ScopedLogger
}

// NewLocalExecutor creates an executor that logs command output to logger.
func NewLocalExecutor(logger *logging.ScopedLogger) *LocalExecutor {
	return &LocalExecutor{logger: logger}
}

// Run starts the command and blocks until it exits. There is no timeout:
// a command that never returns blocks the caller.
func (e *LocalExecutor) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSpawn, c.Name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSpawn, c.Name, err)
	}

	e.logger.Debug("starting command", "command", c.String(), "dir", c.Dir)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSpawn, c.Name, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go e.forward(&wg, stdout, "stdout", c.Name)
	go e.forward(&wg, stderr, "stderr", c.Name)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Command: c, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("command %q: %w", c.String(), err)
	}
	return nil
}

func (e *LocalExecutor) forward(wg *sync.WaitGroup, r io.Reader, stream, name string) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		e.logger.Info(scanner.Text(), "stream", stream, "process", name)
	}
	if err := scanner.Err(); err != nil {
		e.logger.Warn("output no longer logged", "stream", stream, "process", name, "error", err)
		// Keep the pipe drained so the child never blocks on a full buffer.
		_, _ = io.Copy(io.Discard, r)
	}
}

// LookPathFunc is the function signature for looking up executables.
type LookPathFunc func(name string) (string, error)

// RequireBinaries checks that every named executable is on PATH. A missing
// binary means no task could ever succeed, so it is reported as ErrSpawn.
func RequireBinaries(lookPath LookPathFunc, names ...string) error {
	var missing []string
	for _, name := range names {
		if _, err := lookPath(name); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: not found on PATH: %s", ErrSpawn, strings.Join(missing, ", "))
	}
	return nil
}

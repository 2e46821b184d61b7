// pattern: Functional Core
package cli

import (
	"errors"
	"fmt"
	"io"
)

// ErrUsage marks errors caused by bad command-line input.
var ErrUsage = errors.New("cli: usage error")

// Command represents a single CLI command with its metadata and handler.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(args []string) error
}

// App is the top-level CLI application. Commands print in registration order.
type App struct {
	commands       map[string]*Command
	order          []string
	defaultCommand string
	version        string
	out            io.Writer
}

// NewApp creates a new CLI application with the given version.
func NewApp(version string, out io.Writer) *App {
	return &App{
		commands: make(map[string]*Command),
		version:  version,
		out:      out,
	}
}

// AddCommand registers a command.
func (a *App) AddCommand(cmd *Command) {
	if _, ok := a.commands[cmd.Name]; !ok {
		a.order = append(a.order, cmd.Name)
	}
	a.commands[cmd.Name] = cmd
}

// SetDefault names the command run when no arguments are given.
func (a *App) SetDefault(name string) {
	a.defaultCommand = name
}

// Execute dispatches the CLI arguments to the appropriate command and returns
// its error. Unknown commands return an error wrapping ErrUsage.
func (a *App) Execute(args []string) error {
	if len(args) == 0 {
		if a.defaultCommand == "" {
			a.PrintHelp(a.out)
			return nil
		}
		args = []string{a.defaultCommand}
	}

	cmdName := args[0]
	if cmdName == "help" {
		a.PrintHelp(a.out)
		return nil
	}

	cmd, ok := a.commands[cmdName]
	if !ok {
		a.PrintHelp(a.out)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmdName)
	}

	for _, arg := range args[1:] {
		if arg == "--help" || arg == "-h" {
			fmt.Fprintf(a.out, "%s\n", cmd.Usage)
			return nil
		}
	}
	return cmd.Run(args[1:])
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: svnmigrate [options] [command]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, name := range a.order {
		cmd := a.commands[name]
		summary := cmd.Summary
		if name == a.defaultCommand {
			summary += " (default)"
		}
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, summary)
	}
	fmt.Fprintf(w, "\nUse \"svnmigrate <command> --help\" for command details.\n\n")
	fmt.Fprintf(w, "Options:\n")
}

// pattern: Imperative Shell
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	flag "github.com/spf13/pflag"

	"svnmigrate/internal/cli"
	"svnmigrate/internal/config"
	"svnmigrate/internal/logging"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses global flags, dispatches the command and returns the exit code:
// 0 on success (task failures included), 1 on fatal errors, 2 on bad usage.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("svnmigrate", flag.ContinueOnError)
	// Stop at the command name so its own flags reach the command.
	fs.SetInterspersed(false)
	fs.SetOutput(stderr)

	configFile := fs.StringP("config-file", "c", "config.yaml", "configuration file")
	layoutFile := fs.String("layout-file", "layout.yaml", "layout file written by the layout command")
	threads := fs.IntP("threads", "t", runtime.NumCPU(), "number of conversions run at once")
	pushMode := fs.BoolP("push", "p", false, "push converted projects (same as the push command)")
	layoutMode := fs.Bool("layout", false, "scan the repository (same as the layout command)")
	externalsMode := fs.Bool("gitexternal", false, "write the git-external script (same as the externals command)")
	verbose := fs.BoolP("verbose", "v", false, "debug logging and verbose svn2git output")
	logFile := fs.String("log-file", "svnmigrate.log", "JSON log file")

	fs.Usage = func() {
		cli.BuildApp(version, &cli.Env{Out: stderr}).PrintHelp(stderr)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logManager, err := logging.NewManager(logging.Config{
		FilePath:   *logFile,
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Level:      logLevel(*configFile, *verbose),
		Console:    stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer func() { _ = logManager.Close() }()

	env := cli.NewEnv(cli.Options{
		ConfigFile: *configFile,
		LayoutFile: *layoutFile,
		Threads:    *threads,
		Verbose:    *verbose,
	}, stdout, logManager)
	app := cli.BuildApp(version, env)

	appLogger := logManager.For("app").With("run_id", env.RunID)
	appLogger.Debug("svnmigrate starting", "version", version, "config", *configFile, "threads", *threads)

	err = app.Execute(cli.LegacyCommand(fs.Args(), *layoutMode, *externalsMode, *pushMode))
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	default:
		appLogger.Error("command failed", "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// logLevel reads log_level from the configuration when it is readable.
// Commands report configuration errors themselves.
func logLevel(configFile string, verbose bool) string {
	if verbose {
		return "debug"
	}
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return "info"
	}
	return cfg.LogLevel
}

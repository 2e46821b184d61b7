// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
)

// BuildApp creates and configures the CLI application with all commands.
func BuildApp(version string, env *Env) *App {
	app := NewApp(version, env.Out)

	app.AddCommand(&Command{
		Name:    "layout",
		Summary: "Scan the Subversion repository and write the layout file",
		Usage:   "Usage: svnmigrate layout",
		Run: func(args []string) error {
			if err := parseFlags(flag.NewFlagSet("layout", flag.ContinueOnError), args); err != nil {
				return helpOr(app, "layout", err)
			}
			return env.runLayout(context.Background())
		},
	})

	app.AddCommand(&Command{
		Name:    "convert",
		Summary: "Convert every project in the layout file with svn2git",
		Usage:   "Usage: svnmigrate convert",
		Run: func(args []string) error {
			if err := parseFlags(flag.NewFlagSet("convert", flag.ContinueOnError), args); err != nil {
				return helpOr(app, "convert", err)
			}
			return env.runMigration(context.Background(), false)
		},
	})

	app.AddCommand(&Command{
		Name:    "push",
		Summary: "Push every converted project to its Git remote, one at a time",
		Usage:   "Usage: svnmigrate push",
		Run: func(args []string) error {
			if err := parseFlags(flag.NewFlagSet("push", flag.ContinueOnError), args); err != nil {
				return helpOr(app, "push", err)
			}
			return env.runMigration(context.Background(), true)
		},
	})

	app.AddCommand(&Command{
		Name:    "externals",
		Summary: "Write a git-external script mirroring the Subversion tree",
		Usage:   "Usage: svnmigrate externals [-o FILE]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("externals", flag.ContinueOnError)
			output := fs.StringP("output", "o", DefaultExternalsScript, "script path, - for stdout")
			if err := parseFlags(fs, args); err != nil {
				return helpOr(app, "externals", err)
			}
			return env.runExternals(*output)
		},
	})

	app.AddCommand(&Command{
		Name:    "authors",
		Summary: "List Subversion authors missing from the authors file",
		Usage:   "Usage: svnmigrate authors [--update] [--list FILE]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("authors", flag.ContinueOnError)
			update := fs.Bool("update", false, "fetch the author list from the repository first")
			list := fs.String("list", DefaultAuthorsList, "cached Subversion author list")
			if err := parseFlags(fs, args); err != nil {
				return helpOr(app, "authors", err)
			}
			return env.runAuthors(context.Background(), *update, *list)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: svnmigrate version",
		Run: func(args []string) error {
			_, err := fmt.Fprintln(env.Out, version)
			return err
		},
	})

	app.SetDefault("convert")
	return app
}

// helpOr prints the command usage for --help and passes other errors through.
func helpOr(app *App, name string, err error) error {
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(app.out, "%s\n", app.commands[name].Usage)
		return nil
	}
	return err
}

// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"svnmigrate/internal/authors"
)

// DefaultAuthorsList caches the Subversion author list between runs.
const DefaultAuthorsList = authors.DefaultListFile

// runAuthors prints every Subversion author without an entry in the
// configured authors file.
func (e *Env) runAuthors(ctx context.Context, update bool, listFile string) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	logger := e.logger("authors")

	var svnAuthors []string
	if update {
		logger.Info("fetching authors", "repo", cfg.RepoURL())
		svnAuthors, err = authors.FetchSVNAuthors(ctx, e.NewSVN(&cfg))
		if err != nil {
			return err
		}
		if err := authors.WriteList(listFile, svnAuthors); err != nil {
			return fmt.Errorf("writing %s: %w", listFile, err)
		}
		logger.Info("author list written", "file", listFile, "authors", len(svnAuthors))
	} else {
		svnAuthors, err = authors.ReadAuthorsFile(listFile)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s not found, run with --update to fetch it: %w", listFile, err)
		}
		if err != nil {
			return err
		}
	}

	mapped, err := authors.ReadAuthorsFile(cfg.AuthorsFile)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("authors file missing, every author is unmapped", "file", cfg.AuthorsFile)
		mapped = nil
	} else if err != nil {
		return err
	}

	missing := authors.Missing(svnAuthors, mapped)
	logger.Info("authors compared", "svn", len(svnAuthors), "mapped", len(mapped), "missing", len(missing))
	for _, name := range missing {
		if _, err := fmt.Fprintln(e.Out, name); err != nil {
			return err
		}
	}
	return nil
}

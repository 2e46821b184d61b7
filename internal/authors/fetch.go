// pattern: Imperative Shell

package authors

import "context"

// LogSource produces `svn log --quiet` output for a repository.
type LogSource interface {
	QuietLog(ctx context.Context) (string, error)
}

// FetchSVNAuthors lists everyone who committed to the repository.
func FetchSVNAuthors(ctx context.Context, src LogSource) ([]string, error) {
	output, err := src.QuietLog(ctx)
	if err != nil {
		return nil, err
	}
	return ParseQuietLog(output), nil
}

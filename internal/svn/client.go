// pattern: Imperative Shell

package svn

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrRemoteList is returned when a directory listing cannot be obtained,
// either because the server is unreachable or the path does not exist.
var ErrRemoteList = errors.New("svn: remote listing failed")

// headRevision is the only revision ever listed.
const headRevision = "HEAD"

// Entry is one child of a listed directory.
type Entry struct {
	Name  string
	IsDir bool
}

// Lister lists the immediate children of a repository path.
type Lister interface {
	List(ctx context.Context, path string) ([]Entry, error)
}

// CommandExecutor is a function that executes a command and returns its output.
type CommandExecutor func(ctx context.Context, name string, args ...string) (string, error)

// Credentials authenticate against the repository. Empty fields are omitted.
type Credentials struct {
	Username string
	Password string
}

// Client talks to a Subversion server through the svn command line client.
type Client struct {
	repoURL string
	creds   Credentials
	exec    CommandExecutor
}

// NewClient creates a client for the repository rooted at repoURL.
func NewClient(repoURL string, creds Credentials) *Client {
	return NewClientWithExecutor(repoURL, creds, defaultExecutor)
}

// NewClientWithExecutor creates a client with a custom executor for testing.
func NewClientWithExecutor(repoURL string, creds Credentials, exec CommandExecutor) *Client {
	return &Client{
		repoURL: strings.TrimRight(repoURL, "/"),
		creds:   creds,
		exec:    exec,
	}
}

func defaultExecutor(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return "", err
	}

	return stdout.String(), nil
}

// URL returns the repository URL of a rooted path.
func (c *Client) URL(path string) string {
	if path == "" || path == "/" {
		return c.repoURL
	}
	return c.repoURL + "/" + strings.TrimLeft(path, "/")
}

// List returns the children of path at HEAD. Entries without a usable name
// are dropped.
func (c *Client) List(ctx context.Context, path string) ([]Entry, error) {
	url := c.URL(path)
	args := append([]string{"list", "--xml"}, c.authArgs()...)
	// The peg revision also disambiguates paths that contain '@'.
	args = append(args, url+"@"+headRevision)

	output, err := c.exec(ctx, "svn", args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteList, url, err)
	}

	entries, err := parseListXML([]byte(output))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteList, url, err)
	}
	return entries, nil
}

// QuietLog returns the output of `svn log --quiet` for the whole repository.
func (c *Client) QuietLog(ctx context.Context) (string, error) {
	args := append([]string{"log", "--quiet"}, c.authArgs()...)
	args = append(args, c.repoURL)

	output, err := c.exec(ctx, "svn", args...)
	if err != nil {
		return "", fmt.Errorf("svn log %s: %w", c.repoURL, err)
	}
	return output, nil
}

func (c *Client) authArgs() []string {
	args := []string{"--non-interactive"}
	if c.creds.Username != "" {
		args = append(args, "--username", c.creds.Username)
	}
	if c.creds.Password != "" {
		args = append(args, "--password", c.creds.Password)
	}
	return args
}

type listXML struct {
	Lists []struct {
		Entries []struct {
			Kind string `xml:"kind,attr"`
			Name string `xml:"name"`
		} `xml:"entry"`
	} `xml:"list"`
}

// parseListXML decodes `svn list --xml` output.
func parseListXML(data []byte) ([]Entry, error) {
	var doc listXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding listing: %w", err)
	}

	var entries []Entry
	for _, l := range doc.Lists {
		for _, e := range l.Entries {
			switch strings.TrimSpace(e.Name) {
			case "", ".", "..":
				continue
			}
			entries = append(entries, Entry{Name: e.Name, IsDir: e.Kind == "dir"})
		}
	}
	return entries, nil
}

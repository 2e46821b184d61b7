// pattern: Functional Core

// Package authors compares the committers of a Subversion repository with
// the svn2git author mapping file.
package authors

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
)

// DefaultListFile is where the fetched Subversion author list is cached.
const DefaultListFile = "svn-authors.txt"

// revisionLine matches the header of a `svn log --quiet` entry:
// "r1234 | jdoe | 2012-03-04 10:11:12 +0100 (Sun, 04 Mar 2012)".
var revisionLine = regexp.MustCompile(`^r[0-9]+ \| (.+?) \|`)

// ParseQuietLog extracts the unique author names from quiet log output,
// sorted.
func ParseQuietLog(output string) []string {
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		m := revisionLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		seen[name] = struct{}{}
	}
	return sortedKeys(seen)
}

// ParseMapping reads author keys from `svn = Git Name <email>` lines.
// Blank lines and lines starting with # are ignored.
func ParseMapping(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, _, _ := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		seen[key] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sortedKeys(seen), nil
}

// ReadAuthorsFile reads the author keys of a mapping or list file.
func ReadAuthorsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	keys, err := ParseMapping(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return keys, nil
}

// WriteList writes one author per line.
func WriteList(path string, authors []string) error {
	var b strings.Builder
	for _, a := range authors {
		b.WriteString(a)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// Missing returns the Subversion authors that have no mapping, sorted.
func Missing(svnAuthors, mapped []string) []string {
	known := make(map[string]struct{}, len(mapped))
	for _, m := range mapped {
		known[m] = struct{}{}
	}
	missing := make(map[string]struct{})
	for _, a := range svnAuthors {
		if _, ok := known[a]; !ok {
			missing[a] = struct{}{}
		}
	}
	return sortedKeys(missing)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

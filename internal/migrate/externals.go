// pattern: Functional Core

package migrate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"svnmigrate/internal/layout"
)

// ExternalsBranch is the branch every generated git-external entry tracks.
const ExternalsBranch = "master"

// WriteExternalsScript writes a shell script registering every project as a
// git-external of a super-repository, mirroring the Subversion tree.
func WriteExternalsScript(w io.Writer, projects []layout.Project, gitURL string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "#!/bin/sh")
	fmt.Fprintln(bw, "set -x")
	fmt.Fprintln(bw, "set -e")
	fmt.Fprintln(bw)

	for _, p := range projects {
		path := strings.TrimPrefix(p.FullPath(), "/")
		fmt.Fprintf(bw, "git external add %s %s %s\n",
			shellQuote(RemoteURL(p, gitURL)),
			shellQuote(path),
			ExternalsBranch,
		)
	}
	return bw.Flush()
}

// shellQuote single-quotes s unless it consists only of characters that
// are never special to sh.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isShellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("@%+=:,./-_", r)
}

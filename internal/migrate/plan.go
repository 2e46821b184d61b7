// pattern: Functional Core

package migrate

import (
	"svnmigrate/internal/layout"
	"svnmigrate/internal/process"
)

// Options are the run-wide settings that shape per-project commands.
type Options struct {
	RepoURL     string // Subversion repository URL, no trailing slash
	WorkDir     string // Local staging root; one directory per project below it
	GitURL      string // Git remote base URL, no trailing slash
	AuthorsFile string // Absolute path of the svn2git author mapping
	Verbose     bool
}

// StructureFlags maps a project's layout to svn2git flags.
func StructureFlags(p layout.Project, verbose bool) []string {
	var flags []string
	if p.HasTrunk {
		flags = append(flags, "--trunk", layout.TrunkDir)
	} else {
		flags = append(flags, "--notrunk")
	}
	if p.HasBranches {
		flags = append(flags, "--branches", layout.BranchesDir)
	} else {
		flags = append(flags, "--nobranches")
	}
	if verbose {
		flags = append(flags, "--verbose")
	}
	return flags
}

// ConvertPlan returns the commands converting one project. An existing
// working copy is rebased onto new Subversion history; otherwise the project
// is cloned with the author mapping and given its Git remote.
func ConvertPlan(p layout.Project, opts Options, dir string, hasWorkingCopy bool) []process.Command {
	if hasWorkingCopy {
		args := []string{"--rebase", "--notags", "--metadata"}
		args = append(args, StructureFlags(p, opts.Verbose)...)
		return []process.Command{{Dir: dir, Name: "svn2git", Args: args}}
	}

	args := []string{
		opts.RepoURL + p.FullPath(),
		"--authors", opts.AuthorsFile,
		"--notags", "--metadata", "--no-minimize-url",
	}
	args = append(args, StructureFlags(p, opts.Verbose)...)
	cmds := []process.Command{{Dir: dir, Name: "svn2git", Args: args}}

	if opts.GitURL != "" {
		cmds = append(cmds, process.Command{
			Dir:  dir,
			Name: "git",
			Args: []string{"remote", "add", "origin", RemoteURL(p, opts.GitURL)},
		})
	}
	return cmds
}

// PushPlan returns the commands pushing a converted project.
func PushPlan(dir string) []process.Command {
	return []process.Command{{Dir: dir, Name: "git", Args: []string{"push", "--all", "-u"}}}
}

// RemoteURL returns the Git repository URL of a project.
func RemoteURL(p layout.Project, gitURL string) string {
	return gitURL + p.FullPath() + ".git"
}

// pattern: Imperative Shell

package layout

import (
	"context"
	"fmt"
	"regexp"

	"svnmigrate/internal/logging"
	"svnmigrate/internal/svn"
)

// Discoverer walks a repository top-down and collects project roots.
type Discoverer struct {
	lister  svn.Lister
	exclude *regexp.Regexp
	logger  *logging.ScopedLogger
}

// NewDiscoverer creates a Discoverer. A nil exclude pattern excludes nothing.
func NewDiscoverer(lister svn.Lister, exclude *regexp.Regexp, logger *logging.ScopedLogger) *Discoverer {
	return &Discoverer{
		lister:  lister,
		exclude: exclude,
		logger:  logger,
	}
}

// pending is a directory waiting to be scanned. When listed is set, children
// holds the listing already fetched while classifying it.
type pending struct {
	path     string
	children []svn.Entry
	listed   bool
}

// Discover returns every project root below root.
//
// A directory is a project root when its own children contain trunk,
// branches or tags, so every candidate costs one extra listing. Project
// roots are never descended into. Other directories are scanned in turn.
// Results list the projects found directly under a directory in listing
// order, followed by the results of each non-project subdirectory in order.
//
// Any listing failure aborts the whole discovery.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]Project, error) {
	projects := []Project{}
	stack := []pending{{path: normalizeRoot(root)}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if d.excluded(cur.path) {
			continue
		}

		d.logger.Info("scanning", "path", cur.path)

		children := cur.children
		if !cur.listed {
			var err error
			children, err = d.lister.List(ctx, cur.path)
			if err != nil {
				return nil, fmt.Errorf("discovering %s: %w", cur.path, err)
			}
		}

		var descend []pending
		for _, child := range children {
			// Files have no children and can never be project roots.
			if !child.IsDir {
				continue
			}
			full := JoinPath(cur.path, child.Name)
			if d.excluded(full) {
				continue
			}

			grandchildren, err := d.lister.List(ctx, full)
			if err != nil {
				return nil, fmt.Errorf("discovering %s: %w", full, err)
			}

			c := Classify(entryNames(grandchildren))
			if !c.IsProjectRoot() {
				descend = append(descend, pending{path: full, children: grandchildren, listed: true})
				continue
			}

			p := Project{
				RelativePath: child.Name,
				AbsolutePath: cur.path,
				HasTrunk:     c.HasTrunk,
				HasBranches:  c.HasBranches,
				HasTags:      c.HasTags,
			}
			projects = append(projects, p)
			d.logger.Info("project found",
				"project", full,
				"trunk", p.HasTrunk,
				"branches", p.HasBranches,
				"tags", p.HasTags,
			)
		}

		// Reverse push keeps the first subdirectory on top of the stack.
		for i := len(descend) - 1; i >= 0; i-- {
			stack = append(stack, descend[i])
		}
	}

	return projects, nil
}

func (d *Discoverer) excluded(path string) bool {
	if d.exclude == nil || !d.exclude.MatchString(path) {
		return false
	}
	d.logger.Info("path excluded", "path", path, "pattern", d.exclude.String())
	return true
}

func entryNames(entries []svn.Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

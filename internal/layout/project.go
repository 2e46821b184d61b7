// pattern: Functional Core

package layout

import "strings"

// Marker directory names of the standard Subversion layout.
const (
	TrunkDir    = "trunk"
	BranchesDir = "branches"
	TagsDir     = "tags"
)

// Project is a discovered project root: a directory whose children include
// trunk, branches or tags. Values are immutable once discovery returns them.
type Project struct {
	RelativePath string `yaml:"path"`     // Leaf directory name
	AbsolutePath string `yaml:"abs_path"` // Rooted path of the parent directory
	HasTrunk     bool   `yaml:"trunk"`
	HasBranches  bool   `yaml:"branches"`
	HasTags      bool   `yaml:"tags"`
}

// FullPath returns the rooted repository path of the project itself.
func (p Project) FullPath() string {
	return JoinPath(p.AbsolutePath, p.RelativePath)
}

// Classification records which layout markers a directory contains.
type Classification struct {
	HasTrunk    bool
	HasBranches bool
	HasTags     bool
}

// IsProjectRoot reports whether any marker is present.
func (c Classification) IsProjectRoot() bool {
	return c.HasTrunk || c.HasBranches || c.HasTags
}

// Classify checks child names for the trunk/branches/tags markers. Names are
// compared exactly after trimming surrounding whitespace.
func Classify(children []string) Classification {
	var c Classification
	for _, name := range children {
		switch strings.TrimSpace(name) {
		case TrunkDir:
			c.HasTrunk = true
		case BranchesDir:
			c.HasBranches = true
		case TagsDir:
			c.HasTags = true
		}
	}
	return c
}

// JoinPath appends a child name to a rooted parent path.
func JoinPath(parent, name string) string {
	if parent == "/" || parent == "" {
		return "/" + name
	}
	return parent + "/" + name
}

// normalizeRoot turns a configured root into a rooted path without a
// trailing slash ("" and "/" both mean the repository root).
func normalizeRoot(root string) string {
	root = strings.TrimSpace(root)
	root = strings.TrimRight(root, "/")
	if root == "" {
		return "/"
	}
	if !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	return root
}

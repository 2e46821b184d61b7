// pattern: Imperative Shell

package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrCorruptLayout is returned when a layout file cannot be decoded into a
// usable project list.
var ErrCorruptLayout = errors.New("layout: corrupt layout file")

// FormatVersion is the layout file schema version written by Save.
const FormatVersion = 1

// rubyMarshalMagic prefixes layout dumps written by the old Ruby tool.
var rubyMarshalMagic = []byte{0x04, 0x08}

// Layout is the persisted result of a discovery run.
type Layout struct {
	Source      string    // Repository URL and root that were scanned
	GeneratedAt time.Time // When discovery finished
	Projects    []Project
}

type document struct {
	Version     int       `yaml:"version"`
	Source      string    `yaml:"source,omitempty"`
	GeneratedAt time.Time `yaml:"generated_at,omitempty"`
	Projects    []Project `yaml:"projects"`
}

// Save writes the layout as a versioned YAML document.
func Save(w io.Writer, l Layout) error {
	projects := l.Projects
	if projects == nil {
		projects = []Project{}
	}
	doc := document{
		Version:     FormatVersion,
		Source:      l.Source,
		GeneratedAt: l.GeneratedAt,
		Projects:    projects,
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}
	return enc.Close()
}

// Load decodes a layout written by Save. Anything that is not a complete,
// supported layout document is reported as ErrCorruptLayout.
func Load(r io.Reader) (Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Layout{}, fmt.Errorf("reading layout: %w", err)
	}

	if bytes.HasPrefix(data, rubyMarshalMagic) {
		return Layout{}, fmt.Errorf("%w: legacy binary layout dump, run the layout command again to regenerate it", ErrCorruptLayout)
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Layout{}, fmt.Errorf("%w: empty file", ErrCorruptLayout)
		}
		return Layout{}, fmt.Errorf("%w: %v", ErrCorruptLayout, err)
	}

	switch {
	case doc.Version == 0:
		return Layout{}, fmt.Errorf("%w: missing version", ErrCorruptLayout)
	case doc.Version > FormatVersion:
		return Layout{}, fmt.Errorf("%w: unsupported version %d (newest known is %d)", ErrCorruptLayout, doc.Version, FormatVersion)
	}

	for i, p := range doc.Projects {
		if err := validateProject(p); err != nil {
			return Layout{}, fmt.Errorf("%w: project %d: %v", ErrCorruptLayout, i, err)
		}
	}

	projects := doc.Projects
	if projects == nil {
		projects = []Project{}
	}
	return Layout{
		Source:      doc.Source,
		GeneratedAt: doc.GeneratedAt,
		Projects:    projects,
	}, nil
}

func validateProject(p Project) error {
	name := p.RelativePath
	if strings.TrimSpace(name) == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return fmt.Errorf("invalid path %q", name)
	}
	if !strings.HasPrefix(p.AbsolutePath, "/") {
		return fmt.Errorf("abs_path %q is not rooted", p.AbsolutePath)
	}
	if !p.HasTrunk && !p.HasBranches && !p.HasTags {
		return fmt.Errorf("%s has none of trunk, branches, tags", p.FullPath())
	}
	return nil
}

// WriteFile saves the layout to path, replacing any existing file only once
// the new content is completely written.
func WriteFile(path string, l Layout) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating layout file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := Save(tmp, l); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing layout file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing layout file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("writing layout file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("writing layout file: %w", err)
	}
	return nil
}

// ReadFile loads a layout from path.
func ReadFile(path string) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return Layout{}, fmt.Errorf("opening layout file: %w", err)
	}
	defer f.Close()

	l, err := Load(f)
	if err != nil {
		return Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

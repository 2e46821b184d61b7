// pattern: Functional Core

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate for unusable configurations.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// DefaultAuthorsFile is the author mapping passed to svn2git when none is configured.
const DefaultAuthorsFile = "git-authors.txt"

type Config struct {
	SVNRepo        string `yaml:"svn_repo"`
	SVNUser        string `yaml:"svn_user"`
	SVNPassword    string `yaml:"svn_password"`
	SVNPasswordEnv string `yaml:"svn_password_env"`
	SVNPath        string `yaml:"svn_path"`
	Excludes       string `yaml:"svn_git_excludes"`
	WorkDir        string `yaml:"svn_git_tmp"`
	GitURL         string `yaml:"git_url"`
	AuthorsFile    string `yaml:"authors_file"`
	LogLevel       string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		SVNPath:     "/",
		AuthorsFile: DefaultAuthorsFile,
		LogLevel:    "info",
	}
}

// LoadFrom reads a YAML configuration file. Unlike most tools a missing file is
// an error: nothing can run without at least a repository URL.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", configPath, err)
	}

	if cfg.SVNPath == "" {
		cfg.SVNPath = "/"
	}
	if cfg.AuthorsFile == "" {
		cfg.AuthorsFile = DefaultAuthorsFile
	}

	return cfg, nil
}

// Validate checks the settings every command needs. Commands that need
// more (git_url for pushes, svn_git_tmp for conversions) check those themselves.
func (c *Config) Validate() error {
	if c.SVNRepo == "" {
		return fmt.Errorf("%w: svn_repo is required", ErrInvalidConfig)
	}
	if _, err := c.ExcludePattern(); err != nil {
		return err
	}
	return nil
}

// RequireWorkDir reports an error when svn_git_tmp is unset.
func (c *Config) RequireWorkDir() error {
	if c.WorkDir == "" {
		return fmt.Errorf("%w: svn_git_tmp is required", ErrInvalidConfig)
	}
	return nil
}

// ExcludePattern compiles svn_git_excludes. An empty setting yields nil,
// meaning nothing is excluded.
func (c *Config) ExcludePattern() (*regexp.Regexp, error) {
	if strings.TrimSpace(c.Excludes) == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.Excludes)
	if err != nil {
		return nil, fmt.Errorf("%w: svn_git_excludes: %v", ErrInvalidConfig, err)
	}
	return re, nil
}

// Password returns the SVN password, preferring the environment variable
// named by svn_password_env over the inline value.
func (c *Config) Password() string {
	if c.SVNPasswordEnv != "" {
		if v := os.Getenv(c.SVNPasswordEnv); v != "" {
			return v
		}
	}
	return c.SVNPassword
}

// RepoURL returns svn_repo without a trailing slash so project paths
// (which always start with "/") can be appended directly.
func (c *Config) RepoURL() string {
	return strings.TrimRight(c.SVNRepo, "/")
}

// GitBaseURL returns git_url without a trailing slash.
func (c *Config) GitBaseURL() string {
	return strings.TrimRight(c.GitURL, "/")
}

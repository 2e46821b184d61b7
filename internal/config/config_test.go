package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func TestLoadFullConfig(t *testing.T) {
	configPath := writeConfig(t, `
svn_repo: http://svn.example.com/repos/
svn_user: builder
svn_password: s3cret
svn_path: /projects
svn_git_excludes: ^/projects/(archive|sandbox)
svn_git_tmp: /var/tmp/svn2git
git_url: git@git.example.com:migrated
authors_file: /etc/svnmigrate/authors.txt
log_level: debug
`)

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	checks := []struct {
		field, got, want string
	}{
		{"SVNRepo", cfg.SVNRepo, "http://svn.example.com/repos/"},
		{"SVNUser", cfg.SVNUser, "builder"},
		{"SVNPassword", cfg.SVNPassword, "s3cret"},
		{"SVNPath", cfg.SVNPath, "/projects"},
		{"Excludes", cfg.Excludes, "^/projects/(archive|sandbox)"},
		{"WorkDir", cfg.WorkDir, "/var/tmp/svn2git"},
		{"GitURL", cfg.GitURL, "git@git.example.com:migrated"},
		{"AuthorsFile", cfg.AuthorsFile, "/etc/svnmigrate/authors.txt"},
		{"LogLevel", cfg.LogLevel, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %q, want %q", c.field, c.got, c.want)
		}
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, "svn_repo: http://svn/repos\n"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.SVNPath != "/" {
		t.Errorf("SVNPath: got %q, want %q", cfg.SVNPath, "/")
	}
	if cfg.AuthorsFile != DefaultAuthorsFile {
		t.Errorf("AuthorsFile: got %q, want %q", cfg.AuthorsFile, DefaultAuthorsFile)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoadFrom_EmptyValuesFallBack(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, "svn_repo: http://svn/repos\nsvn_path: \"\"\nauthors_file: \"\"\n"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.SVNPath != "/" || cfg.AuthorsFile != DefaultAuthorsFile {
		t.Errorf("got SVNPath %q AuthorsFile %q, want defaults", cfg.SVNPath, cfg.AuthorsFile)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	if _, err := LoadFrom(writeConfig(t, "svn_repo: [unclosed\n")); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_RequiresRepo(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
	}
}

func TestValidate_BadExcludePattern(t *testing.T) {
	cfg := Config{SVNRepo: "http://svn/repos", Excludes: "(unclosed"}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
	}
}

func TestRequireWorkDir(t *testing.T) {
	cfg := Config{}
	if err := cfg.RequireWorkDir(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("RequireWorkDir() = %v, want ErrInvalidConfig", err)
	}
	cfg.WorkDir = "/tmp/work"
	if err := cfg.RequireWorkDir(); err != nil {
		t.Errorf("RequireWorkDir() = %v, want nil", err)
	}
}

func TestExcludePattern(t *testing.T) {
	cfg := Config{}
	re, err := cfg.ExcludePattern()
	if err != nil || re != nil {
		t.Fatalf("empty excludes: got %v, %v; want nil, nil", re, err)
	}

	cfg.Excludes = "/archive"
	re, err = cfg.ExcludePattern()
	if err != nil {
		t.Fatalf("ExcludePattern() error = %v", err)
	}
	if !re.MatchString("/archive/foo") {
		t.Error("pattern should match /archive/foo")
	}
	if re.MatchString("/apps/foo") {
		t.Error("pattern should not match /apps/foo")
	}
}

func TestPassword_PrefersEnv(t *testing.T) {
	t.Setenv("SVNMIGRATE_TEST_PASSWORD", "from-env")

	cfg := Config{SVNPassword: "inline", SVNPasswordEnv: "SVNMIGRATE_TEST_PASSWORD"}
	if got := cfg.Password(); got != "from-env" {
		t.Errorf("Password() = %q, want %q", got, "from-env")
	}
}

func TestPassword_FallsBackToInline(t *testing.T) {
	cfg := Config{SVNPassword: "inline", SVNPasswordEnv: "SVNMIGRATE_TEST_UNSET_VAR"}
	if got := cfg.Password(); got != "inline" {
		t.Errorf("Password() = %q, want %q", got, "inline")
	}
}

func TestBaseURLsTrimTrailingSlash(t *testing.T) {
	cfg := Config{SVNRepo: "http://svn/repos//", GitURL: "ssh://git/base/"}
	if got := cfg.RepoURL(); got != "http://svn/repos" {
		t.Errorf("RepoURL() = %q", got)
	}
	if got := cfg.GitBaseURL(); got != "ssh://git/base" {
		t.Errorf("GitBaseURL() = %q", got)
	}
}

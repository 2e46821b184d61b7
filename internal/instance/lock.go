// pattern: Imperative Shell
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const (
	lockFileName  = ".svnmigrate.lock"
	ownerFileName = ".svnmigrate.owner"
)

// ErrLocked means another run is using the same staging directory.
var ErrLocked = errors.New("instance: staging directory is locked by another run")

// Lock acquires an exclusive file lock on the staging directory and records
// the owning run. The caller must defer Cleanup.
func Lock(workDir, runID string) (*flock.Flock, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	fl := flock.New(filepath.Join(workDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		if owner := Owner(workDir); owner != "" {
			return nil, fmt.Errorf("%w (%s)", ErrLocked, owner)
		}
		return nil, ErrLocked
	}

	owner := fmt.Sprintf("run %s, pid %d", runID, os.Getpid())
	if err := os.WriteFile(filepath.Join(workDir, ownerFileName), []byte(owner), 0644); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("failed to record lock owner: %w", err)
	}
	return fl, nil
}

// Owner describes the run holding the lock, or "" when unknown.
func Owner(workDir string) string {
	data, err := os.ReadFile(filepath.Join(workDir, ownerFileName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Cleanup removes the owner file and releases the file lock.
func Cleanup(workDir string, fl *flock.Flock) {
	_ = os.Remove(filepath.Join(workDir, ownerFileName))
	if fl != nil {
		_ = fl.Unlock()
	}
}

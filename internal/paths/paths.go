// Package paths resolves and prepares the backup root directory.
package paths

import (
	"os"
	"path/filepath"

	"github.com/kebairia/mongosnap/internal/errors"
)

// DefaultBackupPath is used when no backup path is configured.
const DefaultBackupPath = "public/backup"

// Resolve joins the configured backup path against cwd. An empty configured
// path falls back to DefaultBackupPath; an absolute one is used unchanged.
func Resolve(cwd, configured string) string {
	if configured == "" {
		configured = DefaultBackupPath
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Join(cwd, configured)
}

// EnsureRoot creates the backup root if it is absent. It reports whether the
// directory was created by this call.
func EnsureRoot(root string) (created bool, err error) {
	info, err := os.Stat(root)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, errors.Wrapf(errors.ErrConfig, "backup root %q is not a directory", root)
		}
		return false, nil
	case !os.IsNotExist(err):
		return false, errors.Wrapf(errors.ErrConfig, "stat backup root %q: %v", root, err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return false, errors.Wrapf(errors.ErrConfig, "create backup root %q: %v", root, err)
	}
	return true, nil
}

// RequireRoot checks that the backup root exists and is a directory.
func RequireRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(errors.ErrNotFound, "backup folder not found at %s", root)
		}
		return errors.Wrapf(errors.ErrConfig, "stat backup root %q: %v", root, err)
	}
	if !info.IsDir() {
		return errors.Wrapf(errors.ErrConfig, "backup root %q is not a directory", root)
	}
	return nil
}

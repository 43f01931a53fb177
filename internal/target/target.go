// Package target resolves which dataset of a backup folder a restore reads
// and how the restore is scoped.
package target

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kebairia/mongosnap/internal/catalog"
	"github.com/kebairia/mongosnap/internal/errors"
)

// Selection is a validated restore source. It lives for a single restore.
type Selection struct {
	Backup     string
	Dataset    string
	SourcePath string
	// Namespace limits the restore to one database, e.g. "mydb.*".
	Namespace string
	// Drop replaces existing collections before restoring them.
	Drop bool
}

// Resolve validates requested against the dataset subdirectories of
// backupPath, falling back to defaultName when requested is empty.
func Resolve(backupPath, requested, defaultName string) (Selection, error) {
	name := strings.TrimSpace(requested)
	if name == "" {
		name = defaultName
	}

	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return Selection{}, invalid(backupPath, name)
	}

	source := filepath.Join(backupPath, name)
	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return Selection{}, invalid(backupPath, name)
	}

	return Selection{
		Backup:     filepath.Base(backupPath),
		Dataset:    name,
		SourcePath: source,
		Namespace:  name + ".*",
		Drop:       true,
	}, nil
}

func invalid(backupPath, name string) error {
	available, _ := catalog.ListDatasets(backupPath)
	return &errors.InvalidSelectionError{Name: name, Available: available}
}

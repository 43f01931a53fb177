// Package catalog lists backup folders and the datasets captured inside them.
package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kebairia/mongosnap/internal/errors"
)

// Entry describes one backup folder under the backup root.
type Entry struct {
	Name     string
	Path     string
	ModTime  time.Time
	Size     int64
	Datasets []string
}

// ListBackups returns the directory names under root in the order the
// filesystem reports them.
func ListBackups(root string) ([]string, error) {
	names, err := listDirs(root)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyCatalog, "no backup folders in %s", root)
	}
	return names, nil
}

// ListDatasets returns the dataset subdirectories of one backup folder.
func ListDatasets(backupPath string) ([]string, error) {
	names, err := listDirs(backupPath)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyCatalog, "no datasets in %s", backupPath)
	}
	return names, nil
}

// Describe collects size and modification time of a backup folder.
func Describe(root, name string) (Entry, error) {
	path := filepath.Join(root, name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, errors.Wrapf(errors.ErrNotFound, "backup %q", name)
		}
		return Entry{}, errors.Wrapf(err, "stat %s", path)
	}

	entry := Entry{Name: name, Path: path, ModTime: info.ModTime()}
	if entry.Datasets, err = listDirs(path); err != nil {
		return Entry{}, errors.Wrapf(err, "datasets of %s", name)
	}

	err = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			fi, err := d.Info()
			if err != nil {
				return err
			}
			entry.Size += fi.Size()
		}
		return nil
	})
	if err != nil {
		return Entry{}, errors.Wrapf(err, "walk %s", path)
	}
	return entry, nil
}

func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "%s does not exist", dir)
		}
		return nil, errors.Wrapf(err, "read %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

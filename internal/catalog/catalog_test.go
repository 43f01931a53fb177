package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kebairia/mongosnap/internal/errors"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
}

func TestListBackups(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "a-2024-05-01_12-00-00", "b-2024-05-02_12-00-00")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".DS_Store"), nil, 0o600))

	names, err := ListBackups(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a-2024-05-01_12-00-00", "b-2024-05-02_12-00-00"}, names)

	again, err := ListBackups(root)
	require.NoError(t, err)
	assert.Equal(t, names, again)
}

func TestListBackups_Empty(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), nil, 0o600))

	_, err := ListBackups(root)
	assert.True(t, errors.Is(err, errors.ErrEmptyCatalog))
}

func TestListBackups_Missing(t *testing.T) {
	_, err := ListBackups(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestListDatasets(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "snap/mydb", "snap/admin")
	require.NoError(t, os.WriteFile(filepath.Join(root, "snap", "manifest.json"), []byte("{}"), 0o600))

	names, err := ListDatasets(filepath.Join(root, "snap"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mydb", "admin"}, names)

	mkdirs(t, root, "empty")
	_, err = ListDatasets(filepath.Join(root, "empty"))
	assert.True(t, errors.Is(err, errors.ErrEmptyCatalog))

	_, err = ListDatasets(filepath.Join(root, "missing"))
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDescribe(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "snap/mydb")
	require.NoError(t, os.WriteFile(filepath.Join(root, "snap", "mydb", "users.bson"), make([]byte, 100), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "snap", "mydb", "users.metadata.json"), make([]byte, 28), 0o600))

	entry, err := Describe(root, "snap")
	require.NoError(t, err)
	assert.Equal(t, "snap", entry.Name)
	assert.Equal(t, int64(128), entry.Size)
	assert.Equal(t, []string{"mydb"}, entry.Datasets)
	assert.False(t, entry.ModTime.IsZero())

	_, err = Describe(root, "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDescribe_UnreadableFolder(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "not-a-folder"), []byte("x"), 0o600))

	_, err := Describe(root, "not-a-folder")
	require.Error(t, err, "a folder whose datasets cannot be read is reported")
	assert.Contains(t, err.Error(), "datasets of not-a-folder")
}

package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kebairia/mongosnap/internal/errors"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		cwd        string
		configured string
		want       string
	}{
		{"default", "/srv/app", "", "/srv/app/public/backup"},
		{"relative", "/srv/app", "dumps", "/srv/app/dumps"},
		{"absolute", "/srv/app", "/var/backups/mongo/", "/var/backups/mongo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.cwd, tt.configured))
		})
	}
}

func TestEnsureRoot_CreatesOnce(t *testing.T) {
	root := filepath.Join(t.TempDir(), "public", "backup")

	created, err := EnsureRoot(root)
	require.NoError(t, err)
	assert.True(t, created)
	assert.DirExists(t, root)

	created, err = EnsureRoot(root)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureRoot_FileCollision(t *testing.T) {
	root := filepath.Join(t.TempDir(), "backup")
	require.NoError(t, os.WriteFile(root, []byte("not a dir"), 0o600))

	_, err := EnsureRoot(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

func TestEnsureRoot_ParentIsFile(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "public")
	require.NoError(t, os.WriteFile(parent, nil, 0o600))

	_, err := EnsureRoot(filepath.Join(parent, "backup"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

func TestRequireRoot(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, RequireRoot(dir))

	err := RequireRoot(filepath.Join(dir, "missing"))
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	err = RequireRoot(file)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kebairia/mongosnap/internal/errors"
	"github.com/kebairia/mongosnap/internal/operations"
	"github.com/kebairia/mongosnap/internal/prompt"
)

type harness struct {
	root     string
	config   string
	argsFile string
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

// newHarness writes a config whose dump and restore binaries are shell
// scripts. The dump script creates a "shop" dataset under --out unless
// failing is set.
func newHarness(t *testing.T, input string, failing bool) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		root:     filepath.Join(dir, "backups"),
		config:   filepath.Join(dir, "mongosnap.yaml"),
		argsFile: filepath.Join(dir, "args.txt"),
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	}

	dumpBody := `for a in "$@"; do case "$a" in --out=*) mkdir -p "${a#--out=}/shop";; esac; done`
	if failing {
		dumpBody = "echo 'authentication failed' >&2\nexit 3"
	}
	dump := writeScript(t, dir, "mongodump", dumpBody)
	restore := writeScript(t, dir, "mongorestore",
		`for a in "$@"; do printf '%s\n' "$a" >> '`+h.argsFile+`'; done`)

	yaml := "source_uri: mongodb://admin:pw@prod-db:27017/shop\n" +
		"target_uri: mongodb://staging-db:27017/shop\n" +
		"backup:\n" +
		"  path: " + h.root + "\n" +
		"  dump_binary: " + dump + "\n" +
		"  restore_binary: " + restore + "\n"
	require.NoError(t, os.WriteFile(h.config, []byte(yaml), 0o600))

	// flag variables outlive a single Execute
	backupLabel = ""
	restoreReq = operations.RestoreRequest{}
	listJSON = false
	newPrompter = func(out io.Writer) prompt.Prompter {
		return prompt.NewLinePrompter(strings.NewReader(input), out)
	}
	rootCmd.SetOut(h.stdout)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	return h
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func (h *harness) run(args ...string) int {
	return run(context.Background(), append(args, "--config", h.config), h.stderr)
}

func TestBackupCommand(t *testing.T) {
	h := newHarness(t, "", false)

	code := h.run("backup", "--label", "Before Migration")
	require.Equal(t, errors.ExitSuccess, code, h.stderr.String())

	entries, err := os.ReadDir(h.root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "before-migration-"))
	assert.DirExists(t, filepath.Join(h.root, entries[0].Name(), "shop"))
	assert.FileExists(t, filepath.Join(h.root, entries[0].Name(), operations.ManifestFilename))
	assert.Contains(t, h.stdout.String(), "Backup completed successfully")
}

func TestBackupCommand_InteractiveLabel(t *testing.T) {
	h := newHarness(t, "nightly\n", false)

	require.Equal(t, errors.ExitSuccess, h.run("backup"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Enter a name for this backup")

	entries, err := os.ReadDir(h.root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "nightly-"))
}

func TestBackupCommand_ToolFailure(t *testing.T) {
	h := newHarness(t, "", true)

	code := h.run("backup", "--label", "nightly")
	assert.Equal(t, errors.ExitSystem, code)
	assert.Contains(t, h.stderr.String(), "Error:")
	assert.Contains(t, h.stderr.String(), "authentication failed")
	assert.Contains(t, h.stderr.String(), "exited with code 3")
	assert.NotContains(t, h.stdout.String(), "completed successfully")
	assert.NotContains(t, h.stderr.String(), "admin:pw", "credentials are redacted")
}

func TestRestoreCommand_EmptyCatalog(t *testing.T) {
	h := newHarness(t, "", false)
	require.NoError(t, os.MkdirAll(h.root, 0o755))

	code := h.run("restore")
	assert.Equal(t, errors.ExitUser, code)
	assert.Contains(t, h.stderr.String(), "Run: mongosnap backup")
	assert.NotContains(t, h.stdout.String(), "Select a backup folder")
}

func TestRestoreCommand_NonInteractive(t *testing.T) {
	h := newHarness(t, "", false)
	require.NoError(t, os.MkdirAll(filepath.Join(h.root, "nightly-2024-05-01_12-00-00", "shop"), 0o755))

	code := h.run("restore", "--backup", "nightly-2024-05-01_12-00-00", "--dataset", "shop", "--yes")
	require.Equal(t, errors.ExitSuccess, code, h.stderr.String())

	args, err := os.ReadFile(h.argsFile)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"--uri=mongodb://staging-db:27017/shop",
		"--nsInclude=shop.*",
		"--drop",
		"--dir=" + filepath.Join(h.root, "nightly-2024-05-01_12-00-00", "shop"),
	}, "\n")+"\n", string(args))
	assert.Contains(t, h.stdout.String(), "Restore completed successfully")
}

func TestRestoreCommand_UnknownDataset(t *testing.T) {
	h := newHarness(t, "", false)
	require.NoError(t, os.MkdirAll(filepath.Join(h.root, "nightly-2024-05-01_12-00-00", "shop"), 0o755))

	code := h.run("restore", "--backup", "nightly-2024-05-01_12-00-00", "--dataset", "billing", "--yes")
	assert.Equal(t, errors.ExitUser, code)
	assert.Contains(t, h.stderr.String(), `dataset "billing" not found`)
	assert.NoFileExists(t, h.argsFile)
}

func TestListCommand(t *testing.T) {
	h := newHarness(t, "", false)
	require.NoError(t, os.MkdirAll(filepath.Join(h.root, "nightly-2024-05-01_12-00-00", "shop"), 0o755))

	require.Equal(t, errors.ExitSuccess, h.run("list"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "NAME")
	assert.Contains(t, h.stdout.String(), "nightly-2024-05-01_12-00-00")
	assert.Contains(t, h.stdout.String(), "shop")
}

func TestListCommand_JSON(t *testing.T) {
	h := newHarness(t, "", false)
	require.NoError(t, os.MkdirAll(filepath.Join(h.root, "nightly-2024-05-01_12-00-00", "shop"), 0o755))

	require.Equal(t, errors.ExitSuccess, h.run("list", "--json"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), `"name": "nightly-2024-05-01_12-00-00"`)
	assert.Contains(t, h.stdout.String(), `"datasets": [`)
}

func TestMissingConfigFile(t *testing.T) {
	h := newHarness(t, "", false)

	code := run(context.Background(), []string{"list", "--config", filepath.Join(t.TempDir(), "nope.yaml")}, h.stderr)
	assert.Equal(t, errors.ExitUser, code)
	assert.Contains(t, h.stderr.String(), "config")
}

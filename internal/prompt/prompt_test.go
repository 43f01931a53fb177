package prompt

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kebairia/mongosnap/internal/errors"
)

func TestInput(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("Before Migration\n\n"), &out)

	got, err := p.Input("Enter a name for this backup", "backup")
	require.NoError(t, err)
	assert.Equal(t, "Before Migration", got)
	assert.Contains(t, out.String(), "Enter a name for this backup (backup): ")

	got, err = p.Input("Enter a name for this backup", "backup")
	require.NoError(t, err)
	assert.Equal(t, "backup", got)

	_, err = p.Input("again", "")
	assert.True(t, errors.Is(err, errors.ErrAborted))
}

func TestInput_LastLineWithoutNewline(t *testing.T) {
	p := NewLinePrompter(strings.NewReader("nightly"), &bytes.Buffer{})
	got, err := p.Input("label", "backup")
	require.NoError(t, err)
	assert.Equal(t, "nightly", got)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{"yes", "y\n", false, true},
		{"YES", "YES\n", false, true},
		{"no", "n\n", true, false},
		{"default true", "\n", true, true},
		{"default false", "\n", false, false},
		{"retry after junk", "maybe\nyes\n", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewLinePrompter(strings.NewReader(tt.input), &bytes.Buffer{})
			got, err := p.Confirm("Continue?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	p := NewLinePrompter(strings.NewReader(""), &bytes.Buffer{})
	_, err := p.Confirm("Continue?", true)
	assert.True(t, errors.Is(err, errors.ErrAborted))
}

func TestSelect(t *testing.T) {
	options := []string{"a-2024-05-01_12-00-00", "b-2024-05-02_12-00-00", "c-2024-05-03_12-00-00"}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"by number", "2\n", "b-2024-05-02_12-00-00"},
		{"by name", "c-2024-05-03_12-00-00\n", "c-2024-05-03_12-00-00"},
		{"default first", "\n", "a-2024-05-01_12-00-00"},
		{"retry out of range", "9\n0\n3\n", "c-2024-05-03_12-00-00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewLinePrompter(strings.NewReader(tt.input), &out)
			got, err := p.Select("Select a backup folder to restore:", options)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "[1] a-2024-05-01_12-00-00")
		})
	}
}

func TestSelect_EmptyAndEOF(t *testing.T) {
	p := NewLinePrompter(strings.NewReader(""), &bytes.Buffer{})

	_, err := p.Select("pick", nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyCatalog))

	_, err = p.Select("pick", []string{"one"})
	assert.True(t, errors.Is(err, errors.ErrAborted))
}

func TestNew_NonTerminalFallsBackToLines(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()

	p := New(f, &bytes.Buffer{})
	_, ok := p.(*LinePrompter)
	assert.True(t, ok)
}

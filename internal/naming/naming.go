// Package naming builds collision-checked backup folder names of the form
// <label>-<timestamp>.
package naming

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/kebairia/mongosnap/internal/errors"
)

const (
	// DefaultLabel replaces a label that is empty after normalization.
	DefaultLabel = "backup"

	// DefaultTimestampFormat renders UTC wall time without ':' or '.'.
	DefaultTimestampFormat = "2006-01-02_15-04-05"
)

var (
	// separators would split the folder name into path segments or put ':'
	// or '.' into it.
	separators = regexp.MustCompile(`[\s/\\:.\x00]+`)
	hyphens    = regexp.MustCompile(`-{2,}`)
)

// Identifier is a label plus the timestamp of the run that created it.
type Identifier struct {
	Label     string
	Timestamp string
}

// Name returns the folder name.
func (id Identifier) Name() string {
	return id.Label + "-" + id.Timestamp
}

// NormalizeLabel trims the label, turns whitespace and path separators into
// single hyphens and lowercases the result. The result is always one path
// segment.
func NormalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	label = separators.ReplaceAllString(label, "-")
	label = hyphens.ReplaceAllString(label, "-")
	label = strings.ToLower(strings.Trim(label, "-"))
	if label == "" {
		return DefaultLabel
	}
	return label
}

// Timestamp renders t in UTC at whole-second precision.
func Timestamp(t time.Time, layout string) string {
	if layout == "" {
		layout = DefaultTimestampFormat
	}
	return t.UTC().Truncate(time.Second).Format(layout)
}

// ValidateLayout rejects timestamp layouts that would put ':' or '.' into a
// folder name or that do not change between seconds.
func ValidateLayout(layout string) error {
	ref := time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC)
	s := ref.Format(layout)
	if strings.ContainsAny(s, ":./\\") {
		return errors.Wrapf(errors.ErrConfig, "timestamp format %q renders %q, which is not filesystem-safe", layout, s)
	}
	if ref.Add(time.Second).Format(layout) == s {
		return errors.Wrapf(errors.ErrConfig, "timestamp format %q does not include seconds", layout)
	}
	return nil
}

// Generator produces identifiers from the current time.
type Generator struct {
	Layout string
	Now    func() time.Time
}

// NewGenerator returns a Generator using the wall clock.
func NewGenerator(layout string) *Generator {
	return &Generator{Layout: layout, Now: time.Now}
}

// Generate returns the identifier for label at the current time. When the
// name is already in existing it returns a *errors.CollisionError and no
// identifier; the caller decides whether to ask for another label.
func (g *Generator) Generate(label string, existing map[string]struct{}) (Identifier, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	id := Identifier{
		Label:     NormalizeLabel(label),
		Timestamp: Timestamp(now(), g.Layout),
	}
	if _, taken := existing[id.Name()]; taken {
		return Identifier{}, &errors.CollisionError{Name: id.Name()}
	}
	return id, nil
}

// ExistingNames returns the names of all entries under root. A missing root
// yields an empty set.
func ExistingNames(root string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, errors.Wrapf(err, "read backup root %q", root)
	}

	names := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		names[e.Name()] = struct{}{}
	}
	return names, nil
}

package prompt

import (
	"io"
	"os"

	"github.com/ktr0731/go-fuzzyfinder"
	"golang.org/x/term"

	"github.com/kebairia/mongosnap/internal/errors"
)

// FuzzyPrompter uses a fuzzy finder for Select and falls back to line input
// for everything else. It needs a terminal.
type FuzzyPrompter struct {
	*LinePrompter
}

// Select opens a fuzzy finder over options. Esc or Ctrl-C aborts.
func (p *FuzzyPrompter) Select(message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.Wrap(errors.ErrEmptyCatalog, "nothing to select")
	}

	idx, err := fuzzyfinder.Find(
		options,
		func(i int) string { return options[i] },
		fuzzyfinder.WithHeader(message),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", errors.ErrAborted
		}
		return "", errors.Wrap(err, "interactive selection failed")
	}
	return options[idx], nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// New returns a FuzzyPrompter when both in and out are terminals and a
// LinePrompter otherwise.
func New(in *os.File, out io.Writer) Prompter {
	line := NewLinePrompter(in, out)
	if f, ok := out.(*os.File); ok && IsTerminal(in) && IsTerminal(f) {
		return &FuzzyPrompter{LinePrompter: line}
	}
	return line
}

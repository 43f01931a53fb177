// Package prompt asks the operator for labels, confirmations and list
// selections. Every prompt blocks until an answer arrives; end of input or
// an aborted finder yields errors.ErrAborted.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/kebairia/mongosnap/internal/errors"
)

// Prompter is the interactive collaborator used by the backup and restore
// workflows.
type Prompter interface {
	// Input asks for free text; an empty answer returns def.
	Input(message, def string) (string, error)
	// Confirm asks a yes/no question; an empty answer returns def.
	Confirm(message string, def bool) (bool, error)
	// Select asks for one of options.
	Select(message string, options []string) (string, error)
}

// LinePrompter reads answers line by line. It works on any reader, which
// makes it the choice for tests and non-terminal stdin.
type LinePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// Ensure LinePrompter satisfies Prompter.
var _ Prompter = (*LinePrompter)(nil)

// NewLinePrompter creates a LinePrompter over r and w.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{reader: bufio.NewReader(r), writer: w}
}

func (p *LinePrompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
			return "", errors.ErrAborted
		}
		return "", errors.Wrap(err, "reading answer")
	}
	return strings.TrimSpace(line), nil
}

func (p *LinePrompter) Input(message, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.writer, "%s (%s): ", message, def)
	} else {
		fmt.Fprintf(p.writer, "%s: ", message)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func (p *LinePrompter) Confirm(message string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.writer, "%s [%s]: ", message, hint)
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(p.writer, "Please answer with 'y' or 'n'.")
		}
	}
}

// Select lists options numbered from 1. The answer may be a number or the
// exact option text; anything else asks again.
func (p *LinePrompter) Select(message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.Wrap(errors.ErrEmptyCatalog, "nothing to select")
	}

	fmt.Fprintln(p.writer, message)
	for i, opt := range options {
		fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, opt)
	}
	for {
		fmt.Fprint(p.writer, "Select [1]: ")
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			return options[0], nil
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		if slices.Contains(options, answer) {
			return answer, nil
		}
		fmt.Fprintf(p.writer, "%q is not a valid choice, enter 1-%d.\n", answer, len(options))
	}
}

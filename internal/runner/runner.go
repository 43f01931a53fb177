// Package runner executes external commands from an argument vector and
// classifies their outcome. Commands never go through a shell.
package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kebairia/mongosnap/internal/catalog"
	"github.com/kebairia/mongosnap/internal/errors"
	"github.com/kebairia/mongosnap/internal/logger"
)

// waitDelay bounds how long Run waits for output pipes after the child is
// killed, in case a grandchild still holds them open.
const waitDelay = 2 * time.Second

// Command is one external program invocation.
type Command struct {
	Name string
	Args []string
	// Env is appended to the current environment.
	Env []string
}

// String renders the command for logs with credentials masked.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		a = catalog.Redact(a)
		if a == "" || strings.ContainsAny(a, " \t\n'\"") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Result is the captured outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// Runner runs commands one at a time.
type Runner struct {
	timeout time.Duration
	stderr  io.Writer
	log     logger.Logger
}

// WithTimeout kills the child after d. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithStderr mirrors the child's stderr to w while it runs.
func WithStderr(w io.Writer) Option {
	return func(r *Runner) {
		r.stderr = w
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// New returns a Runner with no timeout.
func New(opts ...Option) *Runner {
	r := &Runner{log: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd and blocks until it exits.
//
// A zero exit returns the Result and nil. A non-zero exit returns a
// *errors.InvocationError carrying the exit code and captured stderr. When the
// timeout expires the child is killed and the error matches errors.ErrTimeout.
// Run never retries.
func (r *Runner) Run(ctx context.Context, cmd Command) (Result, error) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeoutCause(ctx, r.timeout, errors.ErrTimeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd.Name, cmd.Args...)
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if r.stderr != nil {
		c.Stderr = io.MultiWriter(&stderr, r.stderr)
	}

	r.log.Debug("exec", "command", cmd.String())
	start := time.Now()
	err := c.Run()

	res := Result{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if c.ProcessState != nil {
		res.ExitCode = c.ProcessState.ExitCode()
	}

	if err == nil {
		return res, nil
	}

	if runCtx.Err() != nil && context.Cause(runCtx) == errors.ErrTimeout {
		return res, errors.Wrapf(errors.ErrTimeout, "%s killed after %s", cmd.Name, r.timeout)
	}
	if ctx.Err() != nil {
		return res, errors.Wrapf(ctx.Err(), "%s interrupted", cmd.Name)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, &errors.InvocationError{
			Command:  cmd.Name,
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(res.Stderr),
		}
	}
	return res, &errors.InvocationError{
		Command:  cmd.Name,
		ExitCode: -1,
		Stderr:   err.Error(),
	}
}

// Package errors defines the error taxonomy shared by mongosnap packages and
// maps it onto process exit codes.
//
// Sentinels are checked with [Is]. Typed errors (CollisionError,
// InvalidSelectionError, InvocationError) carry the data a caller needs to
// re-prompt or to report a failure, and match their sentinel through Is.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Exit codes for the CLI.
const (
	ExitSuccess = 0
	// ExitUser covers configuration, validation and operator aborts.
	ExitUser = 1
	// ExitSystem covers failures of the external dump/restore tools and I/O.
	ExitSystem = 2
)

var (
	// ErrConfig indicates a bad path, connection string or config value.
	ErrConfig = errors.New("configuration error")

	// ErrCollision indicates the generated backup name already exists.
	ErrCollision = errors.New("backup name already exists")

	// ErrNotFound indicates the backup root or a backup folder is missing.
	ErrNotFound = errors.New("not found")

	// ErrEmptyCatalog indicates a listing returned no entries.
	ErrEmptyCatalog = errors.New("no backups found")

	// ErrInvalidTarget indicates no dataset name can be derived from the
	// target connection string.
	ErrInvalidTarget = errors.New("invalid target connection string")

	// ErrInvalidSelection indicates the requested dataset is not in the backup.
	ErrInvalidSelection = errors.New("invalid dataset selection")

	// ErrInvocation indicates the external tool exited non-zero or could not start.
	ErrInvocation = errors.New("external command failed")

	// ErrTimeout indicates the external tool was killed after its timeout.
	ErrTimeout = errors.New("external command timed out")

	// ErrAborted indicates the operator cancelled at a prompt.
	ErrAborted = errors.New("aborted by operator")
)

// Re-exported helpers so callers need a single errors import.
var (
	New      = errors.New
	Newf     = errors.Newf
	Wrap     = errors.Wrap
	Wrapf    = errors.Wrapf
	Is       = errors.Is
	As       = errors.As
	WithHint = errors.WithHint
	Mark     = errors.Mark

	GetAllHints = errors.GetAllHints
)

// CollisionError reports a backup name that is already taken.
type CollisionError struct {
	Name string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("a backup named %q already exists", e.Name)
}

// Is matches ErrCollision.
func (e *CollisionError) Is(target error) bool { return target == ErrCollision }

// InvalidSelectionError reports a dataset name that does not exist within the
// chosen backup.
type InvalidSelectionError struct {
	Name      string
	Available []string
}

func (e *InvalidSelectionError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("dataset %q not found in backup", e.Name)
	}
	return fmt.Sprintf("dataset %q not found in backup (available: %v)", e.Name, e.Available)
}

// Is matches ErrInvalidSelection.
func (e *InvalidSelectionError) Is(target error) bool { return target == ErrInvalidSelection }

// InvocationError reports a non-zero exit from an external command.
// ExitCode is -1 when the command could not be started.
type InvocationError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *InvocationError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// Is matches ErrInvocation.
func (e *InvocationError) Is(target error) bool { return target == ErrInvocation }

// ExitError wraps an error with the exit code and an optional suggestion for
// the operator.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewUserError creates an ExitError with ExitUser code.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError creates an ExitError with ExitSystem code.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Classify converts any error from a workflow into an ExitError. Errors that
// already are ExitErrors are returned as-is.
func Classify(err error) *ExitError {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	switch {
	case errors.Is(err, ErrTimeout):
		return NewSystemError(err, "Increase --timeout or check that the database is reachable")
	case errors.Is(err, ErrInvocation):
		return NewSystemError(err, "")
	case errors.Is(err, ErrEmptyCatalog):
		return NewUserError(err, "Run: mongosnap backup")
	case errors.Is(err, ErrNotFound):
		return NewUserError(err, "Check BACKUP_PATH or run: mongosnap backup")
	case errors.Is(err, ErrInvalidTarget):
		return NewUserError(err, "Set NEW_DB_URI to a connection string that names a database")
	case errors.Is(err, ErrConfig),
		errors.Is(err, ErrCollision),
		errors.Is(err, ErrInvalidSelection),
		errors.Is(err, ErrAborted):
		return NewUserError(err, "")
	default:
		return NewSystemError(err, "")
	}
}

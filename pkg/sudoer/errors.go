package sudoer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidOptions      = errors.New("invalid options")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrInvalidCommand      = errors.New("command must not be empty")
	ErrNoExecutable        = errors.New("no escalation executable found")
	ErrSpawn               = errors.New("failed to start escalation executable")
	ErrTermination         = errors.New("failed to terminate process")

	ErrInvalidPID       = errors.New("invalid pid")
	ErrProcessNotFound  = errors.New("process not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// ResolutionError is returned when none of the candidate paths of a strategy
// exists on disk.
type ResolutionError struct {
	// Helper names the family of executables that was looked for, e.g. "polkit".
	Helper     string
	Candidates []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no %s executable found", e.Helper)
}

func (e *ResolutionError) Is(target error) bool {
	return target == ErrNoExecutable
}

// Probed returns the candidate list as a single line, for logs.
func (e *ResolutionError) Probed() string {
	return strings.Join(e.Candidates, ", ")
}

// SpawnError is returned when the resolved executable could not be started.
// The path passed the existence check earlier; it may have disappeared since.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

func (e *SpawnError) Is(target error) bool {
	return target == ErrSpawn
}

// TerminationError is returned by Kill when the process could not be terminated.
type TerminationError struct {
	PID int
	Err error
}

func (e *TerminationError) Error() string {
	return fmt.Sprintf("failed to terminate process %d: %v", e.PID, e.Err)
}

func (e *TerminationError) Unwrap() error {
	return e.Err
}

func (e *TerminationError) Is(target error) bool {
	return target == ErrTermination
}

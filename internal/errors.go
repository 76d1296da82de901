package internal

import (
	"errors"
	"fmt"
)

// ErrSilence is returned by commands that already reported their failure.
var ErrSilence = errors.New("silent error")

// ExitCodeError carries the exit code of an elevated command up to main.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("elevated command exited with code %d", e.Code)
}

//go:build windows

package sudoer

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

const (
	// processExitTimeout bounds the wait for a terminated process to go away, in milliseconds.
	processExitTimeout = 5_000
	// stillActive is the exit code GetExitCodeProcess reports for a running process.
	stillActive = 259
)

func terminate(pid int) error {
	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE|windows.PROCESS_QUERY_LIMITED_INFORMATION|windows.SYNCHRONIZE, false, uint32(pid))
	if err != nil {
		switch {
		case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
			return fmt.Errorf("%w: %v", ErrProcessNotFound, err)
		case errors.Is(err, windows.ERROR_ACCESS_DENIED):
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		default:
			return fmt.Errorf("open process: %w", err)
		}
	}
	defer windows.CloseHandle(handle) //nolint:errcheck // ignore error on close

	if err := windows.TerminateProcess(handle, 1); err != nil {
		return terminateFailure(err, func() (uint32, error) {
			var code uint32
			err := windows.GetExitCodeProcess(handle, &code)
			return code, err
		})
	}

	event, err := windows.WaitForSingleObject(handle, processExitTimeout)
	if err != nil {
		return fmt.Errorf("waiting for process exit: %w", err)
	}
	if event == uint32(windows.WAIT_TIMEOUT) {
		return fmt.Errorf("process did not exit within %dms", processExitTimeout)
	}
	return nil
}

// terminateFailure classifies a TerminateProcess error. The call is also
// denied for a process that has already exited while a handle to it is
// still open somewhere, so the exit code decides between the two.
func terminateFailure(err error, exitCode func() (uint32, error)) error {
	if !errors.Is(err, windows.ERROR_ACCESS_DENIED) {
		return fmt.Errorf("terminate process: %w", err)
	}
	if code, codeErr := exitCode(); codeErr == nil && code != stillActive {
		return fmt.Errorf("%w: exited with code %d", ErrProcessNotFound, code)
	}
	return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
}

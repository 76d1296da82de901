//go:build unix

package sudoer

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

func terminate(pid int) error {
	err := unix.Kill(pid, unix.SIGTERM)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		return fmt.Errorf("%w: %v", ErrProcessNotFound, err)
	case errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	default:
		return err
	}
}

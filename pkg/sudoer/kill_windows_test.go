//go:build windows

package sudoer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/windows"
)

func Test_terminateFailure(t *testing.T) {
	t.Parallel()

	exited := func() (uint32, error) { return 0, nil }
	running := func() (uint32, error) { return stillActive, nil }
	unknown := func() (uint32, error) { return 0, windows.ERROR_INVALID_HANDLE }

	tests := []struct {
		name     string
		err      error
		exitCode func() (uint32, error)
		want     error
	}{
		{name: "denied on an exited process", err: windows.ERROR_ACCESS_DENIED, exitCode: exited, want: ErrProcessNotFound},
		{name: "denied on a running process", err: windows.ERROR_ACCESS_DENIED, exitCode: running, want: ErrPermissionDenied},
		{name: "denied, exit code unreadable", err: windows.ERROR_ACCESS_DENIED, exitCode: unknown, want: ErrPermissionDenied},
		{name: "other failure", err: windows.ERROR_INVALID_HANDLE, exitCode: exited, want: windows.ERROR_INVALID_HANDLE},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := terminateFailure(tc.err, tc.exitCode)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

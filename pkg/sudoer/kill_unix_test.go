//go:build unix

package sudoer

import (
	"errors"
	"os/exec"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSudoer_Kill(t *testing.T) {
	t.Parallel()

	s := newTestSudoer(t, "mock")

	t.Run("running process", func(t *testing.T) {
		cmd := exec.Command("sleep", "30")
		require.NoError(t, cmd.Start())

		require.NoError(t, s.Kill(cmd.Process.Pid))

		err := cmd.Wait()
		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr), "sleep should have been interrupted, got %v", err)
		status, ok := exitErr.Sys().(syscall.WaitStatus)
		require.True(t, ok)
		assert.True(t, status.Signaled())
		assert.Equal(t, syscall.SIGTERM, status.Signal())
	})

	t.Run("exited process", func(t *testing.T) {
		cmd := exec.Command("true")
		require.NoError(t, cmd.Run())

		err := s.Kill(cmd.Process.Pid)
		require.ErrorIs(t, err, ErrTermination)
		assert.ErrorIs(t, err, ErrProcessNotFound)
	})

	t.Run("invalid pid", func(t *testing.T) {
		err := s.Kill(0)
		require.ErrorIs(t, err, ErrTermination)
		assert.ErrorIs(t, err, ErrInvalidPID)
	})
}

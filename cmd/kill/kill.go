package kill

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/caarlos0/log"
	"github.com/loicsikidi/sudoer/internal"
	"github.com/loicsikidi/sudoer/pkg/sudoer"
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kill PID",
		Short: "terminate a process started by an elevated command",
		Long: `Request the termination of a process by pid.

Exit codes:
  0 - termination was requested
  1 - the pid is invalid, the process is gone or may not be signalled`,
		Example: `  sudoer kill 4242`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	return cmd
}

func run(arg string) error {
	pid, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid pid %q: %w", arg, err)
	}

	logger := log.New(os.Stderr)
	if err := sudoer.Terminate(pid); err != nil {
		entry := logger.WithField("pid", pid)
		switch {
		case errors.Is(err, sudoer.ErrProcessNotFound):
			entry.Error("no such process")
		case errors.Is(err, sudoer.ErrPermissionDenied):
			entry.Error("not allowed to terminate process")
		default:
			entry.WithError(err).Error("failed to terminate process")
		}
		return internal.ErrSilence
	}

	logger.WithField("pid", pid).Info("termination requested")
	return nil
}

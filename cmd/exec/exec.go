package exec

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caarlos0/log"
	"github.com/loicsikidi/sudoer/internal"
	"github.com/loicsikidi/sudoer/internal/logutil"
	"github.com/loicsikidi/sudoer/internal/output"
	"github.com/loicsikidi/sudoer/internal/privilege"
	"github.com/loicsikidi/sudoer/pkg/sudoer"
	"github.com/spf13/cobra"
)

type options struct {
	name    string
	icon    string
	binDir  string
	dir     string
	env     []string
	verbose bool
}

func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "exec --name NAME [flags] -- command [args...]",
		Short: "run a command with administrative privileges",
		Long: `Run a command with administrative privileges, letting the operating
system prompt the user through its native dialog (polkit agent or pkexec
on Linux, administrator prompt on macOS, UAC on Windows).

The output of the command is printed once it has exited.

Exit codes:
  0   - command succeeded
  N   - exit code of the elevated command
  1   - no escalation executable found or the command could not be started`,
		Example: `  # List a root-only directory
  sudoer exec --name "My App" -- ls /root

  ## Pass extra environment to the elevated command
  sudoer exec --name "My App" --env MODE=repair -- /opt/app/fix.sh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), cmd.ErrOrStderr(), args, opts)
		},
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Name shown in the privilege prompt")
	cmd.Flags().StringVar(&opts.icon, "icon", "", "Icon shown by the macOS applet prompt")
	cmd.Flags().StringVar(&opts.binDir, "bin-dir", "", "Directory holding the bundled helpers (default: <install dir>/bin)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Working directory of the elevated command")
	cmd.Flags().StringArrayVarP(&opts.env, "env", "e", nil, "Environment entry KEY=VALUE for the elevated command (repeatable)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func run(out, errOut io.Writer, command []string, opts *options) error {
	logger := log.New(errOut)
	if opts.verbose {
		logger.Level = log.DebugLevel
	}

	env, err := parseEnv(opts.env)
	if err != nil {
		return err
	}

	if privilege.IsElevated() {
		logger.Warn("already running with elevated privileges, the prompt may not be shown")
	}

	s, err := sudoer.New(sudoer.Options{
		Name:   opts.name,
		Icon:   opts.icon,
		BinDir: opts.binDir,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to set up elevation: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.WithError(err).Warn("failed to clean up")
		}
	}()

	start := time.Now()
	logger.WithField("name", opts.name).Info("requesting elevated privileges")

	var result sudoer.Result
	execOpts := sudoer.ExecOptions{
		Env: env,
		Dir: opts.dir,
		OnStart: func(pid int) {
			logger.WithField("pid", pid).Debug("escalation executable started")
		},
	}
	if err := s.Exec(command, execOpts, func(r sudoer.Result) { result = r }); err != nil {
		var resolutionErr *sudoer.ResolutionError
		if errors.As(err, &resolutionErr) {
			logger.WithField("probed", resolutionErr.Probed()).Error(err.Error())
			return internal.ErrSilence
		}
		return fmt.Errorf("failed to run elevated command: %w", err)
	}
	logutil.LogDuration(logger, start)

	return report(out, errOut, command, result)
}

// report writes what the elevated command printed followed by its status,
// and hands a non-zero exit code up as an *internal.ExitCodeError.
func report(out, errOut io.Writer, command []string, result sudoer.Result) error {
	_, _ = out.Write(result.Stdout)
	_, _ = errOut.Write(result.Stderr)
	output.PrintStatus(errOut, strings.Join(command, " "), result.ExitCode)

	if result.ExitCode != 0 {
		return &internal.ExitCodeError{Code: result.ExitCode}
	}
	return nil
}

func parseEnv(entries []string) (map[string]string, error) {
	env := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid environment entry %q: expected KEY=VALUE", entry)
		}
		env[key] = value
	}
	return env, nil
}

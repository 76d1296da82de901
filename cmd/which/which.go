package which

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/log"
	"github.com/loicsikidi/sudoer/internal"
	"github.com/loicsikidi/sudoer/internal/output"
	"github.com/loicsikidi/sudoer/pkg/sudoer"
	"github.com/spf13/cobra"
)

type options struct {
	binDir  string
	verbose bool
}

func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "which",
		Short: "show which escalation executable would be used",
		Long: `Probe the escalation executables known for this platform, in order of
preference, and show which one "sudoer exec" would use.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), opts)
		},
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&opts.binDir, "bin-dir", "", "Directory holding the bundled helpers (default: <install dir>/bin)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

func run(out io.Writer, opts *options) error {
	logger := log.New(os.Stderr)
	if opts.verbose {
		logger.Level = log.DebugLevel
	}

	s, err := sudoer.New(sudoer.Options{
		Name:   "sudoer",
		BinDir: opts.binDir,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to set up elevation: %w", err)
	}
	defer s.Close() //nolint:errcheck // nothing was written to the scratch directory

	if err := printCandidates(out, s); err != nil {
		var resolutionErr *sudoer.ResolutionError
		if !errors.As(err, &resolutionErr) {
			return err
		}
		logger.Error(err.Error())
		return internal.ErrSilence
	}
	return nil
}

// printCandidates writes one line per candidate and returns the resolution
// error, if any.
func printCandidates(out io.Writer, s sudoer.Strategy) error {
	selected, err := s.Binary()
	if err != nil && !errors.Is(err, sudoer.ErrNoExecutable) {
		return err
	}

	for _, candidate := range s.Candidates() {
		output.PrintCandidate(out, candidate, s.Exists(candidate), candidate == selected)
	}
	return err
}

package version

import (
	"fmt"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"
)

// NewCommand creates the version command.
func NewCommand(info goversion.Info) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:           "version",
		Short:         "display the version of sudoer",
		Long:          `Display version, revision, build date and builder of the sudoer binary.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return nil
			}
			out, err := info.JSONString()
			if err != nil {
				return fmt.Errorf("failed to encode version: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")

	return cmd
}

package main

import (
	"errors"
	"os"

	goversion "github.com/caarlos0/go-version"
	"github.com/caarlos0/log"
	execCmd "github.com/loicsikidi/sudoer/cmd/exec"
	killCmd "github.com/loicsikidi/sudoer/cmd/kill"
	versionCmd "github.com/loicsikidi/sudoer/cmd/version"
	whichCmd "github.com/loicsikidi/sudoer/cmd/which"
	"github.com/loicsikidi/sudoer/internal"
	"github.com/spf13/cobra"
)

const website = "https://github.com/loicsikidi/sudoer"

var (
	version = ""
	builtBy = ""
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sudoer",
		Short: "run commands with administrative privileges through the OS prompt",
		Long: `sudoer runs a command with administrative privileges, delegating the
password or consent prompt to the operating system: a polkit agent or
pkexec on Linux, the administrator prompt on macOS and UAC on Windows.`,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(execCmd.NewCommand())
	rootCmd.AddCommand(whichCmd.NewCommand())
	rootCmd.AddCommand(killCmd.NewCommand())
	rootCmd.AddCommand(versionCmd.NewCommand(buildVersion(version, builtBy)))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var exitErr *internal.ExitCodeError
	switch {
	case errors.As(err, &exitErr):
		if exitErr.Code < 0 {
			// killed by a signal or never reported a status
			return 1
		}
		return exitErr.Code
	case errors.Is(err, internal.ErrSilence):
		return 1
	default:
		log.WithError(err).Error("command failed")
		return 1
	}
}

func buildVersion(version, builtBy string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("sudoer", "Administrative privileges, through the OS prompt.", website),
		func(i *goversion.Info) {
			if version != "" {
				i.GitVersion = version
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}

//go:build windows

package sudoer

import (
	"fmt"
	"os"

	"github.com/loicsikidi/sudoer/internal/windowsexec"
)

// runAsAdministrator starts cmd through the UAC prompt and waits for it.
func runAsAdministrator(cmd Command, onStart func(pid int)) (int, error) {
	dir := cmd.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return -1, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	params := make([]string, 0, len(cmd.Args))
	for _, arg := range cmd.Args {
		params = append(params, quoteArg(arg))
	}

	return windowsexec.RunAsAndWait(cmd.Path, dir, params, onStart)
}

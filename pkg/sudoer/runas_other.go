//go:build !windows

package sudoer

func runAsAdministrator(cmd Command, onStart func(pid int)) (int, error) {
	return -1, ErrUnsupportedPlatform
}

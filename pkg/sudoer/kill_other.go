//go:build !unix && !windows

package sudoer

func terminate(pid int) error {
	return ErrUnsupportedPlatform
}

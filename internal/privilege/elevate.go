//go:build !windows

package privilege

import "os"

// IsElevated reports whether the current process already runs as root.
func IsElevated() bool {
	return os.Geteuid() == 0
}

package sudoer

import "fmt"

// Strategy is the platform specific way of finding an escalation executable
// and running a command through it.
//
// Implementations:
//   - *Linux: gksudo or pkexec
//   - *Darwin: osascript or a bundled applet
//   - *Windows: UAC through cmd.exe or a bundled elevate.exe
type Strategy interface {
	// Candidates lists the escalation executables in order of preference.
	Candidates() []string
	// Binary returns the first candidate that exists on disk.
	Binary() (string, error)
	// Exists is the existence check Binary applies to each candidate.
	Exists(path string) bool
	// Exec runs command elevated and blocks until it has exited.
	Exec(command []string, opts ExecOptions, callback Callback) error
	Kill(pid int) error
	Close() error

	sudoer() *Sudoer
}

// New returns the strategy matching the host platform.
func New(opts Options) (Strategy, error) {
	switch platform := DetectPlatform(); platform {
	case PlatformLinux:
		return NewLinux(opts)
	case PlatformDarwin:
		return NewDarwin(opts)
	case PlatformWindows:
		return NewWindows(opts)
	default:
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, ErrUnsupportedPlatform)
	}
}

func (s *Sudoer) sudoer() *Sudoer {
	return s
}

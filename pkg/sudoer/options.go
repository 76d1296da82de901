package sudoer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/log"
)

// Options configures one elevation session.
type Options struct {
	// Name is shown verbatim in the OS prompt. Required.
	Name string
	// Icon is an optional path to an icon used by the macOS applet.
	Icon string
	// BinDir is the directory holding the bundled helpers.
	// Defaults to <directory of the running executable>/../bin.
	BinDir string
	Logger *log.Logger
}

func (o *Options) CheckAndSetDefaults() error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidOptions)
	}
	if o.BinDir == "" {
		dir, err := defaultBinDir()
		if err != nil {
			return fmt.Errorf("%w: cannot locate bundled helpers: %v", ErrInvalidOptions, err)
		}
		o.BinDir = dir
	}
	if o.Logger == nil {
		o.Logger = log.New(os.Stderr)
	}
	return nil
}

func defaultBinDir() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Clean(filepath.Join(filepath.Dir(executable), "..", "bin")), nil
}

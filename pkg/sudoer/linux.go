package sudoer

import (
	"path/filepath"
)

const (
	gksudoPath = "/usr/bin/gksudo"
	pkexecPath = "/usr/bin/pkexec"

	defaultDisplay = ":0"
)

// Linux elevates through a graphical polkit agent (gksudo) or pkexec.
type Linux struct {
	*Sudoer
}

func NewLinux(opts Options) (*Linux, error) {
	s, err := newSudoer(opts)
	if err != nil {
		return nil, err
	}
	return &Linux{Sudoer: s}, nil
}

// Candidates prefers the system gksudo over pkexec, which may have no agent
// to talk to, and the bundled gksudo last.
func (l *Linux) Candidates() []string {
	return []string{
		gksudoPath,
		pkexecPath,
		filepath.Join(l.options.BinDir, "gksudo"),
	}
}

func (l *Linux) Binary() (string, error) {
	return l.resolve("polkit", l.Candidates())
}

func (l *Linux) Exec(command []string, opts ExecOptions, callback Callback) error {
	if len(command) == 0 {
		return ErrInvalidCommand
	}

	binary, err := l.Binary()
	if err != nil {
		return err
	}

	cmd := l.command(binary, command, opts)
	l.logger.WithField("binary", binary).
		WithField("args", cmd.Args).
		Debug("running elevated command")

	result, err := l.run(cmd, opts.OnStart)
	if err != nil {
		return err
	}

	deliver(callback, result)
	return nil
}

func (l *Linux) command(binary string, command []string, opts ExecOptions) Command {
	env := l.environment(opts.Env)
	if _, ok := env["DISPLAY"]; !ok {
		// polkit agents need an X display to draw the prompt
		env["DISPLAY"] = defaultDisplay
	}

	var args []string
	if filepath.Base(binary) == "pkexec" {
		args = []string{"--disable-internal-agent"}
	} else {
		args = []string{
			"--preserve-env",
			"--sudo-mode",
			"--description=" + l.options.Name,
		}
	}

	return Command{
		Path: binary,
		Args: append(args, command...),
		Env:  env,
		Dir:  opts.Dir,
	}
}

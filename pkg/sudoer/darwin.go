package sudoer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	osascriptPath = "/usr/bin/osascript"
	openPath      = "/usr/bin/open"
	appletName    = "applet.app"
)

// osascript reports the status of a failed `do shell script` as "(N)" at the
// end of its error message.
var shellScriptStatus = regexp.MustCompile(`\((-?\d+)\)\s*$`)

// Darwin elevates through the AppleScript administrator prompt, or through a
// bundled applet when osascript is not available.
type Darwin struct {
	*Sudoer

	now func() time.Time
}

func NewDarwin(opts Options) (*Darwin, error) {
	s, err := newSudoer(opts)
	if err != nil {
		return nil, err
	}
	return &Darwin{Sudoer: s, now: time.Now}, nil
}

func (d *Darwin) Candidates() []string {
	return []string{
		osascriptPath,
		filepath.Join(d.options.BinDir, appletName),
	}
}

func (d *Darwin) Binary() (string, error) {
	return d.resolve("osascript or applet", d.Candidates())
}

func (d *Darwin) Exec(command []string, opts ExecOptions, callback Callback) error {
	if len(command) == 0 {
		return ErrInvalidCommand
	}

	binary, err := d.Binary()
	if err != nil {
		return err
	}

	var result Result
	if filepath.Base(binary) == appletName {
		result, err = d.execApplet(binary, command, opts)
	} else {
		result, err = d.execOsascript(binary, command, opts)
	}
	if err != nil {
		return err
	}

	deliver(callback, result)
	return nil
}

func (d *Darwin) execOsascript(binary string, command []string, opts ExecOptions) (Result, error) {
	cmd := d.osascriptCommand(binary, command, opts)
	d.logger.WithField("binary", binary).Debug("running elevated command")

	result, err := d.run(cmd, opts.OnStart)
	if err != nil {
		return Result{}, err
	}
	if result.ExitCode != 0 {
		if m := shellScriptStatus.FindSubmatch(result.Stderr); m != nil {
			if code, err := strconv.Atoi(string(m[1])); err == nil {
				result.ExitCode = code
			}
		}
	}
	return result, nil
}

func (d *Darwin) osascriptCommand(binary string, command []string, opts ExecOptions) Command {
	script := "do shell script " + appleScriptString(shellCommand(command, opts)) +
		" with prompt " + appleScriptString(d.options.Name) +
		" with administrator privileges"

	return Command{
		Path: binary,
		Args: []string{"-e", script},
		Env:  d.environment(opts.Env),
		Dir:  opts.Dir,
	}
}

// execApplet copies the bundled applet into a session directory, drops the
// command in as its script and waits for the applet to run it. The script
// leaves its output next to the applet copy.
func (d *Darwin) execApplet(applet string, command []string, opts ExecOptions) (Result, error) {
	shell := shellCommand(command, opts)
	dir, err := d.sessionDir([]byte(fmt.Sprintf("%d\n%s", d.now().UnixNano(), shell)))
	if err != nil {
		return Result{}, err
	}

	app := filepath.Join(dir, appBundleName(d.options.Name))
	if err := os.CopyFS(app, os.DirFS(applet)); err != nil {
		return Result{}, fmt.Errorf("failed to copy applet: %w", err)
	}

	resources := filepath.Join(app, "Contents", "Resources")
	if err := os.MkdirAll(resources, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to prepare applet: %w", err)
	}
	script := strings.Join([]string{
		"#!/bin/sh",
		shell + " > " + shellQuote(filepath.Join(dir, "stdout")) + " 2> " + shellQuote(filepath.Join(dir, "stderr")),
		"echo $? > " + shellQuote(filepath.Join(dir, "code")),
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(resources, "script"), []byte(script), 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to write applet script: %w", err)
	}

	if d.options.Icon != "" {
		icon, err := os.ReadFile(d.options.Icon)
		if err != nil {
			return Result{}, fmt.Errorf("failed to read icon: %w", err)
		}
		if err := os.WriteFile(filepath.Join(resources, "applet.icns"), icon, 0o644); err != nil {
			return Result{}, fmt.Errorf("failed to install icon: %w", err)
		}
	}

	cmd := Command{
		Path: openPath,
		Args: []string{"-n", "-W", app},
		Env:  d.environment(opts.Env),
		Dir:  opts.Dir,
	}
	d.logger.WithField("applet", app).Debug("running elevated command")

	launched, err := d.run(cmd, opts.OnStart)
	if err != nil {
		return Result{}, err
	}

	return readSessionOutput(dir, launched)
}

// readSessionOutput collects what a detached elevated script wrote into dir.
// A missing status file means the script never ran, usually because the
// prompt was dismissed; the launcher's own output is returned then.
func readSessionOutput(dir string, launched Result) (Result, error) {
	status, err := os.ReadFile(filepath.Join(dir, "code"))
	if errors.Is(err, fs.ErrNotExist) {
		if launched.ExitCode == 0 {
			launched.ExitCode = 1
		}
		return launched, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to read exit status: %w", err)
	}
	code, err := strconv.Atoi(strings.TrimSpace(string(status)))
	if err != nil {
		return Result{}, fmt.Errorf("malformed exit status %q: %w", status, err)
	}

	stdout, err := readOptional(filepath.Join(dir, "stdout"))
	if err != nil {
		return Result{}, err
	}
	stderr, err := readOptional(filepath.Join(dir, "stderr"))
	if err != nil {
		return Result{}, err
	}

	return Result{Stdout: stdout, Stderr: stderr, ExitCode: code}, nil
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// shellCommand renders command for /bin/sh, exporting the caller's
// environment overrides through env(1).
func shellCommand(command []string, opts ExecOptions) string {
	var parts []string
	if len(opts.Env) > 0 {
		parts = append(parts, "/usr/bin/env")
		for _, entry := range JoinEnv(opts.Env) {
			parts = append(parts, shellQuote(entry))
		}
	}
	for _, token := range command {
		parts = append(parts, shellQuote(token))
	}

	line := strings.Join(parts, " ")
	if opts.Dir != "" {
		line = "cd " + shellQuote(opts.Dir) + " && " + line
	}
	return line
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

func appleScriptString(s string) string {
	return EncloseDoubleQuotes(EscapeDoubleQuotes(strings.ReplaceAll(s, `\`, `\\`)))
}

func appBundleName(name string) string {
	return strings.NewReplacer("/", "-", ":", "-").Replace(name) + ".app"
}

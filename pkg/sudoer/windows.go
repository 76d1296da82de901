package sudoer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	elevateName    = "elevate.exe"
	batchName      = "execute.bat"
	defaultSysRoot = `C:\Windows`
)

// Windows elevates through the UAC prompt, either by asking the shell to
// "runas" cmd.exe or through a bundled elevate.exe.
type Windows struct {
	*Sudoer

	now   func() time.Time
	runAs func(cmd Command, onStart func(pid int)) (int, error)
}

func NewWindows(opts Options) (*Windows, error) {
	s, err := newSudoer(opts)
	if err != nil {
		return nil, err
	}
	return &Windows{Sudoer: s, now: time.Now, runAs: runAsAdministrator}, nil
}

func (w *Windows) Candidates() []string {
	return []string{
		w.shellPath(),
		filepath.Join(w.options.BinDir, elevateName),
	}
}

func (w *Windows) Binary() (string, error) {
	return w.resolve("UAC", w.Candidates())
}

func (w *Windows) Exec(command []string, opts ExecOptions, callback Callback) error {
	if len(command) == 0 {
		return ErrInvalidCommand
	}

	binary, err := w.Binary()
	if err != nil {
		return err
	}

	dir, err := w.sessionDir([]byte(fmt.Sprintf("%d\n%s", w.now().UnixNano(), strings.Join(command, "\x00"))))
	if err != nil {
		return err
	}
	batch, err := w.batchScript(dir, command, opts)
	if err != nil {
		return err
	}
	batchPath := filepath.Join(dir, batchName)
	if err := os.WriteFile(batchPath, []byte(batch), 0o600); err != nil {
		return fmt.Errorf("failed to write batch file: %w", err)
	}

	w.logger.WithField("binary", binary).
		WithField("batch", batchPath).
		Debug("running elevated command")

	var launched Result
	if strings.EqualFold(filepath.Base(binary), elevateName) {
		launched, err = w.run(Command{
			Path: binary,
			Args: []string{"-wait", batchPath},
			Env:  w.environment(opts.Env),
			Dir:  opts.Dir,
		}, opts.OnStart)
		if err != nil {
			return err
		}
	} else {
		cmd := Command{Path: binary, Args: []string{"/d", "/c", batchPath}, Dir: opts.Dir}
		code, err := w.runAs(cmd, opts.OnStart)
		if err != nil {
			return &SpawnError{Path: binary, Err: err}
		}
		launched = Result{ExitCode: code}
	}

	result, err := readSessionOutput(dir, launched)
	if err != nil {
		return err
	}

	deliver(callback, result)
	return nil
}

// batchScript renders command as a batch file that leaves its output and
// exit status in dir. Every caller supplied token reaches the command
// verbatim: cmd.exe sees no unescaped metacharacter and no expandable %.
func (w *Windows) batchScript(dir string, command []string, opts ExecOptions) (string, error) {
	for _, value := range append(append([]string{opts.Dir}, command...), JoinEnv(opts.Env)...) {
		if strings.ContainsAny(value, "\r\n\x00") {
			return "", fmt.Errorf("%w: %q cannot be written to a batch file", ErrInvalidCommand, value)
		}
	}

	lines := []string{"@echo off", "setlocal DisableDelayedExpansion"}
	for _, key := range sortedKeys(opts.Env) {
		if key == "" || strings.Contains(key, "=") {
			return "", fmt.Errorf("%w: invalid environment name %q", ErrInvalidCommand, key)
		}
		lines = append(lines, "set "+batchEscape(key)+"="+batchEscape(opts.Env[key]))
	}
	if opts.Dir != "" {
		lines = append(lines, "cd /d "+batchQuote(opts.Dir))
	}

	program, err := batchProgram(command[0])
	if err != nil {
		return "", err
	}
	tokens := []string{program}
	for _, arg := range command[1:] {
		tokens = append(tokens, batchEscape(quoteArg(arg)))
	}

	lines = append(lines,
		strings.Join(tokens, " ")+
			" > "+batchQuote(dir+`\stdout`)+
			" 2> "+batchQuote(dir+`\stderr`),
		"set SUDOER_STATUS=%errorlevel%",
		">"+batchQuote(dir+`\code`)+" echo %SUDOER_STATUS%",
		"exit /b %SUDOER_STATUS%",
		"",
	)
	return strings.Join(lines, "\r\n"), nil
}

// batchProgram renders the command name. It stays bare when possible so
// that builtins such as echo resolve; a quoted name is looked up on disk.
func batchProgram(name string) (string, error) {
	if strings.Contains(name, `"`) {
		return "", fmt.Errorf("%w: program %q contains a double quote", ErrInvalidCommand, name)
	}
	if name == "" || strings.ContainsAny(name, " \t&|<>()^,;=") {
		return batchQuote(name), nil
	}
	return strings.ReplaceAll(name, "%", "%%"), nil
}

// batchQuote encloses s in double quotes, inside which only % still expands.
func batchQuote(s string) string {
	return EncloseDoubleQuotes(strings.ReplaceAll(s, "%", "%%"))
}

// batchEscape makes s literal on a batch line outside of double quotes.
// Quotes are escaped too so that cmd.exe never enters a quoted region.
func batchEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '%':
			b.WriteString("%%")
		case '^', '&', '|', '<', '>', '(', ')', '"':
			b.WriteByte('^')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// quoteArg quotes s following the rules CommandLineToArgvW uses to split a
// command line back into arguments.
func quoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"") {
		return s
	}

	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			slashes++
		case '"':
			b.WriteString(strings.Repeat(`\`, slashes+1))
			slashes = 0
		default:
			slashes = 0
		}
		b.WriteByte(s[i])
	}
	b.WriteString(strings.Repeat(`\`, slashes))
	b.WriteByte('"')
	return b.String()
}

func (w *Windows) shellPath() string {
	root := w.environment(nil)["SystemRoot"]
	if root == "" {
		root = defaultSysRoot
	}
	return filepath.Join(root, "System32", "cmd.exe")
}

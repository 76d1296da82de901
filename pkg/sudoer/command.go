package sudoer

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
)

// Command is the fully built invocation of an escalation executable.
type Command struct {
	Path string
	Args []string
	Env  map[string]string
	Dir  string
}

// Argv returns the path followed by the arguments.
func (c Command) Argv() []string {
	return append([]string{c.Path}, c.Args...)
}

// Environ returns the environment as KEY=VALUE entries.
func (c Command) Environ() []string {
	return JoinEnv(c.Env)
}

// Result is what the escalated command produced. A non-zero ExitCode means the
// command (or the prompt) failed; the caller decides what to do with it.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ExecOptions configures a single Exec call.
type ExecOptions struct {
	// Env entries override the host environment for the child.
	Env map[string]string
	// Dir is the working directory of the child. Empty means the current one.
	Dir string
	// OnStart, when set, receives the pid of the escalation executable right
	// after it has been started.
	OnStart func(pid int)
}

// Callback receives the result of a completed Exec, exactly once.
type Callback func(Result)

func deliver(callback Callback, result Result) {
	if callback != nil {
		callback(result)
	}
}

func runCommand(c Command, onStart func(pid int)) (Result, error) {
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Env = c.Environ()
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{}, &SpawnError{Path: c.Path, Err: err}
	}
	if onStart != nil {
		onStart(cmd.Process.Pid)
	}

	exitCode := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("failed waiting for %q: %w", c.Path, err)
		}
		exitCode = exitErr.ExitCode()
	}

	return Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
	}, nil
}

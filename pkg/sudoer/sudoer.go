package sudoer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caarlos0/log"
)

const (
	hashNamespace = "sudoer"
	hashLength    = 32
)

// Sudoer holds what every platform strategy shares: the session options, the
// detected host platform and a private scratch directory.
type Sudoer struct {
	options  Options
	platform Platform
	tempDir  string
	logger   *log.Logger

	exists  func(path string) bool
	environ func() []string
	run     func(cmd Command, onStart func(pid int)) (Result, error)
}

func newSudoer(opts Options) (*Sudoer, error) {
	if err := opts.CheckAndSetDefaults(); err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "sudoer-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	return &Sudoer{
		options:  opts,
		platform: DetectPlatform(),
		tempDir:  tempDir,
		logger:   opts.Logger,
		exists:   fileExists,
		environ:  os.Environ,
		run:      runCommand,
	}, nil
}

// Options returns a copy of the session options.
func (s *Sudoer) Options() Options {
	return s.options
}

// Platform returns the host platform detected at construction.
func (s *Sudoer) Platform() Platform {
	return s.platform
}

// TempDir returns the scratch directory owned by this instance.
func (s *Sudoer) TempDir() string {
	return s.tempDir
}

// Close removes the scratch directory.
func (s *Sudoer) Close() error {
	if err := os.RemoveAll(s.tempDir); err != nil {
		return fmt.Errorf("failed to remove scratch directory: %w", err)
	}
	return nil
}

// Hash derives the session identifier from the namespace, the session name
// and the hex encoding of buffer. Same inputs always give the same output.
func (s *Sudoer) Hash(buffer []byte) string {
	h := sha256.New()
	for _, part := range []string{hashNamespace, s.options.Name, hex.EncodeToString(buffer)} {
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))[:hashLength]
}

// Kill sends a termination request to pid. It never succeeds silently: an
// invalid, exited or foreign pid yields a *TerminationError.
func (s *Sudoer) Kill(pid int) error {
	if err := Terminate(pid); err != nil {
		return err
	}
	s.logger.WithField("pid", pid).Debug("termination requested")
	return nil
}

// Terminate is Kill without a session, for callers that only hold a pid.
func Terminate(pid int) error {
	if pid <= 0 {
		return &TerminationError{PID: pid, Err: ErrInvalidPID}
	}
	if err := terminate(pid); err != nil {
		return &TerminationError{PID: pid, Err: err}
	}
	return nil
}

// JoinEnv returns one KEY=VALUE entry per key, sorted by key.
func JoinEnv(env map[string]string) []string {
	entries := make([]string, 0, len(env))
	for _, key := range sortedKeys(env) {
		entries = append(entries, key+"="+env[key])
	}
	return entries
}

func sortedKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// EscapeDoubleQuotes prefixes every double quote with a backslash.
func EscapeDoubleQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// EncloseDoubleQuotes wraps s in a single pair of double quotes.
func EncloseDoubleQuotes(s string) string {
	return `"` + s + `"`
}

// Exists reports whether path is present, using the same check as Binary.
func (s *Sudoer) Exists(path string) bool {
	return s.exists(path)
}

// resolve checks candidates in order and returns the first one that exists.
func (s *Sudoer) resolve(helper string, candidates []string) (string, error) {
	for _, candidate := range candidates {
		if s.Exists(candidate) {
			s.logger.WithField("path", candidate).Debug("escalation executable found")
			return candidate, nil
		}
		s.logger.WithField("path", candidate).Debug("escalation executable missing")
	}
	return "", &ResolutionError{Helper: helper, Candidates: candidates}
}

// environment copies the host environment and applies overrides on top.
func (s *Sudoer) environment(overrides map[string]string) map[string]string {
	env := make(map[string]string)
	for _, entry := range s.environ() {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			continue
		}
		env[key] = value
	}
	for key, value := range overrides {
		env[key] = value
	}
	return env
}

// sessionDir creates the per-invocation directory named after Hash(buffer).
func (s *Sudoer) sessionDir(buffer []byte) (string, error) {
	dir := filepath.Join(s.tempDir, s.Hash(buffer))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}
	return dir, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

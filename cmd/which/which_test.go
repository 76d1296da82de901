package which

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caarlos0/log"
	"github.com/loicsikidi/sudoer/pkg/sudoer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()

	require.NotNil(t, cmd.Flags().Lookup("bin-dir"))
	require.NotNil(t, cmd.Flags().Lookup("verbose"))
	assert.NoError(t, cmd.Args(cmd, nil))
	assert.Error(t, cmd.Args(cmd, []string{"extra"}))
}

func Test_printCandidates(t *testing.T) {
	binDir := t.TempDir()
	bundled := filepath.Join(binDir, "gksudo")
	require.NoError(t, os.WriteFile(bundled, []byte("#!/bin/sh\n"), 0o755))

	s, err := sudoer.NewLinux(sudoer.Options{Name: "mock", BinDir: binDir, Logger: log.New(io.Discard)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var buf bytes.Buffer
	require.NoError(t, printCandidates(&buf, s))

	selected, err := s.Binary()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	candidates := s.Candidates()
	require.Len(t, lines, len(candidates))
	for i, candidate := range candidates {
		line := lines[i]
		assert.Contains(t, line, candidate)
		switch {
		case candidate == selected:
			assert.Contains(t, line, "[USE]")
		case s.Exists(candidate):
			assert.Contains(t, line, "[FOUND]")
		default:
			assert.Contains(t, line, "[MISSING]")
		}
	}
	assert.NotContains(t, lines[len(lines)-1], "[MISSING]", "the bundled helper exists")
}

package sudoer

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/caarlos0/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBinDir = "/opt/sudoer/bin"

func testOptions(name string) Options {
	return Options{
		Name:   name,
		BinDir: testBinDir,
		Logger: log.New(io.Discard),
	}
}

func newTestSudoer(t *testing.T, name string) *Sudoer {
	t.Helper()
	s, err := newSudoer(testOptions(name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// fakeFS records the order in which candidate paths are checked.
type fakeFS struct {
	present map[string]bool
	calls   []string
}

func (p *fakeFS) exists(path string) bool {
	p.calls = append(p.calls, path)
	return p.present[path]
}

func TestOptions_CheckAndSetDefaults(t *testing.T) {
	t.Parallel()

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		opts := Options{}
		err := opts.CheckAndSetDefaults()
		require.ErrorIs(t, err, ErrInvalidOptions)
	})

	t.Run("blank name", func(t *testing.T) {
		t.Parallel()
		opts := Options{Name: "  \t"}
		require.ErrorIs(t, opts.CheckAndSetDefaults(), ErrInvalidOptions)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		opts := Options{Name: "mock"}
		require.NoError(t, opts.CheckAndSetDefaults())
		assert.NotEmpty(t, opts.BinDir)
		assert.Equal(t, "bin", filepath.Base(opts.BinDir))
		assert.NotNil(t, opts.Logger)
		assert.Empty(t, opts.Icon)
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		t.Parallel()
		opts := Options{Name: "mock", Icon: "/tmp/icon.icns", BinDir: testBinDir}
		require.NoError(t, opts.CheckAndSetDefaults())
		assert.Equal(t, testBinDir, opts.BinDir)
		assert.Equal(t, "/tmp/icon.icns", opts.Icon)
	})
}

func TestNew_InvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := NewLinux(Options{})
	require.ErrorIs(t, err, ErrInvalidOptions)

	_, err = NewDarwin(Options{})
	require.ErrorIs(t, err, ErrInvalidOptions)

	_, err = NewWindows(Options{})
	require.ErrorIs(t, err, ErrInvalidOptions)
}

func TestNew(t *testing.T) {
	t.Parallel()

	s, err := New(testOptions("mock"))
	if DetectPlatform() == PlatformOther {
		require.ErrorIs(t, err, ErrUnsupportedPlatform)
		return
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, DetectPlatform(), s.sudoer().Platform())
	switch DetectPlatform() {
	case PlatformLinux:
		assert.IsType(t, &Linux{}, s)
	case PlatformDarwin:
		assert.IsType(t, &Darwin{}, s)
	case PlatformWindows:
		assert.IsType(t, &Windows{}, s)
	}
}

func Test_platformFromGOOS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos string
		want Platform
	}{
		{goos: "linux", want: PlatformLinux},
		{goos: "windows", want: PlatformWindows},
		{goos: "darwin", want: PlatformDarwin},
		{goos: "freebsd", want: PlatformOther},
		{goos: "plan9", want: PlatformOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, platformFromGOOS(tt.goos), tt.goos)
	}
}

func TestSudoer_Options(t *testing.T) {
	t.Parallel()

	s := newTestSudoer(t, "mock_linux")
	opts := s.Options()
	assert.Equal(t, "mock_linux", opts.Name)
	assert.Empty(t, opts.Icon)

	opts.Name = "changed"
	assert.Equal(t, "mock_linux", s.Options().Name)
}

func TestSudoer_Hash(t *testing.T) {
	t.Parallel()

	s := newTestSudoer(t, "mock_linux")
	other := newTestSudoer(t, "mock_darwin")

	t.Run("known values", func(t *testing.T) {
		assert.Equal(t, "859e4ef03589ccdcea014d584fa44324", s.Hash(nil))
		assert.Equal(t, "22b4ffbc0845f5a8242ec4056cc0b967", s.Hash([]byte("abc")))
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, s.Hash([]byte("payload")), s.Hash([]byte("payload")))
		assert.Equal(t, s.Hash(nil), s.Hash([]byte{}))
	})

	t.Run("fixed length hex", func(t *testing.T) {
		h := s.Hash([]byte("payload"))
		assert.Len(t, h, hashLength)
		assert.Regexp(t, `^[0-9a-f]+$`, h)
	})

	t.Run("depends on buffer", func(t *testing.T) {
		assert.NotEqual(t, s.Hash([]byte("a")), s.Hash([]byte("b")))
		assert.NotEqual(t, s.Hash(nil), s.Hash([]byte("a")))
	})

	t.Run("depends on name", func(t *testing.T) {
		assert.NotEqual(t, s.Hash(nil), other.Hash(nil))
		assert.NotEqual(t, s.Hash([]byte("a")), other.Hash([]byte("a")))
	})
}

func TestSudoer_TempDir(t *testing.T) {
	t.Parallel()

	s, err := newSudoer(testOptions("mock"))
	require.NoError(t, err)
	other := newTestSudoer(t, "mock")

	info, err := os.Stat(s.TempDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NotEqual(t, s.TempDir(), other.TempDir())

	require.NoError(t, s.Close())
	_, err = os.Stat(s.TempDir())
	assert.True(t, os.IsNotExist(err))
}

func TestSudoer_sessionDir(t *testing.T) {
	t.Parallel()

	s := newTestSudoer(t, "mock")
	dir, err := s.sessionDir([]byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.TempDir(), s.Hash([]byte("payload"))), dir)
	assert.DirExists(t, dir)
}

func TestSudoer_environment(t *testing.T) {
	t.Parallel()

	s := newTestSudoer(t, "mock")
	host := []string{"USER=mock", "OPTS=a=b", "=C:=C:\\", "BROKEN"}
	s.environ = func() []string { return host }

	env := s.environment(map[string]string{"USER": "root", "EXTRA": "1"})
	assert.Equal(t, map[string]string{
		"USER":  "root",
		"OPTS":  "a=b",
		"EXTRA": "1",
	}, env)
	assert.Equal(t, []string{"USER=mock", "OPTS=a=b", "=C:=C:\\", "BROKEN"}, host)
}

func TestJoinEnv(t *testing.T) {
	t.Parallel()

	assert.Empty(t, JoinEnv(nil))
	assert.Empty(t, JoinEnv(map[string]string{}))
	assert.Equal(t,
		[]string{"DISPLAY=:0", "EMPTY=", "USER=mock"},
		JoinEnv(map[string]string{"USER": "mock", "DISPLAY": ":0", "EMPTY": ""}),
	)
}

func TestEscapeDoubleQuotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "no quotes", want: "no quotes"},
		{in: `say "hi"`, want: `say \"hi\"`},
		{in: `"`, want: `\"`},
		{in: `it's \ fine`, want: `it's \ fine`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeDoubleQuotes(tt.in), tt.in)
	}

	// applying twice escapes the quotes introduced by the first pass' output again
	assert.Equal(t, `\\"`, EscapeDoubleQuotes(EscapeDoubleQuotes(`"`)))
}

func TestEncloseDoubleQuotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: `""`},
		{in: "mock", want: `"mock"`},
		{in: `say \"hi\"`, want: `"say \"hi\""`},
	}

	for _, tt := range tests {
		got := EncloseDoubleQuotes(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.in, got[1:len(got)-1])
	}
}

func TestTerminate_InvalidPID(t *testing.T) {
	t.Parallel()

	for _, pid := range []int{0, -1} {
		err := Terminate(pid)
		require.ErrorIs(t, err, ErrTermination)
		require.ErrorIs(t, err, ErrInvalidPID)

		var termErr *TerminationError
		require.ErrorAs(t, err, &termErr)
		assert.Equal(t, pid, termErr.PID)
	}
}

func TestResolutionError(t *testing.T) {
	t.Parallel()

	err := &ResolutionError{Helper: "polkit", Candidates: []string{"/a", "/b"}}
	assert.EqualError(t, err, "no polkit executable found")
	assert.ErrorIs(t, err, ErrNoExecutable)
	assert.Equal(t, "/a, /b", err.Probed())
}

func TestSudoer_Exists(t *testing.T) {
	t.Parallel()

	l, p, _ := newTestLinux(t, pkexecPath)

	assert.False(t, l.Exists(gksudoPath))
	assert.True(t, l.Exists(pkexecPath))
	assert.Equal(t, []string{gksudoPath, pkexecPath}, p.calls, "Exists must go through the same check as Binary")

	got, err := l.Binary()
	require.NoError(t, err)
	assert.Equal(t, pkexecPath, got)
	assert.True(t, l.Exists(got))
}

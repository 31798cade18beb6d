package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/cautious/internal/app"
	"github.com/YoshitsuguKoike/cautious/internal/domain/model/lock"
	"github.com/YoshitsuguKoike/cautious/internal/infra/fs/cautious"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/origin"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command once, as a fresh process would
func execute(t *testing.T, home, stdin string, args ...string) cliResult {
	t.Helper()

	cautious.ResetInstance()
	prevApp := app.GetLogger()
	prevGlobal := globalLogger
	t.Cleanup(func() {
		cautious.ResetInstance()
		origin.SetDebug(false)
		app.SetLogger(prevApp)
		globalLogger = prevGlobal
		globalConfig = nil
	})

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	root := NewRoot()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--home", home}, args...))

	err := root.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// newHome creates a settings directory and hides CAUTIOUS_* variables from
// the surrounding environment
func newHome(t *testing.T, settings string) string {
	t.Helper()
	for _, k := range []string{
		"CAUTIOUS_RETRIES", "CAUTIOUS_RETRY_WAIT_MS", "CAUTIOUS_ATOMIC_WRITES",
		"CAUTIOUS_ENCODING", "CAUTIOUS_DEBUG", "CAUTIOUS_STDERR_LEVEL",
	} {
		t.Setenv(k, "")
	}

	home := t.TempDir()
	if settings != "" {
		require.NoError(t, os.WriteFile(filepath.Join(home, "setting.yaml"), []byte(settings), 0o644))
	}
	return home
}

func writeForeignMarker(t *testing.T, target string) []byte {
	t.Helper()
	data, err := lock.NewMarkerInfo(time.Now()).Encode()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(target+lock.MarkerSuffix, data, 0o644))
	return data
}

func TestNewRoot_Commands(t *testing.T) {
	root := NewRoot()

	for _, name := range []string{"write", "read", "size", "lock", "config"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
		assert.NotEmpty(t, cmd.Short, name)
	}

	for _, flag := range []string{"home", "debug", "stderr-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestWriteThenRead(t *testing.T) {
	home := newHome(t, "")
	target := filepath.Join(t.TempDir(), "note.txt")

	res := execute(t, home, "", "write", target, "--data", "hello")
	require.NoError(t, res.err, res.stderr)
	assert.NoFileExists(t, target+lock.MarkerSuffix)

	res = execute(t, home, "", "read", target)
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "hello", res.stdout)
	assert.NoFileExists(t, target+lock.MarkerSuffix)
}

func TestWrite_FromStdin(t *testing.T) {
	home := newHome(t, "")
	target := filepath.Join(t.TempDir(), "stdin.txt")

	res := execute(t, home, "piped content\n", "write", target)
	require.NoError(t, res.err, res.stderr)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "piped content\n", string(got))
}

func TestWrite_MultiplePaths(t *testing.T) {
	home := newHome(t, "")
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "c.txt"),
	}

	res := execute(t, home, "", append([]string{"write", "--data", "same"}, paths...)...)
	require.NoError(t, res.err, res.stderr)

	for _, p := range paths {
		got, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "same", string(got))
		assert.NoFileExists(t, p+lock.MarkerSuffix)
	}
}

func TestWrite_Encoding(t *testing.T) {
	home := newHome(t, "")
	target := filepath.Join(t.TempDir(), "latin1.txt")

	res := execute(t, home, "", "write", target, "--data", "café", "--encoding", "latin1")
	require.NoError(t, res.err, res.stderr)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte{'c', 'a', 'f', 0xE9}, got)

	res = execute(t, home, "", "read", target, "--encoding", "latin1")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "café", res.stdout)
}

func TestWrite_UnknownEncoding(t *testing.T) {
	home := newHome(t, "")
	target := filepath.Join(t.TempDir(), "x.txt")

	res := execute(t, home, "", "write", target, "--data", "x", "--encoding", "no-such-encoding")
	require.Error(t, res.err)
	assert.NoFileExists(t, target)
}

func TestRead_MissingFile(t *testing.T) {
	home := newHome(t, "")
	target := filepath.Join(t.TempDir(), "missing.txt")

	res := execute(t, home, "", "read", target)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "read")
	assert.Empty(t, res.stdout)
	assert.NoFileExists(t, target+lock.MarkerSuffix)
}

func TestRead_BusyLockGivesUp(t *testing.T) {
	home := newHome(t, "retries: 1\nretry_wait_ms: 10\n")
	target := filepath.Join(t.TempDir(), "busy.txt")
	require.NoError(t, os.WriteFile(target, []byte("data"), 0o644))
	marker := writeForeignMarker(t, target)

	res := execute(t, home, "", "read", target)
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, cautious.ErrLockBusy)
	assert.Contains(t, res.err.Error(), target)
	assert.Contains(t, res.stderr, "giving up")
	assert.Empty(t, res.stdout)

	got, err := os.ReadFile(target + lock.MarkerSuffix)
	require.NoError(t, err)
	assert.Equal(t, marker, got, "a foreign marker must be left untouched")
}

func TestSize(t *testing.T) {
	home := newHome(t, "")
	dir := t.TempDir()
	target := filepath.Join(dir, "sized.bin")
	require.NoError(t, os.WriteFile(target, make([]byte, 42), 0o644))

	res := execute(t, home, "", "size", target)
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "42\n", res.stdout)

	res = execute(t, home, "", "size", filepath.Join(dir, "absent.bin"), "--fallback", "7")
	require.NoError(t, res.err)
	assert.Equal(t, "7\n", res.stdout)
	assert.Contains(t, res.stderr, "ERROR: storage:")
}

func TestLockStatus(t *testing.T) {
	home := newHome(t, "")
	target := filepath.Join(t.TempDir(), "status.txt")

	res := execute(t, home, "", "lock", "status", target)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "free")

	writeForeignMarker(t, target)
	res = execute(t, home, "", "lock", "status", target)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "locked")
	assert.Contains(t, res.stdout, "OWNER")
	assert.Contains(t, res.stdout, strconv.Itoa(os.Getpid()))

	require.NoError(t, os.WriteFile(target+lock.MarkerSuffix, []byte("not json"), 0o644))
	res = execute(t, home, "", "lock", "status", target)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "unreadable")
}

func TestLockRelease(t *testing.T) {
	home := newHome(t, "")
	target := filepath.Join(t.TempDir(), "stale.txt")
	writeForeignMarker(t, target)

	res := execute(t, home, "", "lock", "release", target)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "--force")
	assert.FileExists(t, target+lock.MarkerSuffix)

	res = execute(t, home, "", "lock", "release", target, "--force")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "released")
	assert.NoFileExists(t, target+lock.MarkerSuffix)

	res = execute(t, home, "", "lock", "release", target, "--force")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, cautious.ErrLockNotHeld)
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		home := newHome(t, "")
		res := execute(t, home, "", "config")
		require.NoError(t, res.err, res.stderr)
		assert.Contains(t, res.stdout, "# source: default")
		assert.Contains(t, res.stdout, "retries: 5")
		assert.Contains(t, res.stdout, "retry_wait_ms: 100")
	})

	t.Run("from file", func(t *testing.T) {
		home := newHome(t, "retries: 2\natomic_writes: true\n")
		res := execute(t, home, "", "config")
		require.NoError(t, res.err, res.stderr)
		assert.Contains(t, res.stdout, "# source: yaml")
		assert.Contains(t, res.stdout, "# file: "+filepath.Join(home, "setting.yaml"))
		assert.Contains(t, res.stdout, "retries: 2")
		assert.Contains(t, res.stdout, "atomic_writes: true")
	})

	t.Run("invalid file", func(t *testing.T) {
		home := newHome(t, "retries: -1\n")
		res := execute(t, home, "", "config")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "failed to load settings")
	})
}

func TestDebugFlag(t *testing.T) {
	home := newHome(t, "")
	target := filepath.Join(t.TempDir(), "dbg.txt")

	res := execute(t, home, "", "--debug", "write", target, "--data", "x")
	require.NoError(t, res.err, res.stderr)
	assert.True(t, origin.Debug())
	assert.Contains(t, res.stderr, "DEBUG: lock: acquired")
}

func TestVersionFlag(t *testing.T) {
	res := execute(t, newHome(t, ""), "", "--version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "cautious version ")
}

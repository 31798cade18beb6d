package cautious

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/cautious/internal/app"
)

// recordingFs counts marker creations and removals for one marker path.
// Marker operations are serialized so live is exact at every step.
type recordingFs struct {
	afero.Fs
	marker string

	mu         sync.Mutex
	attempts   int
	creates    int
	live       int
	maxLive    int
	failRemove error
}

func (r *recordingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if name != r.marker || flag&os.O_EXCL == 0 {
		return r.Fs.OpenFile(name, flag, perm)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.Fs.OpenFile(name, flag, perm)
	r.attempts++
	if err == nil {
		r.creates++
		r.live++
		if r.live > r.maxLive {
			r.maxLive = r.live
		}
	}
	return f, err
}

func (r *recordingFs) Remove(name string) error {
	if name != r.marker {
		return r.Fs.Remove(name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failRemove != nil {
		return r.failRemove
	}
	err := r.Fs.Remove(name)
	if err == nil {
		r.live--
	}
	return err
}

func (r *recordingFs) stats() (attempts, creates, live, maxLive int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts, r.creates, r.live, r.maxLive
}

func newCoordinator(t *testing.T, fsys afero.Fs, retries int, wait time.Duration) *Coordinator {
	t.Helper()
	c, err := New(fsys, Options{Retries: retries, RetryWait: wait}, WithLogger(app.NopLogger()))
	require.NoError(t, err)
	return c
}

func targetIn(t *testing.T, name string) (dir, target string) {
	t.Helper()
	dir = t.TempDir()
	return dir, filepath.Join(dir, name)
}

func requireNoMarker(t *testing.T, target string) {
	t.Helper()
	_, err := os.Stat(target + ".lock")
	require.True(t, os.IsNotExist(err), "marker for %s must not exist, stat err = %v", target, err)
}

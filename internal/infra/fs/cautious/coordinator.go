package cautious

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/cautious/internal/app"
	"github.com/YoshitsuguKoike/cautious/internal/domain/model/lock"
	"github.com/YoshitsuguKoike/cautious/internal/infra/persistence/file"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/origin"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/textenc"
)

// Operation names used as error context
const (
	opAcquire = "acquire lock"
	opRelease = "release lock"
	opInspect = "inspect lock"
	opLocked  = "locked section"
	opRead    = "cautious read"
	opWrite   = "cautious write"
)

const markerMode = os.FileMode(0o644)

// Coordinator serializes access to files through lock markers
type Coordinator struct {
	fs     afero.Fs
	opts   Options
	logger app.Logger
	now    func() time.Time
}

// New creates a coordinator on fsys.
// Most callers should receive the application's coordinator through their
// constructor instead of creating their own; see InitOnce.
func New(fsys afero.Fs, opts Options, options ...Option) (*Coordinator, error) {
	if fsys == nil {
		return nil, origin.New("create lock coordinator", "validate filesystem", errors.New("filesystem is nil"))
	}
	if err := opts.Validate(); err != nil {
		return nil, origin.New("create lock coordinator", "validate options", err)
	}
	if opts.FileMode == 0 {
		opts.FileMode = DefaultFileMode
	}

	c := &Coordinator{
		fs:     fsys,
		opts:   opts,
		logger: app.GetLogger(),
		now:    time.Now,
	}
	for _, o := range options {
		o(c)
	}
	return c, nil
}

// Options returns the coordinator's configuration
func (c *Coordinator) Options() Options {
	return c.opts
}

// AcquireLock creates the marker for path.
// While the marker exists it retries up to Options.Retries more times,
// pausing Options.RetryWait between attempts, then fails with ErrLockBusy.
// Other failures (missing directory, permissions) are returned immediately.
// A marker that was already there is never touched.
func (c *Coordinator) AcquireLock(ctx context.Context, path string) (*Guard, error) {
	return c.acquire(ctx, opAcquire, path)
}

// ReleaseLock removes the marker for path.
// A missing marker is reported as ErrLockNotHeld; every failure comes back as
// a *ReleaseError. Unlike Guard.Release it does not check who owns the marker,
// which makes it the operator's tool for clearing a stale lock.
func (c *Coordinator) ReleaseLock(path string) error {
	id, err := lock.NewLockID(path)
	if err != nil {
		return &ReleaseError{Path: path, Err: origin.New(opRelease, "validate lock path", err)}
	}
	return c.release(opRelease, id, "")
}

// WithLock runs fn while holding the lock for path.
// The lock is released on every exit path, including a panic in fn; a
// release failure is joined with fn's error.
func (c *Coordinator) WithLock(ctx context.Context, path string, fn func() error) error {
	return c.guarded(ctx, opLocked, path, fn)
}

// ReadFile reads path under its lock and decodes it to UTF-8 using enc.
// If only the release fails, the data is still returned together with a
// *ReleaseError.
func (c *Coordinator) ReadFile(ctx context.Context, path string, enc textenc.Encoding) ([]byte, error) {
	var out []byte
	err := c.guarded(ctx, opRead, path, func() error {
		raw, err := afero.ReadFile(c.fs, path)
		if err != nil {
			return origin.New(opRead, fmt.Sprintf("read %s", path), err)
		}
		decoded, err := enc.Decode(raw)
		if err != nil {
			return origin.New(opRead, fmt.Sprintf("decode %s as %s", path, enc), err)
		}
		out = decoded
		return nil
	})
	return out, err
}

// ReadFileString is ReadFile returning a string
func (c *Coordinator) ReadFileString(ctx context.Context, path string, enc textenc.Encoding) (string, error) {
	data, err := c.ReadFile(ctx, path, enc)
	return string(data), err
}

// WriteFile encodes data with enc and writes it to path under its lock.
// The write and the release are separate outcomes: a *ReleaseError in the
// result does not mean the data was not written.
func (c *Coordinator) WriteFile(ctx context.Context, path string, data []byte, enc textenc.Encoding) error {
	encoded, err := enc.Encode(data)
	if err != nil {
		return origin.New(opWrite, fmt.Sprintf("encode %s as %s", path, enc), err)
	}

	return c.guarded(ctx, opWrite, path, func() error {
		if err := c.write(path, encoded); err != nil {
			return origin.New(opWrite, fmt.Sprintf("write %s", path), err)
		}
		return nil
	})
}

// WriteFileString is WriteFile taking a string
func (c *Coordinator) WriteFileString(ctx context.Context, path, data string, enc textenc.Encoding) error {
	return c.WriteFile(ctx, path, []byte(data), enc)
}

// Inspect reports whether path is currently locked.
// info is nil when the marker was not written by a coordinator.
func (c *Coordinator) Inspect(path string) (held bool, info *lock.MarkerInfo, err error) {
	id, err := lock.NewLockID(path)
	if err != nil {
		return false, nil, origin.New(opInspect, "validate lock path", err)
	}

	data, err := afero.ReadFile(c.fs, id.MarkerPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil, nil
		}
		return false, nil, origin.New(opInspect, fmt.Sprintf("read lock marker %s", id.MarkerPath()), err)
	}

	info, err = lock.DecodeMarkerInfo(data)
	if err != nil {
		c.logger.Debug("lock: marker %s has foreign content: %v", id.MarkerPath(), err)
		return true, nil, nil
	}
	return true, info, nil
}

func (c *Coordinator) guarded(ctx context.Context, op, path string, fn func() error) (err error) {
	g, err := c.acquire(ctx, op, path)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := g.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn()
}

func (c *Coordinator) acquire(ctx context.Context, op, path string) (*Guard, error) {
	id, err := lock.NewLockID(path)
	if err != nil {
		return nil, origin.New(op, "validate lock path", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, origin.New(op, fmt.Sprintf("acquire lock for %s", id), err)
	}

	info := lock.NewMarkerInfo(c.now())
	data, err := info.Encode()
	if err != nil {
		return nil, origin.New(op, fmt.Sprintf("prepare lock marker for %s", id), err)
	}

	attempts := c.opts.Retries + 1
	for attempt := 1; ; attempt++ {
		err := c.createMarker(id.MarkerPath(), data)
		if err == nil {
			c.logger.Debug("lock: acquired %s (attempt %d/%d, owner %s)", id.MarkerPath(), attempt, attempts, info.Owner)
			releaseOp := opRelease
			if op != opAcquire {
				releaseOp = op
			}
			return &Guard{c: c, id: id, owner: info.Owner, op: releaseOp}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, origin.New(op, fmt.Sprintf("create lock marker %s", id.MarkerPath()), err)
		}
		if attempt >= attempts {
			break
		}

		c.logger.Debug("lock: %s is busy, retrying in %s (attempt %d/%d)", id.MarkerPath(), c.opts.RetryWait, attempt, attempts)
		if err := wait(ctx, c.opts.RetryWait); err != nil {
			return nil, origin.New(op, fmt.Sprintf("wait for lock on %s", id), err)
		}
	}

	c.logger.Warn("lock: giving up on %s after %d attempts (waited up to %s)", id, attempts, c.opts.Budget())
	return nil, origin.New(op, fmt.Sprintf("acquire lock for %s after %d attempts", id, attempts), ErrLockBusy)
}

// createMarker creates the marker exclusively; fs.ErrExist means contention
func (c *Coordinator) createMarker(markerPath string, data []byte) error {
	f, err := c.fs.OpenFile(markerPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, markerMode)
	if err != nil {
		return err
	}

	_, writeErr := f.Write(data)
	closeErr := f.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		// the marker is ours, so a half-written one must not outlive this call
		if rmErr := c.fs.Remove(markerPath); rmErr != nil {
			return errors.Join(writeErr, rmErr)
		}
		return writeErr
	}
	return nil
}

// release removes the marker for id. A non-empty owner is checked against
// the marker content first; unreadable content does not block removal.
func (c *Coordinator) release(op string, id lock.LockID, owner string) error {
	marker := id.MarkerPath()

	if owner != "" {
		data, err := afero.ReadFile(c.fs, marker)
		if err != nil && errors.Is(err, fs.ErrNotExist) {
			return c.releaseError(op, id, fmt.Errorf("%w: %s", ErrLockNotHeld, marker))
		}
		if err == nil {
			if info, derr := lock.DecodeMarkerInfo(data); derr == nil && !info.IsOwnedBy(owner) {
				return c.releaseError(op, id, fmt.Errorf("%w: %s is held by %s (pid %d)", ErrLockStolen, marker, info.Owner, info.PID))
			}
		}
	}

	if err := c.fs.Remove(marker); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrLockNotHeld, marker)
		}
		return c.releaseError(op, id, err)
	}

	c.logger.Debug("lock: released %s", marker)
	return nil
}

func (c *Coordinator) releaseError(op string, id lock.LockID, cause error) error {
	c.logger.Error("lock: failed to release %s: %v", id.MarkerPath(), cause)
	return &ReleaseError{
		Path: id.String(),
		Err:  origin.New(op, fmt.Sprintf("remove lock marker %s", id.MarkerPath()), cause),
	}
}

func (c *Coordinator) write(path string, data []byte) error {
	if c.opts.AtomicWrites {
		return file.WriteFileAtomic(c.fs, path, data, c.opts.FileMode)
	}
	return afero.WriteFile(c.fs, path, data, c.opts.FileMode)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

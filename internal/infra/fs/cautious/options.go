package cautious

import (
	"fmt"
	"os"
	"time"

	"github.com/YoshitsuguKoike/cautious/internal/app"
)

// Default option values
const (
	DefaultRetries   = 5
	DefaultRetryWait = 100 * time.Millisecond
	DefaultFileMode  = os.FileMode(0o644)
)

// Options is the immutable configuration of a Coordinator
type Options struct {
	// Retries is how many extra attempts AcquireLock makes after the first one
	Retries int
	// RetryWait is the pause between two attempts
	RetryWait time.Duration
	// AtomicWrites writes through a temp file + rename instead of in place
	AtomicWrites bool
	// FileMode is used for newly created target files
	FileMode os.FileMode
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Retries:   DefaultRetries,
		RetryWait: DefaultRetryWait,
		FileMode:  DefaultFileMode,
	}
}

// Validate checks that retries and wait are non-negative
func (o Options) Validate() error {
	if o.Retries < 0 {
		return fmt.Errorf("%w: retries must be >= 0, got %d", ErrInvalidOptions, o.Retries)
	}
	if o.RetryWait < 0 {
		return fmt.Errorf("%w: retry wait must be >= 0, got %s", ErrInvalidOptions, o.RetryWait)
	}
	return nil
}

// Budget returns the longest time AcquireLock waits before giving up
func (o Options) Budget() time.Duration {
	return time.Duration(o.Retries) * o.RetryWait
}

// Option customizes a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger used for lock diagnostics
func WithLogger(logger app.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for marker timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

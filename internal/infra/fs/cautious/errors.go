package cautious

import "errors"

// Lock errors
var (
	// ErrLockBusy means the marker still existed after the whole retry budget
	ErrLockBusy = errors.New("lock is held by another process")
	// ErrLockNotHeld means the marker was already gone at release time
	ErrLockNotHeld = errors.New("lock marker does not exist")
	// ErrLockStolen means the marker at release time belongs to another owner
	ErrLockStolen = errors.New("lock marker belongs to another owner")
	// ErrInvalidOptions wraps option validation failures
	ErrInvalidOptions = errors.New("invalid coordinator options")
)

// ReleaseError reports a failed lock release.
// It is kept distinct from the guarded operation's own error so callers can
// tell "the data operation failed" from "the lock could not be cleaned up".
type ReleaseError struct {
	Path string
	Err  error
}

func (e *ReleaseError) Error() string {
	return e.Err.Error()
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}

// IsReleaseError reports whether err contains a *ReleaseError
func IsReleaseError(err error) bool {
	var re *ReleaseError
	return errors.As(err, &re)
}

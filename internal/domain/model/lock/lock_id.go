package lock

import (
	"fmt"
	"path/filepath"
)

// MarkerSuffix is appended to a target path to form its lock marker path
const MarkerSuffix = ".lock"

// LockID is a value object identifying the resource being locked.
// It is the cleaned target file path; its marker lives next to it.
type LockID struct {
	value string
}

// NewLockID creates a lock ID for the given target path
func NewLockID(path string) (LockID, error) {
	if path == "" {
		return LockID{}, fmt.Errorf("lock ID cannot be empty")
	}
	return LockID{value: filepath.Clean(path)}, nil
}

// String returns the target path
func (id LockID) String() string {
	return id.value
}

// MarkerPath returns the path of the marker file: <target>.lock
func (id LockID) MarkerPath() string {
	return id.value + MarkerSuffix
}

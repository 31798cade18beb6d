package output

import (
	"github.com/YoshitsuguKoike/cautious/internal/domain/model/key"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/textenc"
)

// FileStorage is the capability for plain, unlocked file access.
// Failures are logged and reported as fallback values or false, never as
// errors: callers that need cross-process safety use the lock coordinator.
type FileStorage interface {
	Key() key.Key

	// FileSize returns the size of dir/name in bytes, or fallback on any error
	FileSize(dir, name string, fallback int64) int64

	// ReadFile decodes dir/name into dst, which the caller sizes beforehand
	ReadFile(dir, name string, dst []byte, enc textenc.Encoding) bool

	// WriteFile encodes src and writes it to dir/name
	WriteFile(dir, name string, src []byte, enc textenc.Encoding) bool
}

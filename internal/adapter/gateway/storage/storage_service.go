package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/cautious/internal/app"
	"github.com/YoshitsuguKoike/cautious/internal/application/port/output"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/origin"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/singleton"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/textenc"
)

const fileMode = os.FileMode(0o644)

// StorageService implements output.FileStorage on an afero filesystem.
// It does not take locks; see the cautious package for that.
type StorageService struct {
	singleton.Handle

	fs     afero.Fs
	logger app.Logger
}

var _ output.FileStorage = (*StorageService)(nil)

// NewStorageService creates a storage service keyed by name.
// An empty name keys the service as "StorageService".
func NewStorageService(fs afero.Fs, logger app.Logger, name string) *StorageService {
	if logger == nil {
		logger = app.GetLogger()
	}
	s := &StorageService{
		fs:     fs,
		logger: logger,
	}
	s.Handle = singleton.NewHandle(name, s)
	return s
}

// FileSize returns the byte length of dir/name, or fallback on any error
func (s *StorageService) FileSize(dir, name string, fallback int64) int64 {
	path := filepath.Join(dir, name)

	info, err := s.fs.Stat(path)
	if err != nil {
		s.report(origin.New("file size", fmt.Sprintf("stat %s", path), err))
		return fallback
	}
	if info.IsDir() {
		s.report(origin.New("file size", fmt.Sprintf("stat %s", path), fmt.Errorf("is a directory")))
		return fallback
	}
	return info.Size()
}

// ReadFile reads dir/name, decodes it with enc and fills dst with at most
// len(dst) bytes of the result. A longer file is truncated to the buffer.
// It returns false when the file cannot be read or decoded.
func (s *StorageService) ReadFile(dir, name string, dst []byte, enc textenc.Encoding) bool {
	path := filepath.Join(dir, name)

	raw, err := afero.ReadFile(s.fs, path)
	if err != nil {
		s.report(origin.New("read file", fmt.Sprintf("read %s", path), err))
		return false
	}

	decoded, err := enc.Decode(raw)
	if err != nil {
		s.report(origin.New("read file", fmt.Sprintf("decode %s as %s", path, enc), err))
		return false
	}

	// content beyond len(dst) is not read
	copy(dst, decoded)
	return true
}

// WriteFile encodes src with enc and writes it to dir/name
func (s *StorageService) WriteFile(dir, name string, src []byte, enc textenc.Encoding) bool {
	path := filepath.Join(dir, name)

	encoded, err := enc.Encode(src)
	if err != nil {
		s.report(origin.New("write file", fmt.Sprintf("encode %s as %s", path, enc), err))
		return false
	}

	if err := afero.WriteFile(s.fs, path, encoded, fileMode); err != nil {
		s.report(origin.New("write file", fmt.Sprintf("write %s", path), err))
		return false
	}
	return true
}

func (s *StorageService) report(err error) {
	s.logger.Error("storage: %v", err)
}

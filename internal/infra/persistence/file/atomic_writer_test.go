package file_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/cautious/internal/infra/persistence/file"
)

func assertNoTempFiles(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	files, _ := afero.ReadDir(fs, dir)
	for _, f := range files {
		if strings.Contains(f.Name(), ".tmp-") {
			t.Errorf("Temp file not cleaned up: %s", f.Name())
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		data        []byte
		setupFS     func(fs afero.Fs) error
		wantErr     bool
		checkResult func(t *testing.T, fs afero.Fs, path string)
	}{
		{
			name: "Write new file successfully",
			path: "test/dir/file.txt",
			data: []byte("test content"),
			checkResult: func(t *testing.T, fs afero.Fs, path string) {
				content, err := afero.ReadFile(fs, path)
				if err != nil {
					t.Errorf("Failed to read file: %v", err)
					return
				}
				if string(content) != "test content" {
					t.Errorf("File content mismatch: got %q, want %q", string(content), "test content")
				}

				info, err := fs.Stat("test/dir")
				if err != nil {
					t.Errorf("Directory not created: %v", err)
					return
				}
				if !info.IsDir() {
					t.Error("Expected directory but got file")
				}
			},
		},
		{
			name: "Overwrite existing file keeps its mode",
			path: "existing/file.txt",
			data: []byte("new content"),
			setupFS: func(fs afero.Fs) error {
				fs.MkdirAll("existing", 0o755)
				return afero.WriteFile(fs, "existing/file.txt", []byte("old content"), 0o600)
			},
			checkResult: func(t *testing.T, fs afero.Fs, path string) {
				content, err := afero.ReadFile(fs, path)
				if err != nil {
					t.Errorf("Failed to read file: %v", err)
					return
				}
				if string(content) != "new content" {
					t.Errorf("File not overwritten: got %q, want %q", string(content), "new content")
				}
				info, err := fs.Stat(path)
				if err != nil {
					t.Errorf("Stat failed: %v", err)
					return
				}
				if info.Mode().Perm() != 0o600 {
					t.Errorf("Mode not preserved: got %v, want %v", info.Mode().Perm(), os.FileMode(0o600))
				}
			},
		},
		{
			name: "Write empty file",
			path: "empty.txt",
			data: []byte{},
			checkResult: func(t *testing.T, fs afero.Fs, path string) {
				content, err := afero.ReadFile(fs, path)
				if err != nil {
					t.Errorf("Failed to read file: %v", err)
					return
				}
				if len(content) != 0 {
					t.Errorf("Expected empty file, got %d bytes", len(content))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()

			if tt.setupFS != nil {
				if err := tt.setupFS(fs); err != nil {
					t.Fatalf("Failed to setup filesystem: %v", err)
				}
			}

			err := file.WriteFileAtomic(fs, tt.path, tt.data, 0o644)

			if (err != nil) != tt.wantErr {
				t.Errorf("WriteFileAtomic() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && tt.checkResult != nil {
				tt.checkResult(t, fs, tt.path)
			}

			if !tt.wantErr {
				dir := "."
				if i := strings.LastIndex(tt.path, "/"); i >= 0 {
					dir = tt.path[:i]
				}
				assertNoTempFiles(t, fs, dir)
			}
		})
	}
}

// MockFailFS is a filesystem that fails on specific operations for testing
type MockFailFS struct {
	afero.Fs
	failOnRename bool
}

func (m *MockFailFS) Rename(oldname, newname string) error {
	if m.failOnRename {
		return errors.New("rename failed")
	}
	return m.Fs.Rename(oldname, newname)
}

func TestWriteFileAtomic_RenameFailure(t *testing.T) {
	fs := &MockFailFS{
		Fs:           afero.NewMemMapFs(),
		failOnRename: true,
	}

	err := file.WriteFileAtomic(fs, "test.txt", []byte("content"), 0o644)
	if err == nil {
		t.Error("Expected error when rename fails")
	}

	assertNoTempFiles(t, fs, ".")

	if _, statErr := fs.Stat("test.txt"); !os.IsNotExist(statErr) {
		t.Error("Target must not exist after a failed rename")
	}
}

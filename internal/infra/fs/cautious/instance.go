package cautious

import (
	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/cautious/internal/pkg/origin"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/singleton"
)

// instance is the application's coordinator, filled by InitOnce at start-up
var instance = singleton.NewSlot[*Coordinator]("lock coordinator")

// InitOnce creates the process-wide coordinator.
// Calling it again fails instead of reconfiguring or returning the existing one.
func InitOnce(fsys afero.Fs, opts Options, options ...Option) (*Coordinator, error) {
	c, err := instance.Init(func() (*Coordinator, error) {
		return New(fsys, opts, options...)
	})
	if err != nil {
		return nil, origin.New("initialize lock coordinator", "create the process-wide instance", err)
	}
	return c, nil
}

// Instance returns the coordinator created by InitOnce
func Instance() (*Coordinator, error) {
	c, err := instance.Instance()
	if err != nil {
		return nil, origin.New("get lock coordinator", "find the process-wide instance", err)
	}
	return c, nil
}

// ResetInstance clears the process-wide coordinator.
// This is NOT part of the normal lifecycle and should only be used in tests.
func ResetInstance() {
	instance.Reset()
}

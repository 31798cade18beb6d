// Package singleton provides identity handles and single-instance slots for
// stateful components.
//
// A Slot does not police construction of its type: the owning application
// decides at start-up which values go into which slot, and the slot only
// guarantees that this happens once.
package singleton

import (
	"errors"
	"fmt"
	"sync"

	"github.com/YoshitsuguKoike/cautious/internal/domain/model/key"
)

var (
	// ErrAlreadyInitialized is returned by Slot.Init after the first successful call
	ErrAlreadyInitialized = errors.New("already initialized")
	// ErrNotInitialized is returned by Slot.Instance before Init succeeded
	ErrNotInitialized = errors.New("not initialized")
)

// Handle gives a value a stable identity key
type Handle struct {
	key key.Key
}

// NewHandle returns a handle keyed by name.
// An empty name falls back to the type name of owner.
func NewHandle(name string, owner any) Handle {
	if name == "" {
		name = key.TypeName(owner)
	}
	return Handle{key: key.New(name)}
}

// Key returns the handle's identity token
func (h Handle) Key() key.Key {
	return h.key
}

// Slot holds at most one instance of T for the lifetime of the process
type Slot[T any] struct {
	mu    sync.Mutex
	name  string
	value T
	set   bool
}

// NewSlot returns an empty slot; name only appears in error messages
func NewSlot[T any](name string) *Slot[T] {
	return &Slot[T]{name: name}
}

// Init builds and stores the instance.
// A second call fails with ErrAlreadyInitialized and never returns the existing
// instance. If build fails the slot stays empty and Init may be retried.
func (s *Slot[T]) Init(build func() (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if s.set {
		return zero, fmt.Errorf("%s: %w", s.name, ErrAlreadyInitialized)
	}

	v, err := build()
	if err != nil {
		return zero, fmt.Errorf("%s: build instance: %w", s.name, err)
	}

	s.value = v
	s.set = true
	return v, nil
}

// Instance returns the stored instance or ErrNotInitialized
func (s *Slot[T]) Instance() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set {
		var zero T
		return zero, fmt.Errorf("%s: %w", s.name, ErrNotInitialized)
	}
	return s.value, nil
}

// Reset empties the slot.
// This is NOT part of the normal lifecycle and should only be used in tests.
func (s *Slot[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	s.value = zero
	s.set = false
}

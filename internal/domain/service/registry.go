package service

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/YoshitsuguKoike/cautious/internal/app"
	"github.com/YoshitsuguKoike/cautious/internal/domain/model/key"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/origin"
)

// Registry errors
var (
	ErrAlreadyRegistered = errors.New("service already registered")
	ErrNotRegistered     = errors.New("service not registered")
	ErrWrongType         = errors.New("service has unexpected type")
	ErrNilService        = errors.New("service is nil")
	ErrZeroKey           = errors.New("service key is zero")
)

// Service marks a value as registrable.
// Key must return the same token for the lifetime of the value.
type Service interface {
	Key() key.Key
}

// Registry maps keys to services, one service per key.
// Entries are only ever added; there is no removal.
type Registry struct {
	mu       sync.RWMutex
	services map[key.Key]Service
	logger   app.Logger
}

// NewRegistry creates an empty registry logging through logger (nil uses app.GetLogger)
func NewRegistry(logger app.Logger) *Registry {
	if logger == nil {
		logger = app.GetLogger()
	}
	return &Registry{
		services: make(map[key.Key]Service),
		logger:   logger,
	}
}

// Register stores s under s.Key().
// An existing entry is never replaced: a second registration for the same key
// fails with ErrAlreadyRegistered and the first service stays in place.
func (r *Registry) Register(s Service) (key.Key, error) {
	if s == nil {
		return key.Key{}, origin.New("register service", "validate service", ErrNilService)
	}

	k := s.Key()
	if k.IsZero() {
		return key.Key{}, origin.New("register service", fmt.Sprintf("validate key of %s", key.TypeName(s)), ErrZeroKey)
	}

	r.logger.Debug("registry: registering %s (%s)", k, key.TypeName(s))

	r.mu.Lock()
	if _, exists := r.services[k]; exists {
		r.mu.Unlock()
		return key.Key{}, origin.New("register service", fmt.Sprintf("insert %s", k), ErrAlreadyRegistered)
	}
	r.services[k] = s
	r.mu.Unlock()

	r.logger.Debug("registry: registered %s", k)
	return k, nil
}

// Lookup returns the service stored under k
func (r *Registry) Lookup(k key.Key) (Service, error) {
	r.logger.Debug("registry: looking up %s", k)

	r.mu.RLock()
	s, ok := r.services[k]
	r.mu.RUnlock()

	if !ok {
		return nil, origin.New("look up service", fmt.Sprintf("find %s", k), ErrNotRegistered)
	}
	return s, nil
}

// Keys returns a snapshot of the registered keys (order is unspecified)
func (r *Registry) Keys() []key.Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]key.Key, 0, len(r.services))
	for k := range r.services {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of registered services
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}

// GetAs returns the service under k as capability T.
// It fails with ErrNotRegistered when k is absent and ErrWrongType when the
// stored service does not implement T.
func GetAs[T any](r *Registry, k key.Key) (T, error) {
	var zero T

	s, err := r.Lookup(k)
	if err != nil {
		return zero, err
	}

	v, ok := s.(T)
	if !ok {
		return zero, origin.New("look up service", fmt.Sprintf("convert %s (%s) to %s", k, key.TypeName(s), reflect.TypeOf((*T)(nil)).Elem()), ErrWrongType)
	}
	return v, nil
}

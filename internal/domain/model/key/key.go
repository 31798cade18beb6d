package key

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrEmptyName is returned when a key is requested for an empty name
var ErrEmptyName = errors.New("key name cannot be empty")

// Key is an opaque identity token interned by name.
// Two keys created from the same name share the same interned pointer, so
// comparing keys with == compares identity and Key can be used as a map key.
type Key struct {
	name *string
}

var (
	internMu sync.Mutex
	interned = make(map[string]*string)
)

// New returns the interned key for name.
// It panics on an empty name; use Parse for untrusted input.
func New(name string) Key {
	k, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return k
}

// Parse returns the interned key for name, or an error if name is empty
func Parse(name string) (Key, error) {
	if name == "" {
		return Key{}, ErrEmptyName
	}

	internMu.Lock()
	defer internMu.Unlock()

	p, ok := interned[name]
	if !ok {
		p = new(string)
		*p = name
		interned[name] = p
	}
	return Key{name: p}, nil
}

// Of returns the key named after the dynamic type of v.
// Pointer types are dereferenced so *StorageService and StorageService share a name.
func Of(v any) Key {
	return New(TypeName(v))
}

// TypeName returns the bare type name of v, falling back to its full type string
// for unnamed types.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// Name returns the name the key was interned under
func (k Key) Name() string {
	if k.name == nil {
		return ""
	}
	return *k.name
}

// IsZero reports whether k is the zero Key (never produced by New or Parse)
func (k Key) IsZero() bool {
	return k.name == nil
}

// String implements fmt.Stringer
func (k Key) String() string {
	if k.name == nil {
		return "key(<zero>)"
	}
	return fmt.Sprintf("key(%s)", *k.name)
}

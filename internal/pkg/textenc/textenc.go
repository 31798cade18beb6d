// Package textenc resolves encoding names to converters between UTF-8 and the
// on-disk representation of a file.
package textenc

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknownEncoding is returned when an encoding name cannot be resolved
var ErrUnknownEncoding = errors.New("unknown encoding")

// Encoding converts between in-memory UTF-8 text and on-disk bytes.
// The zero value is the raw encoding: bytes pass through unchanged.
type Encoding struct {
	name string
	enc  encoding.Encoding
}

// Raw passes bytes through unchanged
var Raw = Encoding{name: "binary"}

// UTF8 is treated as raw: file bytes are already the in-memory form
var UTF8 = Encoding{name: "utf-8"}

var aliases = map[string]Encoding{
	"":         Raw,
	"binary":   Raw,
	"raw":      Raw,
	"utf8":     UTF8,
	"utf-8":    UTF8,
	"utf16le":  {name: "utf-16le", enc: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
	"utf-16le": {name: "utf-16le", enc: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
	"utf16be":  {name: "utf-16be", enc: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	"utf-16be": {name: "utf-16be", enc: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	"latin1":   {name: "iso-8859-1", enc: charmap.ISO8859_1},
}

// Lookup resolves an encoding by alias or IANA name (case-insensitive)
func Lookup(name string) (Encoding, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if e, ok := aliases[normalized]; ok {
		return e, nil
	}

	enc, err := ianaindex.IANA.Encoding(normalized)
	if err != nil {
		return Encoding{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	if enc == nil {
		// known to IANA but not implemented by x/text
		return Encoding{}, fmt.Errorf("%w: %q is not supported", ErrUnknownEncoding, name)
	}

	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = normalized
	}
	return Encoding{name: strings.ToLower(canonical), enc: enc}, nil
}

// MustLookup is Lookup for names known at compile time
func MustLookup(name string) Encoding {
	e, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return e
}

// Name returns the canonical encoding name
func (e Encoding) Name() string {
	if e.name == "" {
		return Raw.name
	}
	return e.name
}

// IsRaw reports whether the encoding leaves bytes unchanged
func (e Encoding) IsRaw() bool {
	return e.enc == nil
}

// Decode converts on-disk bytes to UTF-8
func (e Encoding) Decode(data []byte) ([]byte, error) {
	if e.IsRaw() {
		return data, nil
	}
	out, err := e.enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.Name(), err)
	}
	return out, nil
}

// Encode converts UTF-8 text to on-disk bytes
func (e Encoding) Encode(data []byte) ([]byte, error) {
	if e.IsRaw() {
		return data, nil
	}
	out, err := e.enc.NewEncoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Name(), err)
	}
	return out, nil
}

// String implements fmt.Stringer
func (e Encoding) String() string {
	return e.Name()
}

package lock

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
)

// MarkerInfo is the diagnostic content written into a lock marker.
// Only the marker's existence carries lock state; the content identifies the
// owner for status output and release checks.
type MarkerInfo struct {
	Owner      string    `json:"owner"` // ULID unique to one acquisition
	PID        int       `json:"pid"`
	Hostname   string    `json:"hostname"`
	AcquiredAt time.Time `json:"acquired_at"` // UTC
}

// NewMarkerInfo creates marker content for an acquisition made now by this process
func NewMarkerInfo(now time.Time) *MarkerInfo {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	entropy := ulid.Monotonic(rand.Reader, 0)
	owner := ulid.MustNew(ulid.Timestamp(now), entropy)

	return &MarkerInfo{
		Owner:      owner.String(),
		PID:        os.Getpid(),
		Hostname:   hostname,
		AcquiredAt: now.UTC(),
	}
}

// Encode serializes the marker content
func (m *MarkerInfo) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal marker info: %w", err)
	}
	return data, nil
}

// DecodeMarkerInfo parses marker content.
// Markers created by other tools may be empty or free-form; those yield an error.
func DecodeMarkerInfo(data []byte) (*MarkerInfo, error) {
	var m MarkerInfo
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal marker info: %w", err)
	}
	if _, err := ulid.ParseStrict(m.Owner); err != nil {
		return nil, fmt.Errorf("invalid marker owner %q: %w", m.Owner, err)
	}
	return &m, nil
}

// Age returns how long ago the marker was acquired
func (m *MarkerInfo) Age(now time.Time) time.Duration {
	return now.UTC().Sub(m.AcquiredAt)
}

// IsOwnedBy reports whether the marker was written by the acquisition with owner token
func (m *MarkerInfo) IsOwnedBy(owner string) bool {
	return m.Owner == owner
}

// Package buildinfo contains build-time information embedded via ldflags
package buildinfo

import "runtime/debug"

// Version is the application version, set at build time via ldflags
// Example: go build -ldflags "-X github.com/YoshitsuguKoike/cautious/internal/buildinfo.Version=v1.0.0"
var Version = ""

// GetVersion returns the ldflags version, then the module version recorded
// by "go install", and "dev" for local builds.
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

package app

import (
	"os"
	"strings"
)

const (
	// DefaultHome is the settings directory used when nothing else is given
	DefaultHome = ".cautious"
	// HomeEnv names the environment variable that overrides DefaultHome
	HomeEnv = "CAUTIOUS_HOME"
)

// ResolveHome returns the settings directory.
// Priority: explicit flag > CAUTIOUS_HOME > DefaultHome
func ResolveHome(flagHome string) string {
	return resolveHome(flagHome, os.Getenv)
}

func resolveHome(flagHome string, getenv func(string) string) string {
	if home := strings.TrimSpace(flagHome); home != "" {
		return home
	}
	if home := strings.TrimSpace(getenv(HomeEnv)); home != "" {
		return home
	}
	return DefaultHome
}

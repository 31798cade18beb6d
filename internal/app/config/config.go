package config

import "time"

// Config provides read-only access to application configuration.
// This interface abstracts the configuration source (YAML, ENV, defaults)
// and ensures the app layer doesn't depend on infrastructure details.
type Config interface {
	// Core settings
	Home() string // Base directory holding setting.yaml (CAUTIOUS_HOME)

	// Lock coordinator settings
	Retries() int             // Extra lock attempts after the first (CAUTIOUS_RETRIES)
	RetryWaitMs() int         // Pause between lock attempts in ms (CAUTIOUS_RETRY_WAIT_MS)
	RetryWait() time.Duration // RetryWaitMs as Duration
	AtomicWrites() bool       // Write through temp file + rename (CAUTIOUS_ATOMIC_WRITES)

	// File handling
	Encoding() string // Default encoding for read/write commands

	// Test and debug
	Debug() bool         // Debug mode: stack traces and debug logging (CAUTIOUS_DEBUG)
	StderrLevel() string // Stderr log level (CAUTIOUS_STDERR_LEVEL)

	// Metadata
	ConfigSource() string // Source of configuration: "yaml", "env", "yaml+env" or "default"
	SettingPath() string  // Path to setting.yaml if loaded from file
}

// AppConfig is the concrete implementation of Config interface.
// It holds all configuration values loaded from various sources.
type AppConfig struct {
	home string

	retries      int
	retryWaitMs  int
	atomicWrites bool

	encoding string

	debug       bool
	stderrLevel string

	configSource string
	settingPath  string
}

// NewAppConfig creates a new AppConfig with the given values
func NewAppConfig(
	home string,
	retries, retryWaitMs int, atomicWrites bool,
	encoding string,
	debug bool, stderrLevel string,
	configSource, settingPath string,
) *AppConfig {
	return &AppConfig{
		home:         home,
		retries:      retries,
		retryWaitMs:  retryWaitMs,
		atomicWrites: atomicWrites,
		encoding:     encoding,
		debug:        debug,
		stderrLevel:  stderrLevel,
		configSource: configSource,
		settingPath:  settingPath,
	}
}

// Home returns the base directory
func (c *AppConfig) Home() string {
	return c.home
}

// Retries returns the number of lock retries
func (c *AppConfig) Retries() int {
	return c.retries
}

// RetryWaitMs returns the wait between lock attempts in milliseconds
func (c *AppConfig) RetryWaitMs() int {
	return c.retryWaitMs
}

// RetryWait returns the wait between lock attempts as a Duration
func (c *AppConfig) RetryWait() time.Duration {
	return time.Duration(c.retryWaitMs) * time.Millisecond
}

// AtomicWrites returns whether cautious writes use temp file + rename
func (c *AppConfig) AtomicWrites() bool {
	return c.atomicWrites
}

// Encoding returns the default file encoding name
func (c *AppConfig) Encoding() string {
	return c.encoding
}

// Debug returns whether debug mode is enabled
func (c *AppConfig) Debug() bool {
	return c.debug
}

// StderrLevel returns the stderr log level
func (c *AppConfig) StderrLevel() string {
	return c.stderrLevel
}

// ConfigSource returns the source of configuration
func (c *AppConfig) ConfigSource() string {
	return c.configSource
}

// SettingPath returns the path to setting.yaml if loaded from file
func (c *AppConfig) SettingPath() string {
	return c.settingPath
}

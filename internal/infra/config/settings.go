package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YoshitsuguKoike/cautious/internal/app/config"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/textenc"
)

// SettingFile is the settings file name inside the home directory
const SettingFile = "setting.yaml"

// RawSettings represents the structure of setting.yaml.
// Pointer fields distinguish "unset" from zero values.
type RawSettings struct {
	// Lock coordinator settings
	Retries      *int  `yaml:"retries"`
	RetryWaitMs  *int  `yaml:"retry_wait_ms"`
	AtomicWrites *bool `yaml:"atomic_writes"`

	// File handling
	Encoding *string `yaml:"encoding"`

	// Test and debug
	Debug       *bool   `yaml:"debug"`
	StderrLevel *string `yaml:"stderr_level"`
}

// LoadSettings loads configuration for baseDir.
// Priority: ENV > setting.yaml > defaults
func LoadSettings(baseDir string) (*config.AppConfig, error) {
	settings := &RawSettings{}
	fromFile := false
	settingPath := ""

	yamlPath := filepath.Join(baseDir, SettingFile)
	data, err := os.ReadFile(yamlPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", yamlPath, err)
		}
		fromFile = true
		settingPath = yamlPath
	case errors.Is(err, fs.ErrNotExist):
		// no settings file: defaults and environment only
	default:
		return nil, fmt.Errorf("failed to read %s: %w", yamlPath, err)
	}

	fromEnv, err := applyEnvOverrides(settings, os.Getenv)
	if err != nil {
		return nil, err
	}

	applyDefaults(settings)

	if err := validate(settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return buildAppConfig(settings, baseDir, source(fromFile, fromEnv), settingPath), nil
}

// applyEnvOverrides copies CAUTIOUS_* variables over settings.
// It reports whether any variable was applied.
func applyEnvOverrides(settings *RawSettings, getenv func(string) string) (bool, error) {
	applied := false

	if v := getenv("CAUTIOUS_RETRIES"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("invalid CAUTIOUS_RETRIES %q: %w", v, err)
		}
		settings.Retries = &n
		applied = true
	}
	if v := getenv("CAUTIOUS_RETRY_WAIT_MS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("invalid CAUTIOUS_RETRY_WAIT_MS %q: %w", v, err)
		}
		settings.RetryWaitMs = &n
		applied = true
	}
	if v := getenv("CAUTIOUS_ATOMIC_WRITES"); v != "" {
		b := toBool(v)
		settings.AtomicWrites = &b
		applied = true
	}
	if v := getenv("CAUTIOUS_ENCODING"); v != "" {
		settings.Encoding = &v
		applied = true
	}
	if v := getenv("CAUTIOUS_DEBUG"); v != "" {
		b := toBool(v)
		settings.Debug = &b
		applied = true
	}
	if v := getenv("CAUTIOUS_STDERR_LEVEL"); v != "" {
		settings.StderrLevel = &v
		applied = true
	}

	return applied, nil
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(settings *RawSettings) {
	if settings.Retries == nil {
		v := 5
		settings.Retries = &v
	}
	if settings.RetryWaitMs == nil {
		v := 100
		settings.RetryWaitMs = &v
	}
	if settings.AtomicWrites == nil {
		v := false
		settings.AtomicWrites = &v
	}
	if settings.Encoding == nil {
		v := "utf-8"
		settings.Encoding = &v
	}
	if settings.Debug == nil {
		v := false
		settings.Debug = &v
	}
	if settings.StderrLevel == nil {
		v := "warn" // Default to WARN level
		settings.StderrLevel = &v
	}
}

func validate(settings *RawSettings) error {
	if *settings.Retries < 0 {
		return fmt.Errorf("retries must be >= 0, got %d", *settings.Retries)
	}
	if *settings.RetryWaitMs < 0 {
		return fmt.Errorf("retry_wait_ms must be >= 0, got %d", *settings.RetryWaitMs)
	}
	if _, err := textenc.Lookup(*settings.Encoding); err != nil {
		return err
	}
	return nil
}

func source(fromFile, fromEnv bool) string {
	switch {
	case fromFile && fromEnv:
		return "yaml+env"
	case fromFile:
		return "yaml"
	case fromEnv:
		return "env"
	default:
		return "default"
	}
}

// buildAppConfig converts RawSettings to AppConfig
func buildAppConfig(settings *RawSettings, home, configSource, settingPath string) *config.AppConfig {
	return config.NewAppConfig(
		home,
		*settings.Retries,
		*settings.RetryWaitMs,
		*settings.AtomicWrites,
		*settings.Encoding,
		*settings.Debug,
		*settings.StderrLevel,
		configSource,
		settingPath,
	)
}

// toBool converts various string representations to boolean
func toBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// CreateDefaultSettings creates a default setting.yaml content
func CreateDefaultSettings() []byte {
	settings := &RawSettings{}
	applyDefaults(settings)

	data, _ := yaml.Marshal(settings)
	return data
}

// Effective renders cfg as YAML in setting.yaml form
func Effective(cfg config.Config) ([]byte, error) {
	retries := cfg.Retries()
	wait := cfg.RetryWaitMs()
	atomic := cfg.AtomicWrites()
	enc := cfg.Encoding()
	debug := cfg.Debug()
	level := cfg.StderrLevel()

	return yaml.Marshal(&RawSettings{
		Retries:      &retries,
		RetryWaitMs:  &wait,
		AtomicWrites: &atomic,
		Encoding:     &enc,
		Debug:        &debug,
		StderrLevel:  &level,
	})
}

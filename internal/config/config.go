// Package config handles configuration file management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the player configuration
type Config struct {
	// Video is the media file played in video mode
	Video string `yaml:"video"`

	// StartURL is the page opened at startup
	StartURL string `yaml:"start_url"`

	// LogFile is truncated and written on every start
	LogFile string `yaml:"log_file"`

	// LogLevel is a zerolog level name (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	Binaries BinariesConfig `yaml:"binaries"`
	Playback PlaybackConfig `yaml:"playback"`
	Events   EventsConfig   `yaml:"events"`
	Media    MediaConfig    `yaml:"media"`
	Render   RenderConfig   `yaml:"render"`
}

// BinariesConfig names the external tools. Bare names are looked up in PATH.
type BinariesConfig struct {
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
	FFplay  string `yaml:"ffplay"`
}

// PlaybackConfig contains engine timing settings
type PlaybackConfig struct {
	// PausePoll is how often a paused decode loop re-checks its flags
	PausePoll time.Duration `yaml:"pause_poll"`

	// TerminateTimeout bounds the wait for a killed process
	TerminateTimeout time.Duration `yaml:"terminate_timeout"`

	// EndMargin keeps seeks short of the end of the file, in seconds
	EndMargin float64 `yaml:"end_margin"`

	// SeekStep is the arrow-key seek distance, in seconds
	SeekStep float64 `yaml:"seek_step"`
}

// EventsConfig contains event bus settings
type EventsConfig struct {
	QueueSize int `yaml:"queue_size"`
}

// MediaConfig contains OS media session settings
type MediaConfig struct {
	// MPRIS exposes the player on the D-Bus session bus (Linux only)
	MPRIS bool `yaml:"mpris"`
}

// RenderConfig contains terminal rendering settings
type RenderConfig struct {
	// Mode is "cast" or "fit"
	Mode string `yaml:"mode"`

	// Tick is the redraw interval
	Tick time.Duration `yaml:"tick"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Video:    "bad_apple.mp4",
		StartURL: "https://example.com",
		LogFile:  "bad-browser.log",
		LogLevel: "info",
		Binaries: BinariesConfig{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			FFplay:  "ffplay",
		},
		Playback: PlaybackConfig{
			PausePoll:        100 * time.Millisecond,
			TerminateTimeout: 2 * time.Second,
			EndMargin:        1.0,
			SeekStep:         5.0,
		},
		Events: EventsConfig{
			QueueSize: 5,
		},
		Media: MediaConfig{
			MPRIS: true,
		},
		Render: RenderConfig{
			Mode: "cast",
			Tick: 33 * time.Millisecond,
		},
	}
}

// Validate rejects values the player cannot run with.
func (c *Config) Validate() error {
	if c.Video == "" {
		return errors.New("video must be set")
	}
	if c.Events.QueueSize <= 0 {
		return fmt.Errorf("events.queue_size must be positive, got %d", c.Events.QueueSize)
	}
	if c.Playback.EndMargin <= 0 {
		return fmt.Errorf("playback.end_margin must be positive, got %v", c.Playback.EndMargin)
	}
	if c.Playback.SeekStep <= 0 {
		return fmt.Errorf("playback.seek_step must be positive, got %v", c.Playback.SeekStep)
	}
	if c.Render.Tick <= 0 {
		return fmt.Errorf("render.tick must be positive, got %v", c.Render.Tick)
	}
	switch c.Render.Mode {
	case "cast", "fit":
	default:
		return fmt.Errorf("render.mode must be cast or fit, got %q", c.Render.Mode)
	}
	return nil
}

// DefaultDir returns ~/.config/bad-browser, or the working directory when
// the user config directory is unknown.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "bad-browser")
}

// Manager handles loading and saving configuration
type Manager struct {
	configDir  string
	configPath string
	config     *Config
}

// NewManager creates a new configuration manager
func NewManager(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configPath: filepath.Join(configDir, "config.yaml"),
		config:     DefaultConfig(),
	}
}

// NewManagerForFile creates a manager for an explicit config file path
func NewManagerForFile(path string) *Manager {
	return &Manager{
		configDir:  filepath.Dir(path),
		configPath: path,
		config:     DefaultConfig(),
	}
}

// Load reads the configuration from disk, writing the defaults when the
// file does not exist yet.
func (m *Manager) Load() error {
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(m.configPath)
	if errors.Is(err, os.ErrNotExist) {
		m.config = DefaultConfig()
		return m.Save()
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	config := DefaultConfig() // missing keys keep their defaults
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}

	m.config = config
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	return m.config
}

// GetPath returns the config file path
func (m *Manager) GetPath() string {
	return m.configPath
}

// Update replaces the configuration and saves it
func (m *Manager) Update(config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	m.config = config
	return m.Save()
}

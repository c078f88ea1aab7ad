package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Addr               string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout  time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxMessageBytes    int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
	// DatabasePath enables match history when set.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Rooms   RoomsConfig   `mapstructure:"rooms" yaml:"rooms"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	LiveKit LiveKitConfig `mapstructure:"livekit" yaml:"livekit"`
}

// LogConfig controls log level and the optional rotating file sink.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// RoomsConfig tunes room admission and start.
type RoomsConfig struct {
	Capacity     int           `mapstructure:"capacity" yaml:"capacity"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout" yaml:"ready_timeout"`
	DefaultLives int           `mapstructure:"default_lives" yaml:"default_lives"`
	MaxMapTiles  int           `mapstructure:"max_map_tiles" yaml:"max_map_tiles"`
}

// SessionConfig controls player identities and resume tokens.
type SessionConfig struct {
	// Secret signs resume tokens. A random secret is generated when empty.
	Secret         string        `mapstructure:"secret" yaml:"secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	ReconnectGrace time.Duration `mapstructure:"reconnect_grace" yaml:"reconnect_grace"`
	EventBuffer    int           `mapstructure:"event_buffer" yaml:"event_buffer"`
}

// LiveKitConfig holds LiveKit server credentials for voice channels.
type LiveKitConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	APISecret string `mapstructure:"api_secret" yaml:"api_secret"`
	URL       string `mapstructure:"url" yaml:"url"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":8080",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		MaxMessageBytes:    1 << 20,
		RateLimitPerMinute: 3000,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Rooms: RoomsConfig{
			Capacity:     10,
			DefaultLives: 1,
			MaxMapTiles:  1 << 16,
		},
		Session: SessionConfig{
			TokenTTL:    time.Hour,
			EventBuffer: 64,
		},
	}
}

// Validate reports every invalid value at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.MaxMessageBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_message_bytes must be positive, got %d", c.MaxMessageBytes))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("rate_limit_per_minute must not be negative, got %d", c.RateLimitPerMinute))
	}
	if c.Rooms.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("rooms.capacity must be positive, got %d", c.Rooms.Capacity))
	}
	if c.Rooms.ReadyTimeout < 0 {
		errs = append(errs, errors.New("rooms.ready_timeout must not be negative"))
	}
	if c.Rooms.DefaultLives <= 0 {
		errs = append(errs, fmt.Errorf("rooms.default_lives must be positive, got %d", c.Rooms.DefaultLives))
	}
	if c.Rooms.MaxMapTiles < 0 {
		errs = append(errs, errors.New("rooms.max_map_tiles must not be negative"))
	}
	if c.Session.ReconnectGrace < 0 {
		errs = append(errs, errors.New("session.reconnect_grace must not be negative"))
	}
	if c.Session.EventBuffer <= 0 {
		errs = append(errs, fmt.Errorf("session.event_buffer must be positive, got %d", c.Session.EventBuffer))
	}
	if c.LiveKit.Enabled && (c.LiveKit.APIKey == "" || c.LiveKit.APISecret == "" || c.LiveKit.URL == "") {
		errs = append(errs, errors.New("livekit.api_key, livekit.api_secret and livekit.url are required when livekit is enabled"))
	}
	return errors.Join(errs...)
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the dashboard settings. Defaults cover every field; a
// settings file only needs the keys it overrides.
type Config struct {
	Backend BackendSettings `mapstructure:"backend" json:"backend"`
	Logging LoggingSettings `mapstructure:"logging" json:"logging"`
	Window  WindowSettings  `mapstructure:"window" json:"window"`
	History HistorySettings `mapstructure:"history" json:"history"`
}

type BackendSettings struct {
	Host             string        `mapstructure:"host" json:"host"`
	Port             int           `mapstructure:"port" json:"port"`
	AuthToken        string        `mapstructure:"auth_token" json:"auth_token"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" json:"handshake_timeout"`
	ReconnectInitial time.Duration `mapstructure:"reconnect_initial" json:"reconnect_initial"`
	ReconnectMax     time.Duration `mapstructure:"reconnect_max" json:"reconnect_max"`
	ReconnectFactor  float64       `mapstructure:"reconnect_factor" json:"reconnect_factor"`
	DedupWindow      time.Duration `mapstructure:"dedup_window" json:"dedup_window"`
}

type LoggingSettings struct {
	Level string `mapstructure:"level" json:"level"`
}

type WindowSettings struct {
	Width  int `mapstructure:"width" json:"width"`
	Height int `mapstructure:"height" json:"height"`
}

type HistorySettings struct {
	ConversationTurns int `mapstructure:"conversation_turns" json:"conversation_turns"`
	ActivityLines     int `mapstructure:"activity_lines" json:"activity_lines"`
}

// URL returns the backend WebSocket endpoint.
func (b BackendSettings) URL() string {
	return fmt.Sprintf("ws://%s:%d", b.Host, b.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.host", "localhost")
	v.SetDefault("backend.port", 8765)
	v.SetDefault("backend.auth_token", "")
	v.SetDefault("backend.handshake_timeout", "10s")
	v.SetDefault("backend.reconnect_initial", "1s")
	v.SetDefault("backend.reconnect_max", "30s")
	v.SetDefault("backend.reconnect_factor", 1.5)
	v.SetDefault("backend.dedup_window", "5s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("window.width", 1000)
	v.SetDefault("window.height", 700)
	v.SetDefault("history.conversation_turns", 200)
	v.SetDefault("history.activity_lines", 500)
}

// Load reads settings from path, or from the user config directory when
// path is empty. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v)

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read settings %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return &cfg, nil
}

// Save writes the settings as indented JSON, creating parent directories
// as needed.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return errors.New("no settings path available")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}

// DefaultPath returns the per-user settings location, or "" when the user
// config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "coda-dashboard", "settings.json")
}

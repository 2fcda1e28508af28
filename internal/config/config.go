package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "assist"

// Config holds all assist configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Location  LocationConfig  `toml:"location"`
	Mail      MailConfig      `toml:"mail"`
	UI        UIConfig        `toml:"ui"`
}

// APIConfig points the client at the assistant backend.
// ASSIST_API_URL and ASSIST_API_TOKEN override the file values.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
	Timeout string `toml:"timeout"`
	// Trace writes a span per request to the log file.
	Trace bool `toml:"trace"`
}

// DashboardConfig holds the daily feed settings. BaseURL defaults to the API
// base URL when empty.
type DashboardConfig struct {
	BaseURL   string `toml:"base_url"`
	NewsLimit int    `toml:"news_limit"`
	Query     string `toml:"query"`
	Name      string `toml:"name"`
}

// LocationConfig provides the coordinates used for weather. Both Lat and Lon
// must be set for the location to count as available.
type LocationConfig struct {
	Lat      *float64 `toml:"lat"`
	Lon      *float64 `toml:"lon"`
	Timezone string   `toml:"timezone"`
}

// MailConfig holds inbox settings.
type MailConfig struct {
	Integration string `toml:"integration"`
	Debounce    string `toml:"debounce"`
}

// UIConfig holds TUI display settings.
type UIConfig struct {
	DefaultView string `toml:"default_view"`
	Theme       string `toml:"theme"`
}

// TimeoutDuration parses Timeout, falling back to 30s when it is unset or
// invalid.
func (c APIConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// DebounceDuration parses Debounce, falling back to 400ms.
func (c MailConfig) DebounceDuration() time.Duration {
	return parseDuration(c.Debounce, 400*time.Millisecond)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "30s",
		},
		Dashboard: DashboardConfig{
			NewsLimit: 6,
			Name:      "there",
		},
		Mail: MailConfig{
			Debounce: "400ms",
		},
		UI: UIConfig{
			DefaultView: "dashboard",
			Theme:       "default",
		},
	}
}

// Load reads config from path. If path is empty, returns defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	applyEnv(&cfg)
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.Dashboard.BaseURL == "" {
		cfg.Dashboard.BaseURL = cfg.API.BaseURL
	}
	cfg.Dashboard.BaseURL = strings.TrimRight(cfg.Dashboard.BaseURL, "/")
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ASSIST_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("ASSIST_API_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv("ASSIST_DASHBOARD_URL"); v != "" {
		cfg.Dashboard.BaseURL = v
	}
}

// ConfigDir returns the assist config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the assist data directory path.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Gallery  GalleryConfig  `toml:"gallery"`
	Archive  ArchiveConfig  `toml:"archive"`
	Mock     MockConfig     `toml:"mock"`
}

// APIConfig locates the video generation backend.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// AuthConfig contains token persistence settings.
type AuthConfig struct {
	TokenKey string `toml:"token_key"`
}

// GalleryConfig contains polling and download settings.
type GalleryConfig struct {
	PollIntervalSeconds int     `toml:"poll_interval_seconds"`
	DownloadDir         string  `toml:"download_dir"`
	DownloadRate        float64 `toml:"download_rate"`
}

// ArchiveConfig points at an S3-compatible bucket for `video archive`.
type ArchiveConfig struct {
	Bucket   string `toml:"bucket"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
	Prefix   string `toml:"prefix"`
}

// MockConfig contains settings for the local mock backend.
type MockConfig struct {
	Host                 string `toml:"host"`
	Port                 int    `toml:"port"`
	CompleteAfterSeconds int    `toml:"complete_after_seconds"`
}

// Timeout returns the HTTP client timeout. Zero disables it.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PollInterval returns the watch interval, falling back to five seconds.
func (c GalleryConfig) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Addr returns the host:port the mock backend listens on.
func (c MockConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CompleteAfter returns how long mock generations stay in processing.
func (c MockConfig) CompleteAfter() time.Duration {
	return time.Duration(c.CompleteAfterSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate reports configuration values the client cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("%w: api.base_url is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Auth.TokenKey) == "" {
		return fmt.Errorf("%w: auth.token_key is required", ErrInvalidConfig)
	}
	if c.Gallery.DownloadRate < 0 {
		return fmt.Errorf("%w: gallery.download_rate must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides configuration values from VIDGEN_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("VIDGEN_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("VIDGEN_DB_PATH"); v != "" {
		c.Database.Path = v
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

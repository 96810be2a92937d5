package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./vidgen.db" {
			t.Errorf("expected database path ./vidgen.db, got %s", config.Database.Path)
		}

		if config.API.BaseURL != "http://localhost:8000" {
			t.Errorf("expected base URL http://localhost:8000, got %s", config.API.BaseURL)
		}

		if config.Auth.TokenKey != "token" {
			t.Errorf("expected token key token, got %s", config.Auth.TokenKey)
		}

		if config.API.Timeout() != 60*time.Second {
			t.Errorf("expected 60s timeout, got %v", config.API.Timeout())
		}

		if config.Mock.Addr() != "127.0.0.1:8000" {
			t.Errorf("expected mock addr 127.0.0.1:8000, got %s", config.Mock.Addr())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "http://videos.internal:9000"
timeout_seconds = 5

[database]
path = "/custom/path.db"

[gallery]
poll_interval_seconds = 2
download_rate = 0.5
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "http://videos.internal:9000" {
			t.Errorf("expected custom base URL, got %s", config.API.BaseURL)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Gallery.PollInterval() != 2*time.Second {
			t.Errorf("expected 2s poll interval, got %v", config.Gallery.PollInterval())
		}

		if config.Auth.TokenKey != "token" {
			t.Errorf("expected default token key to survive partial config, got %s", config.Auth.TokenKey)
		}
	})

	t.Run("LoadConfig rejects empty base URL", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[api]\nbase_url = \"\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("VIDGEN_API_URL", "http://env:1234")
		t.Setenv("VIDGEN_DB_PATH", ":memory:")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.API.BaseURL != "http://env:1234" {
			t.Errorf("expected env base URL, got %s", config.API.BaseURL)
		}
		if config.Database.Path != ":memory:" {
			t.Errorf("expected env database path, got %s", config.Database.Path)
		}
	})

	t.Run("PollInterval fallback", func(t *testing.T) {
		if got := (GalleryConfig{}).PollInterval(); got != 5*time.Second {
			t.Errorf("expected 5s fallback, got %v", got)
		}
	})
}

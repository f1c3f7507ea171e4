package shared

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./groove.db" {
			t.Errorf("expected database path ./groove.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8090 {
			t.Errorf("expected server port 8090, got %d", config.Server.Port)
		}

		if config.Remote.BaseURL != "http://127.0.0.1:8090/api" {
			t.Errorf("expected remote URL http://127.0.0.1:8090/api, got %s", config.Remote.BaseURL)
		}

		if config.Cache.Backend != "sqlite" {
			t.Errorf("expected sqlite cache backend, got %s", config.Cache.Backend)
		}

		if !config.Session.Anonymous() {
			t.Error("expected default session to be anonymous")
		}

		if config.Remote.Breaker.FailureThreshold != 5 {
			t.Errorf("expected breaker failure threshold 5, got %d", config.Remote.Breaker.FailureThreshold)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[session]
user_id = "u-42"
token = "secret"

[remote]
base_url = "http://remote.test/api"

[cache]
backend = "redis"

[redis]
addr = "10.0.0.1:6379"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Session.Anonymous() {
			t.Error("expected authenticated session")
		}
		if config.Remote.BaseURL != "http://remote.test/api" {
			t.Errorf("expected remote URL override, got %s", config.Remote.BaseURL)
		}
		if config.Cache.Backend != "redis" {
			t.Errorf("expected redis backend, got %s", config.Cache.Backend)
		}
		if config.Server.Port != 8090 {
			t.Errorf("expected unspecified values to keep defaults, got port %d", config.Server.Port)
		}
	})

	t.Run("LoadConfig Invalid", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[session\nuser_id ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("GROOVE_USER_ID", "env-user")
		t.Setenv("GROOVE_REMOTE_URL", "http://env.test/api")
		t.Setenv("GROOVE_SERVER_PORT", "9999")

		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("failed to apply env: %v", err)
		}

		if config.Session.UserID != "env-user" {
			t.Errorf("expected env user, got %s", config.Session.UserID)
		}
		if config.Remote.BaseURL != "http://env.test/api" {
			t.Errorf("expected env remote URL, got %s", config.Remote.BaseURL)
		}
		if config.Server.Port != 9999 {
			t.Errorf("expected port 9999, got %d", config.Server.Port)
		}

		t.Setenv("GROOVE_SERVER_PORT", "nope")
		if err := ApplyEnv(config); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for bad port, got %v", err)
		}
	})

	t.Run("LoadEnv", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("GROOVE_TEST_LOADENV=loaded\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("GROOVE_TEST_LOADENV") })

		if err := LoadEnv(envPath, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("failed to load env: %v", err)
		}
		if os.Getenv("GROOVE_TEST_LOADENV") != "loaded" {
			t.Error("expected variable from .env file")
		}
	})
}

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCommand
	t.Cleanup(func() { getRuntime, startCommand = origRuntime, origStart })

	var started *exec.Cmd
	startCommand = func(cmd *exec.Cmd) error {
		started = cmd
		return nil
	}

	t.Run("linux uses xdg-open", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		if err := OpenBrowser("https://example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if started == nil || started.Args[0] != "xdg-open" {
			t.Errorf("expected xdg-open command, got %+v", started)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})
}

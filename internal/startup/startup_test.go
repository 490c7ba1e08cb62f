package startup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_UNSET_VAR",
			defaultValue: "default",
			want:         "default",
			setEnv:       false,
		},
		{
			name:         "Returns env value when set",
			key:          "TEST_SET_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
			setEnv:       true,
		},
		{
			name:         "Returns default when env var is empty",
			key:          "TEST_EMPTY_VAR",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
		setEnv       bool
	}{
		{"unset returns default", "", true, true, false},
		{"true", "true", false, true, true},
		{"false", "false", true, false, true},
		{"numeric true", "1", false, true, true},
		{"invalid returns default", "banana", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv("TEST_BOOL_VAR", tt.envValue)
			} else {
				os.Unsetenv("TEST_BOOL_VAR")
			}

			if got := getEnvBool("TEST_BOOL_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dbDir := t.TempDir()
	t.Setenv("DATABASE_DIR", dbDir)
	t.Setenv("MPV_SOCKET", "/tmp/test-mpv.sock")
	t.Setenv("PORT", "18080")
	t.Setenv("POLL_INTERVAL", "250ms")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if config.EngineSocket != "/tmp/test-mpv.sock" {
		t.Errorf("EngineSocket = %q", config.EngineSocket)
	}
	if config.Port != "18080" {
		t.Errorf("Port = %q", config.Port)
	}
	if config.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v, want 250ms", config.PollInterval)
	}
	if config.DatabasePath != filepath.Join(dbDir, "playlists.db") {
		t.Errorf("DatabasePath = %q", config.DatabasePath)
	}
}

func TestLoadConfigInvalidPollInterval(t *testing.T) {
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("POLL_INTERVAL", "not-a-duration")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if config.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want fallback 1s", config.PollInterval)
	}
}

func TestEnsureDirectoryCreates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db")
	if err := ensureDirectory(path, "database"); err != nil {
		t.Fatalf("ensureDirectory() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
}

func TestEnsureDirectoryRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := ensureDirectory(path, "database"); err == nil {
		t.Error("expected error for path that is a file")
	}
}

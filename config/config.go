package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Settings mirrors the on-disk settings.toml file.
type Settings struct {
	DataDirectory string `toml:"data_directory"`
	APIURL        string `toml:"api_url"`
}

// Config is the resolved runtime configuration.
type Config struct {
	DataDirectory string
	APIURL        string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("CHAOSCTX_API_URL"); url != "" {
		c.APIURL = url
	}
	if dataDir := os.Getenv("CHAOSCTX_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func CheckDebug() bool {
	debug := os.Getenv("CHAOSCTX_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens the debug log under the data directory when
// CHAOSCTX_DEBUG is set. DebugLog stays nil otherwise; call sites guard on
// that.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (CHAOSCTX_DEBUG=%s) ===", os.Getenv("CHAOSCTX_DEBUG"))
}

// Load resolves configuration from defaults, the settings file, and
// environment overrides, in that order. The data directory is created if
// missing.
func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory: "~/.local/share/chaoscontext",
		APIURL:        "http://localhost:8080",
	}

	settingsPath := GetSettingsFilePath()
	if FileExists(settingsPath) {
		var settings Settings
		if _, err := toml.DecodeFile(settingsPath, &settings); err != nil {
			return nil, fmt.Errorf("failed to parse settings file: %w", err)
		}
		if settings.DataDirectory != "" {
			cfg.DataDirectory = settings.DataDirectory
		}
		if settings.APIURL != "" {
			cfg.APIURL = settings.APIURL
		}
	} else {
		// First run: write the defaults so users have a file to edit.
		defaults := Settings{DataDirectory: cfg.DataDirectory, APIURL: cfg.APIURL}
		if err := SaveSettings(&defaults); err != nil {
			return nil, fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// SaveSettings writes the settings file with secure permissions.
func SaveSettings(settings *Settings) error {
	if err := os.MkdirAll(GetConfigDir(), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(GetSettingsFilePath(), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open settings file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(settings); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	return nil
}

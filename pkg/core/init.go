package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/holps-7/striko/pkg/storage"
)

// FolderName is the default storage directory, relative to the working directory.
const FolderName = ".striko"

// ConfigFileName is the name of the config file inside the storage directory.
const ConfigFileName = "config.json"

// Config is the user's striko configuration as written on first run.
type Config struct {
	StorageDir string       `json:"storage_dir" mapstructure:"storage_dir"`
	LogLevel   string       `json:"log_level" mapstructure:"log_level"`
	LogFile    string       `json:"log_file" mapstructure:"log_file"`
	UserAgent  string       `json:"user_agent,omitempty" mapstructure:"user_agent"`
	Server     ServerConfig `json:"server" mapstructure:"server"`
}

// ServerConfig configures the local API host.
type ServerConfig struct {
	Addr           string   `json:"addr" mapstructure:"addr"`
	AllowedOrigins []string `json:"allowed_origins,omitempty" mapstructure:"allowed_origins"` // Besides loopback origins
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		StorageDir: FolderName,
		LogLevel:   "info",
		LogFile:    filepath.Join(FolderName, "striko.log"),
		Server:     ServerConfig{Addr: "127.0.0.1:7878"},
	}
}

// InitializeFolder creates dir with its collections and environments
// subdirectories and a default config.json. It reports whether dir was
// created by this call. Existing files are left untouched.
func InitializeFolder(dir string) (bool, error) {
	created := false
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, fmt.Errorf("failed to create %s folder: %w", dir, err)
		}
		created = true
	}

	// Subdirectories are also ensured for folders created by older versions.
	for _, sub := range []string{storage.CollectionsDir(dir), storage.EnvironmentsDir(dir)} {
		if err := os.MkdirAll(sub, 0755); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", sub, err)
		}
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := createDefaultConfig(dir, configPath); err != nil {
			return created, err
		}
	}

	return created, nil
}

func createDefaultConfig(dir, path string) error {
	config := DefaultConfig()
	config.StorageDir = dir
	config.LogFile = filepath.Join(dir, "striko.log")

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

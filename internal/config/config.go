package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	configDir      = ".decktree"
	configFileName = "config.json"
)

// Config is the per-user CLI state kept between invocations.
type Config struct {
	// ServerURL switches the CLI to a remote decktree server when set.
	ServerURL    string `json:"server_url,omitempty"`
	ActiveDeckID string `json:"active_deck_id,omitempty"`
}

// ActiveDeck returns the active deck, or false when none is set.
func (c *Config) ActiveDeck() (uuid.UUID, bool) {
	if c.ActiveDeckID == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.ActiveDeckID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetConfigPath returns the path to the config file (~/.decktree/config.json)
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir, configFileName), nil
}

// LoadConfig loads the config file. A missing file yields an empty config.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

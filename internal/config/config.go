// Package config loads optional workflow defaults from a config file so
// repeated invocations don't need the same flags every time.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// File is the on-disk configuration shape.
type File struct {
	Backend         string              `json:"backend,omitempty"`
	DefaultProvider string              `json:"defaultProvider,omitempty"`
	Providers       map[string]Provider `json:"providers,omitempty"`
}

// Provider holds per-provider defaults.
type Provider struct {
	APIKey string `json:"apiKey,omitempty"`
	Voice  string `json:"voice,omitempty"`
}

// ProviderConfig returns the defaults for a provider, or nil.
func (f *File) ProviderConfig(name string) *Provider {
	if f == nil || f.Providers == nil {
		return nil
	}
	if p, ok := f.Providers[name]; ok {
		return &p
	}
	return nil
}

// Loader resolves the configuration file location.
type Loader struct {
	projectPath string
	globalPath  string
}

// NewLoader creates a loader with the standard search paths.
func NewLoader() *Loader {
	homeDir, _ := os.UserHomeDir()
	return &Loader{
		projectPath: ".voxflow.json",
		globalPath:  filepath.Join(homeDir, ".config", "voxflow", "config.json"),
	}
}

// Load loads configuration with priority:
// 1. Project-local config (.voxflow.json in workDir)
// 2. Global config (~/.config/voxflow/config.json)
// Returns nil if no config file is found.
func (l *Loader) Load(workDir string) (*File, error) {
	projectPath := filepath.Join(workDir, l.projectPath)
	if cfg, err := l.loadFromFile(projectPath); err == nil {
		log.Debug().Str("path", projectPath).Msg("Loaded project config")
		return cfg, nil
	}

	if cfg, err := l.loadFromFile(l.globalPath); err == nil {
		log.Debug().Str("path", l.globalPath).Msg("Loaded global config")
		return cfg, nil
	}

	log.Debug().Msg("No config file found")
	return nil, nil
}

// LoadFromPath loads configuration from an explicit path, rejecting paths
// that traverse outside expected directories.
func (l *Loader) LoadFromPath(path string) (*File, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	return l.loadFromFile(path)
}

func validatePath(path string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("invalid config path: path traversal not allowed")
	}
	if !strings.HasSuffix(filepath.Clean(path), ".json") {
		return fmt.Errorf("invalid config path: must be a .json file")
	}
	return nil
}

func (l *Loader) loadFromFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg File
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return &cfg, nil
}

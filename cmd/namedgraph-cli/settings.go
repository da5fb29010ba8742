package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultURL     = "http://localhost:3030"
	defaultProfile = "default"
)

// settings are the values needed to reach a server.
type settings struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// configFile is ~/.namedgraph/config.yaml. Top-level url and api_key apply
// when no profile provides them.
type configFile struct {
	settings      `yaml:",inline"`
	ActiveProfile string              `yaml:"active_profile"`
	Profiles      map[string]settings `yaml:"profiles"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".namedgraph", "config.yaml")
}

// resolveSettings layers flags over environment over the config file over
// built-in defaults. A missing config file is not an error. A profile named
// by flag or environment must exist in the file.
func resolveSettings(flags settings, profile string, getenv func(string) string, path string) (settings, error) {
	cfg, err := readConfigFile(path)
	if err != nil {
		return settings{}, err
	}

	explicit := first(profile, getenv("NAMEDGRAPH_PROFILE"))
	name := first(explicit, cfg.ActiveProfile, defaultProfile)

	fromFile := cfg.settings
	if p, ok := cfg.Profiles[name]; ok {
		fromFile.URL = first(p.URL, fromFile.URL)
		fromFile.APIKey = first(p.APIKey, fromFile.APIKey)
	} else if explicit != "" {
		return settings{}, fmt.Errorf("profile %q not found in %s", explicit, path)
	}

	return settings{
		URL:    first(flags.URL, getenv("NAMEDGRAPH_URL"), fromFile.URL, defaultURL),
		APIKey: first(flags.APIKey, getenv("NAMEDGRAPH_API_KEY"), fromFile.APIKey),
	}, nil
}

func readConfigFile(path string) (configFile, error) {
	var cfg configFile
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// first returns the first non-empty value.
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

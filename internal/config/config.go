// Package config loads user settings from ~/.config/dupedive/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lumipallolabs/dupedive/internal/hasher"
	"github.com/lumipallolabs/dupedive/internal/logging"
)

// DefaultReportTemplate renders one duplicate set in the headless report.
// Paths use triple braces so they are not HTML-escaped.
const DefaultReportTemplate = `Set {{number}}: {{count}} files, {{size}} each, {{wasted}} reclaimable{{#more}} ({{remaining}} more){{/more}}
{{#files}}  [{{index}}] {{{name}}}  {{kind}}  {{modified}}{{#hardlink}}  (hard link){{/hardlink}}
{{/files}}`

// DefaultWorkers is the default number of concurrent hashing workers
const DefaultWorkers = 8

type Config struct {
	Hash           string `toml:"hash"`
	Verify         bool   `toml:"verify"`
	Workers        int    `toml:"workers"`
	SkipEmpty      bool   `toml:"skip_empty"`
	Watch          bool   `toml:"watch"`
	ReportTemplate string `toml:"report_template"`

	// Source is the file the config was read from, empty for defaults
	Source string `toml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Hash:           string(hasher.Default),
		Workers:        DefaultWorkers,
		Watch:          true,
		ReportTemplate: DefaultReportTemplate,
	}
}

// Dir returns the config directory, empty if the home directory is unknown
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dupedive")
}

// DefaultPath returns ~/.config/dupedive/config.toml
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// Load reads config from path, or from DefaultPath when path is empty.
// A missing default file yields defaults; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil // Use defaults
		}
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.Source = path

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logging.Debug.Printf("[Config] ignoring unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	// If a custom template file exists next to the config, use it
	if !md.IsDefined("report_template") {
		templatePath := filepath.Join(filepath.Dir(path), "report_template.txt")
		if data, err := os.ReadFile(templatePath); err == nil {
			cfg.ReportTemplate = string(data)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that settings are usable
func (c *Config) Validate() error {
	if _, err := hasher.New(c.Hash); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if strings.TrimSpace(c.ReportTemplate) == "" {
		return errors.New("report_template is empty")
	}
	return nil
}

// Hasher returns the configured content hasher
func (c *Config) Hasher() (*hasher.Hasher, error) {
	return hasher.New(c.Hash)
}

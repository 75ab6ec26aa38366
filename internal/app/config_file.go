package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/gosnip/internal/task"
)

// SnippetConfig is one manifest entry. The selection keys (method,
// startPattern, window, ...) sit at the same level as output and input.
type SnippetConfig struct {
	Output   string `yaml:"output" json:"output"`
	Input    string `yaml:"input" json:"input"`
	Literal  string `yaml:"literal" json:"literal"`
	Language string `yaml:"language" json:"language"`
	Style    string `yaml:"style" json:"style"`

	task.Selection `yaml:",inline"`
}

// FileConfig represents the manifest schema.
type FileConfig struct {
	Language string `yaml:"language" json:"language"`
	Style    string `yaml:"style" json:"style"`
	Verbose  bool   `yaml:"verbose" json:"verbose"`

	LineNumbers struct {
		Every     int    `yaml:"every" json:"every"`
		Separator string `yaml:"separator" json:"separator"`
	} `yaml:"lineNumbers" json:"lineNumbers"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Snippets []SnippetConfig `yaml:"snippets" json:"snippets"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(fsys afero.Fs, path string) (FileConfig, error) {
	var fc FileConfig
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset/zero in cfg, then appends the manifest snippets as
// rules. Flags should already have been applied.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.Language == "" && fc.Language != "" {
		cfg.Language = fc.Language
	}
	if cfg.Style == "" && fc.Style != "" {
		cfg.Style = fc.Style
	}
	if cfg.Every == 0 && fc.LineNumbers.Every > 0 {
		cfg.Every = fc.LineNumbers.Every
	}
	if cfg.Sep == "" && fc.LineNumbers.Separator != "" {
		cfg.Sep = fc.LineNumbers.Separator
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}

	if cfg.CacheDir == "" && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	for _, s := range fc.Snippets {
		cfg.Rules = append(cfg.Rules, task.Rule{
			Output:  s.Output,
			Input:   s.Input,
			Literal: s.Literal,
			Select:  s.Selection,
			Render:  task.RenderOptions{Language: s.Language, Style: s.Style},
		})
	}
}

// ValidateConfig checks rule shape before any output is touched.
func ValidateConfig(cfg Config) error {
	if len(cfg.Rules) == 0 {
		return ErrNoRules
	}
	seen := make(map[string]bool, len(cfg.Rules))
	for i, r := range cfg.Rules {
		out := strings.TrimSpace(r.Output)
		if out == "" {
			return fmt.Errorf("config: snippet %d: output is required", i)
		}
		if r.Input == "" && r.Literal == "" {
			return fmt.Errorf("config: snippet %d (%s): input or literal is required", i, out)
		}
		if r.Select.Method != "" && (r.Select.Start != "" || r.Select.End != "") {
			return fmt.Errorf("config: snippet %d (%s): method cannot be combined with startPattern/endPattern", i, out)
		}
		if r.Select.PreSkip < 0 || r.Select.PostSkip < 0 || (r.Select.Window != nil && *r.Select.Window < 0) {
			return fmt.Errorf("config: snippet %d (%s): negative skip counts are not allowed", i, out)
		}
		if seen[filepath.Clean(out)] {
			return fmt.Errorf("config: snippet %d: duplicate output %s", i, out)
		}
		seen[filepath.Clean(out)] = true
	}
	if cfg.Every < 0 {
		return errors.New("config: lineNumbers.every must not be negative")
	}
	return nil
}

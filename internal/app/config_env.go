package app

import (
	"os"
	"strings"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = strings.TrimSpace(os.Getenv("GOSNIP_CONFIG"))
	}
	if cfg.Language == "" {
		cfg.Language = strings.TrimSpace(os.Getenv("GOSNIP_LANG"))
	}
	if cfg.Style == "" {
		cfg.Style = strings.TrimSpace(os.Getenv("GOSNIP_STYLE"))
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = strings.TrimSpace(os.Getenv("GOSNIP_CACHE_DIR"))
	}
}

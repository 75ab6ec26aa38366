package app

import (
	"time"

	"github.com/spf13/afero"

	"github.com/hyperifyio/gosnip/internal/task"
)

// Config holds runtime configuration for the application.
type Config struct {
	// ConfigPath is the optional YAML/JSON manifest.
	ConfigPath string
	// Rules are explicit rules, e.g. from the render command. Manifest
	// snippets are appended after them.
	Rules []task.Rule

	// Rendering defaults for rules that leave them unset
	Language string
	Style    string
	Every    int
	Sep      string

	// Cache
	CacheDir         string
	CacheClear       bool
	CacheMaxAge      time.Duration
	CacheStrictPerms bool

	// Behavior
	Force   bool
	Verbose bool

	// Fs defaults to the OS filesystem.
	Fs afero.Fs
}

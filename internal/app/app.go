package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/hyperifyio/gosnip/internal/cache"
	"github.com/hyperifyio/gosnip/internal/task"
)

// ErrNoRules is returned when neither flags nor the manifest describe any
// snippet to build.
var ErrNoRules = errors.New("no snippet rules configured")

type App struct {
	cfg    Config
	runner *task.Runner
}

// Resolve layers the manifest and the environment under cfg and validates
// the result. Explicit values already in cfg win over the manifest, which
// wins over the environment.
func Resolve(cfg *Config) error {
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = os.Getenv("GOSNIP_CONFIG")
	}
	if cfg.ConfigPath != "" {
		fc, err := LoadConfigFile(cfg.Fs, cfg.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		ApplyFileConfig(cfg, fc)
	}
	ApplyEnvToConfig(cfg)
	return ValidateConfig(*cfg)
}

func New(ctx context.Context, cfg Config) (*App, error) {
	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	a := &App{cfg: cfg, runner: &task.Runner{Fs: fsys, Force: cfg.Force}}
	if cfg.CacheDir != "" {
		// Apply cache invalidation controls; failures only cost a rebuild
		if cfg.CacheClear {
			if err := cache.ClearDir(fsys, cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeByAge(fsys, cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged stale stamps")
			}
		}
		a.runner.Stamps = &cache.StampCache{Dir: cfg.CacheDir, Fs: fsys, StrictPerms: cfg.CacheStrictPerms}
	}
	return a, nil
}

func (a *App) Close() {
	// nothing yet
}

// Rules returns the configured rules with global rendering defaults filled in.
func (a *App) Rules() []task.Rule {
	rules := make([]task.Rule, 0, len(a.cfg.Rules))
	for _, r := range a.cfg.Rules {
		if r.Render.Language == "" {
			r.Render.Language = a.cfg.Language
		}
		if r.Render.Style == "" {
			r.Render.Style = a.cfg.Style
		}
		if r.Render.Every == 0 {
			r.Render.Every = a.cfg.Every
		}
		if r.Render.Sep == "" {
			r.Render.Sep = a.cfg.Sep
		}
		rules = append(rules, r)
	}
	return rules
}

func (a *App) Run(ctx context.Context) error {
	rules := a.Rules()
	if len(rules) == 0 {
		return ErrNoRules
	}
	sum, err := a.runner.Run(ctx, rules)
	log.Info().Int("built", sum.Built).Int("skipped", sum.Skipped).Msg("snippets processed")
	return err
}

package task

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/hyperifyio/gosnip/internal/cache"
)

// Summary counts what a run did.
type Summary struct {
	Built   int
	Skipped int
}

// Runner builds rules whose outputs are missing or stale.
type Runner struct {
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Stamps, when set, also rebuilds outputs whose rule or input digest
	// changed since the last build.
	Stamps *cache.StampCache
	// Force rebuilds every rule.
	Force bool
	// Log defaults to the global zerolog logger.
	Log *zerolog.Logger
}

func (r *Runner) fs() afero.Fs {
	if r.Fs == nil {
		return afero.NewOsFs()
	}
	return r.Fs
}

func (r *Runner) logger() *zerolog.Logger {
	if r.Log == nil {
		return &log.Logger
	}
	return r.Log
}

// Run builds rules in order and stops at the first failure.
func (r *Runner) Run(ctx context.Context, rules []Rule) (Summary, error) {
	var sum Summary
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		built, err := r.RunRule(rule)
		if err != nil {
			return sum, fmt.Errorf("%s: %w", rule.Output, err)
		}
		if built {
			sum.Built++
		} else {
			sum.Skipped++
		}
	}
	return sum, nil
}

// RunRule builds a single rule unless it is up to date. It reports whether
// the output was written.
func (r *Runner) RunRule(rule Rule) (bool, error) {
	if err := rule.validate(); err != nil {
		return false, err
	}
	digest, err := r.digest(rule)
	if err != nil {
		return false, err
	}
	if !r.Force {
		fresh, err := r.upToDate(rule, digest)
		if err != nil {
			return false, err
		}
		if fresh {
			r.logger().Debug().Str("output", rule.Output).Msg("up to date")
			return false, nil
		}
	}

	r.logger().Info().Str("output", rule.Output).Str("input", rule.Input).Msg("Extracting " + rule.Output)
	doc, err := rule.Build(r.fs())
	if err != nil {
		return false, err
	}
	if err := r.writeAtomic(rule.Output, doc); err != nil {
		return false, err
	}
	if r.Stamps != nil {
		if err := r.Stamps.Save(rule.Output, digest); err != nil {
			r.logger().Warn().Err(err).Str("output", rule.Output).Msg("stamp save failed")
		}
	}
	return true, nil
}

func (r *Runner) digest(rule Rule) (string, error) {
	if r.Stamps == nil {
		return "", nil
	}
	var input []byte
	if rule.Input != "" {
		b, err := afero.ReadFile(r.fs(), rule.Input)
		if err != nil {
			return "", err
		}
		input = b
	}
	return cache.Digest(input, rule)
}

// upToDate follows make semantics: the output must exist and be no older
// than its input. With stamps the recorded digest must also match.
func (r *Runner) upToDate(rule Rule, digest string) (bool, error) {
	out, err := r.fs().Stat(rule.Output)
	if err != nil {
		return false, nil
	}
	if rule.Input != "" {
		in, err := r.fs().Stat(rule.Input)
		if err != nil {
			return false, err
		}
		if out.ModTime().Before(in.ModTime()) {
			return false, nil
		}
	}
	if r.Stamps != nil && !r.Stamps.Fresh(rule.Output, digest) {
		return false, nil
	}
	return true, nil
}

// writeAtomic writes to a temp file next to path and renames it into place so
// a failed build never leaves a partial output.
func (r *Runner) writeAtomic(path string, data []byte) error {
	fsys := r.fs()
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir output dir: %w", err)
	}
	f, err := afero.TempFile(fsys, dir, ".gosnip-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = fsys.Remove(tmp)
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("close output: %w", err)
	}
	if err := fsys.Chmod(tmp, 0o644); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

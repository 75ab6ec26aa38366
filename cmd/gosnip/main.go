package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/gosnip/internal/app"
	"github.com/hyperifyio/gosnip/internal/task"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := app.LoadEnvFiles(".env"); err != nil {
		log.Warn().Err(err).Msg("load .env")
	}
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

// flags collects everything the subcommands share.
type flags struct {
	configPath  string
	verbose     bool
	force       bool
	cacheDir    string
	cacheClear  bool
	cacheMaxAge time.Duration

	sel     task.Selection
	window  int
	literal string

	lang  string
	style string
	every int
	sep   string
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:     "gosnip",
		Short:   "Extract source snippets and render them as highlighted documents",
		Version: app.VersionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if f.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			log.Debug().Str("command", cmd.Name()).Msg("command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Path to YAML/JSON snippet manifest (env GOSNIP_CONFIG)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Verbose logging")
	pf.BoolVar(&f.force, "force", false, "Rebuild outputs even when up to date")
	pf.StringVar(&f.cacheDir, "cache.dir", "", "Directory for build stamps; empty disables stamps (env GOSNIP_CACHE_DIR)")
	pf.BoolVar(&f.cacheClear, "cache.clear", false, "Clear the stamp directory before building")
	pf.DurationVar(&f.cacheMaxAge, "cache.maxAge", 0, "Purge stamps older than this (e.g. 24h); 0 disables")

	root.AddCommand(newExtractCmd(f), newRenderCmd(f), newBuildCmd(f))
	return root
}

func addSelectionFlags(cmd *cobra.Command, f *flags) {
	fl := cmd.Flags()
	fl.StringVar(&f.sel.Method, "method", "", "Extract the method with this name")
	fl.StringVar(&f.sel.Start, "start", "", "Regular expression for the first line")
	fl.StringVar(&f.sel.End, "end", "", "Regular expression for the last line")
	fl.IntVar(&f.window, "window", 0, "Set both --preskip and --postskip")
	fl.IntVar(&f.sel.PreSkip, "preskip", 0, "Drop this many lines from the start of the region")
	fl.IntVar(&f.sel.PostSkip, "postskip", 0, "Drop this many lines from the end of the region")
	fl.StringArrayVar(&f.sel.PreMatches, "prematch", nil, "Landmark pattern that must match before --start (repeatable, in order)")
	fl.StringVar(&f.sel.Ignore, "ignore", "", "Drop lines matching this pattern")
	fl.BoolVar(&f.sel.Whole, "whole", false, "Take the whole file")
	fl.StringVar(&f.literal, "literal", "", "Use this text instead of reading an input file")
}

func addRenderFlags(cmd *cobra.Command, f *flags) {
	fl := cmd.Flags()
	fl.StringVar(&f.lang, "lang", "", "Lexer name, or \"auto\" to detect from the input name (env GOSNIP_LANG)")
	fl.StringVar(&f.style, "style", "", "Chroma style name (env GOSNIP_STYLE)")
	fl.IntVar(&f.every, "every", 0, "Show every Nth line number (default 5)")
	fl.StringVar(&f.sep, "sep", "", "Separator between line number and code")
}

// rule builds a single rule from the selection flags.
func (f *flags) rule(cmd *cobra.Command, input, output string) task.Rule {
	sel := f.sel
	if cmd.Flags().Changed("window") {
		w := f.window
		sel.Window = &w
	}
	return task.Rule{
		Output:  output,
		Input:   input,
		Literal: f.literal,
		Select:  sel,
	}
}

func (f *flags) config() app.Config {
	return app.Config{
		ConfigPath:  f.configPath,
		Language:    f.lang,
		Style:       f.style,
		Every:       f.every,
		Sep:         f.sep,
		CacheDir:    f.cacheDir,
		CacheClear:  f.cacheClear,
		CacheMaxAge: f.cacheMaxAge,
		Force:       f.force,
		Verbose:     f.verbose,
	}
}

func newExtractCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [input]",
		Short: "Print the selected region of a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return extractTo(cmd.OutOrStdout(), nil, f.rule(cmd, input, ""))
		},
	}
	addSelectionFlags(cmd, f)
	return cmd
}

func newRenderCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <input> <output>",
		Short: "Render one snippet to an HTML or PDF document",
		Long: `Render extracts a region of <input> and writes a standalone document to
<output>. An output ending in .pdf is written as PDF, anything else as HTML.
With --literal, pass "-" as the input.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if input == "-" {
				input = ""
			}
			cfg := f.config()
			cfg.Rules = []task.Rule{f.rule(cmd, input, args[1])}
			return run(cmd.Context(), cfg)
		},
	}
	addSelectionFlags(cmd, f)
	addRenderFlags(cmd, f)
	return cmd
}

func newBuildCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build every snippet listed in the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f.config())
		},
	}
	addRenderFlags(cmd, f)
	return cmd
}

func extractTo(w io.Writer, fs afero.Fs, rule task.Rule) error {
	if rule.Input == "" && rule.Literal == "" {
		return task.ErrNoSource
	}
	ex, err := rule.Extractor(fs)
	if err != nil {
		return err
	}
	text, err := ex.Extract()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

func run(ctx context.Context, cfg app.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := app.Resolve(&cfg); err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}

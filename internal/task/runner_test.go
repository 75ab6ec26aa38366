package task

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/hyperifyio/gosnip/internal/cache"
	"github.com/hyperifyio/gosnip/internal/extract"
)

const source = `class SomeClass
  def some_method(arg)
    if arg == 0
      x = 0
    end
  end
end
`

func newRunner(t *testing.T) (*Runner, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "src/sample.rb", []byte(source), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	nop := zerolog.Nop()
	return &Runner{Fs: fsys, Log: &nop}, fsys
}

func readString(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestRun_BuildsThenSkips(t *testing.T) {
	r, fsys := newRunner(t)
	rules := []Rule{{
		Output: "out/some_method.html",
		Input:  "src/sample.rb",
		Select: Selection{Method: "some_method", PreSkip: 1, PostSkip: 1},
	}}
	sum, err := r.Run(context.Background(), rules)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Built != 1 || sum.Skipped != 0 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	doc := readString(t, fsys, "out/some_method.html")
	if !strings.HasPrefix(doc, "<html>") || !strings.HasSuffix(doc, "</html>\n") {
		t.Fatalf("expected html document, got %q", doc)
	}
	if strings.Contains(doc, "some_method") {
		t.Fatalf("preskip should have dropped the def line")
	}

	sum, err = r.Run(context.Background(), rules)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if sum.Built != 0 || sum.Skipped != 1 {
		t.Fatalf("expected skip on second run, got %+v", sum)
	}
}

func TestRun_RebuildsWhenInputNewer(t *testing.T) {
	r, fsys := newRunner(t)
	rules := []Rule{{Output: "out/all.html", Input: "src/sample.rb"}}
	if _, err := r.Run(context.Background(), rules); err != nil {
		t.Fatalf("Run: %v", err)
	}
	future := time.Now().Add(time.Hour)
	if err := fsys.Chtimes("src/sample.rb", future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	sum, err := r.Run(context.Background(), rules)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Built != 1 {
		t.Fatalf("expected rebuild, got %+v", sum)
	}
}

func TestRun_StampsDetectOptionChanges(t *testing.T) {
	r, _ := newRunner(t)
	r.Stamps = &cache.StampCache{Dir: ".gosnip-cache", Fs: r.Fs}
	rule := Rule{Output: "out/m.html", Input: "src/sample.rb", Select: Selection{Method: "some_method"}}
	if _, err := r.Run(context.Background(), []Rule{rule}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	sum, _ := r.Run(context.Background(), []Rule{rule})
	if sum.Skipped != 1 {
		t.Fatalf("expected skip with unchanged rule, got %+v", sum)
	}
	rule.Select.Window = extract.Window(1)
	sum, err := r.Run(context.Background(), []Rule{rule})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Built != 1 {
		t.Fatalf("expected rebuild after option change, got %+v", sum)
	}
}

func TestRun_ForceRebuilds(t *testing.T) {
	r, _ := newRunner(t)
	rules := []Rule{{Output: "out/lit.html", Literal: "variable_name"}}
	if _, err := r.Run(context.Background(), rules); err != nil {
		t.Fatalf("Run: %v", err)
	}
	r.Force = true
	sum, err := r.Run(context.Background(), rules)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Built != 1 {
		t.Fatalf("expected forced rebuild, got %+v", sum)
	}
}

func TestRun_MissingInputLeavesNoOutput(t *testing.T) {
	r, fsys := newRunner(t)
	rules := []Rule{
		{Output: "out/ok.html", Literal: "x = 1"},
		{Output: "out/bad.html", Input: "src/missing.rb", Select: Selection{Method: "x"}},
		{Output: "out/never.html", Literal: "y = 2"},
	}
	sum, err := r.Run(context.Background(), rules)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	if !strings.Contains(err.Error(), "out/bad.html") {
		t.Fatalf("expected output path in error, got %v", err)
	}
	if sum.Built != 1 {
		t.Fatalf("expected one rule built before failure, got %+v", sum)
	}
	for _, p := range []string{"out/bad.html", "out/never.html"} {
		if ok, _ := afero.Exists(fsys, p); ok {
			t.Fatalf("%s should not exist", p)
		}
	}
	entries, _ := afero.ReadDir(fsys, "out")
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".gosnip-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestRun_InvalidOptions(t *testing.T) {
	r, _ := newRunner(t)
	_, err := r.Run(context.Background(), []Rule{{
		Output: "out/x.html",
		Input:  "src/sample.rb",
		Select: Selection{Method: "x", Start: "a"},
	}})
	if !errors.Is(err, extract.ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
	if _, err := r.RunRule(Rule{Output: "out/y.html"}); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func TestRun_HonorsCancellation(t *testing.T) {
	r, _ := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, []Rule{{Output: "out/lit.html", Literal: "x"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRule_PDFOutput(t *testing.T) {
	r, fsys := newRunner(t)
	if _, err := r.Run(context.Background(), []Rule{{Output: "out/m.pdf", Input: "src/sample.rb", Select: Selection{Whole: true}}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if doc := readString(t, fsys, "out/m.pdf"); !strings.HasPrefix(doc, "%PDF-") {
		t.Fatalf("expected pdf output")
	}
}

func TestRule_AutoLanguage(t *testing.T) {
	rule := Rule{Input: "src/sample.rb", Render: RenderOptions{Language: LanguageAuto}}
	if got := rule.language(); got != "ruby" {
		t.Fatalf("language() = %q, want ruby", got)
	}
	if got := (Rule{}).language(); got != "ruby" {
		t.Fatalf("default language = %q", got)
	}
}

func TestSelection_Options(t *testing.T) {
	opts := Selection{Start: "a", PreMatches: []string{"x", "y"}}.Options()
	if opts.Start != "a" || opts.End != nil || opts.Ignore != nil {
		t.Fatalf("unexpected options %+v", opts)
	}
	if len(opts.PreMatches) != 2 || opts.PreMatches[1] != "y" {
		t.Fatalf("unexpected prematches %+v", opts.PreMatches)
	}
}

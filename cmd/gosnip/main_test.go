package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/gosnip/internal/app"
)

const sampleSource = `class SomeClass
  def some_method(arg)
    if arg == 0
      x = 0
    end
  end
end
`

func writeSample(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "sample.rb")
	if err := os.WriteFile(path, []byte(sampleSource), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return dir, path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GOSNIP_CONFIG", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExtractCommand_Method(t *testing.T) {
	_, in := writeSample(t)
	out, err := execute(t, "extract", in, "--method", "some_method", "--window", "1")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "    if arg == 0\n      x = 0\n    end\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestExtractCommand_Literal(t *testing.T) {
	out, err := execute(t, "extract", "--literal", "variable_name")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out != "variable_name" {
		t.Fatalf("got %q", out)
	}
}

func TestExtractCommand_NoSource(t *testing.T) {
	if _, err := execute(t, "extract"); err == nil {
		t.Fatalf("expected error without input or literal")
	}
}

func TestRenderCommand_WritesHTML(t *testing.T) {
	dir, in := writeSample(t)
	outPath := filepath.Join(dir, "out", "method.html")
	if _, err := execute(t, "render", in, outPath, "--method", "some_method", "--every", "1", "--style", "monokai"); err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	doc := string(b)
	if !strings.HasPrefix(doc, "<html><head><style") || !strings.Contains(doc, `<pre class="chroma ruby">`) {
		t.Fatalf("unexpected document: %q", doc)
	}
	if got := strings.Count(doc, `class="linenumber"`); got != 5 {
		t.Fatalf("expected 5 numbered lines, got %d", got)
	}
}

func TestRenderCommand_InvalidRegexFails(t *testing.T) {
	dir, in := writeSample(t)
	outPath := filepath.Join(dir, "bad.html")
	if _, err := execute(t, "render", in, outPath, "--start", "("); err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
	if _, err := os.Stat(outPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no output on failure, stat err=%v", err)
	}
}

func TestBuildCommand_Manifest(t *testing.T) {
	dir, in := writeSample(t)
	outPath := filepath.Join(dir, "literal.html")
	manifest := filepath.Join(dir, "gosnip.yaml")
	body := "snippets:\n" +
		"  - output: " + outPath + "\n" +
		"    literal: variable_name\n" +
		"  - output: " + filepath.Join(dir, "whole.html") + "\n" +
		"    input: " + in + "\n" +
		"    whole: true\n"
	if err := os.WriteFile(manifest, []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if _, err := execute(t, "build", "--config", manifest); err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, p := range []string{outPath, filepath.Join(dir, "whole.html")} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s: %v", p, err)
		}
	}
}

func TestRun_NoRules(t *testing.T) {
	t.Setenv("GOSNIP_CONFIG", "")
	if err := run(context.Background(), app.Config{}); !errors.Is(err, app.ErrNoRules) {
		t.Fatalf("expected ErrNoRules, got %v", err)
	}
}

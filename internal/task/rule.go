// Package task regenerates snippet documents whose inputs changed.
package task

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/hyperifyio/gosnip/internal/extract"
	"github.com/hyperifyio/gosnip/internal/highlight"
	"github.com/hyperifyio/gosnip/internal/render"
)

// LanguageAuto selects the lexer from the input file name.
const LanguageAuto = "auto"

// ErrNoSource is returned for a rule with neither an input nor literal text.
var ErrNoSource = errors.New("rule has no input or literal")

// Selection is the serializable form of extract.Options. Patterns are regular
// expression source text; empty strings mean unset.
type Selection struct {
	Whole      bool     `json:"whole,omitempty" yaml:"whole"`
	Method     string   `json:"method,omitempty" yaml:"method"`
	Start      string   `json:"startPattern,omitempty" yaml:"startPattern"`
	End        string   `json:"endPattern,omitempty" yaml:"endPattern"`
	Window     *int     `json:"window,omitempty" yaml:"window"`
	PreSkip    int      `json:"preskip,omitempty" yaml:"preskip"`
	PostSkip   int      `json:"postskip,omitempty" yaml:"postskip"`
	PreMatches []string `json:"prematches,omitempty" yaml:"prematches"`
	Ignore     string   `json:"ignore,omitempty" yaml:"ignore"`
}

// Options converts the selection for extract.New.
func (s Selection) Options() extract.Options {
	opts := extract.Options{
		Method:   s.Method,
		Window:   s.Window,
		PreSkip:  s.PreSkip,
		PostSkip: s.PostSkip,
	}
	if s.Start != "" {
		opts.Start = s.Start
	}
	if s.End != "" {
		opts.End = s.End
	}
	if s.Ignore != "" {
		opts.Ignore = s.Ignore
	}
	for _, p := range s.PreMatches {
		opts.PreMatches = append(opts.PreMatches, p)
	}
	return opts
}

// RenderOptions controls how the extracted text is turned into a document.
type RenderOptions struct {
	Language string `json:"language,omitempty" yaml:"language"`
	Style    string `json:"style,omitempty" yaml:"style"`
	Every    int    `json:"every,omitempty" yaml:"every"`
	Sep      string `json:"separator,omitempty" yaml:"separator"`
}

// Rule produces Output from Input, or from Literal when Input is empty.
type Rule struct {
	Output  string        `json:"output"`
	Input   string        `json:"input,omitempty"`
	Literal string        `json:"literal,omitempty"`
	Select  Selection     `json:"select"`
	Render  RenderOptions `json:"render"`
}

func (r Rule) validate() error {
	if strings.TrimSpace(r.Output) == "" {
		return errors.New("rule output is required")
	}
	if r.Input == "" && r.Literal == "" {
		return ErrNoSource
	}
	return nil
}

// Extractor builds the extractor the rule describes.
func (r Rule) Extractor(fs afero.Fs) (extract.Extractor, error) {
	switch {
	case r.Input == "" && r.Literal != "":
		return extract.Literal{Text: r.Literal}, nil
	case r.Input == "":
		return nil, ErrNoSource
	case r.Select.Whole:
		return extract.NewWholeFile(fs, r.Input), nil
	}
	return extract.New(fs, r.Input, r.Select.Options())
}

func (r Rule) language() string {
	lang := r.Render.Language
	if lang == LanguageAuto {
		lang = strings.ToLower(highlight.Detect(r.Input))
	}
	if lang == "" {
		lang = render.DefaultLanguage
	}
	return lang
}

func (r Rule) isPDF() bool {
	return strings.EqualFold(filepath.Ext(r.Output), ".pdf")
}

// Build returns the document bytes for the rule.
func (r Rule) Build(fs afero.Fs) ([]byte, error) {
	ex, err := r.Extractor(fs)
	if err != nil {
		return nil, err
	}
	numbers := render.LineNumberFilter{Every: r.Render.Every, Sep: r.Render.Sep}
	if r.isPDF() {
		var buf bytes.Buffer
		p := &render.PDFFormatter{Extractor: ex, Numbers: numbers}
		if err := p.Write(&buf); err != nil {
			return nil, fmt.Errorf("render pdf: %w", err)
		}
		return buf.Bytes(), nil
	}
	f := render.NewFormatter(ex)
	f.Language = r.language()
	f.Numbers = numbers
	f.Styler = render.Styler{Style: r.Render.Style, Language: f.Language}
	doc, err := f.Format()
	if err != nil {
		return nil, err
	}
	return []byte(doc + "\n"), nil
}

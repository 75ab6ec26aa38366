// Package render assembles extracted snippets into standalone documents.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hyperifyio/gosnip/internal/extract"
	"github.com/hyperifyio/gosnip/internal/highlight"
)

// DefaultLanguage is the lexer used when none is configured.
const DefaultLanguage = "ruby"

// Formatter renders the output of an Extractor as an HTML document with an
// embedded stylesheet and line numbers.
type Formatter struct {
	Extractor   extract.Extractor
	Highlighter highlight.Highlighter
	Styler      Styler
	Numbers     LineNumberFilter
	Language    string
}

// NewFormatter returns a Formatter with the default highlighter, language and
// line numbering.
func NewFormatter(ex extract.Extractor) *Formatter {
	return &Formatter{
		Extractor:   ex,
		Highlighter: highlight.Chroma{},
		Styler:      Styler{Style: highlight.DefaultStyle},
		Numbers:     LineNumberFilter{Every: DefaultEvery, Sep: DefaultSeparator},
		Language:    DefaultLanguage,
	}
}

func (f *Formatter) language() string {
	if f.Language == "" {
		return DefaultLanguage
	}
	return f.Language
}

// Convert returns the highlighted markup of the extracted text without any
// surrounding <pre> or <code> element.
func (f *Formatter) Convert() (string, error) {
	text, err := f.Extractor.Extract()
	if err != nil {
		return "", err
	}
	hl := f.Highlighter
	if hl == nil {
		hl = highlight.Chroma{}
	}
	markup, err := hl.Highlight(f.language(), toUTF8(text))
	if err != nil {
		return "", err
	}
	return stripBlockTags(markup), nil
}

// Format returns the complete HTML document.
func (f *Formatter) Format() (string, error) {
	code, err := f.Convert()
	if err != nil {
		return "", err
	}
	styler := f.Styler
	if styler.Language == "" {
		styler.Language = f.language()
	}
	style, err := styler.Render()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<html><head>%s</head><body><pre class="chroma %s">%s</pre></body></html>`,
		style, f.language(), f.Numbers.Filter(code)), nil
}

// stripBlockTags removes <pre> and <code> tags, keeping everything else
// byte for byte.
func stripBlockTags(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); a == atom.Pre || a == atom.Code {
				continue
			}
		}
		b.Write(z.Raw())
	}
}

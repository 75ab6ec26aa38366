// Package highlight turns source text into class-annotated HTML markup using
// Chroma lexers.
package highlight

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
)

// DefaultStyle is used when no style name is configured.
const DefaultStyle = "github"

// Highlighter colorizes source text for a language identifier.
type Highlighter interface {
	Highlight(language, source string) (string, error)
}

// Chroma emits one <span class="..."> per token using Chroma's short class
// names, wrapped in <pre class="chroma"><code>. Token spans never cross a
// line break so the markup can be split on "\n".
type Chroma struct{}

func (Chroma) Highlight(language, source string) (string, error) {
	lexer := Lexer(language)
	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", language, err)
	}
	var b strings.Builder
	b.WriteString(`<pre class="chroma"><code>`)
	for _, line := range chroma.SplitTokensIntoLines(it.Tokens()) {
		for _, tok := range line {
			writeToken(&b, tok)
		}
	}
	b.WriteString(`</code></pre>`)
	return b.String(), nil
}

// Lexer resolves a language identifier, falling back to plain text.
func Lexer(language string) chroma.Lexer {
	l := lexers.Get(language)
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}

// Detect returns the lexer name registered for filename's extension, or ""
// when no lexer claims it.
func Detect(filename string) string {
	if l := lexers.Match(filename); l != nil {
		return l.Config().Name
	}
	return ""
}

func writeToken(b *strings.Builder, tok chroma.Token) {
	value, nl := strings.CutSuffix(tok.Value, "\n")
	if value != "" {
		text := html.EscapeString(value)
		if cls := class(tok.Type); cls != "" {
			fmt.Fprintf(b, `<span class="%s">%s</span>`, cls, text)
		} else {
			b.WriteString(text)
		}
	}
	if nl {
		b.WriteByte('\n')
	}
}

func class(t chroma.TokenType) string {
	for _, c := range []chroma.TokenType{t, t.SubCategory(), t.Category()} {
		if cls, ok := chroma.StandardTypes[c]; ok && cls != "" {
			return cls
		}
	}
	return ""
}

// CSS returns the class stylesheet for a Chroma style. Unknown names fall
// back to Chroma's default style.
func CSS(style string) (string, error) {
	if style == "" {
		style = DefaultStyle
	}
	var buf bytes.Buffer
	f := chromahtml.New(chromahtml.WithClasses(true))
	if err := f.WriteCSS(&buf, styles.Get(style)); err != nil {
		return "", fmt.Errorf("write css for %s: %w", style, err)
	}
	return buf.String(), nil
}

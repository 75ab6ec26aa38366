package render

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/gosnip/internal/highlight"
)

// Styler produces the <style> block embedded in rendered documents.
type Styler struct {
	Style    string
	Language string
}

// Render returns the complete <style type="text/css"> element.
func (s Styler) Render() (string, error) {
	css, err := highlight.CSS(s.Style)
	if err != nil {
		return "", err
	}
	lang := s.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	var b strings.Builder
	b.WriteString("<style type=\"text/css\">\n")
	fmt.Fprintf(&b, ".%s { font-size: 24pt; font-weight: bold; }\n", lang)
	fmt.Fprintf(&b, ".%s .linenumber { color: #aaa; font-style: italic; font-size: 16pt; }\n", lang)
	b.WriteString(css)
	b.WriteString("</style>")
	return b.String(), nil
}

package render

import (
	"fmt"
	"strings"
)

const (
	DefaultEvery     = 5
	DefaultSeparator = "  "
)

// LineNumberFilter prefixes every line of markup with a line-number column.
// Only every Every-th line shows its number; the others get blank padding of
// the same width.
type LineNumberFilter struct {
	Every int
	Sep   string
}

func (f LineNumberFilter) withDefaults() LineNumberFilter {
	if f.Every <= 0 {
		f.Every = DefaultEvery
	}
	if f.Sep == "" {
		f.Sep = DefaultSeparator
	}
	return f
}

// Prefix returns the plain column text for 1-based line n.
func (f LineNumberFilter) Prefix(n int) string {
	f = f.withDefaults()
	if n%f.Every == 0 {
		return fmt.Sprintf("%3d%s  ", n, f.Sep)
	}
	return "   " + f.Sep + "  "
}

// Filter numbers each line of text. Trailing empty lines are dropped.
func (f LineNumberFilter) Filter(text string) string {
	lines := splitLines(text)
	for i, ln := range lines {
		lines[i] = `<span class="linenumber">` + f.Prefix(i+1) + `</span>` + ln
	}
	return strings.Join(lines, "\n")
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

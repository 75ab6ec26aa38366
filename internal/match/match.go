// Package match provides line predicates used to locate snippet boundaries.
package match

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsupported is returned by From for values that cannot act as a matcher.
var ErrUnsupported = errors.New("unsupported matcher value")

// Matcher reports whether a single line of text matches.
type Matcher interface {
	Match(line string) bool
}

type constant bool

func (c constant) Match(string) bool { return bool(c) }

var (
	// Always matches every line.
	Always Matcher = constant(true)
	// Never matches no line.
	Never Matcher = constant(false)
)

type regexMatcher struct{ re *regexp.Regexp }

func (m regexMatcher) Match(line string) bool { return m.re.MatchString(line) }

func (m regexMatcher) String() string { return m.re.String() }

// Regexp wraps a compiled regular expression.
func Regexp(re *regexp.Regexp) Matcher {
	return regexMatcher{re: re}
}

// Pattern compiles expr verbatim as regular expression syntax. The text is
// not escaped; callers matching literal text that contains metacharacters
// should use Literal or regexp.QuoteMeta.
func Pattern(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", expr, err)
	}
	return regexMatcher{re: re}, nil
}

type literalMatcher string

func (m literalMatcher) Match(line string) bool { return strings.Contains(line, string(m)) }

// Literal matches lines containing s as an exact substring.
func Literal(s string) Matcher {
	return literalMatcher(s)
}

// Func adapts a plain predicate.
type Func func(line string) bool

func (f Func) Match(line string) bool { return f(line) }

// From normalizes a configuration value into a Matcher. Matchers, compiled
// regular expressions and predicates are used as-is; strings are compiled
// with Pattern.
func From(v any) (Matcher, error) {
	switch m := v.(type) {
	case Matcher:
		return m, nil
	case *regexp.Regexp:
		if m == nil {
			return nil, fmt.Errorf("%w: nil regexp", ErrUnsupported)
		}
		return Regexp(m), nil
	case func(string) bool:
		if m == nil {
			return nil, fmt.Errorf("%w: nil func", ErrUnsupported)
		}
		return Func(m), nil
	case string:
		return Pattern(m)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
}

// FromOr is From with a default for nil values.
func FromOr(v any, def Matcher) (Matcher, error) {
	if v == nil {
		return def, nil
	}
	return From(v)
}

// All normalizes every element of vs, preserving order.
func All(vs []any) ([]Matcher, error) {
	out := make([]Matcher, 0, len(vs))
	for i, v := range vs {
		m, err := From(v)
		if err != nil {
			return nil, fmt.Errorf("matcher %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

package extract

import (
    "bufio"
    "errors"
    "fmt"
    "io"
    "regexp"
    "strings"

    "github.com/spf13/afero"

    "github.com/hyperifyio/gosnip/internal/match"
)

// ErrInvalidOptions is returned by New when the options cannot describe a
// single extraction.
var ErrInvalidOptions = errors.New("invalid extraction options")

// Options configures a pattern or method extraction. Start, End, Ignore and
// the PreMatches elements accept anything match.From accepts.
type Options struct {
    // Method selects method mode. It cannot be combined with Start or End.
    Method string
    Start  any
    End    any

    // Window, when set, overrides PreSkip and PostSkip with the same value.
    Window   *int
    PreSkip  int
    PostSkip int

    // PreMatches must each match, in order, before Start is considered.
    PreMatches []any
    // Ignore drops matching lines from the result. They still count
    // toward PreSkip.
    Ignore any
}

// Window returns a pointer suitable for Options.Window.
func Window(n int) *int {
    return &n
}

// Pattern copies the lines between a start and an end condition.
type Pattern struct {
    Fs   afero.Fs
    Path string

    start      match.Matcher
    end        match.Matcher
    method     *regexp.Regexp
    preSkip    int
    postSkip   int
    preMatches []match.Matcher
    ignore     match.Matcher
}

// New builds a Pattern for path. Without Method, Start or End the whole file
// is selected. A nil fs reads from the OS filesystem.
func New(fs afero.Fs, path string, opts Options) (*Pattern, error) {
    p := &Pattern{Fs: orOS(fs), Path: path}
    var err error
    if opts.Method != "" {
        if opts.Start != nil || opts.End != nil {
            return nil, fmt.Errorf("%w: method %q cannot be combined with start/end patterns", ErrInvalidOptions, opts.Method)
        }
        p.method = methodPattern(opts.Method)
    } else {
        if p.start, err = match.FromOr(opts.Start, match.Always); err != nil {
            return nil, fmt.Errorf("%w: start: %w", ErrInvalidOptions, err)
        }
        if p.end, err = match.FromOr(opts.End, match.Never); err != nil {
            return nil, fmt.Errorf("%w: end: %w", ErrInvalidOptions, err)
        }
    }

    if opts.Window != nil {
        p.preSkip, p.postSkip = *opts.Window, *opts.Window
    } else {
        p.preSkip, p.postSkip = opts.PreSkip, opts.PostSkip
    }
    if p.preSkip < 0 || p.postSkip < 0 {
        return nil, fmt.Errorf("%w: negative skip (pre=%d post=%d)", ErrInvalidOptions, p.preSkip, p.postSkip)
    }

    if p.preMatches, err = match.All(opts.PreMatches); err != nil {
        return nil, fmt.Errorf("%w: prematches: %w", ErrInvalidOptions, err)
    }
    if p.ignore, err = match.FromOr(opts.Ignore, match.Never); err != nil {
        return nil, fmt.Errorf("%w: ignore: %w", ErrInvalidOptions, err)
    }
    return p, nil
}

// methodPattern matches "<indent>def <name>" and captures the indentation.
func methodPattern(name string) *regexp.Regexp {
    return regexp.MustCompile(`^(\s*)def\s+` + regexp.QuoteMeta(name) + `(?:\W|$)`)
}

type scanState int

const (
    skipping scanState = iota
    copying
    done
)

// scan holds the mutable state of one Extract call.
type scan struct {
    p      *Pattern
    state  scanState
    cursor int
    skip   int
    prefix string
    lines  []string
}

// Extract reads the file line by line and returns the selected region.
func (p *Pattern) Extract() (string, error) {
    f, err := orOS(p.Fs).Open(p.Path)
    if err != nil {
        return "", err
    }
    defer f.Close()

    s := &scan{p: p, skip: p.preSkip}
    r := bufio.NewReader(f)
    for s.state != done {
        line, err := r.ReadString('\n')
        if line != "" {
            s.step(line)
        }
        if err == io.EOF {
            break
        }
        if err != nil {
            return "", err
        }
    }
    return s.result(), nil
}

func (s *scan) step(line string) {
    text := chomp(line)
    switch s.state {
    case skipping:
        if s.cursor < len(s.p.preMatches) {
            if s.p.preMatches[s.cursor].Match(text) {
                s.cursor++
            }
            return
        }
        if s.startMatches(text) {
            s.state = copying
            s.emit(line, text)
        }
    case copying:
        s.emit(line, text)
        if s.endMatches(text) {
            s.state = done
        }
    }
}

func (s *scan) startMatches(text string) bool {
    if s.p.method == nil {
        return s.p.start.Match(text)
    }
    m := s.p.method.FindStringSubmatch(text)
    if m == nil {
        return false
    }
    s.prefix = m[1]
    return true
}

// endMatches in method mode accepts the first "end" at the def's indentation.
// Nested blocks are not counted.
func (s *scan) endMatches(text string) bool {
    if s.p.method == nil {
        return s.p.end.Match(text)
    }
    return strings.TrimRight(text, " \t") == s.prefix+"end"
}

func (s *scan) emit(line, text string) {
    if s.skip <= 0 && !s.p.ignore.Match(text) {
        s.lines = append(s.lines, line)
    }
    s.skip--
}

func (s *scan) result() string {
    n := len(s.lines) - s.p.postSkip
    if n <= 0 {
        return ""
    }
    return strings.Join(s.lines[:n], "")
}

func chomp(line string) string {
    line = strings.TrimSuffix(line, "\n")
    return strings.TrimSuffix(line, "\r")
}

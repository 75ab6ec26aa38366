package extract

import (
    "io"

    "github.com/spf13/afero"
)

// Extractor defines a minimal interface for snippet extraction strategies.
// Implementations swap how a region is located without changing callers.
type Extractor interface {
    // Extract returns the snippet text with original line endings preserved.
    // Implementations should be deterministic and avoid side effects.
    Extract() (string, error)
}

// Literal returns a fixed string.
type Literal struct {
    Text string
}

func (l Literal) Extract() (string, error) {
    return l.Text, nil
}

// WholeFile returns the complete contents of a file.
type WholeFile struct {
    Fs   afero.Fs
    Path string
}

// NewWholeFile reads path from fs, or from the OS filesystem when fs is nil.
func NewWholeFile(fs afero.Fs, path string) *WholeFile {
    return &WholeFile{Fs: orOS(fs), Path: path}
}

func (w *WholeFile) Extract() (string, error) {
    f, err := orOS(w.Fs).Open(w.Path)
    if err != nil {
        return "", err
    }
    defer f.Close()
    b, err := io.ReadAll(f)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

func orOS(fs afero.Fs) afero.Fs {
    if fs == nil {
        return afero.NewOsFs()
    }
    return fs
}

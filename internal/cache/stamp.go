package cache

import (
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "github.com/spf13/afero"
)

// Stamp records what an output was last built from.
type Stamp struct {
    Output  string    `json:"output"`
    Digest  string    `json:"digest"`
    SavedAt time.Time `json:"saved_at"`
}

// StampCache stores one <key>.stamp.json per output where key is
// sha256(output). A stamp lets the build tell when an output is stale even
// though its modification time is newer than the input, e.g. after the
// extraction options changed.
type StampCache struct {
    Dir string
    // Fs defaults to the OS filesystem.
    Fs afero.Fs
    // StrictPerms restricts permissions: dirs 0700, files 0600.
    StrictPerms bool
}

// Digest hashes the input contents together with the JSON encoding of the
// options that produced the output.
func Digest(input []byte, opts any) (string, error) {
    enc, err := json.Marshal(opts)
    if err != nil {
        return "", fmt.Errorf("encode options: %w", err)
    }
    h := sha256.New()
    h.Write(input)
    h.Write([]byte{0})
    h.Write(enc)
    return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *StampCache) fs() afero.Fs {
    if c.Fs == nil {
        return afero.NewOsFs()
    }
    return c.Fs
}

func (c *StampCache) ensureDir() error {
    if c == nil || c.Dir == "" {
        return errors.New("cache dir not configured")
    }
    perm := os.FileMode(0o755)
    if c.StrictPerms {
        perm = 0o700
    }
    if err := c.fs().MkdirAll(c.Dir, perm); err != nil {
        return err
    }
    if c.StrictPerms {
        _ = c.fs().Chmod(c.Dir, 0o700)
    }
    return nil
}

func (c *StampCache) key(output string) string {
    h := sha256.Sum256([]byte(filepath.Clean(output)))
    return hex.EncodeToString(h[:])
}

func (c *StampCache) stampPath(output string) string {
    return filepath.Join(c.Dir, c.key(output)+".stamp.json")
}

// Load returns the stamp for output if present.
func (c *StampCache) Load(output string) (*Stamp, error) {
    if err := c.ensureDir(); err != nil {
        return nil, err
    }
    b, err := afero.ReadFile(c.fs(), c.stampPath(output))
    if err != nil {
        return nil, err
    }
    var s Stamp
    if err := json.Unmarshal(b, &s); err != nil {
        return nil, err
    }
    return &s, nil
}

// Fresh reports whether the stored digest for output equals digest.
func (c *StampCache) Fresh(output, digest string) bool {
    s, err := c.Load(output)
    return err == nil && s.Digest == digest
}

// Save writes the stamp via a temp file and rename.
func (c *StampCache) Save(output, digest string) error {
    if err := c.ensureDir(); err != nil {
        return err
    }
    b, err := json.Marshal(Stamp{Output: output, Digest: digest, SavedAt: time.Now().UTC()})
    if err != nil {
        return fmt.Errorf("encode stamp: %w", err)
    }
    perm := os.FileMode(0o644)
    if c.StrictPerms {
        perm = 0o600
    }
    path := c.stampPath(output)
    tmp := path + ".tmp"
    if err := afero.WriteFile(c.fs(), tmp, b, perm); err != nil {
        return fmt.Errorf("write stamp: %w", err)
    }
    return c.fs().Rename(tmp, path)
}

// Remove deletes the stamp for output; a missing stamp is not an error.
func (c *StampCache) Remove(output string) error {
    if c == nil || c.Dir == "" {
        return nil
    }
    err := c.fs().Remove(c.stampPath(output))
    if err != nil && !errors.Is(err, os.ErrNotExist) {
        return err
    }
    return nil
}

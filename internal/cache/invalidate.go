package cache

import (
    "encoding/json"
    "errors"
    "io/fs"
    "strings"
    "time"

    "github.com/spf13/afero"
)

// ClearDir removes the directory and all contents. It recreates the directory
// afterwards to leave a valid empty cache location.
func ClearDir(fsys afero.Fs, dir string) error {
    if strings.TrimSpace(dir) == "" {
        return errors.New("empty dir")
    }
    if fsys == nil {
        fsys = afero.NewOsFs()
    }
    if err := fsys.RemoveAll(dir); err != nil {
        return err
    }
    return fsys.MkdirAll(dir, 0o755)
}

// PurgeByAge removes stamps saved more than maxAge ago. Unreadable or
// malformed stamps are skipped.
func PurgeByAge(fsys afero.Fs, dir string, maxAge time.Duration) (int, error) {
    if maxAge <= 0 {
        return 0, nil
    }
    if fsys == nil {
        fsys = afero.NewOsFs()
    }
    now := time.Now().UTC()
    removed := 0
    err := afero.Walk(fsys, dir, func(path string, info fs.FileInfo, err error) error {
        if err != nil {
            if errors.Is(err, fs.ErrNotExist) {
                return nil
            }
            return err
        }
        if info.IsDir() || !strings.HasSuffix(info.Name(), ".stamp.json") {
            return nil
        }
        b, err := afero.ReadFile(fsys, path)
        if err != nil {
            return nil
        }
        var s Stamp
        if err := json.Unmarshal(b, &s); err != nil {
            return nil
        }
        if now.Sub(s.SavedAt) <= maxAge {
            return nil
        }
        removed++
        _ = fsys.Remove(path)
        return nil
    })
    return removed, err
}

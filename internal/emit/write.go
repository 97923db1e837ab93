package emit

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Status tells what Write did, or what it would do in check mode.
type Status uint8

const (
	Unchanged Status = iota
	Created
	Updated
)

func (s Status) String() string {
	switch s {
	case Created:
		return "created"
	case Updated:
		return "updated"
	}
	return "unchanged"
}

// Compare reports how the file on disk differs from f without touching it.
func Compare(f GeneratedFile) (Status, error) {
	// #nosec G304 -- path is derived from the package directory
	old, err := os.ReadFile(f.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Created, nil
		}
		return Unchanged, err
	}
	if bytes.Equal(old, f.Content) {
		return Unchanged, nil
	}
	return Updated, nil
}

// Write stores f when its content differs from what is on disk. The file is
// replaced atomically through a temp file in the same directory.
func Write(f GeneratedFile) (Status, error) {
	status, err := Compare(f)
	if err != nil || status == Unchanged {
		return status, err
	}
	if err := WriteAtomic(f.Path(), f.Content); err != nil {
		return Unchanged, err
	}
	return status, nil
}

// WriteAtomic writes data to path via a temp file and rename.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".bindsadapter-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename файла уже нет
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

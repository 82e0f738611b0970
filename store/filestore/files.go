// Package filestore keeps records as individual JSON documents on disk.
package filestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"contact-intake-api/store"

	"github.com/natefinch/atomic"
)

const (
	fileExt    = ".json"
	tempPrefix = ".tmp-"
)

func encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// createExclusive writes data to path only if path does not exist yet. The
// bytes land in a temp file first and are hard-linked into place, so readers
// never observe a half-written document.
func createExclusive(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Link(tmpName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("link into place: %w", err)
	}
	return nil
}

// replace atomically overwrites path with data.
func replace(path string, data []byte) error {
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

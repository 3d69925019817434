package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// collection is one JSON array on disk. Writers hold mu exclusively for the
// whole read-modify-write; the file is replaced by rename so readers never
// see a partial write.
type collection[T any] struct {
	mu   sync.RWMutex
	path string
}

func newCollection[T any](dir, name string) *collection[T] {
	return &collection[T]{path: filepath.Join(dir, name)}
}

// read returns an empty slice for a missing or blank file and
// ErrCorruptStore for anything it cannot decode.
func (c *collection[T]) read() ([]T, error) {
	raw, err := os.ReadFile(c.path)

	if err != nil {
		if os.IsNotExist(err) {
			return []T{}, nil
		}
		return nil, errors.Wrapf(ErrCorruptStore, "read %s: %v", c.path, err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return []T{}, nil
	}

	var records []T

	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrapf(ErrCorruptStore, "decode %s: %v", c.path, err)
	}

	if records == nil {
		records = []T{}
	}

	return records, nil
}

func (c *collection[T]) write(records []T) error {
	if records == nil {
		records = []T{}
	}

	return writeJSONFile(c.path, records)
}

func writeJSONFile(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")

	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}

	return writeFileAtomic(path, append(data, '\n'))
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")

	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}

	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return errors.Wrapf(err, "write %s", tmpName)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return errors.Wrapf(err, "sync %s", tmpName)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "close %s", tmpName)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "replace %s", path)
	}

	return nil
}

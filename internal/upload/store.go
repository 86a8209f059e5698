// Package upload stores uploaded images on local disk under sanitized names.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/alertkit/internal/system"
)

var (
	// ErrNotFound is returned for names that do not resolve to a stored file.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName is returned when a name sanitizes to nothing.
	ErrInvalidName = errors.New("invalid filename")
)

// Store is a flat directory of uploaded files. Writing the same sanitized name
// twice replaces the earlier file.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir is the directory files are stored in.
func (s *Store) Dir() string { return s.dir }

// Save writes r under SecureFilename(name) and returns the stored name. The
// file appears atomically once fully written.
func (s *Store) Save(name string, r io.Reader) (string, int64, error) {
	stored := SecureFilename(name)
	if stored == "" {
		return "", 0, ErrInvalidName
	}

	var written int64
	err := system.WriteFileAtomic(filepath.Join(s.dir, stored), func(w io.Writer) error {
		n, err := io.Copy(w, r)
		written = n
		return err
	})
	if err != nil {
		return "", 0, fmt.Errorf("store %s: %w", stored, err)
	}
	return stored, written, nil
}

// Path resolves a stored name to its file. Names that could leave the upload
// directory, and names of missing or non-regular files, yield ErrNotFound.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrNotFound
	}
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return path, nil
}

// Read returns the raw bytes of a stored file.
func (s *Store) Read(name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

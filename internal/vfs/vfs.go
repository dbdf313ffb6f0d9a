// Package vfs abstracts the scratch filesystem the processing pipeline reads
// originals from and writes rendered frames to. The browser target keeps the
// session's files in memory; the CLI target maps onto a real directory.
package vfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FS is the capability set the pipeline needs: flat reads and writes plus a
// listing of one directory level.
type FS interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	// List returns the names of regular files directly under dir, sorted.
	List(dir string) ([]string, error)
	Remove(path string) error
}

// MemFS is an in-memory FS. Safe for concurrent use; worker tasks read
// originals while the UI thread imports new ones.
type MemFS struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemFS returns an empty in-memory filesystem.
func NewMemFS() *MemFS {
	return &MemFS{files: map[string][]byte{}}
}

func (m *MemFS) Read(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[filepath.ToSlash(path)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	return data, nil
}

func (m *MemFS) Write(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[filepath.ToSlash(path)] = data
	return nil
}

func (m *MemFS) List(dir string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := filepath.ToSlash(dir)
	if prefix != "" && prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}

	var names []string
	for path := range m.files {
		rest, found := strings.CutPrefix(path, prefix)
		if !found || rest == "" {
			continue
		}
		if !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemFS) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := filepath.ToSlash(path)
	if _, ok := m.files[key]; !ok {
		return fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	delete(m.files, key)
	return nil
}

// DirFS is an FS rooted at a real directory, used by the CLI target.
type DirFS struct {
	root string
}

// NewDirFS returns an FS rooted at root.
func NewDirFS(root string) *DirFS {
	return &DirFS{root: root}
}

func (d *DirFS) Read(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.root, path))
}

func (d *DirFS) Write(path string, data []byte) error {
	full := filepath.Join(d.root, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func (d *DirFS) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(d.root, dir))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (d *DirFS) Remove(path string) error {
	return os.Remove(filepath.Join(d.root, path))
}

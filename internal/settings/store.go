package settings

import (
	"errors"
	"os"
	"sync"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/fileutil"
)

// Store reads and writes the raw settings blob.
// Read returns (nil, nil) when nothing has been persisted yet.
type Store interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// FileStore persists settings to a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (f *FileStore) Write(data []byte) error {
	return fileutil.WriteFileAtomic(f.path, data, 0o600)
}

// MemoryStore keeps the blob in memory. Useful for tests and ephemeral previews.
type MemoryStore struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

// NewMemoryStore creates a MemoryStore seeded with data (may be nil).
func NewMemoryStore(data []byte) *MemoryStore {
	return &MemoryStore{data: data}
}

func (m *MemoryStore) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStore) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.writes++
	return nil
}

// Writes returns how many times Write was called.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

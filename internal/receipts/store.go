// Package receipts persists the receipts of installed servers in a JSON index
// under the tool home.
package receipts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"lspinstall/internal/pip"
)

// ErrNotInstalled is returned for names without an entry.
var ErrNotInstalled = errors.New("server is not installed")

// Entry records one installed server.
type Entry struct {
	Name             string      `json:"name"`
	InstallDir       string      `json:"install_dir"`
	Receipt          pip.Receipt `json:"receipt"`
	RequestedVersion string      `json:"requested_version,omitempty"`
	InstalledAt      time.Time   `json:"installed_at"`
}

// Index is the on-disk document.
type Index struct {
	Entries map[string]Entry `json:"entries"`
}

// Store reads and writes the index at a fixed path. Writes are serialized.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the index file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the index. A missing file is an empty index.
func (s *Store) Load() (Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the entry for name.
func (s *Store) Get(name string) (Entry, error) {
	idx, err := s.Load()
	if err != nil {
		return Entry{}, err
	}
	entry, ok := idx.Entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%s: %w", name, ErrNotInstalled)
	}
	return entry, nil
}

// List returns every entry sorted by name.
func (s *Store) List() ([]Entry, error) {
	idx, err := s.Load()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Put inserts or replaces the entry for e.Name.
func (s *Store) Put(e Entry) error {
	if e.Name == "" {
		return errors.New("receipt entry requires a name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.load()
	if err != nil {
		return err
	}
	idx.Entries[e.Name] = e
	return s.save(idx)
}

// Delete removes the entry for name.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := idx.Entries[name]; !ok {
		return fmt.Errorf("%s: %w", name, ErrNotInstalled)
	}
	delete(idx.Entries, name)
	return s.save(idx)
}

func (s *Store) load() (Index, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Index{Entries: map[string]Entry{}}, nil
		}
		return Index{}, fmt.Errorf("read receipts: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(contents, &idx); err != nil {
		return Index{}, fmt.Errorf("unmarshal receipts: %w", err)
	}
	if idx.Entries == nil {
		idx.Entries = map[string]Entry{}
	}
	return idx, nil
}

func (s *Store) save(idx Index) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prepare receipts directory: %w", err)
	}

	buf, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal receipts: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "receipts-*.json")
	if err != nil {
		return fmt.Errorf("create temp receipts: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("write receipts temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close receipts temp: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace receipts: %w", err)
	}
	return nil
}

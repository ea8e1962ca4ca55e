package fingerprint

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store is the persisted datasetName→fingerprint map. It lives in a flat
// tab-separated file sorted by dataset name; a missing file is an empty
// store. Entries are mutated only after a publish has been verified.
type Store struct {
	path    string
	entries map[string]string
}

// OpenStore loads the store at path, treating a missing file as empty.
func OpenStore(path string) (*Store, error) {
	s := &Store{path: path, entries: make(map[string]string)}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open checksum store: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\n")
		if text == "" {
			continue
		}
		name, sum, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("checksum store %s line %d: malformed entry", path, line)
		}
		s.entries[name] = sum
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read checksum store: %w", err)
	}
	return s, nil
}

// Get returns the stored fingerprint, or "" when none is recorded.
func (s *Store) Get(name string) (string, error) {
	return s.entries[name], nil
}

// Set records a fingerprint in memory. Save persists it.
func (s *Store) Set(name, sum string) {
	s.entries[name] = sum
}

// Len returns the number of recorded datasets.
func (s *Store) Len() int { return len(s.entries) }

// Names returns recorded dataset names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save writes the store sorted by dataset name, via a temp file and rename
// so a crash mid-write cannot truncate the previous state.
func (s *Store) Save() error {
	var b strings.Builder
	for _, name := range s.Names() {
		fmt.Fprintf(&b, "%s\t%s\n", name, s.entries[name])
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checksum store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("write checksum store: %w", err)
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write checksum store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write checksum store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write checksum store: %w", err)
	}
	return nil
}

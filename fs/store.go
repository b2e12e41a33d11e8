package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/shelfscout"
)

// File names inside a Store directory.
const (
	PatternsFile   = "patterns.json"
	ProxyCacheFile = "proxy-cache.json"
	RunsFile       = "runs.json"
)

// Ensure Store implements the persistence interfaces at compile time.
var (
	_ shelfscout.PatternStore = (*Store)(nil)
	_ shelfscout.ProxyCache   = (*Store)(nil)
	_ shelfscout.RunHistory   = (*Store)(nil)
)

// Store keeps patterns, proxy cache and run history as JSON files in one
// directory. Every save rewrites the whole file atomically: the new content
// is written to a temporary file which is then renamed over the old one.
type Store struct {
	dir string
}

// NewStore creates a new Store rooted at dir. The directory is created on
// first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) LoadPatterns(ctx context.Context) (map[string]*shelfscout.DomainPattern, error) {
	var patterns map[string]*shelfscout.DomainPattern
	if err := s.read(PatternsFile, &patterns); err != nil {
		return nil, err
	}
	return patterns, nil
}

func (s *Store) SavePatterns(ctx context.Context, patterns map[string]*shelfscout.DomainPattern) error {
	return s.write(PatternsFile, patterns)
}

func (s *Store) LoadProxyCache(ctx context.Context) (map[string]*shelfscout.ProxyCacheEntry, error) {
	var entries map[string]*shelfscout.ProxyCacheEntry
	if err := s.read(ProxyCacheFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) SaveProxyCache(ctx context.Context, entries map[string]*shelfscout.ProxyCacheEntry) error {
	return s.write(ProxyCacheFile, entries)
}

func (s *Store) LoadRuns(ctx context.Context) ([]*shelfscout.RunSummary, error) {
	var runs []*shelfscout.RunSummary
	if err := s.read(RunsFile, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *Store) SaveRuns(ctx context.Context, runs []*shelfscout.RunSummary) error {
	if runs == nil {
		runs = []*shelfscout.RunSummary{}
	}
	return s.write(RunsFile, runs)
}

func (s *Store) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return shelfscout.Errorf(shelfscout.ENOTFOUND, "%s not found", name)
	} else if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func (s *Store) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	return WriteFileAtomic(filepath.Join(s.dir, name), data)
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it over path, so readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

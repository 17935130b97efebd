package config

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store holds merged configuration categories.
// It is safe for concurrent use.
type Store struct {
	root   *Map
	parsed map[string]struct{}
	mu     sync.RWMutex
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		root:   NewMap(),
		parsed: make(map[string]struct{}),
	}
}

// Category returns a copy of the named category.
// A missing category yields an empty map, never nil.
func (s *Store) Category(name string) *Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root.Map(name).Clone()
}

// Categories returns the category names in load order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root.Keys()
}

// Merge deep-merges m into the store. The top level of m is the category level.
func (s *Store) Merge(m *Map) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root.Merge(m)
}

// Set replaces a single key inside a category.
func (s *Store) Set(category, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, ok := s.root.values[category].(*Map)
	if !ok {
		cat = NewMap()
		s.root.Set(category, cat)
	}
	cat.Set(key, value)
}

// LoadBytes decodes YAML or JSON data and merges it into the store.
func (s *Store) LoadBytes(data []byte) error {
	m, err := Decode(data)
	if err != nil {
		return err
	}
	s.Merge(m)
	return nil
}

// LoadFile loads a single file from disk. Files already loaded are skipped.
func (s *Store) LoadFile(name string) error {
	if !supported(name) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = name
	}
	if s.seen(abs) {
		return nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading %q: %w", name, err)
	}
	if err := s.LoadBytes(data); err != nil {
		return fmt.Errorf("loading %q: %w", name, err)
	}
	return nil
}

// LoadPath loads a file or every supported file directly inside a directory.
// Directories are not walked recursively. Files are loaded in lexical order.
func (s *Store) LoadPath(name string) error {
	info, err := os.Stat(name)
	if err != nil {
		return fmt.Errorf("stat %q: %w", name, err)
	}
	if !info.IsDir() {
		return s.LoadFile(name)
	}
	entries, err := os.ReadDir(name)
	if err != nil {
		return fmt.Errorf("reading dir %q: %w", name, err)
	}
	for _, e := range entries {
		if e.IsDir() || !supported(e.Name()) {
			continue
		}
		if err := s.LoadFile(filepath.Join(name, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadFS loads every supported file in fsys, walking it in lexical order.
// Unlike LoadFile, repeated calls load the files again.
func (s *Store) LoadFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supported(p) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %q: %w", p, err)
		}
		if err := s.LoadBytes(data); err != nil {
			return fmt.Errorf("loading %q: %w", p, err)
		}
		return nil
	})
}

// seen marks key as parsed and reports whether it had been parsed before.
func (s *Store) seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parsed[key]; ok {
		return true
	}
	s.parsed[key] = struct{}{}
	return false
}

func supported(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Decode parses YAML or JSON data into an ordered Map.
// The document root must be a mapping. An empty document yields an empty map.
func Decode(data []byte) (*Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewMap(), nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: root must be a mapping", ErrInvalidFile)
	}
	v, err := decodeNode(root)
	if err != nil {
		return nil, err
	}
	return v.(*Map), nil
}

func decodeNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return decodeNode(n.Alias)
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("%w: line %d: %s", ErrInvalidFile, n.Content[i].Line, err)
			}
			v, err := decodeNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: line %d: %s", ErrInvalidFile, n.Line, err)
		}
		return v, nil
	}
}

// Package preset loads named color option maps from the data directory.
package preset

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"

	"themeplane/theme"
)

// ErrNotFound is returned when no preset file matches a name.
var ErrNotFound = errors.New("preset not found")

var extensions = []string{".yaml", ".yml", ".json"}

//go:embed builtin
var builtinFS embed.FS

// Store reads preset files from <baseDir>/presets. Each file holds a single
// mapping of theme keys to colors; key order is preserved so later keys
// overwrite earlier ones the same way inline options do.
type Store struct {
	baseDir  string
	builtins fs.FS
	mu       sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithBuiltins adds the palettes compiled into the binary. A file in the
// presets directory with the same name takes precedence.
func WithBuiltins() Option {
	return func(s *Store) {
		sub, err := fs.Sub(builtinFS, "builtin")
		if err != nil {
			return
		}
		s.builtins = sub
	}
}

// New creates a Store rooted at baseDir.
func New(baseDir string, opts ...Option) *Store {
	s := &Store{baseDir: baseDir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory holding preset files.
func (s *Store) Dir() string {
	return filepath.Join(s.baseDir, "presets")
}

// EnsureDirs creates the presets directory.
func (s *Store) EnsureDirs() error {
	return os.MkdirAll(s.Dir(), 0o755)
}

// List returns the available preset names sorted alphabetically.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var names []string
	collect := func(entries []fs.DirEntry) {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := filepath.Ext(entry.Name())
			if !knownExtension(ext) {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ext)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read presets directory: %w", err)
	}
	collect(entries)

	if s.builtins != nil {
		builtin, err := fs.ReadDir(s.builtins, ".")
		if err != nil {
			return nil, fmt.Errorf("read builtin presets: %w", err)
		}
		collect(builtin)
	}

	sort.Strings(names)
	return names, nil
}

// Load reads the preset called name.
func (s *Store) Load(name string) (theme.Entries, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(name)
	if err != nil {
		return nil, err
	}
	entries, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode preset %s: %w", name, err)
	}
	return entries, nil
}

func (s *Store) read(name string) ([]byte, error) {
	for _, ext := range extensions {
		data, err := os.ReadFile(filepath.Join(s.Dir(), name+ext))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read preset %s: %w", name, err)
		}
	}
	if s.builtins != nil {
		for _, ext := range extensions {
			data, err := fs.ReadFile(s.builtins, name+ext)
			if err == nil {
				return data, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Decode parses a YAML (or JSON) mapping into ordered entries. Scalar
// values are converted to strings; a null value usually means an unquoted
// hex color was read as a YAML comment.
func Decode(data []byte) (theme.Entries, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	out := make(theme.Entries, 0, len(doc))
	for _, item := range doc {
		key := fmt.Sprint(item.Key)
		switch v := item.Value.(type) {
		case nil:
			return nil, fmt.Errorf("value for %q is empty (quote colors that start with '#')", key)
		case string:
			out = append(out, theme.Entry{Key: key, Value: v})
		case int, int64, uint64, float64, bool:
			out = append(out, theme.Entry{Key: key, Value: fmt.Sprint(v)})
		default:
			return nil, fmt.Errorf("value for %q must be a scalar", key)
		}
	}
	return out, nil
}

func knownExtension(ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

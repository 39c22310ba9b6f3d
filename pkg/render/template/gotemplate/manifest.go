package gotemplate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	manifestFile    = "manifest.yaml"
	manifestVersion = 1
)

// CacheEntry describes one compiled template recorded in the cache dir.
type CacheEntry struct {
	Source     string    `yaml:"source"`
	ModTime    time.Time `yaml:"mod_time"`
	Size       int64     `yaml:"size"`
	SHA256     string    `yaml:"sha256,omitempty"`
	CompiledAt time.Time `yaml:"compiled_at"`
}

type manifest struct {
	path string

	Version   int                   `yaml:"version"`
	Templates map[string]CacheEntry `yaml:"templates"`
}

func loadManifest(dir string) (*manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	m := &manifest{
		path:      filepath.Join(dir, manifestFile),
		Version:   manifestVersion,
		Templates: make(map[string]CacheEntry),
	}

	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.path, err)
	}
	if m.Templates == nil {
		m.Templates = make(map[string]CacheEntry)
	}
	if m.Version != manifestVersion {
		// Entries written by another layout are not trusted.
		m.Version = manifestVersion
		m.Templates = make(map[string]CacheEntry)
	}
	return m, nil
}

func (m *manifest) save() error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}

func (m *manifest) entries() map[string]CacheEntry {
	out := make(map[string]CacheEntry, len(m.Templates))
	for name, entry := range m.Templates {
		out[name] = entry
	}
	return out
}

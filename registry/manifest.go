package registry

import (
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sentinel-rag/promptkit"
)

// manifest is the YAML catalog shape bound directly to Entry.
type manifest struct {
	Prompts []Entry `yaml:"prompts"`
}

// ParseManifest parses a YAML catalog and returns its entries in document order.
func ParseManifest(data []byte) ([]Entry, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", promptkit.ErrInvalidManifest, err)
	}
	for i, e := range m.Prompts {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entry %d: missing name", promptkit.ErrInvalidManifest, i)
		}
		if !validCategory(e.Category) {
			return nil, fmt.Errorf("%w: entry %q: unknown category %q", promptkit.ErrInvalidManifest, e.Name, e.Category)
		}
	}
	return m.Prompts, nil
}

// LoadManifestFile reads and parses a catalog file.
func LoadManifestFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is validated by caller
	if err != nil {
		return nil, fmt.Errorf("registry: read manifest: %w", err)
	}
	return ParseManifest(data)
}

// LoadManifestFS reads and parses a catalog from fs.FS (e.g. embed.FS).
func LoadManifestFS(fsys fs.FS, name string) ([]Entry, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("registry: read manifest fs: %w", err)
	}
	return ParseManifest(data)
}

package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"symposium/internal/domain"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// file is the on-disk catalog shape.
type file struct {
	Events []*domain.EventRecord `yaml:"events"`
}

// Parse decodes a YAML catalog. Prices must be integers in minor units; display strings such as
// "FREE" are rejected.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(f.Events)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

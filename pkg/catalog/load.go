package catalog

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML catalog from path. An empty path yields Default().
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a YAML catalog. Fields missing from the
// document keep their built-in defaults for the maintenance and summary
// keys; widgets and devices are taken from the document as-is.
func Load(r io.Reader) (*Catalog, error) {
	def := Default()
	c := &Catalog{
		MaintenanceKey: def.MaintenanceKey,
		Summary:        def.Summary,
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

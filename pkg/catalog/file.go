package catalog

import (
	"context"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/shelfworks/shelfstack/pkg/errors"
)

// fileDoc is the on-disk TOML shape: a list of [[sku]] tables.
type fileDoc struct {
	SKUs []SKU `toml:"sku"`
}

// FileSource serves catalog entries from a TOML file loaded once at
// construction time. Safe for concurrent use; the entry map is never
// written after NewFileSource returns.
type FileSource struct {
	entries map[string]SKU
}

// NewFileSource loads and validates the catalog file at path.
func NewFileSource(path string) (*FileSource, error) {
	var doc fileDoc
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load catalog %s", path)
	}
	return newFileSource(doc)
}

// ParseFileSource builds a source from raw TOML, for embedded catalogs.
func ParseFileSource(data []byte) (*FileSource, error) {
	var doc fileDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse catalog")
	}
	return newFileSource(doc)
}

func newFileSource(doc fileDoc) (*FileSource, error) {
	entries := make(map[string]SKU, len(doc.SKUs))
	for _, s := range doc.SKUs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := entries[s.SKU]; dup {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "duplicate catalog entry %s", s.SKU)
		}
		entries[s.SKU] = s
	}
	return &FileSource{entries: entries}, nil
}

// Lookup implements Source.
func (f *FileSource) Lookup(_ context.Context, sku string) (SKU, error) {
	s, ok := f.entries[sku]
	if !ok {
		return SKU{}, errors.New(errors.ErrCodeSKUNotFound, "sku %s not in catalog", sku)
	}
	return s, nil
}

// List implements Source. Entries come back sorted by SKU identifier.
func (f *FileSource) List(_ context.Context) ([]SKU, error) {
	out := make([]SKU, 0, len(f.entries))
	for _, s := range f.entries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

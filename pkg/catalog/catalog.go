// Package catalog resolves SKU definitions into placeable planogram items.
//
// A catalog entry carries the physical millimeter dimensions and placement
// attributes of one product. Entries are templates: instantiating one mints
// a fresh item instance with its own identifier, so the same SKU can be
// placed any number of times.
//
// Two sources ship with the package: a TOML file for offline and test use,
// and a MongoDB collection for deployments with a central product database.
package catalog

import (
	"context"

	"github.com/shelfworks/shelfstack/pkg/errors"
	"github.com/shelfworks/shelfstack/pkg/planogram"
)

// SKU is one product definition. Dimensions are physical millimeters; the
// pixel dimensions of placed instances derive from them at instantiation.
type SKU struct {
	SKU        string                `toml:"sku" json:"sku" bson:"sku"`
	Name       string                `toml:"name" json:"name" bson:"name"`
	WidthMM    int                   `toml:"width_mm" json:"widthMm" bson:"width_mm"`
	HeightMM   int                   `toml:"height_mm" json:"heightMm" bson:"height_mm"`
	Type       planogram.ProductType `toml:"type" json:"productType" bson:"type"`
	Stackable  bool                  `toml:"stackable" json:"stackable" bson:"stackable"`
	Adjustable bool                  `toml:"adjustable" json:"adjustable,omitempty" bson:"adjustable"`
}

// Validate checks the entry for structural problems.
func (s SKU) Validate() error {
	if s.SKU == "" {
		return errors.New(errors.ErrCodeInvalidInput, "catalog entry missing sku")
	}
	if s.WidthMM <= 0 || s.HeightMM <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "sku %s has non-positive dimensions %dx%dmm", s.SKU, s.WidthMM, s.HeightMM)
	}
	if !s.Type.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "sku %s has unknown product type %q", s.SKU, s.Type)
	}
	return nil
}

// Instantiate mints a fresh placeable item from the entry. Fillers are
// always width-adjustable; Adjustable additionally marks other entries
// whose placed width may be resized.
func (s SKU) Instantiate() planogram.Item {
	item := planogram.NewItem(s.SKU, s.Name, s.WidthMM, s.HeightMM, s.Type, s.Stackable)
	if s.Adjustable {
		item.Adjustable = true
	}
	return item
}

// Source resolves SKU identifiers to catalog entries.
type Source interface {
	// Lookup returns the entry for the given SKU identifier, or an error
	// carrying ErrCodeSKUNotFound.
	Lookup(ctx context.Context, sku string) (SKU, error)
	// List returns every entry the source knows about.
	List(ctx context.Context) ([]SKU, error)
}

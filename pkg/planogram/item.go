package planogram

import (
	"github.com/google/uuid"

	"github.com/shelfworks/shelfstack/pkg/units"
)

// ProductType categorizes a placed product. Rows may restrict which types
// they accept; fillers are layout-only and excluded from export.
type ProductType string

// Known product types.
const (
	TypeBottle ProductType = "bottle"
	TypeCan    ProductType = "can"
	TypeTetra  ProductType = "tetra"
	TypeFiller ProductType = "filler"
)

// Valid reports whether t is one of the known product types.
func (t ProductType) Valid() bool {
	switch t {
	case TypeBottle, TypeCan, TypeTetra, TypeFiller:
		return true
	}
	return false
}

// MinFillerWidthMM is the narrowest width an adjustable filler may be
// resized to.
const MinFillerWidthMM = 20

// Item is a single physical product instance placed in the layout. The ID
// identifies this instance and never changes across its lifetime; SKU
// references the catalog entry the instance was created from. Pixel and
// millimeter dimensions are fixed together at creation time under the
// global units ratio.
type Item struct {
	ID         string      `json:"id"`
	SKU        string      `json:"sku"`
	Name       string      `json:"name"`
	WidthPX    int         `json:"widthPx"`
	HeightPX   int         `json:"heightPx"`
	WidthMM    int         `json:"widthMm"`
	HeightMM   int         `json:"heightMm"`
	Type       ProductType `json:"productType"`
	Stackable  bool        `json:"stackable"`
	Adjustable bool        `json:"adjustable,omitempty"` // filler items only
}

// NewItem creates a fresh item instance with a unique identifier. Pixel
// dimensions are derived from the millimeter dimensions so the two stay
// consistent under the fixed conversion ratio.
func NewItem(sku, name string, widthMM, heightMM int, typ ProductType, stackable bool) Item {
	return Item{
		ID:         uuid.NewString(),
		SKU:        sku,
		Name:       name,
		WidthPX:    units.ToPixels(widthMM),
		HeightPX:   units.ToPixels(heightMM),
		WidthMM:    widthMM,
		HeightMM:   heightMM,
		Type:       typ,
		Stackable:  stackable,
		Adjustable: typ == TypeFiller,
	}
}

// CloneInstance returns a copy of the item with a fresh instance identifier,
// used by the duplicate operations.
func (i Item) CloneInstance() Item {
	c := i
	c.ID = uuid.NewString()
	return c
}

// IsFiller reports whether the item is a blank-space placeholder. Fillers
// consume shelf width but are excluded from the export document.
func (i Item) IsFiller() bool { return i.Type == TypeFiller }

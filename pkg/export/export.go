// Package export converts a planogram container into the absolute-pixel
// document consumed by the vision/compliance backend.
//
// The transform is deterministic: given the same container and door
// geometry it always produces the same document. Every bounding box is
// expressed in the coordinate system of the full multi-door composite
// image, origin at its top-left corner; nothing in the document is door-
// or row-relative. A separate scaling pass ([ScaleDocument]) adapts the
// document to rasters captured at a higher internal resolution.
package export

import (
	"github.com/shelfworks/shelfstack/pkg/planogram"
	"github.com/shelfworks/shelfstack/pkg/units"
)

// Geometry describes the fixed chrome around the door panels, in logical
// pixels: the frame border around each door, the header band above the
// shelves, the grille band below them, and the gap between doors.
type Geometry struct {
	FrameBorderPX int `json:"frameBorderPx" toml:"frame_border_px"`
	HeaderPX      int `json:"headerPx" toml:"header_px"`
	GrillePX      int `json:"grillePx" toml:"grille_px"`
	DoorGapPX     int `json:"doorGapPx" toml:"door_gap_px"`
}

// DefaultGeometry matches the standard double-door cooler chrome.
var DefaultGeometry = Geometry{
	FrameBorderPX: 16,
	HeaderPX:      80,
	GrillePX:      120,
	DoorGapPX:     0,
}

// BoundingBox is the 4-corner absolute-pixel rectangle
// [[x1,y1],[x1,y2],[x2,y2],[x2,y1]], with y1 the top edge and y2 the
// bottom edge in image coordinates.
type BoundingBox [4][2]float64

// box builds a bounding box from edges.
func box(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{{x1, y1}, {x1, y2}, {x2, y2}, {x2, y1}}
}

// Product is one placed product in the export document. Stacked lists the
// items piled above this one, each with its own absolute bounding box.
type Product struct {
	SKU         string      `json:"sku"`
	Name        string      `json:"name"`
	BoundingBox BoundingBox `json:"boundingBox"`
	Stacked     []Product   `json:"stacked,omitempty"`
}

// Section is one shelf of one door. Position counts shelves top to bottom
// starting at 1.
type Section struct {
	Position int       `json:"position"`
	Products []Product `json:"products"`
}

// DoorExport is the per-door portion of the document.
type DoorExport struct {
	Sections    []Section `json:"sections"`
	DoorVisible bool      `json:"doorVisible"`
}

// Dimensions describes the full composite image. PixelScale records the
// raster scaling factor applied by [ScaleDocument]; a freshly built
// document carries 1.
type Dimensions struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	PixelScale float64 `json:"pixelScale"`
}

// Document is the flat wire shape handed to the vision backend.
type Document struct {
	Doors      map[string]DoorExport `json:"doors"`
	Dimensions Dimensions            `json:"dimensions"`
}

// Build converts the container into an export document under the given
// door geometry.
//
// Per door, rows are processed top to bottom; each row's vertical span is
// the header offset plus the cumulative heights of the rows above it.
// Within a row the horizontal cursor starts at the door's X-offset (which
// already includes the leading frame border) and advances by each stack's
// footprint plus the fixed inter-stack gap. The bottom item of each stack
// becomes the section's primary product, bottom-aligned against the row's
// lower edge; the rest of the pile lands in its stacked list. Fillers
// consume cursor width but never emit a product.
func Build(c planogram.Container, geo Geometry) Document {
	doc := Document{
		Doors: make(map[string]DoorExport, len(c.Doors)),
		Dimensions: Dimensions{
			Width:      float64(units.CompositeWidth(c.DoorWidths(), geo.FrameBorderPX, geo.DoorGapPX)),
			Height:     float64(units.CompositeHeight(c.DoorHeights(), geo.HeaderPX, geo.GrillePX)),
			PixelScale: 1,
		},
	}

	widths := c.DoorWidths()
	for doorIndex, doorID := range c.DoorOrder {
		door := c.Doors[doorID]
		doorX := units.DoorOffsetPX(doorIndex, widths, geo.FrameBorderPX, geo.DoorGapPX)

		out := DoorExport{DoorVisible: true, Sections: make([]Section, 0, len(door.RowOrder))}
		yEnd := geo.HeaderPX
		for pos, rowID := range door.RowOrder {
			row := door.Rows[rowID]
			yEnd += row.MaxHeightPX

			section := Section{Position: pos + 1}
			cursor := doorX
			for _, stack := range row.Stacks {
				if p, ok := stackProduct(stack, cursor, yEnd); ok {
					section.Products = append(section.Products, p)
				}
				cursor += stack.Width() + planogram.StackGapPX
			}
			out.Sections = append(out.Sections, section)
		}
		doc.Doors[doorID] = out
	}
	return doc
}

// stackProduct converts one stack into its primary product entry. Items are
// bottom-aligned against yEnd and pile upward by cumulative height; every
// box uses the item's own width, not the stack footprint. Returns ok=false
// when the stack's front item is a filler.
func stackProduct(stack planogram.Stack, cursor, yEnd int) (Product, bool) {
	bottom := stack.Bottom()
	if bottom.IsFiller() {
		return Product{}, false
	}

	primary := Product{
		SKU:  bottom.SKU,
		Name: bottom.Name,
		BoundingBox: box(
			float64(cursor), float64(yEnd-bottom.HeightPX),
			float64(cursor+bottom.WidthPX), float64(yEnd),
		),
	}

	base := yEnd - bottom.HeightPX
	for _, item := range stack.Items[1:] {
		top := base - item.HeightPX
		if !item.IsFiller() {
			primary.Stacked = append(primary.Stacked, Product{
				SKU:  item.SKU,
				Name: item.Name,
				BoundingBox: box(
					float64(cursor), float64(top),
					float64(cursor+item.WidthPX), float64(base),
				),
			})
		}
		base = top
	}
	return primary, true
}

// ScaleDocument returns a deep copy of doc with every coordinate, width,
// and height multiplied by ratio, across all doors and all nested stacked
// entries. The input document is never modified, so holding both the
// logical and the scaled document is safe. The applied ratio accumulates
// in dimensions.pixelScale; callers use it to detect a document that has
// already been scaled rather than applying the pass twice.
func ScaleDocument(doc Document, ratio float64) Document {
	out := Document{
		Doors: make(map[string]DoorExport, len(doc.Doors)),
		Dimensions: Dimensions{
			Width:      doc.Dimensions.Width * ratio,
			Height:     doc.Dimensions.Height * ratio,
			PixelScale: doc.Dimensions.PixelScale * ratio,
		},
	}
	for doorID, door := range doc.Doors {
		scaled := DoorExport{
			DoorVisible: door.DoorVisible,
			Sections:    make([]Section, len(door.Sections)),
		}
		for i, section := range door.Sections {
			products := make([]Product, len(section.Products))
			for j, p := range section.Products {
				products[j] = scaleProduct(p, ratio)
			}
			scaled.Sections[i] = Section{Position: section.Position, Products: products}
		}
		out.Doors[doorID] = scaled
	}
	return out
}

func scaleProduct(p Product, ratio float64) Product {
	out := Product{SKU: p.SKU, Name: p.Name, BoundingBox: scaleBox(p.BoundingBox, ratio)}
	if p.Stacked != nil {
		out.Stacked = make([]Product, len(p.Stacked))
		for i, s := range p.Stacked {
			out.Stacked[i] = scaleProduct(s, ratio)
		}
	}
	return out
}

func scaleBox(b BoundingBox, ratio float64) BoundingBox {
	var out BoundingBox
	for i, corner := range b {
		out[i] = [2]float64{corner[0] * ratio, corner[1] * ratio}
	}
	return out
}

// Package preview renders an export document as an SVG or PNG proof image.
//
// The preview exists for humans checking a layout, not for the vision
// backend: each placed product becomes a filled rectangle at its absolute
// bounding box, colored deterministically from its SKU so the same product
// looks the same across renders.
package preview

import (
	"hash/fnv"
	"image/color"
	"image/png"
	"io"
	"sort"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/shelfworks/shelfstack/pkg/errors"
	"github.com/shelfworks/shelfstack/pkg/export"
)

// Renderer renders export documents. The zero value is not usable; use
// NewRenderer.
type Renderer struct {
	Resolution canvas.Resolution // Resolution for PNG output (default: 144 DPI)
}

// NewRenderer creates a renderer with default settings.
func NewRenderer() *Renderer {
	return &Renderer{Resolution: canvas.DPI(144)}
}

// canvasRenderer is an interface that both svg and rasterizer renderers implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the document preview as an SVG to the provided writer.
func (r *Renderer) RenderToSVG(w io.Writer, doc export.Document) error {
	width, height, err := documentSize(doc)
	if err != nil {
		return err
	}

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, doc, height)
	return svgRenderer.Close()
}

// RenderToPNG writes the document preview as a PNG to the provided writer.
func (r *Renderer) RenderToPNG(w io.Writer, doc export.Document) error {
	width, height, err := documentSize(doc)
	if err != nil {
		return err
	}

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, doc, height)
	return png.Encode(w, rast)
}

func documentSize(doc export.Document) (float64, float64, error) {
	w, h := doc.Dimensions.Width, doc.Dimensions.Height
	if w <= 0 || h <= 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "document has no dimensions")
	}
	return w, h, nil
}

// renderToCanvas renders the document to a canvas renderer (shared logic
// for SVG and PNG). Document coordinates grow downward from the top-left
// corner; the canvas origin sits at the bottom-left, so every Y flips
// against the document height.
func (r *Renderer) renderToCanvas(renderer canvasRenderer, doc export.Document, height float64) {
	// Frame background
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: color.RGBA{R: 235, G: 235, B: 235, A: 255}}
	renderer.RenderPath(canvas.Rectangle(doc.Dimensions.Width, height), bgStyle, canvas.Identity)

	// Deterministic door order for stable output
	doorIDs := make([]string, 0, len(doc.Doors))
	for id := range doc.Doors {
		doorIDs = append(doorIDs, id)
	}
	sort.Strings(doorIDs)

	for _, doorID := range doorIDs {
		for _, section := range doc.Doors[doorID].Sections {
			for _, product := range section.Products {
				r.renderProduct(renderer, product, height)
			}
		}
	}
}

func (r *Renderer) renderProduct(renderer canvasRenderer, p export.Product, height float64) {
	style := canvas.DefaultStyle
	style.Fill = canvas.Paint{Color: skuColor(p.SKU)}
	style.Stroke = canvas.Paint{Color: canvas.Black}
	style.StrokeWidth = 1.0

	renderer.RenderPath(boxPath(p.BoundingBox, height), style, canvas.Identity)
	for _, stacked := range p.Stacked {
		stackedStyle := style
		stackedStyle.Fill = canvas.Paint{Color: skuColor(stacked.SKU)}
		renderer.RenderPath(boxPath(stacked.BoundingBox, height), stackedStyle, canvas.Identity)
	}
}

// boxPath converts a 4-corner bounding box into a canvas rectangle path,
// flipping Y into the canvas coordinate system.
func boxPath(b export.BoundingBox, height float64) *canvas.Path {
	x1, y1 := b[0][0], b[0][1] // top-left in document space
	x2, y2 := b[2][0], b[2][1] // bottom-right

	cp := &canvas.Path{}
	cp.MoveTo(x1, height-y2)
	cp.LineTo(x2, height-y2)
	cp.LineTo(x2, height-y1)
	cp.LineTo(x1, height-y1)
	cp.Close()
	return cp
}

// skuColor derives a stable, readable fill color from a SKU identifier.
func skuColor(sku string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sku))
	v := h.Sum32()

	// Keep channels in a mid-range band so strokes stay visible.
	return color.RGBA{
		R: uint8(80 + v%150),
		G: uint8(80 + (v>>8)%150),
		B: uint8(80 + (v>>16)%150),
		A: 255,
	}
}

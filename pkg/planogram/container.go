package planogram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shelfworks/shelfstack/pkg/errors"
)

// StackGapPX is the fixed logical gap between adjacent stacks in a row.
// Capacity checks and the export transform use the same constant; the gap
// is a property of the model, not of any visual styling.
const StackGapPX = 1

// Stack is a vertical pile of items occupying one horizontal slot in a row.
// Items are ordered bottom to top; the bottom item founds the stack and
// bounds the width of everything above it.
type Stack struct {
	Items []Item `json:"items"`
}

// Width returns the stack footprint: the widest item in the pile.
func (s Stack) Width() int {
	w := 0
	for _, it := range s.Items {
		if it.WidthPX > w {
			w = it.WidthPX
		}
	}
	return w
}

// Height returns the summed height of all items in the pile.
func (s Stack) Height() int {
	h := 0
	for _, it := range s.Items {
		h += it.HeightPX
	}
	return h
}

// Bottom returns the founding (front-most) item. It panics on an empty
// stack; empty stacks are removed by the mutation engine and must never
// be observed.
func (s Stack) Bottom() Item {
	if len(s.Items) == 0 {
		panic("planogram: empty stack")
	}
	return s.Items[0]
}

// Clone returns a deep copy of the stack.
func (s Stack) Clone() Stack {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	return Stack{Items: items}
}

// Row is a shelf: a horizontal capacity container belonging to exactly one
// door. AllowedTypes nil means every product type is accepted.
type Row struct {
	ID           string        `json:"id"`
	CapacityPX   int           `json:"capacityPx"`
	MaxHeightPX  int           `json:"maxHeightPx"`
	AllowedTypes []ProductType `json:"allowedTypes,omitempty"`
	Stacks       []Stack       `json:"stacks"`
}

// Allows reports whether the row accepts the given product type. Fillers
// are always accepted; they only consume leftover width.
func (r Row) Allows(t ProductType) bool {
	if t == TypeFiller || r.AllowedTypes == nil {
		return true
	}
	for _, a := range r.AllowedTypes {
		if a == t {
			return true
		}
	}
	return false
}

// UsedWidth returns the occupied width of the row: the sum of stack
// footprints plus one gap per stack boundary.
func (r Row) UsedWidth() int {
	if len(r.Stacks) == 0 {
		return 0
	}
	w := (len(r.Stacks) - 1) * StackGapPX
	for _, s := range r.Stacks {
		w += s.Width()
	}
	return w
}

// FitsWidth reports whether a new stack of the given footprint would keep
// the row within capacity, accounting for the extra gap a new boundary
// introduces.
func (r Row) FitsWidth(footprint int) bool {
	used := r.UsedWidth()
	if len(r.Stacks) > 0 {
		used += StackGapPX
	}
	return used+footprint <= r.CapacityPX
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	c := r
	if r.AllowedTypes != nil {
		c.AllowedTypes = make([]ProductType, len(r.AllowedTypes))
		copy(c.AllowedTypes, r.AllowedTypes)
	}
	c.Stacks = make([]Stack, len(r.Stacks))
	for i, s := range r.Stacks {
		c.Stacks[i] = s.Clone()
	}
	return c
}

// Door is one independently addressable column of shelves. RowOrder lists
// row identifiers top to bottom; every entry must resolve in Rows.
type Door struct {
	ID       string         `json:"id"`
	WidthPX  int            `json:"widthPx"`
	HeightPX int            `json:"heightPx"`
	RowOrder []string       `json:"rowOrder"`
	Rows     map[string]Row `json:"rows"`
}

// Clone returns a deep copy of the door.
func (d Door) Clone() Door {
	c := d
	c.RowOrder = make([]string, len(d.RowOrder))
	copy(c.RowOrder, d.RowOrder)
	c.Rows = make(map[string]Row, len(d.Rows))
	for id, r := range d.Rows {
		c.Rows[id] = r.Clone()
	}
	return c
}

// mustRow returns the named row or panics. A row identifier present in
// RowOrder but absent from Rows is a programmer-error invariant violation,
// not an expected failure.
func (d Door) mustRow(rowID string) Row {
	r, ok := d.Rows[rowID]
	if !ok {
		panic(fmt.Sprintf("planogram: door %s has no row %s", d.ID, rowID))
	}
	return r
}

// Container is the full multi-door refrigerator state. DoorOrder lists door
// identifiers left to right; every entry must resolve in Doors. A
// single-door unit is a container with exactly one entry.
type Container struct {
	DoorOrder []string        `json:"doorOrder"`
	Doors     map[string]Door `json:"doors"`
}

// Clone returns a deep copy of the container. All mutation engine
// operations clone before touching anything, so callers may retain old
// snapshots indefinitely.
func (c Container) Clone() Container {
	n := Container{
		DoorOrder: make([]string, len(c.DoorOrder)),
		Doors:     make(map[string]Door, len(c.Doors)),
	}
	copy(n.DoorOrder, c.DoorOrder)
	for id, d := range c.Doors {
		n.Doors[id] = d.Clone()
	}
	return n
}

// DoorWidths returns per-door pixel widths in door order, for offset and
// composite-size computation.
func (c Container) DoorWidths() []int {
	ws := make([]int, len(c.DoorOrder))
	for i, id := range c.DoorOrder {
		ws[i] = c.Doors[id].WidthPX
	}
	return ws
}

// DoorHeights returns per-door pixel heights in door order.
func (c Container) DoorHeights() []int {
	hs := make([]int, len(c.DoorOrder))
	for i, id := range c.DoorOrder {
		hs[i] = c.Doors[id].HeightPX
	}
	return hs
}

// ItemCount returns the number of items placed across all doors.
func (c Container) ItemCount() int {
	n := 0
	for _, d := range c.Doors {
		for _, r := range d.Rows {
			for _, s := range r.Stacks {
				n += len(s.Items)
			}
		}
	}
	return n
}

// Location identifies where an item currently resides. Every field is
// always populated; a lookup either resolves fully or reports not found.
type Location struct {
	DoorID     string `json:"doorId"`
	RowID      string `json:"rowId"`
	StackIndex int    `json:"stackIndex"`
	ItemIndex  int    `json:"itemIndex"`
}

// Locate finds the item with the given identifier. The result is computed
// freshly from the container on every call; locations must never be cached
// across mutations.
func Locate(c Container, itemID string) (Location, bool) {
	for _, doorID := range c.DoorOrder {
		door := c.Doors[doorID]
		for _, rowID := range door.RowOrder {
			row := door.mustRow(rowID)
			for si, stack := range row.Stacks {
				for ii, item := range stack.Items {
					if item.ID == itemID {
						return Location{DoorID: doorID, RowID: rowID, StackIndex: si, ItemIndex: ii}, true
					}
				}
			}
		}
	}
	return Location{}, false
}

// RowRef is a door-qualified row target. Identically named rows in
// different doors always compare distinct.
type RowRef struct {
	Door string `json:"door"`
	Row  string `json:"row"`
}

// String renders the qualified form "door:row" used by drop-target
// matching.
func (r RowRef) String() string { return r.Door + ":" + r.Row }

// StackRef is a door-qualified stack target: the index-th stack of a row.
type StackRef struct {
	Door  string `json:"door"`
	Row   string `json:"row"`
	Index int    `json:"index"`
}

// String renders the qualified form "door:row:index".
func (s StackRef) String() string {
	return s.Door + ":" + s.Row + ":" + strconv.Itoa(s.Index)
}

// ParseRowRef parses the "door:row" qualified form.
func ParseRowRef(s string) (RowRef, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RowRef{}, errors.New(errors.ErrCodeInvalidTarget, "malformed row target %q", s)
	}
	return RowRef{Door: parts[0], Row: parts[1]}, nil
}

// ParseStackRef parses the "door:row:index" qualified form.
func ParseStackRef(s string) (StackRef, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return StackRef{}, errors.New(errors.ErrCodeInvalidTarget, "malformed stack target %q", s)
	}
	idx, err := strconv.Atoi(parts[2])
	if err != nil || idx < 0 {
		return StackRef{}, errors.New(errors.ErrCodeInvalidTarget, "malformed stack index in %q", s)
	}
	return StackRef{Door: parts[0], Row: parts[1], Index: idx}, nil
}

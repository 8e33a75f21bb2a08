// Package layouts defines refrigerator layout templates and builds empty
// containers from them.
//
// A template describes the fixed shape of one cooler model: its doors,
// their pixel dimensions, and the shelves of each door with capacity,
// height clearance, and optional product type restrictions. Templates are
// declared in TOML and collected into a Library keyed by layout id.
package layouts

import (
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/shelfworks/shelfstack/pkg/errors"
	"github.com/shelfworks/shelfstack/pkg/planogram"
)

// RowTemplate declares one shelf. AllowedTypes empty means the shelf
// accepts every product type.
type RowTemplate struct {
	ID           string                  `toml:"id" json:"id"`
	CapacityPX   int                     `toml:"capacity_px" json:"capacityPx"`
	MaxHeightPX  int                     `toml:"max_height_px" json:"maxHeightPx"`
	AllowedTypes []planogram.ProductType `toml:"allowed_types" json:"allowedTypes,omitempty"`
}

// DoorTemplate declares one door and its shelves, top to bottom.
type DoorTemplate struct {
	ID       string        `toml:"id" json:"id"`
	WidthPX  int           `toml:"width_px" json:"widthPx"`
	HeightPX int           `toml:"height_px" json:"heightPx"`
	Rows     []RowTemplate `toml:"row" json:"rows"`
}

// Template is a complete cooler model: doors left to right.
type Template struct {
	ID    string         `toml:"id" json:"id"`
	Name  string         `toml:"name" json:"name"`
	Doors []DoorTemplate `toml:"door" json:"doors"`
}

// Validate checks the template for structural problems: missing
// identifiers, duplicate doors or rows, and non-positive dimensions.
func (t Template) Validate() error {
	if t.ID == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "layout missing id")
	}
	if len(t.Doors) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout %s has no doors", t.ID)
	}
	doorIDs := make(map[string]bool, len(t.Doors))
	for _, d := range t.Doors {
		if d.ID == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "layout %s has a door without id", t.ID)
		}
		if doorIDs[d.ID] {
			return errors.New(errors.ErrCodeInvalidConfig, "layout %s repeats door %s", t.ID, d.ID)
		}
		doorIDs[d.ID] = true
		if d.WidthPX <= 0 || d.HeightPX <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "layout %s door %s has non-positive dimensions", t.ID, d.ID)
		}
		rowIDs := make(map[string]bool, len(d.Rows))
		for _, r := range d.Rows {
			if r.ID == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "layout %s door %s has a row without id", t.ID, d.ID)
			}
			if rowIDs[r.ID] {
				return errors.New(errors.ErrCodeInvalidConfig, "layout %s door %s repeats row %s", t.ID, d.ID, r.ID)
			}
			rowIDs[r.ID] = true
			if r.CapacityPX <= 0 || r.MaxHeightPX <= 0 {
				return errors.New(errors.ErrCodeInvalidConfig, "layout %s row %s:%s has non-positive dimensions", t.ID, d.ID, r.ID)
			}
			for _, typ := range r.AllowedTypes {
				if !typ.Valid() {
					return errors.New(errors.ErrCodeInvalidConfig, "layout %s row %s:%s allows unknown type %q", t.ID, d.ID, r.ID, typ)
				}
			}
		}
	}
	return nil
}

// Container builds an empty container from the template. Each call returns
// a fresh value; editing one container never affects another built from the
// same template.
func (t Template) Container() planogram.Container {
	c := planogram.Container{
		DoorOrder: make([]string, 0, len(t.Doors)),
		Doors:     make(map[string]planogram.Door, len(t.Doors)),
	}
	for _, dt := range t.Doors {
		door := planogram.Door{
			ID:       dt.ID,
			WidthPX:  dt.WidthPX,
			HeightPX: dt.HeightPX,
			RowOrder: make([]string, 0, len(dt.Rows)),
			Rows:     make(map[string]planogram.Row, len(dt.Rows)),
		}
		for _, rt := range dt.Rows {
			row := planogram.Row{
				ID:          rt.ID,
				CapacityPX:  rt.CapacityPX,
				MaxHeightPX: rt.MaxHeightPX,
			}
			if len(rt.AllowedTypes) > 0 {
				row.AllowedTypes = append([]planogram.ProductType(nil), rt.AllowedTypes...)
			}
			door.RowOrder = append(door.RowOrder, rt.ID)
			door.Rows[rt.ID] = row
		}
		c.DoorOrder = append(c.DoorOrder, dt.ID)
		c.Doors[dt.ID] = door
	}
	return c
}

// libraryDoc is the on-disk TOML shape: a list of [[layout]] tables.
type libraryDoc struct {
	Layouts []Template `toml:"layout"`
}

// Library is a read-only collection of validated templates.
type Library struct {
	templates map[string]Template
}

// LoadLibrary reads and validates a layout library file.
func LoadLibrary(path string) (*Library, error) {
	var doc libraryDoc
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load layout library %s", path)
	}
	return newLibrary(doc)
}

// ParseLibrary builds a library from raw TOML, for embedded defaults.
func ParseLibrary(data []byte) (*Library, error) {
	var doc libraryDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse layout library")
	}
	return newLibrary(doc)
}

func newLibrary(doc libraryDoc) (*Library, error) {
	templates := make(map[string]Template, len(doc.Layouts))
	for _, t := range doc.Layouts {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := templates[t.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "duplicate layout %s", t.ID)
		}
		templates[t.ID] = t
	}
	return &Library{templates: templates}, nil
}

// Get returns the named template or an error carrying ErrCodeLayoutNotFound.
func (l *Library) Get(id string) (Template, error) {
	t, ok := l.templates[id]
	if !ok {
		return Template{}, errors.New(errors.ErrCodeLayoutNotFound, "layout %s not in library", id)
	}
	return t, nil
}

// IDs returns the sorted layout identifiers in the library.
func (l *Library) IDs() []string {
	ids := make([]string, 0, len(l.templates))
	for id := range l.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

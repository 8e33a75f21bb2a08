package layouts

import (
	"testing"

	"github.com/shelfworks/shelfstack/pkg/errors"
	"github.com/shelfworks/shelfstack/pkg/planogram"
)

const sampleLibrary = `
[[layout]]
id = "test-cooler"
name = "Test cooler"

  [[layout.door]]
  id = "left"
  width_px = 673
  height_px = 600

    [[layout.door.row]]
    id = "top"
    capacity_px = 673
    max_height_px = 300

    [[layout.door.row]]
    id = "bottom"
    capacity_px = 673
    max_height_px = 300
    allowed_types = ["bottle"]
`

func TestParseLibrary(t *testing.T) {
	lib, err := ParseLibrary([]byte(sampleLibrary))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	tpl, err := lib.Get("test-cooler")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tpl.Name != "Test cooler" || len(tpl.Doors) != 1 {
		t.Errorf("unexpected template: %+v", tpl)
	}

	_, err = lib.Get("missing")
	if !errors.Is(err, errors.ErrCodeLayoutNotFound) {
		t.Errorf("missing layout: got %v, want LAYOUT_NOT_FOUND", err)
	}
}

func TestTemplateContainer(t *testing.T) {
	lib, err := ParseLibrary([]byte(sampleLibrary))
	if err != nil {
		t.Fatal(err)
	}
	tpl, _ := lib.Get("test-cooler")

	c := tpl.Container()
	if len(c.DoorOrder) != 1 || c.DoorOrder[0] != "left" {
		t.Fatalf("door order: %v", c.DoorOrder)
	}
	door := c.Doors["left"]
	if door.WidthPX != 673 || len(door.RowOrder) != 2 {
		t.Errorf("unexpected door: %+v", door)
	}
	bottom := door.Rows["bottom"]
	if bottom.Allows(planogram.TypeCan) {
		t.Error("bottom row should reject cans")
	}
	if !bottom.Allows(planogram.TypeBottle) {
		t.Error("bottom row should allow bottles")
	}

	// containers built from the same template are independent
	c2 := tpl.Container()
	row := c.Doors["left"].Rows["top"]
	row.Stacks = append(row.Stacks, planogram.Stack{Items: []planogram.Item{{ID: "x", WidthPX: 10, HeightPX: 10}}})
	c.Doors["left"].Rows["top"] = row
	if c2.ItemCount() != 0 {
		t.Error("editing one container leaked into another")
	}
}

func TestValidateRejectsBadTemplates(t *testing.T) {
	base := Template{
		ID: "ok",
		Doors: []DoorTemplate{{
			ID: "d", WidthPX: 100, HeightPX: 100,
			Rows: []RowTemplate{{ID: "r", CapacityPX: 100, MaxHeightPX: 50}},
		}},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base template should validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Template)
	}{
		{"missing id", func(t *Template) { t.ID = "" }},
		{"no doors", func(t *Template) { t.Doors = nil }},
		{"duplicate door", func(t *Template) { t.Doors = append(t.Doors, t.Doors[0]) }},
		{"zero door width", func(t *Template) { t.Doors[0].WidthPX = 0 }},
		{"duplicate row", func(t *Template) { t.Doors[0].Rows = append(t.Doors[0].Rows, t.Doors[0].Rows[0]) }},
		{"zero capacity", func(t *Template) { t.Doors[0].Rows[0].CapacityPX = 0 }},
		{"unknown type", func(t *Template) { t.Doors[0].Rows[0].AllowedTypes = []planogram.ProductType{"keg"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := base
			tpl.Doors = make([]DoorTemplate, len(base.Doors))
			copy(tpl.Doors, base.Doors)
			tpl.Doors[0].Rows = append([]RowTemplate(nil), base.Doors[0].Rows...)
			tc.mutate(&tpl)
			if err := tpl.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("got %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestDefaultLibrary(t *testing.T) {
	lib := DefaultLibrary()

	ids := lib.IDs()
	if len(ids) == 0 {
		t.Fatal("default library is empty")
	}
	tpl, err := lib.Get("double-door-standard")
	if err != nil {
		t.Fatalf("standard layout: %v", err)
	}
	if len(tpl.Doors) != 2 {
		t.Errorf("standard layout doors: got %d, want 2", len(tpl.Doors))
	}
	c := tpl.Container()
	if got := c.Doors["door-1"].WidthPX; got != 673 {
		t.Errorf("door width: got %d, want 673", got)
	}
}

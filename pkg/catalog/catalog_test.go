package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shelfworks/shelfstack/pkg/errors"
	"github.com/shelfworks/shelfstack/pkg/planogram"
)

const sampleCatalog = `
[[sku]]
sku = "cola-500"
name = "Cola 500ml"
width_mm = 66
height_mm = 230
type = "bottle"
stackable = false

[[sku]]
sku = "energy-250"
name = "Energy 250ml"
width_mm = 53
height_mm = 134
type = "can"
stackable = true
`

func TestParseFileSource(t *testing.T) {
	src, err := ParseFileSource([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	s, err := src.Lookup(context.Background(), "cola-500")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if s.Name != "Cola 500ml" || s.WidthMM != 66 || s.Type != planogram.TypeBottle {
		t.Errorf("unexpected entry: %+v", s)
	}

	_, err = src.Lookup(context.Background(), "missing")
	if !errors.Is(err, errors.ErrCodeSKUNotFound) {
		t.Errorf("missing sku: got %v, want SKU_NOT_FOUND", err)
	}
}

func TestNewFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	all, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("entries: got %d, want 2", len(all))
	}
	// sorted by sku
	if all[0].SKU != "cola-500" || all[1].SKU != "energy-250" {
		t.Errorf("order: got %s, %s", all[0].SKU, all[1].SKU)
	}
}

func TestNewFileSourceMissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("got %v, want INVALID_CONFIG", err)
	}
}

func TestParseFileSourceRejectsBadEntries(t *testing.T) {
	cases := []struct {
		name string
		toml string
	}{
		{"missing sku", "[[sku]]\nname = \"x\"\nwidth_mm = 10\nheight_mm = 10\ntype = \"can\""},
		{"zero width", "[[sku]]\nsku = \"x\"\nwidth_mm = 0\nheight_mm = 10\ntype = \"can\""},
		{"bad type", "[[sku]]\nsku = \"x\"\nwidth_mm = 10\nheight_mm = 10\ntype = \"keg\""},
		{"duplicate", sampleCatalog + "\n[[sku]]\nsku = \"cola-500\"\nwidth_mm = 1\nheight_mm = 1\ntype = \"can\""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseFileSource([]byte(tc.toml)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestInstantiate(t *testing.T) {
	s := SKU{SKU: "cola-500", Name: "Cola 500ml", WidthMM: 66, HeightMM: 230, Type: planogram.TypeBottle}

	a := s.Instantiate()
	b := s.Instantiate()

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("instances must carry distinct ids: %q vs %q", a.ID, b.ID)
	}
	if a.SKU != "cola-500" || a.WidthMM != 66 {
		t.Errorf("unexpected item: %+v", a)
	}
	// 66mm * 2.5 = 165px
	if a.WidthPX != 165 {
		t.Errorf("width px: got %d, want 165", a.WidthPX)
	}
}

func TestInstantiateAdjustable(t *testing.T) {
	fixed := SKU{SKU: "cola-500", Name: "Cola 500ml", WidthMM: 66, HeightMM: 230, Type: planogram.TypeBottle}
	if fixed.Instantiate().Adjustable {
		t.Error("fixed-width entry produced an adjustable item")
	}

	flagged := fixed
	flagged.Adjustable = true
	if !flagged.Instantiate().Adjustable {
		t.Error("adjustable entry produced a fixed-width item")
	}

	// Fillers are adjustable whether or not the entry says so.
	gap := SKU{SKU: "gap-50", Name: "Gap 50mm", WidthMM: 50, HeightMM: 40, Type: planogram.TypeFiller}
	if !gap.Instantiate().Adjustable {
		t.Error("filler entry produced a fixed-width item")
	}
}

package planogram

import (
	"reflect"
	"testing"
)

func TestFindConflictsCleanContainer(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("a", 50, 100))

	got := rules.FindConflicts(c)
	if !got.Empty() {
		t.Errorf("clean container reported conflicts: %+v", got)
	}
}

func TestFindConflictsHeightOverflow(t *testing.T) {
	c := twoDoorContainer()
	// 100 + 60 = 160 > 150: only the protruding item is flagged.
	place(t, &c, "door-1", "row-2", fixedItem("base", 50, 100), fixedItem("top", 40, 60))

	got := (Engine{Rules: false}).FindConflicts(c)
	if !reflect.DeepEqual(got.HeightOverflow, []string{"top"}) {
		t.Errorf("HeightOverflow = %v, want [top]", got.HeightOverflow)
	}
	if !got.Has("top") || got.Has("base") {
		t.Error("Has() disagrees with the groups")
	}
}

func TestFindConflictsTypeMismatch(t *testing.T) {
	c := twoDoorContainer()
	row := c.Doors["door-1"].Rows["row-1"]
	row.AllowedTypes = []ProductType{TypeCan}
	c.Doors["door-1"].Rows["row-1"] = row
	place(t, &c, "door-1", "row-1", fixedItem("bottle", 50, 100))

	got := rules.FindConflicts(c)
	if !reflect.DeepEqual(got.TypeMismatch, []string{"bottle"}) {
		t.Errorf("TypeMismatch = %v, want [bottle]", got.TypeMismatch)
	}

	// Business rule off: no type conflicts reported.
	got = (Engine{Rules: false}).FindConflicts(c)
	if len(got.TypeMismatch) != 0 {
		t.Errorf("rules off TypeMismatch = %v, want none", got.TypeMismatch)
	}
}

func TestFindConflictsUnstableStack(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("base", 40, 50), fixedItem("wide", 60, 50))

	got := rules.FindConflicts(c)
	if !reflect.DeepEqual(got.UnstableStack, []string{"wide"}) {
		t.Errorf("UnstableStack = %v, want [wide]", got.UnstableStack)
	}
}

func TestFindConflictsSweepsAllDoors(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("t1", 50, 200))
	place(t, &c, "door-2", "row-2", fixedItem("t2", 50, 200))

	got := rules.FindConflicts(c)
	if !reflect.DeepEqual(got.HeightOverflow, []string{"t1", "t2"}) {
		t.Errorf("HeightOverflow = %v, want violations from both doors", got.HeightOverflow)
	}
}

func TestConflictsAllDeduplicates(t *testing.T) {
	c := Conflicts{
		HeightOverflow: []string{"a", "b"},
		TypeMismatch:   []string{"b", "c"},
		UnstableStack:  []string{"a"},
	}
	if got := c.All(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("All() = %v, want [a b c]", got)
	}
}

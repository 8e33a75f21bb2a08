package planogram

import (
	"reflect"
	"testing"

	"github.com/shelfworks/shelfstack/pkg/errors"
)

var rules = Engine{Rules: true}

func TestAddItemWithinCapacity(t *testing.T) {
	c := twoDoorContainer()

	c1, err := rules.AddItem(c, "door-1", "row-1", fixedItem("a", 50, 100), -1)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if got := len(c1.Doors["door-1"].Rows["row-1"].Stacks); got != 1 {
		t.Fatalf("stack count = %d, want 1", got)
	}

	c2, err := rules.AddItem(c1, "door-1", "row-1", fixedItem("b", 60, 100), -1)
	if err != nil {
		t.Fatalf("second add (50+1+60 = 111 <= 200): %v", err)
	}

	c3, err := rules.AddItem(c2, "door-1", "row-1", fixedItem("c", 100, 100), -1)
	if !errors.Is(err, errors.ErrCodeCapacityExceeded) {
		t.Fatalf("third add (111+1+100 = 212 > 200): err = %v, want CAPACITY_EXCEEDED", err)
	}
	if !reflect.DeepEqual(c3, c2) {
		t.Error("failed add modified the container")
	}
}

func TestAddItemHeightCheckIsUnconditional(t *testing.T) {
	noRules := Engine{Rules: false}
	c := twoDoorContainer()

	_, err := noRules.AddItem(c, "door-1", "row-1", fixedItem("tall", 50, 151), -1)
	if !errors.Is(err, errors.ErrCodeCapacityExceeded) {
		t.Fatalf("height overflow with rules off: err = %v, want CAPACITY_EXCEEDED", err)
	}

	// Width overflow, by contrast, passes with rules off.
	wide, err := noRules.AddItem(c, "door-1", "row-1", fixedItem("wide", 500, 100), -1)
	if err != nil {
		t.Fatalf("width overflow with rules off should pass: %v", err)
	}
	if wide.ItemCount() != 1 {
		t.Error("item not placed")
	}
}

func TestAddItemProductTypeRule(t *testing.T) {
	c := twoDoorContainer()
	row := c.Doors["door-1"].Rows["row-1"]
	row.AllowedTypes = []ProductType{TypeCan}
	c.Doors["door-1"].Rows["row-1"] = row

	_, err := rules.AddItem(c, "door-1", "row-1", fixedItem("bottle", 50, 100), -1)
	if !errors.Is(err, errors.ErrCodeProductTypeNotAllowed) {
		t.Fatalf("err = %v, want PRODUCT_TYPE_NOT_ALLOWED", err)
	}

	// Rules off: the business rule is suspended.
	if _, err := (Engine{}).AddItem(c, "door-1", "row-1", fixedItem("bottle", 50, 100), -1); err != nil {
		t.Fatalf("rules off: %v", err)
	}
}

func TestAddItemInsertionIndex(t *testing.T) {
	c := twoDoorContainer()
	c, _ = rules.AddItem(c, "door-1", "row-1", fixedItem("a", 30, 100), -1)
	c, _ = rules.AddItem(c, "door-1", "row-1", fixedItem("b", 30, 100), -1)

	c, err := rules.AddItem(c, "door-1", "row-1", fixedItem("mid", 30, 100), 1)
	if err != nil {
		t.Fatalf("insert at index: %v", err)
	}
	stacks := c.Doors["door-1"].Rows["row-1"].Stacks
	got := []string{stacks[0].Bottom().ID, stacks[1].Bottom().ID, stacks[2].Bottom().ID}
	want := []string{"a", "mid", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stack order = %v, want %v", got, want)
	}
}

func TestAddItemUnknownTargets(t *testing.T) {
	c := twoDoorContainer()
	if _, err := rules.AddItem(c, "door-9", "row-1", fixedItem("a", 10, 10), -1); !errors.Is(err, errors.ErrCodeDoorNotFound) {
		t.Errorf("unknown door: err = %v, want DOOR_NOT_FOUND", err)
	}
	if _, err := rules.AddItem(c, "door-1", "row-9", fixedItem("a", 10, 10), -1); !errors.Is(err, errors.ErrCodeRowNotFound) {
		t.Errorf("unknown row: err = %v, want ROW_NOT_FOUND", err)
	}
}

func TestMoveStackCrossDoor(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-2", fixedItem("x", 50, 100))

	moved, err := rules.MoveStack(c, "x", "door-2", "row-1", 0)
	if err != nil {
		t.Fatalf("MoveStack: %v", err)
	}

	loc, ok := Locate(moved, "x")
	if !ok {
		t.Fatal("x vanished after move")
	}
	if loc.DoorID != "door-2" || loc.RowID != "row-1" || loc.StackIndex != 0 {
		t.Errorf("Locate(x) = %+v, want door-2/row-1/0", loc)
	}
	if got := len(moved.Doors["door-1"].Rows["row-2"].Stacks); got != 0 {
		t.Errorf("source row still holds %d stacks", got)
	}

	// Source container untouched.
	if _, ok := Locate(c, "x"); !ok {
		t.Error("move mutated its input container")
	}
}

func TestMoveStackSameRowReorder(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("a", 30, 100))
	place(t, &c, "door-1", "row-1", fixedItem("b", 30, 100))
	place(t, &c, "door-1", "row-1", fixedItem("c", 30, 100))

	// Moving "a" to the position after "c": target index shifts down by one
	// because removing "a" compacts the row first.
	moved, err := rules.MoveStack(c, "a", "door-1", "row-1", 3)
	if err != nil {
		t.Fatalf("MoveStack: %v", err)
	}
	stacks := moved.Doors["door-1"].Rows["row-1"].Stacks
	got := []string{stacks[0].Bottom().ID, stacks[1].Bottom().ID, stacks[2].Bottom().ID}
	want := []string{"b", "c", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stack order = %v, want %v", got, want)
	}
}

func TestMoveStackTargetFull(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("w", 199, 100))
	place(t, &c, "door-2", "row-1", fixedItem("x", 50, 100))

	_, err := rules.MoveStack(c, "x", "door-1", "row-1", -1)
	if !errors.Is(err, errors.ErrCodeCapacityExceeded) {
		t.Fatalf("err = %v, want CAPACITY_EXCEEDED", err)
	}
}

func TestStackOntoStabilityRejection(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("base", 50, 50))
	place(t, &c, "door-1", "row-1", fixedItem("wide", 80, 50))

	got, err := rules.StackOnto(c, "wide", StackRef{Door: "door-1", Row: "row-1", Index: 0})
	if !errors.Is(err, errors.ErrCodeInvalidStack) {
		t.Fatalf("err = %v, want INVALID_STACK", err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Error("failed StackOnto modified the container")
	}
}

func TestStackOntoSuccess(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("base", 50, 50))
	place(t, &c, "door-1", "row-2", fixedItem("top", 40, 60))

	got, err := rules.StackOnto(c, "top", StackRef{Door: "door-1", Row: "row-1", Index: 0})
	if err != nil {
		t.Fatalf("StackOnto: %v", err)
	}

	stack := got.Doors["door-1"].Rows["row-1"].Stacks[0]
	if len(stack.Items) != 2 || stack.Items[1].ID != "top" {
		t.Fatalf("target stack items = %+v, want base+top", stack.Items)
	}
	if got := len(got.Doors["door-1"].Rows["row-2"].Stacks); got != 0 {
		t.Error("empty source stack was retained")
	}

	loc, _ := Locate(got, "top")
	if loc.ItemIndex != 1 || loc.StackIndex != 0 {
		t.Errorf("Locate(top) = %+v", loc)
	}
}

func TestStackOntoSameRowIndexShift(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("a", 50, 50))
	place(t, &c, "door-1", "row-1", fixedItem("b", 40, 50))

	// Dragging "a" (index 0) onto stack index 1: after "a" leaves the row
	// the target compacts to index 0.
	got, err := rules.StackOnto(c, "a", StackRef{Door: "door-1", Row: "row-1", Index: 1})
	if err != nil {
		t.Fatalf("StackOnto: %v", err)
	}
	stacks := got.Doors["door-1"].Rows["row-1"].Stacks
	if len(stacks) != 1 {
		t.Fatalf("stack count = %d, want 1", len(stacks))
	}
	if stacks[0].Items[0].ID != "b" || stacks[0].Items[1].ID != "a" {
		t.Errorf("stack = %+v, want b underneath a", stacks[0].Items)
	}
}

func TestStackOntoHeightLimit(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("base", 50, 100))
	place(t, &c, "door-1", "row-1", fixedItem("top", 40, 51))

	_, err := rules.StackOnto(c, "top", StackRef{Door: "door-1", Row: "row-1", Index: 0})
	if !errors.Is(err, errors.ErrCodeInvalidStack) {
		t.Fatalf("combined 151 > 150: err = %v, want INVALID_STACK", err)
	}
}

func TestStackOntoUnstackableItem(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("base", 50, 50))
	rigid := fixedItem("rigid", 40, 50)
	rigid.Stackable = false
	place(t, &c, "door-1", "row-1", rigid)

	_, err := rules.StackOnto(c, "rigid", StackRef{Door: "door-1", Row: "row-1", Index: 0})
	if !errors.Is(err, errors.ErrCodeInvalidStack) {
		t.Fatalf("err = %v, want INVALID_STACK", err)
	}
}

func TestStackOntoFillerBase(t *testing.T) {
	c := twoDoorContainer()
	gap := fixedItem("gap", 60, 40)
	gap.Type = TypeFiller
	gap.Stackable = false
	place(t, &c, "door-1", "row-1", gap)
	place(t, &c, "door-1", "row-1", fixedItem("can", 40, 50))

	// A product stacked on a filler would vanish from the export document,
	// so the filler-founded stack must never accept one.
	got, err := rules.StackOnto(c, "can", StackRef{Door: "door-1", Row: "row-1", Index: 0})
	if !errors.Is(err, errors.ErrCodeInvalidStack) {
		t.Fatalf("err = %v, want INVALID_STACK", err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Error("failed StackOnto modified the container")
	}
}

func TestStackOntoOwnStack(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("a", 50, 50))

	_, err := rules.StackOnto(c, "a", StackRef{Door: "door-1", Row: "row-1", Index: 0})
	if !errors.Is(err, errors.ErrCodeInvalidTarget) {
		t.Fatalf("err = %v, want INVALID_TARGET", err)
	}
}

func TestRemoveItemDropsEmptyStack(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("a", 50, 50), fixedItem("b", 40, 40))

	got, err := rules.RemoveItem(c, "b")
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if got.ItemCount() != 1 {
		t.Errorf("ItemCount = %d, want 1", got.ItemCount())
	}

	got, err = rules.RemoveItem(got, "a")
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if n := len(got.Doors["door-1"].Rows["row-1"].Stacks); n != 0 {
		t.Errorf("empty stack retained: %d stacks", n)
	}
}

func TestRemoveItemsAllOrNothing(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("a", 50, 50))
	place(t, &c, "door-2", "row-1", fixedItem("b", 50, 50))

	got, err := rules.RemoveItems(c, []string{"a", "missing", "b"})
	if !errors.Is(err, errors.ErrCodeItemNotFound) {
		t.Fatalf("err = %v, want ITEM_NOT_FOUND", err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Error("partial removal observed")
	}

	got, err = rules.RemoveItems(c, []string{"a", "b"})
	if err != nil {
		t.Fatalf("RemoveItems: %v", err)
	}
	if got.ItemCount() != 0 {
		t.Errorf("ItemCount = %d, want 0", got.ItemCount())
	}
}

func TestDuplicateAsNewStack(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("a", 50, 100))

	got, err := rules.DuplicateAsNewStack(c, "a")
	if err != nil {
		t.Fatalf("DuplicateAsNewStack: %v", err)
	}
	stacks := got.Doors["door-1"].Rows["row-1"].Stacks
	if len(stacks) != 2 {
		t.Fatalf("stack count = %d, want 2", len(stacks))
	}
	dup := stacks[1].Bottom()
	if dup.ID == "a" {
		t.Error("duplicate kept the original instance ID")
	}
	if dup.SKU != "sku-a" || dup.WidthPX != 50 {
		t.Error("duplicate changed SKU or dimensions")
	}
}

func TestDuplicateAsNewStackCapacity(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("big", 150, 100))

	_, err := rules.DuplicateAsNewStack(c, "big")
	if !errors.Is(err, errors.ErrCodeCapacityExceeded) {
		t.Fatalf("150+1+150 > 200: err = %v, want CAPACITY_EXCEEDED", err)
	}
}

func TestDuplicateOntoStack(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("a", 50, 60))

	got, err := rules.DuplicateOntoStack(c, "a")
	if err != nil {
		t.Fatalf("DuplicateOntoStack: %v", err)
	}
	stack := got.Doors["door-1"].Rows["row-1"].Stacks[0]
	if len(stack.Items) != 2 {
		t.Fatalf("stack size = %d, want 2", len(stack.Items))
	}
	if stack.Items[1].ID == "a" {
		t.Error("duplicate kept the original instance ID")
	}

	// A third copy would exceed the 150px row height.
	_, err = rules.DuplicateOntoStack(got, stack.Items[0].ID)
	if !errors.Is(err, errors.ErrCodeInvalidStack) {
		t.Fatalf("err = %v, want INVALID_STACK", err)
	}
}

func TestReplaceItem(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("old", 50, 100))

	replacement := NewItem("sku-new", "New Product", 24, 48, TypeCan, true)
	got, err := rules.ReplaceItem(c, "old", replacement)
	if err != nil {
		t.Fatalf("ReplaceItem: %v", err)
	}

	if _, ok := Locate(got, "old"); ok {
		t.Error("old instance survived replacement")
	}
	loc, ok := Locate(got, replacement.ID)
	if !ok {
		t.Fatal("replacement not placed")
	}
	item := got.Doors[loc.DoorID].Rows[loc.RowID].Stacks[loc.StackIndex].Items[loc.ItemIndex]
	if item.SKU != "sku-new" || item.Type != TypeCan {
		t.Errorf("replacement identity = %+v", item)
	}
}

func TestReplaceItemCapacity(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("a", 120, 100))
	place(t, &c, "door-1", "row-1", fixedItem("b", 70, 100))

	// Growing b to 100px would push the row to 120+1+100 = 221 > 200.
	_, err := rules.ReplaceItem(c, "b", fixedItem("b2", 100, 100))
	if !errors.Is(err, errors.ErrCodeCapacityExceeded) {
		t.Fatalf("err = %v, want CAPACITY_EXCEEDED", err)
	}

	// Growing taller than the row is rejected regardless of rules.
	_, err = (Engine{}).ReplaceItem(c, "b", fixedItem("b3", 70, 200))
	if !errors.Is(err, errors.ErrCodeCapacityExceeded) {
		t.Fatalf("err = %v, want CAPACITY_EXCEEDED", err)
	}
}

func TestReplaceItemStability(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("base", 50, 50), fixedItem("top", 40, 40))

	// Shrinking the base below the covering item breaks the pyramid.
	_, err := rules.ReplaceItem(c, "base", fixedItem("slim", 30, 50))
	if !errors.Is(err, errors.ErrCodeInvalidStack) {
		t.Fatalf("err = %v, want INVALID_STACK", err)
	}
}

func TestUpdateAdjustableWidth(t *testing.T) {
	c := twoDoorContainer()
	filler := NewItem("blank", "Filler", 40, 40, TypeFiller, false)
	place(t, &c, "door-1", "row-1", filler)
	place(t, &c, "door-1", "row-1", fixedItem("a", 80, 100))

	got, err := rules.UpdateAdjustableWidth(c, filler.ID, 44)
	if err != nil {
		t.Fatalf("UpdateAdjustableWidth: %v", err)
	}
	loc, _ := Locate(got, filler.ID)
	it := got.Doors[loc.DoorID].Rows[loc.RowID].Stacks[loc.StackIndex].Items[loc.ItemIndex]
	if it.WidthMM != 44 || it.WidthPX != 110 {
		t.Errorf("width = %dmm/%dpx, want 44mm/110px", it.WidthMM, it.WidthPX)
	}

	// Requests below the floor clamp up.
	got, err = rules.UpdateAdjustableWidth(c, filler.ID, 5)
	if err != nil {
		t.Fatalf("UpdateAdjustableWidth: %v", err)
	}
	loc, _ = Locate(got, filler.ID)
	it = got.Doors[loc.DoorID].Rows[loc.RowID].Stacks[loc.StackIndex].Items[loc.ItemIndex]
	if it.WidthMM != MinFillerWidthMM {
		t.Errorf("width = %dmm, want clamped to %dmm", it.WidthMM, MinFillerWidthMM)
	}

	// Requests beyond the remaining row width clamp down: the other stack
	// uses 80px + 1 gap, leaving 119px.
	got, err = rules.UpdateAdjustableWidth(c, filler.ID, 400)
	if err != nil {
		t.Fatalf("UpdateAdjustableWidth: %v", err)
	}
	loc, _ = Locate(got, filler.ID)
	it = got.Doors[loc.DoorID].Rows[loc.RowID].Stacks[loc.StackIndex].Items[loc.ItemIndex]
	if it.WidthPX != 119 {
		t.Errorf("width = %dpx, want clamped to 119px", it.WidthPX)
	}

	// Non-adjustable items are rejected.
	if _, err := rules.UpdateAdjustableWidth(c, "a", 50); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}

func TestReorderStack(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("a", 30, 50))
	place(t, &c, "door-1", "row-1", fixedItem("b", 30, 50))
	place(t, &c, "door-1", "row-1", fixedItem("c", 30, 50))

	got, err := rules.ReorderStack(c, "door-1", "row-1", 2, 0)
	if err != nil {
		t.Fatalf("ReorderStack: %v", err)
	}
	stacks := got.Doors["door-1"].Rows["row-1"].Stacks
	order := []string{stacks[0].Bottom().ID, stacks[1].Bottom().ID, stacks[2].Bottom().ID}
	if !reflect.DeepEqual(order, []string{"c", "a", "b"}) {
		t.Errorf("order = %v, want [c a b]", order)
	}

	if _, err := rules.ReorderStack(c, "door-1", "row-1", 0, 5); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("out of range: err = %v, want INVALID_INPUT", err)
	}
}

func TestMutationsNeverAliasInput(t *testing.T) {
	c := twoDoorContainer()
	place(t, &c, "door-1", "row-1", fixedItem("a", 50, 100))
	before := c.Clone()

	next, err := rules.AddItem(c, "door-1", "row-1", fixedItem("b", 60, 100), -1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	// Mutating the result must not reach back into the input.
	row := next.Doors["door-1"].Rows["row-1"]
	row.Stacks[0].Items[0].Name = "tampered"
	next.Doors["door-1"].Rows["row-1"] = row

	if !reflect.DeepEqual(c, before) {
		t.Error("mutation aliased its input container")
	}
}

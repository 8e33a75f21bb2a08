package planogram

import (
	"github.com/shelfworks/shelfstack/pkg/errors"
	"github.com/shelfworks/shelfstack/pkg/units"
)

// Engine applies pure mutations to containers under a fixed rule-enforcement
// setting. Rules gates the business constraints (width capacity, allowed
// product types); physical constraints (height, stack stability) are checked
// regardless.
//
// Every operation returns a brand-new container on success. On failure the
// input container is returned unchanged together with a coded error; no
// operation ever leaves a partially applied change, an orphaned empty stack,
// or a dangling item behind.
type Engine struct {
	Rules bool
}

// AddItem inserts a new single-item stack into the given row at index, or
// appends when index is negative or past the end. The height check is
// unconditional; width capacity applies only while rules are enforced.
func (e Engine) AddItem(c Container, doorID, rowID string, item Item, index int) (Container, error) {
	door, ok := c.Doors[doorID]
	if !ok {
		return c, errors.New(errors.ErrCodeDoorNotFound, "no door %q", doorID)
	}
	row, ok := door.Rows[rowID]
	if !ok {
		return c, errors.New(errors.ErrCodeRowNotFound, "no row %q in door %q", rowID, doorID)
	}
	if item.HeightPX > row.MaxHeightPX {
		return c, errors.New(errors.ErrCodeCapacityExceeded,
			"item %s is %dpx tall, row %s allows %dpx", item.Name, item.HeightPX, rowID, row.MaxHeightPX)
	}
	if e.Rules {
		if !row.FitsWidth(item.WidthPX) {
			return c, errors.New(errors.ErrCodeCapacityExceeded,
				"row %s has no room for %dpx (used %d of %d)", rowID, item.WidthPX, row.UsedWidth(), row.CapacityPX)
		}
		if !row.Allows(item.Type) {
			return c, errors.New(errors.ErrCodeProductTypeNotAllowed,
				"row %s does not accept %s products", rowID, item.Type)
		}
	}

	next := c.Clone()
	r := next.Doors[doorID].Rows[rowID]
	r.Stacks = insertStack(r.Stacks, Stack{Items: []Item{item}}, index)
	next.Doors[doorID].Rows[rowID] = r
	return next, nil
}

// MoveStack relocates the entire stack containing itemID to the target row
// at targetIndex (negative appends). Same-door reorders and cross-door
// transfers follow the same path: the stack leaves its source row and is
// checked against the target row as it stands after the removal.
func (e Engine) MoveStack(c Container, itemID, targetDoorID, targetRowID string, targetIndex int) (Container, error) {
	loc, ok := Locate(c, itemID)
	if !ok {
		return c, errors.New(errors.ErrCodeItemNotFound, "no item %q", itemID)
	}
	if _, ok := c.Doors[targetDoorID]; !ok {
		return c, errors.New(errors.ErrCodeDoorNotFound, "no door %q", targetDoorID)
	}
	if _, ok := c.Doors[targetDoorID].Rows[targetRowID]; !ok {
		return c, errors.New(errors.ErrCodeRowNotFound, "no row %q in door %q", targetRowID, targetDoorID)
	}

	next := c.Clone()
	src := next.Doors[loc.DoorID].Rows[loc.RowID]
	moved := src.Stacks[loc.StackIndex]
	src.Stacks = removeStack(src.Stacks, loc.StackIndex)
	next.Doors[loc.DoorID].Rows[loc.RowID] = src

	dst := next.Doors[targetDoorID].Rows[targetRowID]
	if moved.Height() > dst.MaxHeightPX {
		return c, errors.New(errors.ErrCodeCapacityExceeded,
			"stack is %dpx tall, row %s allows %dpx", moved.Height(), targetRowID, dst.MaxHeightPX)
	}
	if e.Rules {
		if !dst.FitsWidth(moved.Width()) {
			return c, errors.New(errors.ErrCodeCapacityExceeded,
				"row %s has no room for %dpx (used %d of %d)", targetRowID, moved.Width(), dst.UsedWidth(), dst.CapacityPX)
		}
		for _, it := range moved.Items {
			if !dst.Allows(it.Type) {
				return c, errors.New(errors.ErrCodeProductTypeNotAllowed,
					"row %s does not accept %s products", targetRowID, it.Type)
			}
		}
	}

	// Removing an earlier stack from the same row shifts target indices.
	if loc.DoorID == targetDoorID && loc.RowID == targetRowID && targetIndex > loc.StackIndex {
		targetIndex--
	}
	dst.Stacks = insertStack(dst.Stacks, moved, targetIndex)
	next.Doors[targetDoorID].Rows[targetRowID] = dst
	return next, nil
}

// StackOnto moves the contents of the dragged item's stack onto the top of
// the target stack. The stability and height checks from validation are
// re-verified here; a stale validation result is never trusted. A stack
// founded by a filler never accepts products: fillers are spacing and the
// export transform emits nothing for them, so anything piled on one would
// be invisible downstream.
func (e Engine) StackOnto(c Container, draggedItemID string, target StackRef) (Container, error) {
	loc, ok := Locate(c, draggedItemID)
	if !ok {
		return c, errors.New(errors.ErrCodeItemNotFound, "no item %q", draggedItemID)
	}
	door, ok := c.Doors[target.Door]
	if !ok {
		return c, errors.New(errors.ErrCodeDoorNotFound, "no door %q", target.Door)
	}
	row, ok := door.Rows[target.Row]
	if !ok {
		return c, errors.New(errors.ErrCodeRowNotFound, "no row %q in door %q", target.Row, target.Door)
	}
	if target.Index < 0 || target.Index >= len(row.Stacks) {
		return c, errors.New(errors.ErrCodeInvalidTarget, "no stack %d in %s:%s", target.Index, target.Door, target.Row)
	}
	if loc.DoorID == target.Door && loc.RowID == target.Row && loc.StackIndex == target.Index {
		return c, errors.New(errors.ErrCodeInvalidTarget, "cannot stack %q onto its own stack", draggedItemID)
	}

	srcStack := c.Doors[loc.DoorID].Rows[loc.RowID].Stacks[loc.StackIndex]
	dstStack := row.Stacks[target.Index]
	if dstStack.Bottom().IsFiller() {
		return c, errors.New(errors.ErrCodeInvalidStack,
			"cannot stack onto filler %s", dstStack.Bottom().Name)
	}
	bottomWidth := dstStack.Bottom().WidthPX
	for _, it := range srcStack.Items {
		if !it.Stackable {
			return c, errors.New(errors.ErrCodeInvalidStack, "%s cannot be stacked", it.Name)
		}
		if it.WidthPX > bottomWidth {
			return c, errors.New(errors.ErrCodeInvalidStack,
				"%s is %dpx wide, stack base is %dpx", it.Name, it.WidthPX, bottomWidth)
		}
	}
	if dstStack.Height()+srcStack.Height() > row.MaxHeightPX {
		return c, errors.New(errors.ErrCodeInvalidStack,
			"combined stack is %dpx tall, row %s allows %dpx", dstStack.Height()+srcStack.Height(), target.Row, row.MaxHeightPX)
	}

	next := c.Clone()
	src := next.Doors[loc.DoorID].Rows[loc.RowID]
	moved := src.Stacks[loc.StackIndex]
	src.Stacks = removeStack(src.Stacks, loc.StackIndex)
	next.Doors[loc.DoorID].Rows[loc.RowID] = src

	dstIndex := target.Index
	if loc.DoorID == target.Door && loc.RowID == target.Row && loc.StackIndex < target.Index {
		dstIndex--
	}
	dst := next.Doors[target.Door].Rows[target.Row]
	stack := dst.Stacks[dstIndex]
	stack.Items = append(stack.Items, moved.Items...)
	dst.Stacks[dstIndex] = stack
	next.Doors[target.Door].Rows[target.Row] = dst
	return next, nil
}

// RemoveItem deletes the item with the given identifier. The enclosing
// stack is removed when it becomes empty.
func (e Engine) RemoveItem(c Container, itemID string) (Container, error) {
	return e.RemoveItems(c, []string{itemID})
}

// RemoveItems deletes all listed items. The operation is all-or-nothing:
// if any identifier is stale the container is returned unchanged.
func (e Engine) RemoveItems(c Container, itemIDs []string) (Container, error) {
	for _, id := range itemIDs {
		if _, ok := Locate(c, id); !ok {
			return c, errors.New(errors.ErrCodeItemNotFound, "no item %q", id)
		}
	}

	doomed := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		doomed[id] = true
	}

	next := c.Clone()
	for doorID, door := range next.Doors {
		for rowID, row := range door.Rows {
			stacks := row.Stacks[:0]
			for _, stack := range row.Stacks {
				items := stack.Items[:0]
				for _, it := range stack.Items {
					if !doomed[it.ID] {
						items = append(items, it)
					}
				}
				if len(items) > 0 {
					stacks = append(stacks, Stack{Items: items})
				}
			}
			row.Stacks = stacks
			door.Rows[rowID] = row
		}
		next.Doors[doorID] = door
	}
	return next, nil
}

// DuplicateAsNewStack clones the item (fresh instance identifier, same SKU
// and dimensions) and places the clone as a new stack directly after the
// original's stack, subject to the same checks as AddItem.
func (e Engine) DuplicateAsNewStack(c Container, itemID string) (Container, error) {
	loc, ok := Locate(c, itemID)
	if !ok {
		return c, errors.New(errors.ErrCodeItemNotFound, "no item %q", itemID)
	}
	item := c.Doors[loc.DoorID].Rows[loc.RowID].Stacks[loc.StackIndex].Items[loc.ItemIndex]
	return e.AddItem(c, loc.DoorID, loc.RowID, item.CloneInstance(), loc.StackIndex+1)
}

// DuplicateOntoStack clones the item and stacks the clone on top of the
// item's own stack, subject to the physical stacking checks.
func (e Engine) DuplicateOntoStack(c Container, itemID string) (Container, error) {
	loc, ok := Locate(c, itemID)
	if !ok {
		return c, errors.New(errors.ErrCodeItemNotFound, "no item %q", itemID)
	}
	row := c.Doors[loc.DoorID].Rows[loc.RowID]
	stack := row.Stacks[loc.StackIndex]
	item := stack.Items[loc.ItemIndex]

	if !item.Stackable {
		return c, errors.New(errors.ErrCodeInvalidStack, "%s cannot be stacked", item.Name)
	}
	if item.WidthPX > stack.Bottom().WidthPX {
		return c, errors.New(errors.ErrCodeInvalidStack,
			"%s is %dpx wide, stack base is %dpx", item.Name, item.WidthPX, stack.Bottom().WidthPX)
	}
	if stack.Height()+item.HeightPX > row.MaxHeightPX {
		return c, errors.New(errors.ErrCodeInvalidStack,
			"combined stack is %dpx tall, row %s allows %dpx", stack.Height()+item.HeightPX, loc.RowID, row.MaxHeightPX)
	}

	next := c.Clone()
	r := next.Doors[loc.DoorID].Rows[loc.RowID]
	s := r.Stacks[loc.StackIndex]
	s.Items = append(s.Items, item.CloneInstance())
	r.Stacks[loc.StackIndex] = s
	next.Doors[loc.DoorID].Rows[loc.RowID] = r
	return next, nil
}

// ReplaceItem swaps the item's product identity for a different one,
// re-validating capacity at the new dimensions. Per the item lifecycle the
// replacement is a new instance: the old identifier is destroyed and the
// returned container carries a freshly created item in its place.
func (e Engine) ReplaceItem(c Container, itemID string, replacement Item) (Container, error) {
	loc, ok := Locate(c, itemID)
	if !ok {
		return c, errors.New(errors.ErrCodeItemNotFound, "no item %q", itemID)
	}
	row := c.Doors[loc.DoorID].Rows[loc.RowID]
	stack := row.Stacks[loc.StackIndex].Clone()
	stack.Items[loc.ItemIndex] = replacement

	newHeight := stack.Height()
	if newHeight > row.MaxHeightPX {
		return c, errors.New(errors.ErrCodeCapacityExceeded,
			"stack would be %dpx tall, row %s allows %dpx", newHeight, loc.RowID, row.MaxHeightPX)
	}
	bottomWidth := stack.Bottom().WidthPX
	for _, it := range stack.Items[1:] {
		if it.WidthPX > bottomWidth {
			return c, errors.New(errors.ErrCodeInvalidStack,
				"%s is %dpx wide, stack base would be %dpx", it.Name, it.WidthPX, bottomWidth)
		}
	}
	if e.Rules {
		others := row.UsedWidth() - row.Stacks[loc.StackIndex].Width()
		if others+stack.Width() > row.CapacityPX {
			return c, errors.New(errors.ErrCodeCapacityExceeded,
				"row %s has no room for %dpx (used %d of %d)", loc.RowID, stack.Width(), others, row.CapacityPX)
		}
		if !row.Allows(replacement.Type) {
			return c, errors.New(errors.ErrCodeProductTypeNotAllowed,
				"row %s does not accept %s products", loc.RowID, replacement.Type)
		}
	}

	next := c.Clone()
	r := next.Doors[loc.DoorID].Rows[loc.RowID]
	r.Stacks[loc.StackIndex] = stack
	next.Doors[loc.DoorID].Rows[loc.RowID] = r
	return next, nil
}

// UpdateAdjustableWidth resizes a filler item. The requested width is
// clamped to the minimum filler width below and to the row's remaining
// capacity above; clamping is silent, only a missing or non-adjustable
// item is an error.
func (e Engine) UpdateAdjustableWidth(c Container, itemID string, widthMM int) (Container, error) {
	loc, ok := Locate(c, itemID)
	if !ok {
		return c, errors.New(errors.ErrCodeItemNotFound, "no item %q", itemID)
	}
	row := c.Doors[loc.DoorID].Rows[loc.RowID]
	stack := row.Stacks[loc.StackIndex]
	item := stack.Items[loc.ItemIndex]
	if !item.Adjustable {
		return c, errors.New(errors.ErrCodeUnsupported, "%s is not width-adjustable", item.Name)
	}

	if widthMM < MinFillerWidthMM {
		widthMM = MinFillerWidthMM
	}
	widthPX := units.ToPixels(widthMM)

	// Clamp to whatever the row has left once every other stack's footprint
	// and gap is accounted for; the minimum filler width wins over the clamp.
	available := row.CapacityPX - (row.UsedWidth() - stack.Width())
	if widthPX > available {
		widthPX = available
		if min := units.ToPixels(MinFillerWidthMM); widthPX < min {
			widthPX = min
		}
		widthMM = units.ToMM(widthPX)
	}

	next := c.Clone()
	r := next.Doors[loc.DoorID].Rows[loc.RowID]
	it := r.Stacks[loc.StackIndex].Items[loc.ItemIndex]
	it.WidthMM = widthMM
	it.WidthPX = widthPX
	r.Stacks[loc.StackIndex].Items[loc.ItemIndex] = it
	next.Doors[loc.DoorID].Rows[loc.RowID] = r
	return next, nil
}

// ReorderStack moves the stack at fromIndex to toIndex within a row.
func (e Engine) ReorderStack(c Container, doorID, rowID string, fromIndex, toIndex int) (Container, error) {
	door, ok := c.Doors[doorID]
	if !ok {
		return c, errors.New(errors.ErrCodeDoorNotFound, "no door %q", doorID)
	}
	row, ok := door.Rows[rowID]
	if !ok {
		return c, errors.New(errors.ErrCodeRowNotFound, "no row %q in door %q", rowID, doorID)
	}
	n := len(row.Stacks)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return c, errors.New(errors.ErrCodeInvalidInput,
			"reorder %d -> %d out of range for %d stacks", fromIndex, toIndex, n)
	}
	// Valid but nothing moves; callers that record history skip this case.
	if fromIndex == toIndex {
		return c.Clone(), nil
	}

	next := c.Clone()
	r := next.Doors[doorID].Rows[rowID]
	moved := r.Stacks[fromIndex]
	r.Stacks = removeStack(r.Stacks, fromIndex)
	r.Stacks = insertStack(r.Stacks, moved, toIndex)
	next.Doors[doorID].Rows[rowID] = r
	return next, nil
}

// insertStack inserts s at index, appending when index is negative or past
// the end.
func insertStack(stacks []Stack, s Stack, index int) []Stack {
	if index < 0 || index >= len(stacks) {
		return append(stacks, s)
	}
	stacks = append(stacks, Stack{})
	copy(stacks[index+1:], stacks[index:])
	stacks[index] = s
	return stacks
}

// removeStack removes the stack at index.
func removeStack(stacks []Stack, index int) []Stack {
	return append(stacks[:index], stacks[index+1:]...)
}

package planogram

// Conflicts lists the item identifiers currently violating placement
// constraints, grouped by violation kind. The reporter is read-only: it
// exists for external highlighting, never for correction.
type Conflicts struct {
	// HeightOverflow lists items protruding above their row's maximum
	// height (unconditional physical constraint).
	HeightOverflow []string `json:"heightOverflow"`
	// TypeMismatch lists items whose product type the row disallows
	// (reported only while rules are enforced).
	TypeMismatch []string `json:"typeMismatch"`
	// UnstableStack lists covering items wider than their stack's founding
	// item (unconditional physical constraint).
	UnstableStack []string `json:"unstableStack"`
}

// Empty reports whether no conflicts were found.
func (c Conflicts) Empty() bool {
	return len(c.HeightOverflow) == 0 && len(c.TypeMismatch) == 0 && len(c.UnstableStack) == 0
}

// All returns the union of all conflicting item identifiers, deduplicated,
// in sweep order.
func (c Conflicts) All() []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]string{c.HeightOverflow, c.TypeMismatch, c.UnstableStack} {
		for _, id := range group {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// Has reports whether the item is in any conflict group.
func (c Conflicts) Has(itemID string) bool {
	for _, group := range [][]string{c.HeightOverflow, c.TypeMismatch, c.UnstableStack} {
		for _, id := range group {
			if id == itemID {
				return true
			}
		}
	}
	return false
}

// FindConflicts sweeps every door of the container and reports all items
// violating physical or business constraints. The sweep aggregates across
// all doors in door order; it never stops at the first hit and never
// mutates anything.
func (e Engine) FindConflicts(c Container) Conflicts {
	var out Conflicts
	for _, doorID := range c.DoorOrder {
		door := c.Doors[doorID]
		for _, rowID := range door.RowOrder {
			row := door.mustRow(rowID)
			for _, stack := range row.Stacks {
				bottomWidth := stack.Bottom().WidthPX
				cumHeight := 0
				for ii, item := range stack.Items {
					cumHeight += item.HeightPX
					if cumHeight > row.MaxHeightPX {
						out.HeightOverflow = append(out.HeightOverflow, item.ID)
					}
					if e.Rules && !row.Allows(item.Type) {
						out.TypeMismatch = append(out.TypeMismatch, item.ID)
					}
					if ii > 0 && item.WidthPX > bottomWidth {
						out.UnstableStack = append(out.UnstableStack, item.ID)
					}
				}
			}
		}
	}
	return out
}

package planogram

// Candidate describes a dragged entity being tested against drop targets:
// either an item already placed somewhere in the container (ItemID set, so
// its own stack is excluded from stack targets) or a not-yet-placed SKU
// (ItemID empty).
type Candidate struct {
	ItemID    string      `json:"itemId,omitempty"`
	WidthPX   int         `json:"widthPx"`
	HeightPX  int         `json:"heightPx"`
	Type      ProductType `json:"productType"`
	Stackable bool        `json:"stackable"`
}

// CandidateFromItem builds a candidate for re-dragging a placed item.
func CandidateFromItem(item Item) Candidate {
	return Candidate{
		ItemID:    item.ID,
		WidthPX:   item.WidthPX,
		HeightPX:  item.HeightPX,
		Type:      item.Type,
		Stackable: item.Stackable,
	}
}

// Targets holds the legal drop targets for one candidate within one door.
// All references are door-qualified; rows with zero remaining room are
// simply absent rather than reported as errors.
type Targets struct {
	Rows   []RowRef   `json:"rows"`
	Stacks []StackRef `json:"stacks"`
}

// RowStrings returns the qualified "door:row" forms, the shape drop-target
// consumers match on.
func (t Targets) RowStrings() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.String()
	}
	return out
}

// StackStrings returns the qualified "door:row:index" forms.
func (t Targets) StackStrings() []string {
	out := make([]string, len(t.Stacks))
	for i, s := range t.Stacks {
		out[i] = s.String()
	}
	return out
}

// LegalTargets computes the rows that may accept the candidate as a new
// stack and the existing stacks it may be placed on top of, within the
// given door only. Targets in other doors never leak into the result.
//
// The height and stability checks are physical and always applied; the
// width-capacity and product-type checks follow the engine's rules setting.
// Validation is read-only and runs in linear time over the door's stacks,
// cheap enough for per-drag-event calls (callers throttle the event rate,
// not this function).
func (e Engine) LegalTargets(c Container, doorID string, cand Candidate) Targets {
	var targets Targets
	door, ok := c.Doors[doorID]
	if !ok {
		return targets
	}

	var self Location
	hasSelf := false
	if cand.ItemID != "" {
		self, hasSelf = Locate(c, cand.ItemID)
	}

	for _, rowID := range door.RowOrder {
		row := door.mustRow(rowID)

		if e.Rules && !row.Allows(cand.Type) {
			continue
		}

		// New-stack placement: unconditional height, rule-gated width. A
		// placed item leaves its own stack before it lands again, so the
		// width check for its current row runs against the row minus that
		// stack, matching what the move mutation will actually verify.
		if cand.HeightPX <= row.MaxHeightPX {
			fitRow := row
			if hasSelf && self.DoorID == doorID && self.RowID == rowID {
				fitRow = row.Clone()
				fitRow.Stacks = removeStack(fitRow.Stacks, self.StackIndex)
			}
			if !e.Rules || fitRow.FitsWidth(cand.WidthPX) {
				targets.Rows = append(targets.Rows, RowRef{Door: doorID, Row: rowID})
			}
		}

		if !cand.Stackable {
			continue
		}
		for si, stack := range row.Stacks {
			if hasSelf && self.DoorID == doorID && self.RowID == rowID && self.StackIndex == si {
				continue
			}
			// Fillers are spacing, never a stacking base.
			if stack.Bottom().IsFiller() {
				continue
			}
			if cand.WidthPX > stack.Bottom().WidthPX {
				continue
			}
			if stack.Height()+cand.HeightPX > row.MaxHeightPX {
				continue
			}
			targets.Stacks = append(targets.Stacks, StackRef{Door: doorID, Row: rowID, Index: si})
		}
	}
	return targets
}

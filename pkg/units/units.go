// Package units converts between physical product dimensions (millimeters)
// and logical layout pixels, and computes the horizontal pixel offsets of
// doors inside the multi-door composite image.
//
// A single fixed ratio governs all conversions. A dimension converted at
// item-creation time stays consistent for the item's lifetime; nothing in
// this package carries state.
package units

import "math"

// PxPerMM is the fixed global conversion ratio between millimeters and
// logical layout pixels. All items, rows, and doors are sized under this
// single ratio.
const PxPerMM = 2.5

// ToPixels converts a millimeter dimension to logical pixels,
// rounding half up.
func ToPixels(mm int) int {
	return int(math.Floor(float64(mm)*PxPerMM + 0.5))
}

// ToMM converts a pixel dimension back to millimeters, rounding half up.
func ToMM(px int) int {
	return int(math.Floor(float64(px)/PxPerMM + 0.5))
}

// DoorOffsetPX returns the absolute X coordinate (in composite-image pixels)
// of the left inner edge region of door doorIndex: one leading frame border,
// plus for every prior door its width, both of its frame borders, and one
// inter-door gap.
//
// Every door panel is framed on both sides, so two borders accrue per prior
// door. The running sum is exact integer arithmetic; there is no rounding
// drift across doors.
func DoorOffsetPX(doorIndex int, doorWidths []int, frameBorder, doorGap int) int {
	offset := frameBorder
	for i := 0; i < doorIndex && i < len(doorWidths); i++ {
		offset += doorWidths[i] + 2*frameBorder + doorGap
	}
	return offset
}

// CompositeWidth returns the total pixel width of the multi-door composite
// image: each door contributes its width plus both frame borders, with one
// gap between consecutive doors.
func CompositeWidth(doorWidths []int, frameBorder, doorGap int) int {
	if len(doorWidths) == 0 {
		return 0
	}
	total := 0
	for _, w := range doorWidths {
		total += w + 2*frameBorder
	}
	total += (len(doorWidths) - 1) * doorGap
	return total
}

// CompositeHeight returns the total pixel height of the composite image:
// the header band, the tallest door, and the grille band at the bottom.
func CompositeHeight(doorHeights []int, header, grille int) int {
	max := 0
	for _, h := range doorHeights {
		if h > max {
			max = h
		}
	}
	return header + max + grille
}

// Package overlap pushes apart node boxes that collide after layout or a
// free-form drag.
package overlap

import (
	"cmp"
	"math"
	"slices"
)

// Default footprint and spacing, in renderer units.
const (
	DefaultWidth  = 150.0
	DefaultHeight = 40.0
	DefaultMargin = 20.0
)

// Footprint is the fixed box size of a rendered node.
type Footprint struct {
	Width  float64
	Height float64
}

// Position is the center of one node box.
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Resolve returns a copy of positions in which colliding boxes are moved
// apart vertically. The input is not modified and the result keeps its
// order.
//
// Boxes are sorted by x; two boxes overlap when their centers are closer than
// Width+margin/2 horizontally and Height+margin/2 vertically. Overlapping
// pairs are merged into groups that share a member. Within each group the
// boxes are sorted by y and every box is pushed down to at least
// previous.Y+Height+margin. Ties on y keep input order.
//
// Resolve makes a single deterministic pass. Moving a box can create a new
// collision with a box outside its group; such residual overlaps are kept.
func Resolve(positions []Position, fp Footprint, margin float64) []Position {
	out := slices.Clone(positions)
	if len(out) < 2 {
		return out
	}

	// Indices into out, sorted by x then by input order.
	byX := make([]int, len(out))
	for i := range byX {
		byX[i] = i
	}
	slices.SortStableFunc(byX, func(a, b int) int { return cmp.Compare(out[a].X, out[b].X) })

	var groups [][]int
	for i, a := range byX {
		for _, b := range byX[i+1:] {
			dx := out[b].X - out[a].X
			if dx >= fp.Width+margin {
				break
			}
			if !overlaps(out[a], out[b], fp, margin) {
				continue
			}
			groups = merge(groups, a, b)
		}
	}

	for _, g := range groups {
		slices.SortFunc(g, func(a, b int) int { return cmp.Or(cmp.Compare(out[a].Y, out[b].Y), cmp.Compare(a, b)) })
		for k := 1; k < len(g); k++ {
			prev, curr := out[g[k-1]], &out[g[k]]
			if minY := prev.Y + fp.Height + margin; curr.Y < minY {
				curr.Y = minY
			}
		}
	}
	return out
}

func overlaps(a, b Position, fp Footprint, margin float64) bool {
	return math.Abs(a.X-b.X) < fp.Width+margin/2 &&
		math.Abs(a.Y-b.Y) < fp.Height+margin/2
}

// merge adds the pair (a, b) to groups. Groups sharing a member with the pair
// are folded into one.
func merge(groups [][]int, a, b int) [][]int {
	merged := []int{a, b}
	kept := groups[:0]
	for _, g := range groups {
		if slices.Contains(g, a) || slices.Contains(g, b) {
			for _, m := range g {
				if !slices.Contains(merged, m) {
					merged = append(merged, m)
				}
			}
			continue
		}
		kept = append(kept, g)
	}
	return append(kept, merged)
}

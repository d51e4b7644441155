// SPDX-License-Identifier: MIT
package imagestyles

import (
	"math"
	"slices"
)

// DefaultLazyWidth is the placeholder width used when no height is known
const DefaultLazyWidth = 5

// Derivative is one planned image size; a nil Height scales freely
type Derivative struct {
	Width  int
	Height *int
}

// Plan returns the derivative sizes for a target size: every breakpoint no
// wider than the target plus the target itself, widest first and without
// duplicates. Heights keep the target aspect ratio, rounded down and never
// below 1.
func Plan(width int, height *int, breakpoints []int) []Derivative {
	widths := []int{width}
	for _, bp := range breakpoints {
		if bp <= width {
			widths = append(widths, bp)
		}
	}
	slices.Sort(widths)
	slices.Reverse(widths)
	widths = slices.Compact(widths)

	derivatives := make([]Derivative, 0, len(widths))
	for _, w := range widths {
		d := Derivative{Width: w}
		if height != nil {
			h := max(w*(*height)/width, 1)
			d.Height = &h
		}
		derivatives = append(derivatives, d)
	}
	return derivatives
}

// LazySize picks a tiny placeholder size: the width in 1..10 whose height at
// the target aspect ratio lands closest to an integer, lowest width on ties.
func LazySize(width int, height *int) Derivative {
	if height == nil {
		return Derivative{Width: DefaultLazyWidth}
	}

	ratio := float64(*height) / float64(width)
	best := Derivative{Width: DefaultLazyWidth}
	bestDiff := math.Inf(1)

	for i := 1; i <= 10; i++ {
		precise := float64(i) * ratio
		rounded := math.Round(precise)
		if diff := math.Abs(rounded - precise); diff < bestDiff {
			bestDiff = diff
			h := max(int(rounded), 1)
			best = Derivative{Width: i, Height: &h}
		}
	}
	return best
}

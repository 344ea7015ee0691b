package movement

import (
	"math"

	"gatherspace/layout"
)

// Distance is the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}

// Nearby returns the areas whose center lies within threshold of (x, y),
// inclusive, in input order. It is recomputed every tick; there is no caching.
func Nearby(x, y float64, areas []layout.InteractableArea, threshold float64) []layout.InteractableArea {
	var out []layout.InteractableArea
	for _, a := range areas {
		ax, ay := a.Center()
		if Distance(x, y, ax, ay) <= threshold {
			out = append(out, a)
		}
	}
	return out
}

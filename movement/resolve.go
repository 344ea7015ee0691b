// Package movement turns a desired avatar position into one that respects the
// canvas bounds and the layout's obstacles, and finds the interactable areas
// close enough to a position to be offered to the player.
package movement

import (
	"math"

	"gatherspace/layout"
)

const (
	// PlayerSize is the avatar diameter.
	PlayerSize   = 40.0
	PlayerRadius = PlayerSize / 2
	// PlayerSpeed is the distance covered per simulation tick on each pressed axis.
	PlayerSpeed = 3.0
	// SearchRadius is how far from a blocked candidate the resolver probes.
	SearchRadius = 20.0
	// InteractionDistance is the proximity threshold shared with the UI.
	InteractionDistance = 100.0
)

// probeOffsets are the eight unit vectors at 0°, 45°, …, 315°, in probe order.
var probeOffsets = func() [8][2]float64 {
	var out [8][2]float64
	for i := range out {
		rad := float64(i*45) * math.Pi / 180
		out[i] = [2]float64{math.Cos(rad), math.Sin(rad)}
	}
	return out
}()

// Resolve maps a desired center position to the position the avatar actually takes.
// The result always lies in [PlayerRadius, width-PlayerRadius] x [PlayerRadius, height-PlayerRadius].
// When the clamped candidate overlaps an obstacle, the first of eight probe points around it
// that overlaps nothing is returned; if all eight are blocked the candidate is returned as is.
func Resolve(x, y float64, obstacles []layout.Obstacle, width, height float64) (float64, float64) {
	cx, cy := clampToCanvas(x, y, width, height)
	if !Collides(cx, cy, obstacles) {
		return cx, cy
	}
	for _, off := range probeOffsets {
		px, py := clampToCanvas(cx+off[0]*SearchRadius, cy+off[1]*SearchRadius, width, height)
		if !Collides(px, py, obstacles) {
			return px, py
		}
	}
	return cx, cy
}

// Collides reports whether an avatar centered at (x, y) overlaps any obstacle.
func Collides(x, y float64, obstacles []layout.Obstacle) bool {
	for _, o := range obstacles {
		if circleRectOverlap(x, y, PlayerRadius, o.Rect) {
			return true
		}
	}
	return false
}

// circleRectOverlap tests the circle against the closest point of the rectangle.
// Touching edges do not count as overlap.
func circleRectOverlap(cx, cy, radius float64, r layout.Rect) bool {
	closestX := clamp(cx, r.X, r.X+r.Width)
	closestY := clamp(cy, r.Y, r.Y+r.Height)
	dx := cx - closestX
	dy := cy - closestY
	return dx*dx+dy*dy < radius*radius
}

func clampToCanvas(x, y, width, height float64) (float64, float64) {
	return clamp(x, PlayerRadius, width-PlayerRadius), clamp(y, PlayerRadius, height-PlayerRadius)
}

// clamp limits value to [min, max]; the lower bound wins when the range is
// empty. NaN maps to min.
func clamp(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	if value > max {
		value = max
	}
	if value < min {
		value = min
	}
	return value
}

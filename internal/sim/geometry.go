package sim

import "math"

// raycastStep is the sampling interval, in world units, used when marching a
// segment through the wall list. Finer steps trade CPU for precision; 5 units
// is well under the thinnest wall the level generator produces.
const raycastStep = 5.0

// Point is a position in world coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in world coordinates. Walls and room
// bounds are both Rects; walls are immutable once placed.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (px,py) lies inside the rectangle, edges included.
func (r Rect) Contains(px, py float64) bool {
	return px >= r.X && px <= r.X+r.W && py >= r.Y && py <= r.Y+r.H
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Inset returns the rectangle shrunk by m on every side. Degenerate results
// collapse to the center point.
func (r Rect) Inset(m float64) Rect {
	if r.W <= 2*m || r.H <= 2*m {
		c := r.Center()
		return Rect{X: c.X, Y: c.Y, W: 0, H: 0}
	}
	return Rect{X: r.X + m, Y: r.Y + m, W: r.W - 2*m, H: r.H - 2*m}
}

// Raycast marches the segment from (ox,oy) to (ex,ey) in raycastStep
// increments and returns the first sample point that falls inside any wall.
// The bool is false when the segment reaches (ex,ey) unobstructed. An empty
// wall list never hits.
func Raycast(ox, oy, ex, ey float64, walls []Rect) (Point, bool) {
	dx := ex - ox
	dy := ey - oy
	dist := math.Hypot(dx, dy)
	if dist < 1e-9 {
		return Point{}, false
	}
	steps := int(dist / raycastStep)
	stepX := dx / dist * raycastStep
	stepY := dy / dist * raycastStep

	px, py := ox, oy
	for i := 0; i < steps; i++ {
		px += stepX
		py += stepY
		for _, w := range walls {
			if w.Contains(px, py) {
				return Point{X: px, Y: py}, true
			}
		}
	}
	// The endpoint itself is the final sample.
	for _, w := range walls {
		if w.Contains(ex, ey) {
			return Point{X: ex, Y: ey}, true
		}
	}
	return Point{}, false
}

// WallBetween reports whether a wall interrupts the segment from (ox,oy)
// strictly before reaching (tx,ty). Used to reject shot candidates standing
// behind cover.
func WallBetween(ox, oy, tx, ty float64, walls []Rect) bool {
	hit, ok := Raycast(ox, oy, tx, ty, walls)
	if !ok {
		return false
	}
	return math.Hypot(hit.X-ox, hit.Y-oy) < math.Hypot(tx-ox, ty-oy)
}

// HeadingTo returns the angle in radians from (ox,oy) toward (tx,ty).
func HeadingTo(ox, oy, tx, ty float64) float64 {
	return math.Atan2(ty-oy, tx-ox)
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

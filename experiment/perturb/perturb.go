// Package perturb holds the geometry of the reaching task: the rotation applied
// to cursor feedback and the placement of targets on the ring.
//
// Positions are display coordinates (y grows downward). Angles are degrees in
// the mathematical orientation, counter-clockwise on screen.
package perturb

import "math"

// Point is a position in display coordinates.
type Point struct {
	X float64
	Y float64
}

// Rotate returns p rotated by deg degrees about pivot. The distance to the pivot
// is preserved; a point on the pivot stays on the pivot.
func Rotate(pivot, p Point, deg float64) Point {
	dx := p.X - pivot.X
	dy := pivot.Y - p.Y
	r := math.Hypot(dx, dy)
	theta := math.Atan2(dy, dx) + deg*math.Pi/180
	return Point{
		X: pivot.X + r*math.Cos(theta),
		Y: pivot.Y - r*math.Sin(theta),
	}
}

// OnRing returns the point at angle deg on the circle of the given radius around
// center, snapped to the nearest pixel the way it is drawn.
func OnRing(center Point, radius, deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{
		X: math.Round(center.X + radius*math.Cos(rad)),
		Y: math.Round(center.Y - radius*math.Sin(rad)),
	}
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Dist2 returns the squared distance between a and b.
func Dist2(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

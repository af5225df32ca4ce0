package shape

import "github.com/go-gl/mathgl/mgl64"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl64.Vec2
	Max mgl64.Vec2
}

// Contains reports whether the point is inside the box. The test is half-open
// (Min < p ≤ Max) so that a point sitting exactly on a shared edge of two
// tiled boxes belongs to exactly one of them.
func (a AABB) Contains(p mgl64.Vec2) bool {
	return a.Min.X() < p.X() && p.X() <= a.Max.X() &&
		a.Min.Y() < p.Y() && p.Y() <= a.Max.Y()
}

func (a AABB) Width() float64 {
	return a.Max.X() - a.Min.X()
}

func (a AABB) Height() float64 {
	return a.Max.Y() - a.Min.Y()
}

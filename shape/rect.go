package shape

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

var ErrEmptyRect = errors.New("rect must have positive width and height")

// Rect is a static axis-aligned rectangular obstacle.
type Rect struct {
	Left, Right   float64
	Bottom, Top   float64
	Width, Height float64
	// Restitution is the fraction of the incoming normal velocity reversed on
	// impact, in [0, 1].
	Restitution float64
}

func NewRect(left, right, bottom, top, restitution float64) (*Rect, error) {
	if right <= left || top <= bottom {
		return nil, errors.Wrapf(ErrEmptyRect, "bounds [%g, %g]x[%g, %g]", left, right, bottom, top)
	}
	return &Rect{
		Left: left, Right: right,
		Bottom: bottom, Top: top,
		Width: right - left, Height: top - bottom,
		Restitution: restitution,
	}, nil
}

func (r *Rect) Bounds() AABB {
	return AABB{
		Min: mgl64.Vec2{r.Left, r.Bottom},
		Max: mgl64.Vec2{r.Right, r.Top},
	}
}

// Contains reports whether the point is inside the rectangle, with the same
// half-open convention as AABB.Contains: a point exactly on the left or
// bottom edge is outside, on the right or top edge inside. Tiled rectangles
// sharing an edge therefore never both claim the same point.
func (r *Rect) Contains(p mgl64.Vec2) bool {
	return r.Left < p.X() && p.X() <= r.Right &&
		r.Bottom < p.Y() && p.Y() <= r.Top
}

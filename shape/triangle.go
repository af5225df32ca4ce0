package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

var ErrDegenerateTriangle = errors.New("triangle vertices are collinear")

// Triangle is a static convex obstacle bounded by three segments whose
// normals all point outward.
type Triangle struct {
	A, B, C mgl64.Vec2
	// Segments are AB, BC, CA in that order.
	Segments [3]Segment
	// Restitution is the fraction of the incoming normal velocity reversed on
	// impact, in [0, 1].
	Restitution float64

	bounds AABB
}

func NewTriangle(ax, ay, bx, by, cx, cy, restitution float64) (*Triangle, error) {
	a := mgl64.Vec2{ax, ay}
	b := mgl64.Vec2{bx, by}
	c := mgl64.Vec2{cx, cy}

	ab := b.Sub(a)
	ac := c.Sub(a)
	if ab.X()*ac.Y()-ab.Y()*ac.X() == 0 {
		return nil, errors.Wrapf(ErrDegenerateTriangle, "vertices %v %v %v", a, b, c)
	}

	t := &Triangle{
		A: a, B: b, C: c,
		Segments:    [3]Segment{NewSegment(a, b), NewSegment(b, c), NewSegment(c, a)},
		Restitution: restitution,
		bounds: AABB{
			Min: mgl64.Vec2{math.Min(ax, math.Min(bx, cx)), math.Min(ay, math.Min(by, cy))},
			Max: mgl64.Vec2{math.Max(ax, math.Max(bx, cx)), math.Max(ay, math.Max(by, cy))},
		},
	}

	// Each segment's normal must point away from the opposite vertex.
	opposite := [3]mgl64.Vec2{c, a, b}
	for i := range t.Segments {
		if opposite[i].Sub(t.Segments[i].P2).Dot(t.Segments[i].Normal) >= 0 {
			t.Segments[i].Flip()
		}
	}
	return t, nil
}

func (t *Triangle) Bounds() AABB {
	return t.bounds
}

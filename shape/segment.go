package shape

import "github.com/go-gl/mathgl/mgl64"

// Segment is an oriented line segment with a precomputed unit tangent and
// unit normal. The normal starts as the 90° left rotation of the tangent;
// the owning triangle flips it outward at construction.
type Segment struct {
	P1, P2  mgl64.Vec2
	Length  float64
	Tangent mgl64.Vec2
	Normal  mgl64.Vec2
}

func NewSegment(p1, p2 mgl64.Vec2) Segment {
	v := p2.Sub(p1)
	length := v.Len()
	tangent := v.Mul(1 / length)
	return Segment{
		P1: p1, P2: p2,
		Length:  length,
		Tangent: tangent,
		Normal:  mgl64.Vec2{-tangent.Y(), tangent.X()},
	}
}

// Flip reverses the normal and the tangent together, keeping the local frame
// consistent.
func (s *Segment) Flip() {
	s.Normal = s.Normal.Mul(-1)
	s.Tangent = s.Tangent.Mul(-1)
}

// DistanceAlongNormal is the signed distance of p from the segment's line,
// positive on the normal's side.
func (s *Segment) DistanceAlongNormal(p mgl64.Vec2) float64 {
	return p.Sub(s.P1).Dot(s.Normal)
}

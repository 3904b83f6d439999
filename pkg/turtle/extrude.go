package turtle

import (
	"github.com/chazu/spire/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// degenerateEdge is the cross product length below which an edge pair is
// treated as collinear or zero.
const degenerateEdge = 1e-12

// IndexMap maps a virtual side index in [0, virtualCount] to an index into
// a ring. It must be monotonic non-decreasing, return 0 for 0 and the
// ring's side count for virtualCount, so that the last virtual side closes
// onto the ring's duplicate first vertex.
type IndexMap func(virtualIndex, virtualCount int) int

// Proportional returns the default IndexMap for a ring with sideCount
// sides: floor(virtualIndex / virtualCount * sideCount).
func Proportional(sideCount int) IndexMap {
	return func(virtualIndex, virtualCount int) int {
		return virtualIndex * sideCount / virtualCount
	}
}

// Forward moves step along Forward, materializes a new ring and connects
// it to the previous ring. Rings with different corner counts are matched
// proportionally.
func (t *Turtle) Forward(step float64) {
	t.ForwardMapped(step, Proportional(max(len(t.lastRing)-1, 0)), Proportional(len(t.Sides)))
}

// ForwardMapped is Forward with explicit maps from the virtual side index
// space into the previous ring (oldMap) and the new ring (newMap).
func (t *Turtle) ForwardMapped(step float64, oldMap, newMap IndexMap) {
	if len(t.Corners) == 0 {
		panic("turtle: Forward with an empty cross-section")
	}

	t.MoveForward(step)
	ring := t.materialize()
	if len(t.lastRing) > 0 {
		t.stitch(ring, oldMap, newMap)
	}
	t.lastRing = ring
}

// materialize computes one vertex per corner plus the closing duplicate of
// corner 0, accumulating U along the perimeter.
func (t *Turtle) materialize() []kernel.Vertex {
	ring := make([]kernel.Vertex, 0, len(t.Corners)+1)
	u := 0.0
	for i, c := range t.Corners {
		dir := rotate(t.UpDirection, t.ForwardDirection, c.Angle)
		pos := dir.MulScalar(c.Radius).Add(t.Center)
		if i > 0 {
			u += pos.Sub(ring[i-1].Position).Length() * t.UVScale.X
		}
		ring = append(ring, kernel.Vertex{
			Position: pos,
			Normal:   dir.Normalize(),
			UV:       v2.Vec{X: u, Y: 0},
		})
	}

	closing := ring[0]
	u += closing.Position.Sub(ring[len(ring)-1].Position).Length() * t.UVScale.X
	closing.UV.X = u
	return append(ring, closing)
}

// stitch emits the band of quads between the last ring and ring.
func (t *Turtle) stitch(ring []kernel.Vertex, oldMap, newMap IndexMap) {
	last := t.lastRing
	sideCount := len(t.Sides)
	virtualCount := max(len(last)-1, sideCount)

	for vi := 0; vi < virtualCount; vi++ {
		lastIdx, lastNext := oldMap(vi, virtualCount), oldMap(vi+1, virtualCount)
		newIdx, newNext := newMap(vi, virtualCount), newMap(vi+1, virtualCount)

		c1 := &last[lastIdx]
		c2 := &last[lastNext]
		c3 := &ring[newNext]
		c4 := &ring[newIdx]

		c3.UV.Y = c2.UV.Y + c3.Position.Sub(c2.Position).Length()*t.UVScale.Y
		c4.UV.Y = c1.UV.Y + c4.Position.Sub(c1.Position).Length()*t.UVScale.Y

		side := &t.Sides[newIdx%sideCount]
		if sub := side.Turtle; sub != nil {
			side.Turtle = nil
			t.delegate(sub, side, *c1, *c2, *c3, *c4)
			continue
		}

		q1, q2, q3, q4 := *c1, *c2, *c3, *c4
		if !side.Smooth {
			n, ok := faceNormal(q1.Position, q2.Position, q3.Position, q4.Position)
			if !ok {
				n = t.ForwardDirection.Normalize()
			}
			q1.Normal, q2.Normal, q3.Normal, q4.Normal = n, n, n, n
		}
		t.Builder.Part(side.Material, kernel.PrimitiveTriangles).Rect(q1, q2, q3, q4)
	}
}

// delegate roots sub in the plane of the quad c1→c2→c3→c4 and seeds its
// cross-section and last ring from the quad corners.
func (t *Turtle) delegate(sub *Turtle, side *Side, c1, c2, c3, c4 kernel.Vertex) {
	u := c2.Position.Sub(c1.Position).MulScalar(0.5)
	v := c4.Position.Sub(c1.Position).MulScalar(0.5)

	sub.Center = c1.Position.Add(u).Add(v)
	sub.UpDirection = u.Normalize()
	sub.ForwardDirection = u.Cross(v).Normalize()
	sub.Builder = t.Builder
	sub.UVScale = t.UVScale
	sub.StartPolygonVertices(Const(side.Material), c1, c2, c3, c4)
	sub.SetSmooth(side.Smooth)
}

// faceNormal returns the unit normal of the quad c1→c2→c3→c4. Opposite
// edges are tried when a corner pair coincides, e.g. at a pole. ok is
// false when the quad has collapsed to a point or a line.
func faceNormal(c1, c2, c3, c4 v3.Vec) (n v3.Vec, ok bool) {
	along := [2]v3.Vec{c2.Sub(c1), c3.Sub(c4)}
	across := [2]v3.Vec{c4.Sub(c1), c3.Sub(c2)}
	for _, a := range along {
		for _, b := range across {
			if n := a.Cross(b); n.Length() > degenerateEdge {
				return n.Normalize(), true
			}
		}
	}
	return v3.Vec{}, false
}

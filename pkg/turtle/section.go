package turtle

import (
	"math"

	"github.com/chazu/spire/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// IndexFunc computes a per-corner value from the corner index.
type IndexFunc[T any] func(index int) T

// MapFunc computes a new per-corner value from the index and current value.
type MapFunc[T any] func(index int, current T) T

// Const returns an IndexFunc that always yields v.
func Const[T any](v T) IndexFunc[T] {
	return func(int) T { return v }
}

// CornerCount returns the number of corners in the cross-section.
func (t *Turtle) CornerCount() int {
	return len(t.Corners)
}

// StartRegularPolygon replaces the cross-section with n evenly spaced
// corners of the given radius.
func (t *Turtle) StartRegularPolygon(n int, radius float64, m kernel.Material) {
	t.StartRegularPolygonFunc(n, Const(radius), Const(m))
}

// StartRegularPolygonFunc is StartRegularPolygon with per-corner radius and
// material.
func (t *Turtle) StartRegularPolygonFunc(n int, radius IndexFunc[float64], material IndexFunc[kernel.Material]) {
	t.StartPolygon(n, func(i int) float64 { return 360 / float64(n) * float64(i) }, radius, material)
}

// StartPolygon replaces the cross-section with n corners computed per index.
func (t *Turtle) StartPolygon(n int, angle, radius IndexFunc[float64], material IndexFunc[kernel.Material]) {
	t.Corners = make([]Corner, 0, n)
	t.Sides = make([]Side, 0, n)
	for i := 0; i < n; i++ {
		t.Corners = append(t.Corners, Corner{Radius: radius(i), Angle: angle(i)})
		t.Sides = append(t.Sides, Side{Material: material(i)})
	}
}

// StartPolygonPoints replaces the cross-section with one corner per point.
// Each point is read in polar form: its length is the radius and its own
// angle (from +X towards +Y) is the corner angle.
func (t *Turtle) StartPolygonPoints(material IndexFunc[kernel.Material], points ...v2.Vec) {
	t.StartPolygon(len(points),
		func(i int) float64 { return sdf.RtoD(math.Atan2(points[i].Y, points[i].X)) },
		func(i int) float64 { return points[i].Length() },
		material)
}

// StartPolygonVertices replaces the cross-section with corners recovered
// from existing vertices relative to the current frame, and makes those
// vertices the last ring so the next Forward connects to them.
func (t *Turtle) StartPolygonVertices(material IndexFunc[kernel.Material], vertices ...kernel.Vertex) {
	t.Corners = make([]Corner, 0, len(vertices))
	t.Sides = make([]Side, 0, len(vertices))
	for i, v := range vertices {
		radial := v.Position.Sub(t.Center)
		t.Corners = append(t.Corners, Corner{
			Radius: radial.Length(),
			Angle:  angleBetween(t.UpDirection, radial, t.ForwardDirection),
		})
		t.Sides = append(t.Sides, Side{Material: material(i)})
	}

	ring := make([]kernel.Vertex, 0, len(vertices)+1)
	ring = append(ring, vertices...)
	if len(vertices) > 0 {
		ring = append(ring, vertices[0])
	}
	t.lastRing = ring
}

// Radius returns the largest corner radius, or 0 without corners.
func (t *Turtle) Radius() float64 {
	r := 0.0
	for i, c := range t.Corners {
		if i == 0 || c.Radius > r {
			r = c.Radius
		}
	}
	return r
}

// SetRadius sets every corner's radius.
func (t *Turtle) SetRadius(r float64) {
	t.MapRadius(func(int, float64) float64 { return r })
}

// MapRadius replaces every corner's radius with fn(index, radius).
func (t *Turtle) MapRadius(fn MapFunc[float64]) {
	for i := range t.Corners {
		t.Corners[i].Radius = fn(i, t.Corners[i].Radius)
	}
}

// Angle returns the angle of corner 0.
func (t *Turtle) Angle() float64 {
	return t.Corners[0].Angle
}

// SetAngle sets every corner's angle.
func (t *Turtle) SetAngle(a float64) {
	t.MapAngle(func(int, float64) float64 { return a })
}

// MapAngle replaces every corner's angle with fn(index, angle).
func (t *Turtle) MapAngle(fn MapFunc[float64]) {
	for i := range t.Corners {
		t.Corners[i].Angle = fn(i, t.Corners[i].Angle)
	}
}

// Material returns the material of side 0.
func (t *Turtle) Material() kernel.Material {
	return t.Sides[0].Material
}

// SetMaterial sets every side's material.
func (t *Turtle) SetMaterial(m kernel.Material) {
	t.MapMaterial(func(int, kernel.Material) kernel.Material { return m })
}

// MapMaterial replaces every side's material with fn(index, material).
func (t *Turtle) MapMaterial(fn MapFunc[kernel.Material]) {
	for i := range t.Sides {
		t.Sides[i].Material = fn(i, t.Sides[i].Material)
	}
}

// Smooth returns the smoothing flag of side 0.
func (t *Turtle) Smooth() bool {
	return t.Sides[0].Smooth
}

// SetSmooth sets every side's smoothing flag.
func (t *Turtle) SetSmooth(smooth bool) {
	t.MapSmooth(func(int, bool) bool { return smooth })
}

// MapSmooth replaces every side's smoothing flag with fn(index, smooth).
func (t *Turtle) MapSmooth(fn MapFunc[bool]) {
	for i := range t.Sides {
		t.Sides[i].Smooth = fn(i, t.Sides[i].Smooth)
	}
}

// Package turtle implements the extrusion engine: a turtle carries a
// polygonal cross-section along a path of move and rotate commands, and
// each Forward step materializes a new ring of vertices and stitches it to
// the previous ring with quads emitted into a kernel.Builder.
//
// A side of the cross-section may carry a pending sub-turtle. The next band
// that reaches that side hands the quad to the sub-turtle instead of
// emitting it, and the sub-turtle's own Forward calls produce the detail
// geometry that replaces the flat quad.
//
// Turtles are not safe for concurrent use. Sub-turtles share their parent's
// builder by reference.
package turtle

import (
	"math"

	"github.com/chazu/spire/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Corner is one point of the cross-section in polar form. Angle is in
// degrees, measured around ForwardDirection starting from UpDirection.
type Corner struct {
	Radius float64
	Angle  float64
}

// Side describes the outgoing edge from one corner to the next.
type Side struct {
	Material kernel.Material
	Smooth   bool

	// Turtle is a pending sub-extrusion. It is cleared the first time a
	// band reaches this side.
	Turtle *Turtle
}

// SubTurtle attaches a fresh sub-turtle to the side and returns it.
// The sub-turtle is positioned and seeded from the quad when the next band
// reaches the side, so it is driven only after that band.
func (s *Side) SubTurtle() *Turtle {
	t := New(nil)
	s.Turtle = t
	return t
}

// Turtle is one extrusion: an orientation frame, a cross-section and the
// last materialized ring.
type Turtle struct {
	Center           v3.Vec
	UpDirection      v3.Vec
	ForwardDirection v3.Vec

	Builder kernel.Builder

	// UVScale scales U along the ring perimeter (X) and V along the sweep (Y).
	UVScale v2.Vec

	Corners []Corner
	Sides   []Side

	// lastRing is the previous ring: len(Corners)+1 records, the last one
	// duplicating the first with the full perimeter as U.
	lastRing []kernel.Vertex
}

// New returns a turtle at the origin facing +Y with +Z up.
func New(b kernel.Builder) *Turtle {
	return &Turtle{
		UpDirection:      v3.Vec{X: 0, Y: 0, Z: 1},
		ForwardDirection: v3.Vec{X: 0, Y: 1, Z: 0},
		Builder:          b,
		UVScale:          v2.Vec{X: 1, Y: 1},
	}
}

// SideDirection is the derived third axis of the frame.
func (t *Turtle) SideDirection() v3.Vec {
	return t.ForwardDirection.Cross(t.UpDirection).Normalize()
}

// Rotate turns the cross-section around ForwardDirection without moving.
func (t *Turtle) Rotate(degrees float64) {
	t.UpDirection = rotate(t.UpDirection, t.ForwardDirection, degrees)
}

// Yaw turns ForwardDirection around UpDirection.
func (t *Turtle) Yaw(degrees float64) {
	t.ForwardDirection = rotate(t.ForwardDirection, t.UpDirection, degrees)
}

// Pitch tilts ForwardDirection and UpDirection together around the side direction.
func (t *Turtle) Pitch(degrees float64) {
	axis := t.SideDirection()
	t.ForwardDirection = rotate(t.ForwardDirection, axis, degrees)
	t.UpDirection = rotate(t.UpDirection, axis, degrees)
}

// MoveForward moves the center along ForwardDirection without emitting geometry.
func (t *Turtle) MoveForward(step float64) {
	t.Center = t.Center.Add(t.ForwardDirection.MulScalar(step))
}

// RingSize returns the number of records in the last ring, 0 before the
// first Forward.
func (t *Turtle) RingSize() int {
	return len(t.lastRing)
}

// LastRing returns a copy of the last materialized ring.
func (t *Turtle) LastRing() []kernel.Vertex {
	return append([]kernel.Vertex(nil), t.lastRing...)
}

// End finalizes the builder into a model.
func (t *Turtle) End() *kernel.Model {
	return t.Builder.End()
}

// rotate rotates v around axis by degrees (right hand rule).
func rotate(v, axis v3.Vec, degrees float64) v3.Vec {
	return sdf.Rotate3d(axis.Normalize(), sdf.DtoR(degrees)).MulPosition(v)
}

// angleBetween returns the signed angle in degrees from a to b, measured
// around planeNormal.
func angleBetween(a, b, planeNormal v3.Vec) float64 {
	return sdf.RtoD(math.Atan2(a.Cross(b).Dot(planeNormal), a.Dot(b)))
}

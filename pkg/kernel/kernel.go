// Package kernel defines the mesh assembler boundary used by the turtle.
// Extrusions emit vertex records as triangles, quads, lines and boxes into
// a Builder, which batches them into material-keyed parts and finalizes
// them into an immutable Model. Implementations (batch) live behind this
// interface so the extrusion engine never touches buffers directly.
package kernel

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vertex is one vertex record: position, normal and texture coordinate.
type Vertex struct {
	Position v3.Vec
	Normal   v3.Vec
	UV       v2.Vec
}

// Primitive is the rendering primitive of a part.
type Primitive int

const (
	PrimitiveTriangles Primitive = iota // indexed triangles
	PrimitiveLines                      // indexed line segments
)

func (p Primitive) String() string {
	switch p {
	case PrimitiveTriangles:
		return "triangles"
	case PrimitiveLines:
		return "lines"
	default:
		return "unknown"
	}
}

// Part accepts primitives for a single material and primitive type.
type Part interface {
	Triangle(a, b, c Vertex)
	// Rect emits the quad a→b→c→d as two triangles.
	Rect(a, b, c, d Vertex)
	Line(a, b Vertex)
	// Box emits an axis-aligned box centered at center.
	Box(center v3.Vec, width, height, depth float64)
}

// Builder is the abstract mesh assembler.
// A Builder may be driven by a tree of turtles sharing it by reference,
// but never concurrently.
type Builder interface {
	// Begin starts a new model, discarding any unfinished parts.
	Begin()

	// Part returns the open part if material and primitive match the most
	// recently returned part, otherwise it starts a new part.
	Part(m Material, p Primitive) Part

	// End finalizes all parts into a Model.
	End() *Model
}

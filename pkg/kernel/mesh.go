package kernel

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// VertexStride is the number of float32s per vertex in Mesh.Vertices:
// position (3), normal (3), uv (2).
const VertexStride = 8

// Mesh is one renderable part of a finalized model.
// Vertices are interleaved (see VertexStride); Indices hold 3 entries per
// triangle for PrimitiveTriangles and 2 per segment for PrimitiveLines.
type Mesh struct {
	Name      string    `json:"name"`
	Material  Material  `json:"material"`
	Primitive Primitive `json:"primitive"`
	Vertices  []float32 `json:"vertices"`
	Indices   []uint32  `json:"indices"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / VertexStride
}

// TriangleCount returns the number of triangles, or 0 for a lines part.
func (m *Mesh) TriangleCount() int {
	if m.Primitive != PrimitiveTriangles {
		return 0
	}
	return len(m.Indices) / 3
}

// LineCount returns the number of line segments, or 0 for a triangles part.
func (m *Mesh) LineCount() int {
	if m.Primitive != PrimitiveLines {
		return 0
	}
	return len(m.Indices) / 2
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Position returns the position of vertex i.
func (m *Mesh) Position(i int) v3.Vec {
	o := i * VertexStride
	return v3.Vec{X: float64(m.Vertices[o]), Y: float64(m.Vertices[o+1]), Z: float64(m.Vertices[o+2])}
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) v3.Vec {
	o := i*VertexStride + 3
	return v3.Vec{X: float64(m.Vertices[o]), Y: float64(m.Vertices[o+1]), Z: float64(m.Vertices[o+2])}
}

// UV returns the texture coordinate of vertex i.
func (m *Mesh) UV(i int) v2.Vec {
	o := i*VertexStride + 6
	return v2.Vec{X: float64(m.Vertices[o]), Y: float64(m.Vertices[o+1])}
}

// Vertex returns vertex i as a Vertex record.
func (m *Mesh) Vertex(i int) Vertex {
	return Vertex{Position: m.Position(i), Normal: m.Normal(i), UV: m.UV(i)}
}

// Model is the immutable artifact produced by Builder.End.
type Model struct {
	Meshes []*Mesh `json:"meshes"`
}

// PartCount returns the number of renderable parts.
func (m *Model) PartCount() int {
	if m == nil {
		return 0
	}
	return len(m.Meshes)
}

// TriangleCount returns the total number of triangles across all parts.
func (m *Model) TriangleCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, mesh := range m.Meshes {
		n += mesh.TriangleCount()
	}
	return n
}

// Part returns the mesh with the given name, or nil.
func (m *Model) Part(name string) *Mesh {
	if m == nil {
		return nil
	}
	for _, mesh := range m.Meshes {
		if mesh.Name == name {
			return mesh
		}
	}
	return nil
}

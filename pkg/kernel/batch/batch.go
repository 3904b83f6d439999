// Package batch implements kernel.Builder with in-memory buffers.
// Consecutive emissions for the same material and primitive are coalesced
// into one part; any change of material or primitive starts a new part,
// even when that material was used earlier in the model.
package batch

import (
	"fmt"

	"github.com/chazu/spire/internal/logger"
	"github.com/chazu/spire/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// Compile-time interface checks.
var _ kernel.Builder = (*Builder)(nil)
var _ kernel.Part = (*part)(nil)

// Builder batches emitted primitives into material-keyed parts.
type Builder struct {
	parts     []*part
	current   *part
	partIndex int
}

// New returns a Builder with an open model.
func New() *Builder {
	b := &Builder{}
	b.Begin()
	return b
}

// Begin starts a new model, discarding any unfinished parts.
func (b *Builder) Begin() {
	b.parts = nil
	b.current = nil
	b.partIndex = 0
}

// Part returns the open part when both material and primitive match the
// most recently returned part; otherwise it opens a new part.
func (b *Builder) Part(m kernel.Material, p kernel.Primitive) kernel.Part {
	if c := b.current; c != nil && c.mesh.Material.Equal(m) && c.mesh.Primitive == p {
		return c
	}
	b.partIndex++
	np := &part{mesh: &kernel.Mesh{
		Name:      fmt.Sprintf("%d", b.partIndex),
		Material:  m,
		Primitive: p,
	}}
	b.parts = append(b.parts, np)
	b.current = np
	logger.Debug("batch: new part",
		zap.String("part", np.mesh.Name),
		zap.Stringer("material", m),
		zap.Stringer("primitive", p))
	return np
}

// PartCount returns the number of parts opened since Begin.
func (b *Builder) PartCount() int {
	return len(b.parts)
}

// End finalizes the open parts into a Model and starts a fresh one.
func (b *Builder) End() *kernel.Model {
	model := &kernel.Model{Meshes: make([]*kernel.Mesh, 0, len(b.parts))}
	for _, p := range b.parts {
		model.Meshes = append(model.Meshes, p.mesh)
	}
	logger.Debug("batch: model finalized",
		zap.Int("parts", model.PartCount()),
		zap.Int("triangles", model.TriangleCount()))
	b.Begin()
	return model
}

// part accumulates interleaved vertices and indices for one mesh.
type part struct {
	mesh *kernel.Mesh
}

// add appends a vertex and returns its index.
func (p *part) add(v kernel.Vertex) uint32 {
	idx := uint32(p.mesh.VertexCount())
	p.mesh.Vertices = append(p.mesh.Vertices,
		float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z),
		float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z),
		float32(v.UV.X), float32(v.UV.Y),
	)
	return idx
}

func (p *part) Triangle(a, b, c kernel.Vertex) {
	ia, ib, ic := p.add(a), p.add(b), p.add(c)
	p.mesh.Indices = append(p.mesh.Indices, ia, ib, ic)
}

func (p *part) Rect(a, b, c, d kernel.Vertex) {
	ia, ib, ic, id := p.add(a), p.add(b), p.add(c), p.add(d)
	p.mesh.Indices = append(p.mesh.Indices, ia, ib, ic, ic, id, ia)
}

func (p *part) Line(a, b kernel.Vertex) {
	ia, ib := p.add(a), p.add(b)
	p.mesh.Indices = append(p.mesh.Indices, ia, ib)
}

// boxFaces lists each face as a normal and two in-plane axes, wound
// counter-clockwise when seen from outside.
var boxFaces = [6][3]v3.Vec{
	{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
	{{X: 0, Y: 0, Z: -1}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 0, Z: 0}},
	{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}},
	{{X: -1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 0}},
	{{X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}},
	{{X: 0, Y: -1, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}},
}

// Box emits 6 flat faces (24 vertices, 12 triangles).
func (p *part) Box(center v3.Vec, width, height, depth float64) {
	half := v3.Vec{X: width / 2, Y: height / 2, Z: depth / 2}
	scale := func(v v3.Vec) v3.Vec {
		return v3.Vec{X: v.X * half.X, Y: v.Y * half.Y, Z: v.Z * half.Z}
	}
	for _, f := range boxFaces {
		n, u, w := f[0], f[1], f[2]
		c := center.Add(scale(n))
		su, sw := scale(u), scale(w)
		corner := func(a, b float64, uv v2.Vec) kernel.Vertex {
			return kernel.Vertex{
				Position: c.Add(su.MulScalar(a)).Add(sw.MulScalar(b)),
				Normal:   n,
				UV:       uv,
			}
		}
		p.Rect(
			corner(-1, -1, v2.Vec{X: 0, Y: 0}),
			corner(1, -1, v2.Vec{X: 1, Y: 0}),
			corner(1, 1, v2.Vec{X: 1, Y: 1}),
			corner(-1, 1, v2.Vec{X: 0, Y: 1}),
		)
	}
}

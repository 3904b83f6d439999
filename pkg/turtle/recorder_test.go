package turtle

import (
	"github.com/chazu/spire/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// prim is one primitive submitted to a recorder.
type prim struct {
	part  int
	kind  string
	verts []kernel.Vertex
}

// recorder is a kernel.Builder that remembers every submission.
type recorder struct {
	materials []kernel.Material
	prims     []prim
	lastPrim  kernel.Primitive
}

var _ kernel.Builder = (*recorder)(nil)

func (r *recorder) Begin() {
	r.materials = nil
	r.prims = nil
}

func (r *recorder) Part(m kernel.Material, p kernel.Primitive) kernel.Part {
	n := len(r.materials)
	if n == 0 || !r.materials[n-1].Equal(m) || r.lastPrim != p {
		r.materials = append(r.materials, m)
		r.lastPrim = p
		n++
	}
	return &recPart{r: r, index: n - 1}
}

func (r *recorder) End() *kernel.Model {
	model := &kernel.Model{}
	for i, m := range r.materials {
		model.Meshes = append(model.Meshes, &kernel.Mesh{Name: string(rune('1' + i)), Material: m})
	}
	return model
}

// count returns how many primitives of kind were submitted.
func (r *recorder) count(kind string) int {
	n := 0
	for _, p := range r.prims {
		if p.kind == kind {
			n++
		}
	}
	return n
}

// rects returns the submitted quads.
func (r *recorder) rects() [][]kernel.Vertex {
	var out [][]kernel.Vertex
	for _, p := range r.prims {
		if p.kind == "rect" {
			out = append(out, p.verts)
		}
	}
	return out
}

type recPart struct {
	r     *recorder
	index int
}

func (p *recPart) add(kind string, verts ...kernel.Vertex) {
	p.r.prims = append(p.r.prims, prim{part: p.index, kind: kind, verts: verts})
}

func (p *recPart) Triangle(a, b, c kernel.Vertex) { p.add("triangle", a, b, c) }
func (p *recPart) Rect(a, b, c, d kernel.Vertex)  { p.add("rect", a, b, c, d) }
func (p *recPart) Line(a, b kernel.Vertex)        { p.add("line", a, b) }
func (p *recPart) Box(center v3.Vec, w, h, d float64) {
	p.add("box", kernel.Vertex{Position: center}, kernel.Vertex{Position: v3.Vec{X: w, Y: h, Z: d}})
}

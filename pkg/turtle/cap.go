package turtle

import (
	"errors"
	"fmt"

	"github.com/chazu/spire/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrNoRing is returned when capping before the first Forward.
	ErrNoRing = errors.New("turtle: no ring to cap")

	// ErrUnsupportedCap is returned when the last ring has fewer than three
	// vertex records.
	ErrUnsupportedCap = errors.New("turtle: ring too small to cap")
)

// Close collapses the cross-section onto the center line and emits the
// closing band. The apex vertices share one position but keep their own
// normals and UVs.
func (t *Turtle) Close() {
	t.SetRadius(0)
	t.Forward(0)
}

// CloseSingleSided caps the last ring with a flat polygon in the material
// of Sides[sideIndex]. A ring of 3 records becomes a triangle taken
// verbatim; larger rings are fanned around their first vertex, skipping the
// closing duplicate.
func (t *Turtle) CloseSingleSided(sideIndex int) error {
	side := t.Sides[sideIndex]
	ring := t.lastRing
	if len(ring) == 0 {
		return ErrNoRing
	}
	if len(ring) < 3 {
		return fmt.Errorf("%w: %d vertex records", ErrUnsupportedCap, len(ring))
	}

	part := t.Builder.Part(side.Material, kernel.PrimitiveTriangles)
	if len(ring) == 3 {
		part.Triangle(ring[0], ring[1], ring[2])
		return nil
	}
	distinct := len(ring) - 1
	for i := 1; i+1 < distinct; i++ {
		part.Triangle(ring[0], ring[i], ring[i+1])
	}
	return nil
}

// DebugPoint marks pos with a small box.
func (t *Turtle) DebugPoint(pos v3.Vec, m kernel.Material, size float64) {
	t.Builder.Part(m, kernel.PrimitiveTriangles).Box(pos, size, size, size)
}

// DebugLine draws a line segment from a to b.
func (t *Turtle) DebugLine(a, b v3.Vec, m kernel.Material) {
	t.Builder.Part(m, kernel.PrimitiveLines).Line(kernel.Vertex{Position: a}, kernel.Vertex{Position: b})
}

// DebugVector draws vec as a line starting at pos.
func (t *Turtle) DebugVector(pos, vec v3.Vec, m kernel.Material) {
	t.DebugLine(pos, pos.Add(vec), m)
}

package turtle

import (
	"errors"
	"testing"

	"github.com/chazu/spire/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseSingleSided(t *testing.T) {
	tests := []struct {
		name      string
		corners   int
		triangles int
		rects     int
	}{
		{"two corners make a triangle", 2, 1, 0},
		{"triangle is fanned to one triangle", 3, 1, 0},
		{"hexagon is fanned", 6, 4, 0},
		{"square is fanned", 4, 2, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			tt := New(rec)
			tt.StartRegularPolygon(tc.corners, 1, bark)
			tt.Sides[tc.corners-1].Material = leaf
			tt.Forward(0)

			require.NoError(t, tt.CloseSingleSided(tc.corners-1))
			assert.Equal(t, tc.triangles, rec.count("triangle"))
			assert.Equal(t, tc.rects, rec.count("rect"))
			assert.Equal(t, []kernel.Material{leaf}, rec.materials)
		})
	}
}

func TestCloseSingleSidedFanUsesDistinctVertices(t *testing.T) {
	rec := &recorder{}
	tt := New(rec)
	tt.StartRegularPolygon(5, 1, bark)
	tt.Forward(0)
	require.NoError(t, tt.CloseSingleSided(0))

	ring := tt.LastRing()
	for _, p := range rec.prims {
		for _, v := range p.verts {
			assert.NotEqual(t, ring[5].UV, v.UV, "closing duplicate must not be used")
		}
	}
}

func TestCloseSingleSidedTriangleHasArea(t *testing.T) {
	rec := &recorder{}
	tt := New(rec)
	tt.StartRegularPolygon(3, 1, bark)
	tt.Forward(0)
	require.NoError(t, tt.CloseSingleSided(0))

	require.Len(t, rec.prims, 1)
	v := rec.prims[0].verts
	area := v[1].Position.Sub(v[0].Position).Cross(v[2].Position.Sub(v[0].Position)).Length() / 2
	assert.Greater(t, area, 0.1)
}

func TestCloseSingleSidedErrors(t *testing.T) {
	t.Run("no ring", func(t *testing.T) {
		tt := New(&recorder{})
		tt.StartRegularPolygon(4, 1, bark)
		err := tt.CloseSingleSided(0)
		assert.True(t, errors.Is(err, ErrNoRing))
	})
	t.Run("single corner", func(t *testing.T) {
		rec := &recorder{}
		tt := New(rec)
		tt.StartPolygonPoints(Const(bark), v2.Vec{X: 1})
		tt.Forward(0)
		err := tt.CloseSingleSided(0)
		assert.True(t, errors.Is(err, ErrUnsupportedCap))
		assert.Empty(t, rec.prims)
	})
}

func TestDebugPrimitives(t *testing.T) {
	rec := &recorder{}
	tt := New(rec)
	red := kernel.Material{Name: "debug", Diffuse: "#ff0000", Opacity: 1}

	tt.DebugPoint(v3.Vec{X: 1}, red, 0.1)
	tt.DebugVector(v3.Vec{}, v3.Vec{Z: 2}, red)
	tt.DebugLine(v3.Vec{}, v3.Vec{Y: 1}, red)

	assert.Equal(t, 1, rec.count("box"))
	assert.Equal(t, 2, rec.count("line"))
	assert.Len(t, rec.materials, 2, "lines need their own part")
	lines := rec.prims[1]
	assertVec(t, v3.Vec{Z: 2}, lines.verts[1].Position)
}

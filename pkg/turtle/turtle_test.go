package turtle

import (
	"math"
	"testing"

	"github.com/chazu/spire/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
)

const tol = 1e-9

var (
	bark = kernel.Material{Name: "bark", Diffuse: "#6b4f2a", Opacity: 1}
	leaf = kernel.Material{Name: "leaf", Diffuse: "#2ecc71", Opacity: 1}
)

func assertVec(t *testing.T, want, got v3.Vec, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-6, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, 1e-6, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, 1e-6, msgAndArgs...)
}

func TestNewDefaults(t *testing.T) {
	rec := &recorder{}
	tt := New(rec)

	assert.Equal(t, v3.Vec{}, tt.Center)
	assert.Equal(t, v3.Vec{Z: 1}, tt.UpDirection)
	assert.Equal(t, v3.Vec{Y: 1}, tt.ForwardDirection)
	assert.Equal(t, v2.Vec{X: 1, Y: 1}, tt.UVScale)
	assert.Equal(t, 0, tt.RingSize())
	assertVec(t, v3.Vec{X: 1}, tt.SideDirection())
}

func TestRotateTurnsUpAroundForward(t *testing.T) {
	tt := New(&recorder{})
	tt.Rotate(90)
	assertVec(t, v3.Vec{X: 1}, tt.UpDirection)
	assertVec(t, v3.Vec{Y: 1}, tt.ForwardDirection, "forward must not change")
	assertVec(t, v3.Vec{}, tt.Center, "rotate must not move")
}

func TestYawAndPitch(t *testing.T) {
	t.Run("yaw", func(t *testing.T) {
		tt := New(&recorder{})
		tt.Yaw(90)
		assertVec(t, v3.Vec{X: -1}, tt.ForwardDirection)
		assertVec(t, v3.Vec{Z: 1}, tt.UpDirection)
	})
	t.Run("pitch", func(t *testing.T) {
		tt := New(&recorder{})
		tt.Pitch(90)
		assertVec(t, v3.Vec{Z: 1}, tt.ForwardDirection)
		assertVec(t, v3.Vec{Y: -1}, tt.UpDirection)
	})
	t.Run("frame stays orthonormal", func(t *testing.T) {
		tt := New(&recorder{})
		for i := 0; i < 10; i++ {
			tt.Yaw(17)
			tt.Pitch(-31)
			tt.Rotate(7)
		}
		assert.InDelta(t, 1, tt.UpDirection.Length(), 1e-9)
		assert.InDelta(t, 1, tt.ForwardDirection.Length(), 1e-9)
		assert.InDelta(t, 0, tt.UpDirection.Dot(tt.ForwardDirection), 1e-9)
	})
}

func TestMoveForwardEmitsNothing(t *testing.T) {
	rec := &recorder{}
	tt := New(rec)
	tt.StartRegularPolygon(4, 1, bark)
	tt.MoveForward(2.5)

	assertVec(t, v3.Vec{Y: 2.5}, tt.Center)
	assert.Empty(t, rec.prims)
	assert.Equal(t, 0, tt.RingSize())
}

func TestAngleBetween(t *testing.T) {
	up := v3.Vec{Z: 1}
	fwd := v3.Vec{Y: 1}
	for _, deg := range []float64{0, 30, 90, 135, -45, -170} {
		radial := rotate(up, fwd, deg).MulScalar(3)
		assert.InDelta(t, deg, angleBetween(up, radial, fwd), 1e-9, "angle %v", deg)
	}
	assert.InDelta(t, 180, math.Abs(angleBetween(up, up.MulScalar(-1), fwd)), 1e-9)
}

package viewmatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"icos-renderer/internal/mathutil"
)

func TestCameraIdentity(t *testing.T) {
	assert.True(t, Camera(0, 0).Near(mathutil.Mat3Identity(), 1e-15))

	// Yaw of 90° turns +x toward -z.
	v := Camera(90, 0).MulVec3(mathutil.Vec3{1, 0, 0})
	assert.True(t, v.Near(mathutil.Vec3{0, 0, -1}, 1e-12), "got %v", v)
}

func TestFitFramesSphere(t *testing.T) {
	p := Fit(mathutil.Mat3Identity(), 2, 100, 10, 0)
	px, py, pz := p.Project([]float64{0, 0, 0, 2, 0, 0, 0, 2, 0, 0, 0, 2})

	assert.InDelta(t, 50, px[0], 1e-12)
	assert.InDelta(t, 50, py[0], 1e-12)
	assert.InDelta(t, 90, px[1], 1e-12, "right edge sits at the margin")
	assert.InDelta(t, 10, py[2], 1e-12, "screen y grows downward")
	assert.Greater(t, pz[3], pz[0])
}

func TestPerspectiveShrinksFarPoints(t *testing.T) {
	p := Fit(mathutil.Mat3Identity(), 1, 100, 0, 45)
	px, _, _ := p.Project([]float64{0.5, 0, 0.5, 0.5, 0, -0.5})
	assert.Greater(t, px[0], px[1])
	assert.Greater(t, px[1], 50.0)
}

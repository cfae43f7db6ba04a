// Package viewmatrix builds the camera rotation and projects world
// positions to screen coordinates.
package viewmatrix

import (
	"math"

	"icos-renderer/internal/mathutil"
)

// Camera builds a 3×3 view matrix from yaw (about Y) then pitch (about
// X), both in degrees.
func Camera(yawDeg, pitchDeg float64) mathutil.Mat3 {
	return mathutil.Mat3Mul(mathutil.RotX(mathutil.Deg2Rad(pitchDeg)), mathutil.RotY(mathutil.Deg2Rad(yawDeg)))
}

// Projection holds what is fixed for every vertex of one frame.
type Projection struct {
	R      mathutil.Mat3
	Center [3]float64
	Scale  float64
	Size   int

	// FOV is the full vertical field of view in degrees; zero selects an
	// orthographic projection.
	FOV float64

	camDist float64
}

// Fit returns a projection that frames a sphere of the given radius
// around the origin with margin pixels to spare.
func Fit(R mathutil.Mat3, radius float64, size, margin int, fov float64) Projection {
	if radius < 0.001 {
		radius = 0.001
	}
	p := Projection{
		R:     R,
		Scale: float64(size-2*margin) / (2 * radius),
		Size:  size,
		FOV:   fov,
	}
	if fov > 0 {
		halfFOV := mathutil.Deg2Rad(fov / 2)
		p.camDist = radius / math.Tan(halfFOV)
		if p.camDist < 2*radius {
			// Keep the camera outside the shape; widen instead.
			p.camDist = 2 * radius
		}
		p.Scale *= (p.camDist - radius) / p.camDist
	}
	return p
}

// Project transforms packed x, y, z positions to screen X, screen Y and
// depth. Depth is in pixel units so screen-space normals are undistorted;
// larger depth is nearer the viewer.
func (p *Projection) Project(positions []float64) ([]float64, []float64, []float64) {
	n := len(positions) / 3
	px := make([]float64, n)
	py := make([]float64, n)
	pz := make([]float64, n)

	half := float64(p.Size) / 2
	for i := 0; i < n; i++ {
		t := p.R.MulVec3(mathutil.Vec3{positions[3*i], positions[3*i+1], positions[3*i+2]})

		if p.FOV > 0 {
			depth := math.Max(p.camDist-t[2], 0.1)
			factor := p.camDist / depth
			t[0] *= factor
			t[1] *= factor
		}

		px[i] = (t[0]-p.Center[0])*p.Scale + half
		py[i] = -(t[1]-p.Center[1])*p.Scale + half
		pz[i] = t[2] * p.Scale
	}
	return px, py, pz
}

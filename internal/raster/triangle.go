package raster

import "math"

// RasterizeTriangle rasterizes a single solid-colored triangle with
// z-buffer, sRGB color space, lighting, and ACES tone mapping.
//
// This is the HOT PATH: no allocation in the inner loop. Lighting is
// flat-shaded (per-face, not per-pixel).
func RasterizeTriangle(
	fb *FrameBuffer,
	px, py, pz []float64,
	vi [3]int,
	color [4]uint8,
	lc *LightConfig,
) {
	nv := len(px)
	for _, i := range vi {
		if i < 0 || i >= nv {
			return
		}
	}

	x0, y0, z0 := px[vi[0]], py[vi[0]], pz[vi[0]]
	x1, y1, z1 := px[vi[1]], py[vi[1]], pz[vi[1]]
	x2, y2, z2 := px[vi[2]], py[vi[2]], pz[vi[2]]

	// Face normal for flat shading
	e1x, e1y, e1z := x1-x0, y1-y0, z1-z0
	e2x, e2y, e2z := x2-x0, y2-y0, z2-z0
	nx := e1y*e2z - e1z*e2y
	ny := e1z*e2x - e1x*e2z
	nz := e1x*e2y - e1y*e2x
	nl := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if nl < 1e-8 {
		return
	}
	// Screen y grows downward; flip back to camera space.
	shaded := lc.Shade(color, lc.ComputeShade([3]float64{nx / nl, -ny / nl, nz / nl}))

	// Bounding box
	minX := int(math.Min(math.Min(x0, x1), x2))
	maxX := int(math.Max(math.Max(x0, x1), x2)) + 1
	minY := int(math.Min(math.Min(y0, y1), y2))
	maxY := int(math.Max(math.Max(y0, y1), y2)) + 1

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = shaded[0]
			fb.Color[pxIdx+1] = shaded[1]
			fb.Color[pxIdx+2] = shaded[2]
			fb.Color[pxIdx+3] = shaded[3]
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

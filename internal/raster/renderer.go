// Package raster draws recomputed shape frames into images.
package raster

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"

	"icos-renderer/internal/scheduler"
	"icos-renderer/internal/viewmatrix"
)

// Palette colors meshes by their index in the descriptor.
var Palette = [][4]uint8{
	{214, 96, 77, 255},
	{244, 165, 130, 255},
	{146, 197, 222, 255},
	{67, 147, 195, 255},
	{171, 217, 233, 255},
}

// MarkerColor is the color of marker dots.
var MarkerColor = [4]uint8{255, 255, 255, 255}

// Options controls one render.
type Options struct {
	Size        int
	Supersample int
	Yaw, Pitch  float64 // degrees
	FOV         float64 // degrees, 0 for orthographic

	// Radius is the world radius framed by the image. Zero fits the
	// frame's own extent, which rescales the view as parameters change.
	Radius float64
}

// Extent returns the largest distance of any vertex from the origin.
func Extent(meshes []scheduler.Mesh) float64 {
	var r float64
	for _, m := range meshes {
		for _, b := range m.Buffers {
			p := b.Positions
			for i := 0; i+2 < len(p); i += 3 {
				r = math.Max(r, floats.Norm(p[i:i+3], 2))
			}
		}
	}
	return r
}

// Render draws every buffer of meshes at Size×Supersample pixels.
// Callers downsample the result when Supersample > 1.
func Render(meshes []scheduler.Mesh, opt Options) *image.NRGBA {
	ss := opt.Supersample
	if ss < 1 {
		ss = 1
	}
	renderSize := opt.Size * ss

	radius := opt.Radius
	if radius <= 0 {
		radius = Extent(meshes)
	}

	proj := viewmatrix.Fit(viewmatrix.Camera(opt.Yaw, opt.Pitch), radius, renderSize, 8*ss, opt.FOV)
	fb := NewFrameBuffer(renderSize, renderSize)
	lc := DefaultLightConfig()

	for mi, m := range meshes {
		color := Palette[mi%len(Palette)]
		for _, b := range m.Buffers {
			px, py, pz := proj.Project(b.Positions)

			if b.Marker {
				if len(px) > 0 {
					fb.DrawDot(px[0], py[0], pz[0], 2*ss, MarkerColor)
				}
				continue
			}

			for t := 0; t+2 < len(b.Indices); t += 3 {
				vi := [3]int{int(b.Indices[t]), int(b.Indices[t+1]), int(b.Indices[t+2])}
				RasterizeTriangle(fb, px, py, pz, vi, color, &lc)
			}
		}
	}

	return fb.Image()
}

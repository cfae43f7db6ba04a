package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icos-renderer/internal/geometry"
	"icos-renderer/internal/scheduler"
	"icos-renderer/internal/symmetry"
)

func triangleMesh() []scheduler.Mesh {
	return []scheduler.Mesh{{
		Tag: symmetry.Face1,
		Buffers: []geometry.VertexBuffer{{
			Positions: []float64{-1, -1, 0, 1, -1, 0, 0, 1, 0},
			Indices:   []uint32{0, 1, 2},
		}},
	}}
}

func alphaAt(t *testing.T, pix []uint8, stride, x, y int) uint8 {
	t.Helper()
	return pix[y*stride+x*4+3]
}

func TestRenderTriangle(t *testing.T) {
	img := Render(triangleMesh(), Options{Size: 64, Supersample: 1, Radius: 1.5})
	require.Equal(t, 64, img.Bounds().Dx())

	assert.Equal(t, uint8(255), alphaAt(t, img.Pix, img.Stride, 32, 36), "centre covered")
	assert.Equal(t, uint8(0), alphaAt(t, img.Pix, img.Stride, 1, 1), "corner empty")
}

func TestRenderSupersampleSize(t *testing.T) {
	img := Render(triangleMesh(), Options{Size: 32, Supersample: 3})
	assert.Equal(t, 96, img.Bounds().Dx())
}

func TestDepthTest(t *testing.T) {
	near := geometry.VertexBuffer{Positions: []float64{-1, -1, 0.5, 1, -1, 0.5, 0, 1, 0.5}, Indices: []uint32{0, 1, 2}}
	far := geometry.VertexBuffer{Positions: []float64{-1, -1, -0.5, 1, -1, -0.5, 0, 1, -0.5}, Indices: []uint32{0, 1, 2}}

	// Draw the far mesh last; the near one must still win.
	meshes := []scheduler.Mesh{{Buffers: []geometry.VertexBuffer{near}}, {Buffers: []geometry.VertexBuffer{far}}}
	img := Render(meshes, Options{Size: 64, Radius: 1.5})
	only := Render(meshes[:1], Options{Size: 64, Radius: 1.5})

	i := 36*img.Stride + 32*4
	assert.Equal(t, only.Pix[i:i+4], img.Pix[i:i+4])
}

func TestRenderMarker(t *testing.T) {
	meshes := []scheduler.Mesh{{
		Tag:     symmetry.Marker,
		Buffers: []geometry.VertexBuffer{{Positions: []float64{0, 0, 0}, Marker: true}},
	}}
	img := Render(meshes, Options{Size: 32, Radius: 1})
	i := 16*img.Stride + 16*4
	assert.Equal(t, MarkerColor[:], img.Pix[i:i+4])
}

func TestExtent(t *testing.T) {
	assert.InDelta(t, 1.4142135623730951, Extent(triangleMesh()), 1e-12)
	assert.Equal(t, 0.0, Extent(nil))
}

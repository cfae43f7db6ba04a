package raster

import (
	"image"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, len = W*H, initialized to -inf
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		ZBuf:   zbuf,
	}
}

// Image copies the color buffer into a new image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}

// DrawDot fills a depth-tested square of half-width r at (x, y).
func (fb *FrameBuffer) DrawDot(x, y, z float64, r int, c [4]uint8) {
	cx, cy := int(x+0.5), int(y+0.5)
	for sy := cy - r; sy <= cy+r; sy++ {
		if sy < 0 || sy >= fb.Height {
			continue
		}
		for sx := cx - r; sx <= cx+r; sx++ {
			if sx < 0 || sx >= fb.Width {
				continue
			}
			i := sy*fb.Width + sx
			if z < fb.ZBuf[i] {
				continue
			}
			fb.ZBuf[i] = z
			copy(fb.Color[i*4:i*4+4], c[:])
		}
	}
}

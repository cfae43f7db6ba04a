// Package postprocess finishes rendered images.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales a square render down to targetSize with CatmullRom
// filtering. Filtering happens on premultiplied alpha so transparent
// background pixels do not darken the shape's edges.
func Downsample(img *image.NRGBA, targetSize int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= targetSize && b.Dy() <= targetSize {
		return img
	}

	// Drawing NRGBA onto RGBA premultiplies.
	premul := image.NewRGBA(b)
	draw.Draw(premul, b, img, b.Min, draw.Src)

	scaled := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), premul, b, draw.Src, nil)

	// And back again.
	out := image.NewNRGBA(scaled.Bounds())
	draw.Draw(out, out.Bounds(), scaled, image.Point{}, draw.Src)
	return out
}

// Package passes stores the named output channels written by the shading
// evaluator and exports them as images or terminal cells.
package passes

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/nfnt/resize"

	"github.com/taigrr/strand/pkg/math3d"
)

// Buffer is a 2D array of linear float colors.
type Buffer struct {
	Width  int
	Height int
	Pixels []math3d.Color // Row-major pixel data
}

// NewBuffer creates a zeroed buffer with the given dimensions.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Pixels: make([]math3d.Color, width*height),
	}
}

// Clear fills the buffer with a solid color.
func (b *Buffer) Clear(c math3d.Color) {
	for i := range b.Pixels {
		b.Pixels[i] = c
	}
}

// Set sets a pixel at (x, y). Out of bounds writes are dropped.
func (b *Buffer) Set(x, y int, c math3d.Color) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	b.Pixels[y*b.Width+x] = c
}

// Add adds c into the pixel at (x, y), alpha included.
func (b *Buffer) Add(x, y int, c math3d.Color) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	i := y*b.Width + x
	b.Pixels[i] = b.Pixels[i].Add(c)
}

// At returns the color at (x, y), or transparent black if out of bounds.
func (b *Buffer) At(x, y int) math3d.Color {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return math3d.Color{}
	}
	return b.Pixels[y*b.Width+x]
}

// Scale multiplies every pixel by s.
func (b *Buffer) Scale(s float64) {
	for i := range b.Pixels {
		b.Pixels[i] = b.Pixels[i].Scale(s)
	}
}

// ToImage tone maps the buffer to 8-bit sRGB after scaling by the
// linear exposure factor.
func (b *Buffer) ToImage(exposure float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			img.SetRGBA(x, y, b.Pixels[y*b.Width+x].ToRGBA(exposure))
		}
	}
	return img
}

// Thumbnail returns the tone mapped buffer scaled to exactly w×h.
func (b *Buffer) Thumbnail(w, h int, exposure float64) image.Image {
	return resize.Resize(uint(w), uint(h), b.ToImage(exposure), resize.Bilinear)
}

// Fit returns the tone mapped buffer scaled to fit inside w×h, keeping its
// aspect ratio.
func (b *Buffer) Fit(w, h int, exposure float64) image.Image {
	return resize.Thumbnail(uint(w), uint(h), b.ToImage(exposure), resize.Bilinear)
}

// SavePNG saves the tone mapped buffer as a PNG file.
func (b *Buffer) SavePNG(path string, exposure float64) error {
	return savePNG(path, b.ToImage(exposure))
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

package passes

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw renders the buffer into area using half-block cells, scaled to fit.
// Each terminal row shows two image rows.
func (b *Buffer) Draw(scr uv.Screen, area uv.Rectangle, exposure float64) {
	w, h := area.Dx(), area.Dy()*2
	if w <= 0 || h <= 0 || b.Width == 0 || b.Height == 0 {
		return
	}
	DrawImage(scr, area, b.Fit(w, h, exposure))
}

// DrawImage draws img at the top-left of area with ▀ cells: the foreground
// carries the upper pixel and the background the lower one.
func DrawImage(scr uv.Screen, area uv.Rectangle, img image.Image) {
	bounds := img.Bounds()
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := bounds.Min.Y + (row-area.Min.Y)*2
		if topY >= bounds.Max.Y {
			break
		}
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X; col++ {
			x := bounds.Min.X + col - area.Min.X
			if x >= bounds.Max.X {
				break
			}
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(img, x, topY),
					Bg: cellColor(img, x, botY),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// cellColor returns nil for pixels outside img so the terminal default shows.
func cellColor(img image.Image, x, y int) color.Color {
	if !(image.Point{x, y}.In(img.Bounds())) {
		return nil
	}
	r, g, b, _ := img.At(x, y).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255}
}

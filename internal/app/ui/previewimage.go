package ui

import (
	"image"
	"image/color"

	"github.com/mkalinski/sona/internal/app"
)

var (
	previewBackground = color.NRGBA{R: 0x10, G: 0x14, B: 0x10, A: 0xff}
	previewNote       = color.NRGBA{R: 0x37, G: 0xd4, B: 0x5c, A: 0xff}
	previewPlayhead   = color.NRGBA{R: 0xf0, G: 0xb0, B: 0x30, A: 0xff}
)

// renderPreview rasterizes a track preview. Cell values scale the note
// color so denser clusters show brighter. With hasPlayhead set, the
// column under playhead (0..1) is tinted as the position marker.
func renderPreview(p app.TrackPreview, playhead float32, hasPlayhead bool) *image.RGBA {
	w, h := p.Width, p.Height
	if w == 0 || h == 0 {
		w, h = 1, 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var maxCell uint16
	for _, c := range p.Cells {
		if c > maxCell {
			maxCell = c
		}
	}
	playheadCol := -1
	if hasPlayhead && w > 1 {
		playheadCol = int(playhead * float32(w-1))
	}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			c := previewBackground
			if v := p.Cell(col, row); v > 0 {
				c = scaleColor(previewNote, v, maxCell)
			}
			if col == playheadCol {
				c = blend(c, previewPlayhead)
			}
			img.SetRGBA(col, row, color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
		}
	}
	return img
}

// scaleColor dims c for low cell values, keeping a visible floor.
func scaleColor(c color.NRGBA, v, maxV uint16) color.NRGBA {
	if maxV == 0 {
		return c
	}
	f := 0.4 + 0.6*float64(v)/float64(maxV)
	return color.NRGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}

func blend(base, over color.NRGBA) color.NRGBA {
	return color.NRGBA{
		R: uint8((int(base.R) + int(over.R)) / 2),
		G: uint8((int(base.G) + int(over.G)) / 2),
		B: uint8((int(base.B) + int(over.B)) / 2),
		A: 0xff,
	}
}

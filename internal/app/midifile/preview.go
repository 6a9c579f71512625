package midifile

import "github.com/mkalinski/sona/internal/app"

const (
	previewHeight   = 64
	maxPreviewWidth = 240
)

// buildPreviews renders the coarse note grids used as track thumbnails.
// All tracks share a common time axis so previews line up.
func buildPreviews(song *app.Song) {
	ruler := song.RulerTick()
	tpc := ticksPerColumn(ruler, maxPreviewWidth)
	width := int(ruler/tpc) + 1
	for i := range song.Tracks {
		t := &song.Tracks[i]
		t.Preview = buildPreview(width, previewHeight, tpc, t.MinPitch, t.MaxPitch, t.NoteSpans)
	}
}

// ticksPerColumn returns how many ticks one preview column covers so
// that maxTick fits into maxWidth columns. Never zero.
func ticksPerColumn(maxTick uint64, maxWidth int) uint64 {
	if maxWidth == 0 {
		return 1
	}
	denom := uint64(maxWidth - 1)
	if denom < 1 {
		denom = 1
	}
	tpc := (maxTick + denom - 1) / denom
	if tpc == 0 {
		tpc = 1
	}
	return tpc
}

func buildPreview(width, height int, ticksPerColumn uint64, minPitch, maxPitch uint8, spans []app.NoteSpan) app.TrackPreview {
	if width <= 0 || height <= 0 {
		return app.TrackPreview{}
	}
	p := app.TrackPreview{
		Width:  width,
		Height: height,
		Cells:  make([]uint16, width*height),
	}
	for _, span := range spans {
		startCol := int(span.Start / ticksPerColumn)
		endCol := min(int(span.End/ticksPerColumn), width-1)
		row := pitchToRow(height, minPitch, maxPitch, span.Pitch)
		for col := startCol; col <= endCol; col++ {
			idx := row*width + col
			if idx >= 0 && idx < len(p.Cells) && p.Cells[idx] < ^uint16(0) {
				p.Cells[idx]++
			}
		}
	}
	return p
}

// pitchToRow maps a pitch into a preview row, top row for the highest
// pitch, with 8% vertical padding. A single-pitch range is centered.
func pitchToRow(height int, minPitch, maxPitch, pitch uint8) int {
	if height <= 0 {
		return 0
	}
	padding := int(float32(height)*0.08 + 0.5)
	padding = min(padding, (height-1)/2)
	usable := max(height-padding*2, 1)
	if minPitch >= maxPitch {
		return padding + (usable-1)/2
	}
	span := float32(maxPitch - minPitch)
	t := float32(maxPitch-min(maxPitch, pitch)) / span
	row := padding + int(t*float32(usable-1)+0.5)
	return min(max(row, 0), height-1)
}

package ui

import (
	"fmt"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/mkalinski/sona/internal/app"
	"github.com/mkalinski/sona/internal/app/keybindings"
)

const (
	rollZoomMin   = 1
	rollZoomMax   = 16
	rollZoomStep  = 2
	rollPanStep   = 0.1
	rollPitchStep = 12 // one octave per key press
)

var rollTrackColors = []color.NRGBA{
	{R: 0x37, G: 0xd4, B: 0x5c, A: 0xff},
	{R: 0x4f, G: 0x9d, B: 0xe8, A: 0xff},
	{R: 0xe8, G: 0x6a, B: 0x4f, A: 0xff},
	{R: 0xd4, G: 0xc3, B: 0x37, A: 0xff},
	{R: 0xb0, G: 0x6a, B: 0xe8, A: 0xff},
	{R: 0x4f, G: 0xe8, B: 0xd4, A: 0xff},
}

var (
	rollBackground = color.RGBA{R: 0x0c, G: 0x0e, B: 0x12, A: 0xff}
	rollGridMinor  = color.RGBA{R: 0x1f, G: 0x1f, B: 0x33, A: 0xff}
	rollGridMajor  = color.RGBA{R: 0x2e, G: 0x2e, B: 0x47, A: 0xff}
	rollPlayhead   = color.RGBA{R: 0xf0, G: 0xb0, B: 0x30, A: 0xff}
	rollLabelColor = color.NRGBA{R: 0x8a, G: 0x8f, B: 0x98, A: 0xff}
)

// pianoRollPage renders the notes of the loaded song on a tick by
// pitch canvas with pan and zoom on both axes.
type pianoRollPage struct {
	widget.BaseWidget

	u *UI

	header *widget.Label
	raster *canvas.Raster
	labels *fyne.Container

	song        *app.Song
	track       int // -1 shows all tracks
	zoom        float64
	zoomPitch   float64
	offsetX     float64 // left edge as a ratio of the song length
	offsetPitch float64 // semitones above the lowest visible pitch
	playhead    float32
	playing     bool
}

func newPianoRollPage(u *UI) *pianoRollPage {
	p := &pianoRollPage{
		u:         u,
		header:    widget.NewLabel("Piano roll"),
		track:     -1,
		zoom:      rollZoomMin,
		zoomPitch: rollZoomMin,
	}
	p.ExtendBaseWidget(p)
	p.header.TextStyle = fyne.TextStyle{Bold: true}
	p.raster = canvas.NewRaster(p.draw)
	p.labels = container.NewWithoutLayout()
	return p
}

func (p *pianoRollPage) CreateRenderer() fyne.WidgetRenderer {
	top := container.NewVBox(p.header, widget.NewSeparator())
	roll := container.NewStack(p.raster, p.labels)
	return widget.NewSimpleRenderer(container.NewBorder(top, nil, nil, nil, roll))
}

func (p *pianoRollPage) onShow() {
	p.refreshHeader()
	p.refresh()
}

func (p *pianoRollPage) setSong(song *app.Song) {
	p.song = song
	p.track = -1
	p.zoom = rollZoomMin
	p.zoomPitch = rollZoomMin
	p.offsetX = 0
	p.offsetPitch = 0
	p.refreshHeader()
	p.refresh()
}

// focusTrack restricts the roll to a single track.
func (p *pianoRollPage) focusTrack(i int) {
	p.track = i
	p.zoomPitch = rollZoomMin
	p.offsetPitch = 0
	p.refreshHeader()
}

func (p *pianoRollPage) refreshHeader() {
	if p.song == nil {
		p.header.SetText("Piano roll · no song loaded")
		return
	}
	if p.track >= 0 && p.track < len(p.song.Tracks) {
		t := p.song.Tracks[p.track]
		p.header.SetText("Piano roll · " + t.DisplayName())
		return
	}
	p.header.SetText("Piano roll · all tracks")
}

func (p *pianoRollPage) refresh() {
	p.raster.Refresh()
	p.refreshLabels()
}

func (p *pianoRollPage) updateProgress(progress app.PlaybackProgress) {
	ratio, ok := progress.TickRatio()
	if !ok {
		return
	}
	p.playhead = ratio
	p.playing = true
	if p.Visible() {
		p.refresh()
	}
}

// pitchRange returns the pitch bounds of the focused track, or of the
// whole song when all tracks are shown.
func (p *pianoRollPage) pitchRange() (uint8, uint8) {
	if p.song == nil || len(p.song.Tracks) == 0 {
		return 0, 127
	}
	if p.track >= 0 && p.track < len(p.song.Tracks) {
		t := p.song.Tracks[p.track]
		return t.MinPitch, t.MaxPitch
	}
	lo, hi := uint8(127), uint8(0)
	for _, t := range p.song.Tracks {
		lo = min(lo, t.MinPitch)
		hi = max(hi, t.MaxPitch)
	}
	if lo > hi {
		return 0, 127
	}
	return lo, hi
}

// visiblePitchSpan returns how many semitones the view covers at the
// given pitch zoom, at least one.
func visiblePitchSpan(minPitch, maxPitch uint8, zoomPitch float64) float64 {
	span := float64(max(int(maxPitch)-int(minPitch), 1) + 1)
	return max(span/max(zoomPitch, 1), 1)
}

// clampPitchOffset keeps the pitch window inside the track's range.
func clampPitchOffset(offset float64, minPitch, maxPitch uint8, zoomPitch float64) float64 {
	span := float64(max(int(maxPitch)-int(minPitch), 1) + 1)
	visible := visiblePitchSpan(minPitch, maxPitch, zoomPitch)
	return min(max(offset, 0), max(span-visible, 0))
}

// pitchWindow returns the inclusive pitch bounds currently in view.
func (p *pianoRollPage) pitchWindow() (uint8, uint8) {
	lo, hi := p.pitchRange()
	visible := visiblePitchSpan(lo, hi, p.zoomPitch)
	offset := clampPitchOffset(p.offsetPitch, lo, hi, p.zoomPitch)
	start := float64(lo) + offset
	end := min(start+visible-1, 127)
	return uint8(start + 0.5), uint8(end + 0.5)
}

// draw rasterizes the visible slice of the song. The x axis covers
// 1/zoom of the ruler span starting at offsetX, the y axis the pitch
// window, highest pitch on top.
func (p *pianoRollPage) draw(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, rollBackground)
		}
	}
	if p.song == nil || w == 0 || h == 0 {
		return img
	}
	span := p.song.RulerTick()
	if span == 0 {
		return img
	}
	window := float64(span) / p.zoom
	left := p.offsetX * float64(span)
	if left+window > float64(span) {
		left = float64(span) - window
	}
	if left < 0 {
		left = 0
	}
	pitchStart, pitchEnd := p.pitchWindow()

	// beat ruler, a major line every four beats
	tpb := float64(max(p.song.TicksPerBeat, 1))
	for beat := int(left / tpb); float64(beat)*tpb <= left+window; beat++ {
		x := tickToX(float64(beat)*tpb, left, window, w)
		if x < 0 || x >= w {
			continue
		}
		c := rollGridMinor
		if beat%4 == 0 {
			c = rollGridMajor
		}
		for y := 0; y < h; y++ {
			img.SetRGBA(x, y, c)
		}
	}

	// one row per visible pitch, octave Cs stand out
	for pitch := int(pitchStart); pitch <= int(pitchEnd); pitch++ {
		y := rowForPitch(h, pitchStart, pitchEnd, uint8(pitch))
		c := rollGridMinor
		if pitch%12 == 0 {
			c = rollGridMajor
		}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	for ti, t := range p.song.Tracks {
		if p.track >= 0 && ti != p.track {
			continue
		}
		c := rollTrackColors[ti%len(rollTrackColors)]
		nc := color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
		for _, n := range t.NoteSpans {
			if n.Pitch < pitchStart || n.Pitch > pitchEnd {
				continue
			}
			x0 := tickToX(float64(n.Start), left, window, w)
			x1 := tickToX(float64(n.End), left, window, w)
			if x1 < 0 || x0 >= w {
				continue
			}
			if x1 == x0 {
				x1 = x0 + 1
			}
			y0, y1 := noteBand(h, pitchStart, pitchEnd, n.Pitch)
			for x := max(x0, 0); x < min(x1, w); x++ {
				for y := y0; y <= y1; y++ {
					img.SetRGBA(x, y, nc)
				}
			}
		}
	}

	if p.playing {
		x := tickToX(float64(p.playhead)*float64(span), left, window, w)
		if x >= 0 && x < w {
			for y := 0; y < h; y++ {
				img.SetRGBA(x, y, rollPlayhead)
			}
		}
	}
	return img
}

// refreshLabels rebuilds the note name labels on the octave lines.
func (p *pianoRollPage) refreshLabels() {
	size := p.labels.Size()
	p.labels.RemoveAll()
	if p.song == nil || size.Height <= 1 {
		p.labels.Refresh()
		return
	}
	pitchStart, pitchEnd := p.pitchWindow()
	h := int(size.Height)
	for pitch := int(pitchStart); pitch <= int(pitchEnd); pitch++ {
		if pitch%12 != 0 {
			continue
		}
		y := rowForPitch(h, pitchStart, pitchEnd, uint8(pitch))
		label := canvas.NewText(noteName(uint8(pitch)), rollLabelColor)
		label.TextSize = 10
		label.Move(fyne.NewPos(4, float32(y)-label.MinSize().Height/2))
		p.labels.Add(label)
	}
	p.labels.Refresh()
}

// noteName returns a pitch as note name and octave, middle C is C4.
func noteName(pitch uint8) string {
	names := [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	return fmt.Sprintf("%s%d", names[pitch%12], int(pitch)/12-1)
}

func tickToX(tick, left, window float64, w int) int {
	return int((tick - left) / window * float64(w))
}

// rowForPitch maps a pitch into the window's rows, highest pitch on top.
func rowForPitch(h int, start, end, pitch uint8) int {
	if h <= 1 {
		return 0
	}
	if start >= end {
		return h - 1
	}
	span := float64(end - start)
	t := float64(end-min(end, pitch)) / span
	y := int(t*float64(h-1) + 0.5)
	return min(max(y, 0), h-1)
}

// noteBand returns the inclusive row band a note fills, one full cell
// of the visible pitch grid.
func noteBand(h int, start, end, pitch uint8) (int, int) {
	if h == 0 || end < start {
		return 0, 0
	}
	count := float64(end-start) + 1
	rowHeight := max(float64(h)/count, 1)
	index := float64(end - min(end, pitch))
	y0 := int(index * rowHeight)
	y1 := int(min((index+1)*rowHeight-1, float64(h-1)))
	y0 = min(y0, h-1)
	if y1 < y0 {
		y1 = y0
	}
	return y0, y1
}

func (p *pianoRollPage) onKey(ev *fyne.KeyEvent) bool {
	lo, hi := p.pitchRange()
	switch ev.Name {
	case p.u.keys.KeyFor(keybindings.ActionNavigateLeft):
		p.offsetX -= rollPanStep / p.zoom
		if p.offsetX < 0 {
			p.offsetX = 0
		}
	case p.u.keys.KeyFor(keybindings.ActionNavigateRight):
		p.offsetX += rollPanStep / p.zoom
		if limit := 1 - 1/p.zoom; p.offsetX > limit {
			p.offsetX = limit
		}
	case p.u.keys.KeyFor(keybindings.ActionNavigateUp):
		p.offsetPitch = clampPitchOffset(p.offsetPitch-rollPitchStep, lo, hi, p.zoomPitch)
	case p.u.keys.KeyFor(keybindings.ActionNavigateDown):
		p.offsetPitch = clampPitchOffset(p.offsetPitch+rollPitchStep, lo, hi, p.zoomPitch)
	case fyne.KeyPlus, fyne.KeyEqual:
		p.zoom = min(p.zoom*rollZoomStep, rollZoomMax)
	case fyne.KeyMinus:
		p.zoom = max(p.zoom/rollZoomStep, rollZoomMin)
		if limit := 1 - 1/p.zoom; p.offsetX > limit {
			p.offsetX = limit
		}
	default:
		return false
	}
	p.refresh()
	return true
}

// zoomPitchIn and zoomPitchOut change the vertical zoom. They are bound
// to shift+up and shift+down on the window canvas.
func (p *pianoRollPage) zoomPitchIn() {
	p.zoomPitch = min(p.zoomPitch*rollZoomStep, rollZoomMax)
	p.refresh()
}

func (p *pianoRollPage) zoomPitchOut() {
	lo, hi := p.pitchRange()
	p.zoomPitch = max(p.zoomPitch/rollZoomStep, rollZoomMin)
	p.offsetPitch = clampPitchOffset(p.offsetPitch, lo, hi, p.zoomPitch)
	p.refresh()
}

package ui

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/mkalinski/sona/internal/app"
	"github.com/mkalinski/sona/internal/app/keybindings"
)

const (
	previewDisplayWidth  = 240
	previewDisplayHeight = 64
)

// tracksPage lists the tracks of the loaded song with a piano roll
// style preview per track.
type tracksPage struct {
	widget.BaseWidget

	u *UI

	header *widget.Label
	debug  *widget.Label
	list   *widget.List

	song        *app.Song
	focus       int
	playhead    float32
	hasPlayhead bool
}

func newTracksPage(u *UI) *tracksPage {
	p := &tracksPage{
		u:      u,
		header: widget.NewLabel("No song loaded"),
		debug:  widget.NewLabel(""),
	}
	p.ExtendBaseWidget(p)
	p.header.TextStyle = fyne.TextStyle{Bold: true}
	p.debug.Hide()
	p.list = p.makeTrackList()
	return p
}

func (p *tracksPage) CreateRenderer() fyne.WidgetRenderer {
	top := container.NewVBox(p.header, p.debug, widget.NewSeparator())
	return widget.NewSimpleRenderer(container.NewBorder(top, nil, nil, nil, p.list))
}

func (p *tracksPage) makeTrackList() *widget.List {
	l := widget.NewList(
		func() int {
			if p.song == nil {
				return 0
			}
			return len(p.song.Tracks)
		},
		func() fyne.CanvasObject {
			img := canvas.NewImageFromImage(renderPreview(app.TrackPreview{}, 0, false))
			img.FillMode = canvas.ImageFillContain
			img.ScaleMode = canvas.ImageScalePixels
			img.SetMinSize(fyne.NewSize(previewDisplayWidth, previewDisplayHeight))
			title := widget.NewLabel("placeholder")
			title.TextStyle = fyne.TextStyle{Bold: true}
			detail := widget.NewLabel("placeholder")
			return container.NewBorder(nil, nil, img, nil, container.NewVBox(title, detail))
		},
		func(id widget.ListItemID, co fyne.CanvasObject) {
			if p.song == nil || id >= len(p.song.Tracks) {
				return
			}
			t := p.song.Tracks[id]
			border := co.(*fyne.Container).Objects
			img := border[1].(*canvas.Image)
			img.Image = renderPreview(t.Preview, p.playhead, p.hasPlayhead)
			img.Refresh()
			labels := border[0].(*fyne.Container).Objects
			title := labels[0].(*widget.Label)
			title.SetText(fmt.Sprintf("[%02d] %s", t.Index+1, t.DisplayName()))
			detail := labels[1].(*widget.Label)
			detail.SetText(fmt.Sprintf("%d notes · %d events · %s", t.NoteCount, t.EventCount, t.ChannelsLabel()))
		})
	l.OnSelected = func(id widget.ListItemID) {
		p.focus = id
		p.showDetails(id)
		l.UnselectAll()
	}
	return l
}

func (p *tracksPage) onShow() {
	p.refreshHeader()
	p.list.Refresh()
	p.list.ScrollTo(p.focus)
}

func (p *tracksPage) setSong(song *app.Song) {
	p.song = song
	p.focus = 0
	p.hasPlayhead = false
	p.refreshHeader()
	p.list.Refresh()
}

func (p *tracksPage) refreshHeader() {
	if p.song == nil {
		p.header.SetText("No song loaded")
		p.debug.Hide()
		return
	}
	p.header.SetText(fmt.Sprintf(
		"%s · %d tracks · %s",
		filepath.Base(p.song.Path),
		len(p.song.Tracks),
		formatDuration(p.song.Duration),
	))
	if p.u.developerMode() {
		p.debug.Show()
	} else {
		p.debug.Hide()
	}
}

// updateProgress moves the playhead overlay. Called from the progress
// ticker on the UI goroutine.
func (p *tracksPage) updateProgress(progress app.PlaybackProgress) {
	ratio, ok := progress.TickRatio()
	if !ok {
		return
	}
	p.playhead = ratio
	p.hasPlayhead = true
	if !p.Visible() {
		return
	}
	if p.debug.Visible() {
		tick, _ := progress.CurrentTick()
		p.debug.SetText(fmt.Sprintf(
			"tick %d/%d · sample %d/%d",
			tick, progress.MaxTick, progress.SamplesPlayed, progress.TotalSamples,
		))
	}
	p.list.Refresh()
}

func (p *tracksPage) onKey(ev *fyne.KeyEvent) bool {
	if p.song == nil || len(p.song.Tracks) == 0 {
		return false
	}
	n := len(p.song.Tracks)
	switch ev.Name {
	case p.u.keys.KeyFor(keybindings.ActionNavigateUp):
		p.focus = (p.focus - 1 + n) % n
	case p.u.keys.KeyFor(keybindings.ActionNavigateDown):
		p.focus = (p.focus + 1) % n
	case p.u.keys.KeyFor(keybindings.ActionSelect):
		p.showDetails(p.focus)
		return true
	case p.u.keys.KeyFor(keybindings.ActionNavigateRight), fyne.KeyP:
		p.u.pianoRollPage.focusTrack(p.focus)
		p.u.showPage(p.u.pianoRollPage)
		return true
	case fyne.KeySpace:
		p.u.togglePlayPause()
		return true
	default:
		return false
	}
	p.list.ScrollTo(p.focus)
	p.list.Refresh()
	return true
}

func (p *tracksPage) showDetails(id int) {
	if p.song == nil || id >= len(p.song.Tracks) {
		return
	}
	t := p.song.Tracks[id]
	items := []*widget.FormItem{
		widget.NewFormItem("Index", widget.NewLabel(fmt.Sprint(t.Index+1))),
		widget.NewFormItem("Name", widget.NewLabel(t.DisplayName())),
		widget.NewFormItem("Events", widget.NewLabel(fmt.Sprint(t.EventCount))),
		widget.NewFormItem("End tick", widget.NewLabel(fmt.Sprint(t.EndTick))),
		widget.NewFormItem("Ticks per beat", widget.NewLabel(fmt.Sprint(t.TicksPerBeat))),
		widget.NewFormItem("Notes", widget.NewLabel(fmt.Sprint(t.NoteCount))),
		widget.NewFormItem("Pitch range", widget.NewLabel(t.PitchRangeLabel())),
		widget.NewFormItem("Channels", widget.NewLabel(t.ChannelsLabel())),
		widget.NewFormItem("Programs", widget.NewLabel(t.ProgramsLabel())),
		widget.NewFormItem("Banks", widget.NewLabel(t.BanksLabel())),
		widget.NewFormItem("Tempo changes", widget.NewLabel(fmt.Sprint(t.TempoChanges))),
		widget.NewFormItem("Time signature", widget.NewLabel(timeSignatureLabel(t.TimeSignature))),
		widget.NewFormItem("Key signature", widget.NewLabel(keySignatureLabel(t.KeySignature))),
	}
	d := dialog.NewCustom("Track Details", "Close", widget.NewForm(items...), p.u.Window)
	d.Show()
}

func timeSignatureLabel(ts *app.TimeSignature) string {
	if ts == nil {
		return "-"
	}
	return ts.String()
}

func keySignatureLabel(ks *app.KeySignature) string {
	if ks == nil {
		return "-"
	}
	return ks.String()
}

package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/mkalinski/sona/internal/app"
)

// statusBar shows the playback state, song and position at the bottom
// of the window.
type statusBar struct {
	widget.BaseWidget

	u *UI

	stateLabel *widget.Label
	songLabel  *widget.Label
	timeLabel  *widget.Label
	progress   *widget.ProgressBar
}

func newStatusBar(u *UI) *statusBar {
	b := &statusBar{
		u:          u,
		stateLabel: widget.NewLabel(app.PlaybackStopped.String()),
		songLabel:  widget.NewLabel(""),
		timeLabel:  widget.NewLabel("00:00 / 00:00"),
		progress:   widget.NewProgressBar(),
	}
	b.ExtendBaseWidget(b)
	b.progress.TextFormatter = func() string { return "" }
	return b
}

func (b *statusBar) CreateRenderer() fyne.WidgetRenderer {
	left := container.NewHBox(b.stateLabel, b.songLabel)
	c := container.NewBorder(
		widget.NewSeparator(), nil, left, b.timeLabel, b.progress,
	)
	return widget.NewSimpleRenderer(c)
}

func (b *statusBar) update(song *app.Song, state app.PlaybackState, p app.PlaybackProgress) {
	b.stateLabel.SetText(state.String())
	if song == nil {
		b.songLabel.SetText("")
		b.timeLabel.SetText("00:00 / 00:00")
		b.progress.SetValue(0)
		return
	}
	b.songLabel.SetText(filepath.Base(song.Path))
	ratio, ok := p.TickRatio()
	if !ok {
		ratio = 0
	}
	b.progress.SetValue(float64(ratio))
	elapsed := time.Duration(float64(song.Duration) * float64(ratio))
	b.timeLabel.SetText(formatDuration(elapsed) + " / " + formatDuration(song.Duration))
}

// formatDuration renders a duration as mm:ss, spilling into hours when
// needed.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

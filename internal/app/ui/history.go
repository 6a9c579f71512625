package ui

import (
	"context"
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/mkalinski/sona/internal/app"
)

const playHistoryLimit = 50

// showPlayHistoryDialog lists the most recent playback runs.
func (u *UI) showPlayHistoryDialog() {
	go func() {
		ee, err := u.st.ListPlayHistory(context.Background(), playHistoryLimit)
		fyne.Do(func() {
			if err != nil {
				u.showErrorDialog("Failed to load play history", err)
				return
			}
			var c fyne.CanvasObject
			if len(ee) == 0 {
				c = widget.NewLabel("Nothing played yet")
			} else {
				list := widget.NewList(
					func() int {
						return len(ee)
					},
					func() fyne.CanvasObject {
						return widget.NewLabel("")
					},
					func(id widget.ListItemID, co fyne.CanvasObject) {
						co.(*widget.Label).SetText(playHistoryLabel(ee[id]))
					},
				)
				list.HideSeparators = true
				c = list
			}
			d := dialog.NewCustom("Play history", "Close", c, u.Window)
			d.Resize(fyne.NewSize(500, 400))
			d.Show()
		})
	}()
}

func playHistoryLabel(e *app.PlayHistoryEntry) string {
	return fmt.Sprintf(
		"%s · %s · %s",
		filepath.Base(e.MIDIPath),
		formatDuration(e.Duration),
		humanize.Time(e.StartedAt),
	)
}

package ui

import (
	"context"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	kxmodal "github.com/ErikKalkoken/fyne-kx/modal"
	kxwidget "github.com/ErikKalkoken/fyne-kx/widget"

	"github.com/mkalinski/sona/internal/app/settings"
)

// settingsPage edits the app settings.
type settingsPage struct {
	widget.BaseWidget

	u *UI

	folders     *widget.Entry
	recentCount *kxwidget.Slider
	logLevel    *widget.Select
	devMode     *kxwidget.Switch
}

func newSettingsPage(u *UI) *settingsPage {
	p := &settingsPage{u: u}
	p.ExtendBaseWidget(p)

	p.folders = widget.NewMultiLineEntry()
	p.folders.SetPlaceHolder("One folder per line")
	p.folders.OnChanged = func(s string) {
		u.settings.SetMusicFolders(splitFolders(s))
	}

	p.recentCount = kxwidget.NewSlider(1, 100)
	p.recentCount.OnChangeEnded = func(v float64) {
		u.settings.SetRecentFileCount(int(v))
	}

	p.logLevel = widget.NewSelect(settings.LogLevelNames(), func(s string) {
		u.settings.SetLogLevel(s)
		slog.SetLogLoggerLevel(u.settings.LogLevelSlog())
	})

	p.devMode = kxwidget.NewSwitch(func(on bool) {
		u.settings.SetDeveloperMode(on)
	})
	return p
}

func (p *settingsPage) CreateRenderer() fyne.WidgetRenderer {
	title := widget.NewLabel("Settings")
	title.TextStyle = fyne.TextStyle{Bold: true}

	rescan := widget.NewButton("Rescan music folders", func() {
		m := kxmodal.NewProgressInfinite(
			"Scanning...",
			"Scanning music folders",
			func() error {
				_, err := p.u.library.Scan(context.Background(), p.u.settings.MusicFolders())
				return err
			},
			p.u.Window,
		)
		m.OnSuccess = func() {
			r := p.u.library.Last()
			p.u.playerPage.setLibrary(r)
		}
		m.OnError = func(err error) {
			p.u.showErrorDialog("Library scan failed", err)
		}
		m.Start()
	})
	clearRecents := widget.NewButton("Clear recent files", func() {
		dialog.ShowConfirm("Clear recent files", "Remove all recent files?", func(ok bool) {
			if !ok {
				return
			}
			if err := p.u.st.TruncateRecentFiles(context.Background()); err != nil {
				p.u.showErrorDialog("Failed to clear recent files", err)
				return
			}
			p.u.playerPage.refreshRecents()
		}, p.u.Window)
	})
	reset := widget.NewButton("Reset to defaults", func() {
		dialog.ShowConfirm("Reset settings", "Reset all settings to their defaults?", func(ok bool) {
			if !ok {
				return
			}
			p.u.settings.ResetAll()
			p.refresh()
		}, p.u.Window)
	})
	history := widget.NewButton("Play history...", func() {
		p.u.showPlayHistoryDialog()
	})
	about := widget.NewButton("About...", func() {
		p.u.showAboutDialog()
	})

	form := widget.NewForm(
		widget.NewFormItem("Music folders", p.folders),
		widget.NewFormItem("Recent files", p.recentCount),
		widget.NewFormItem("Log level", p.logLevel),
		widget.NewFormItem("Developer mode", p.devMode),
	)
	c := container.NewVBox(
		title,
		widget.NewSeparator(),
		form,
		widget.NewSeparator(),
		container.NewHBox(rescan, clearRecents, history, reset, about),
	)
	return widget.NewSimpleRenderer(container.NewPadded(c))
}

func (p *settingsPage) onShow() {
	p.refresh()
}

func (p *settingsPage) refresh() {
	p.folders.SetText(strings.Join(p.u.settings.MusicFolders(), "\n"))
	p.recentCount.SetValue(float64(p.u.settings.RecentFileCount()))
	p.logLevel.SetSelected(p.u.settings.LogLevel())
	p.devMode.SetState(p.u.settings.DeveloperMode())
}

func (p *settingsPage) onKey(ev *fyne.KeyEvent) bool {
	return false
}

func splitFolders(s string) []string {
	var folders []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			folders = append(folders, line)
		}
	}
	return folders
}

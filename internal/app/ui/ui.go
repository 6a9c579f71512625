// Package ui implements the graphical user interface of Sona.
package ui

import (
	"context"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/mkalinski/sona/internal/app"
	"github.com/mkalinski/sona/internal/app/keybindings"
	"github.com/mkalinski/sona/internal/app/library"
	"github.com/mkalinski/sona/internal/app/settings"
	"github.com/mkalinski/sona/internal/app/storage"
)

const (
	progressTicker = 100 * time.Millisecond
)

// page is implemented by all top level pages. Pages receive key events
// from the window while they are shown.
type page interface {
	fyne.CanvasObject
	onShow()
	onKey(ev *fyne.KeyEvent) bool
}

// UI is the root object of the user interface.
type UI struct {
	FyneApp fyne.App
	Window  fyne.Window

	engine   app.PlaybackEngine
	st       *storage.Storage
	library  *library.Service
	settings *settings.Settings
	keys     *keybindings.Keybindings
	version  string
	debug    bool

	playerPage    *playerPage
	tracksPage    *tracksPage
	pianoRollPage *pianoRollPage
	settingsPage  *settingsPage
	statusBar     *statusBar

	pages   *fyne.Container
	current page
	back    []page

	song  *app.Song
	state app.PlaybackState

	midiPathPlaying string // selection of the pending play, for resume
	sfPathPlaying   string // detection and the history
}

// New creates and returns a new UI. Engine callbacks must be wired to
// SetSong, SetState and ShowError by the caller before the engine starts.
func New(
	fyneApp fyne.App,
	engine app.PlaybackEngine,
	st *storage.Storage,
	lib *library.Service,
	set *settings.Settings,
	keys *keybindings.Keybindings,
	version string,
	debug bool,
) *UI {
	u := &UI{
		FyneApp:  fyneApp,
		engine:   engine,
		st:       st,
		library:  lib,
		settings: set,
		keys:     keys,
		version:  version,
		debug:    debug,
	}
	u.Window = fyneApp.NewWindow(u.appName() + " - Retro MIDI Player")

	u.playerPage = newPlayerPage(u)
	u.tracksPage = newTracksPage(u)
	u.pianoRollPage = newPianoRollPage(u)
	u.settingsPage = newSettingsPage(u)
	u.statusBar = newStatusBar(u)

	u.pages = container.NewStack(
		u.playerPage, u.tracksPage, u.pianoRollPage, u.settingsPage,
	)
	u.Window.SetContent(container.NewBorder(nil, u.statusBar, nil, nil, u.pages))
	u.Window.Canvas().SetOnTypedKey(u.onTypedKey)
	u.Window.Canvas().AddShortcut(
		&desktop.CustomShortcut{KeyName: fyne.KeySlash, Modifier: fyne.KeyModifierShift},
		func(fyne.Shortcut) {
			u.showAboutDialog()
		},
	)
	u.Window.Canvas().AddShortcut(
		&desktop.CustomShortcut{KeyName: fyne.KeyComma, Modifier: fyne.KeyModifierControl},
		func(fyne.Shortcut) {
			u.toggleSettings()
		},
	)
	u.Window.Canvas().AddShortcut(
		&desktop.CustomShortcut{KeyName: fyne.KeyUp, Modifier: fyne.KeyModifierShift},
		func(fyne.Shortcut) {
			if u.current == u.pianoRollPage {
				u.pianoRollPage.zoomPitchIn()
			}
		},
	)
	u.Window.Canvas().AddShortcut(
		&desktop.CustomShortcut{KeyName: fyne.KeyDown, Modifier: fyne.KeyModifierShift},
		func(fyne.Shortcut) {
			if u.current == u.pianoRollPage {
				u.pianoRollPage.zoomPitchOut()
			}
		},
	)
	u.showPage(u.playerPage)
	return u
}

// developerMode reports whether extra debug info should be shown.
func (u *UI) developerMode() bool {
	return u.debug || u.settings.DeveloperMode()
}

func (u *UI) appName() string {
	name := u.FyneApp.Metadata().Name
	if name == "" {
		return "Sona"
	}
	return name
}

// Init restores the last session and starts the initial library scan.
func (u *UI) Init() {
	u.playerPage.setMIDIPath(u.settings.LastMIDIFile())
	u.playerPage.setSoundFontPath(u.settings.LastSoundFont())
	u.playerPage.refreshRecents()
	u.RescanLibrary()
}

// RescanLibrary scans the configured music folders in the background.
func (u *UI) RescanLibrary() {
	roots := u.settings.MusicFolders()
	if len(roots) == 0 {
		return
	}
	go func() {
		r, err := u.library.Scan(context.Background(), roots)
		if err != nil {
			slog.Error("Library scan failed", "error", err)
			return
		}
		slog.Info("Library scan completed", "midiFiles", len(r.MIDIFiles), "soundFonts", len(r.SoundFonts))
		fyne.Do(func() {
			u.playerPage.setLibrary(r)
		})
	}()
}

// ShowAndRun shows the main window and runs the app. It blocks until
// the app quits.
func (u *UI) ShowAndRun() {
	u.Window.Resize(u.settings.WindowSize())
	u.Window.SetMaster()
	u.Window.SetCloseIntercept(func() {
		u.settings.SetWindowSize(u.Window.Canvas().Size())
		u.Window.Close()
	})
	go u.tickProgress()
	u.Window.ShowAndRun()
}

// tickProgress periodically pushes the playback position into the UI.
func (u *UI) tickProgress() {
	ticker := time.NewTicker(progressTicker)
	defer ticker.Stop()
	for range ticker.C {
		p := u.engine.Progress()
		fyne.Do(func() {
			u.statusBar.update(u.song, u.state, p)
			if u.state != app.PlaybackStopped {
				u.tracksPage.updateProgress(p)
				u.pianoRollPage.updateProgress(p)
			}
		})
	}
}

// SetSong is called by the engine when a new song has been loaded.
// Safe to call from any goroutine.
func (u *UI) SetSong(song *app.Song) {
	sf := u.sfPathPlaying
	go u.recordHistory(song, sf)
	fyne.Do(func() {
		u.song = song
		u.playerPage.setSong(song)
		u.tracksPage.setSong(song)
		u.pianoRollPage.setSong(song)
	})
}

// SetState is called by the engine on playback state changes.
// Safe to call from any goroutine.
func (u *UI) SetState(s app.PlaybackState) {
	fyne.Do(func() {
		u.state = s
		u.playerPage.setState(s)
		u.statusBar.update(u.song, u.state, u.engine.Progress())
	})
}

// ShowError reports an error to the user. Safe to call from any goroutine.
func (u *UI) ShowError(err error) {
	slog.Error("Playback error", "error", err)
	fyne.Do(func() {
		u.showErrorDialog("Playback failed", err)
	})
}

func (u *UI) showErrorDialog(message string, err error) {
	slog.Error(message, "error", err)
	dialog.ShowInformation("Error", message+"\n\n"+err.Error(), u.Window)
}

func (u *UI) recordHistory(song *app.Song, soundFontPath string) {
	ctx := context.Background()
	err := u.st.CreatePlayHistoryEntry(ctx, storage.CreatePlayHistoryEntryParams{
		MIDIPath:      song.Path,
		SoundFontPath: soundFontPath,
		StartedAt:     time.Now(),
		Duration:      song.Duration,
	})
	if err != nil {
		slog.Error("Failed to record play history", "error", err)
	}
}

// showPage brings a page to the front and gives it the key focus.
func (u *UI) showPage(p page) {
	if u.current == p {
		return
	}
	if u.current != nil {
		u.back = append(u.back, u.current)
	}
	for _, o := range u.pages.Objects {
		o.Hide()
	}
	p.Show()
	u.current = p
	p.onShow()
}

// goBack returns to the previous page, if any.
func (u *UI) goBack() {
	if len(u.back) == 0 {
		return
	}
	p := u.back[len(u.back)-1]
	u.back = u.back[:len(u.back)-1]
	for _, o := range u.pages.Objects {
		o.Hide()
	}
	p.Show()
	u.current = p
	p.onShow()
}

func (u *UI) toggleTracks() {
	if u.current == u.tracksPage {
		u.goBack()
		return
	}
	u.showPage(u.tracksPage)
}

func (u *UI) toggleSettings() {
	if u.current == u.settingsPage {
		u.goBack()
		return
	}
	u.showPage(u.settingsPage)
}

func (u *UI) onTypedKey(ev *fyne.KeyEvent) {
	if u.current != nil && u.current.onKey(ev) {
		return
	}
	switch ev.Name {
	case fyne.KeyEscape:
		u.goBack()
	case u.keys.KeyFor(keybindings.ActionTracks):
		u.toggleTracks()
	case u.keys.KeyFor(keybindings.ActionPlay):
		u.togglePlayPause()
	case u.keys.KeyFor(keybindings.ActionStop):
		u.stopPlayback()
	}
}

// togglePlayPause starts, pauses or resumes playback of the current
// selection.
func (u *UI) togglePlayPause() {
	if u.state == app.PlaybackPlaying {
		u.engine.Pause()
		return
	}
	u.startPlayback()
}

func (u *UI) startPlayback() {
	midiPath := u.playerPage.midiPath()
	sfPath := u.playerPage.soundFontPath()
	if midiPath == "" || sfPath == "" {
		dialog.ShowInformation(
			"Nothing to play",
			"Select both a MIDI file and a SoundFont first.",
			u.Window,
		)
		return
	}
	resume := u.isResume(midiPath, sfPath)
	u.midiPathPlaying = midiPath
	u.sfPathPlaying = sfPath
	u.engine.Play(midiPath, sfPath)
	u.settings.SetLastMIDIFile(midiPath)
	u.settings.SetLastSoundFont(sfPath)
	if resume {
		return
	}
	go func() {
		ctx := context.Background()
		if err := u.st.RecordFileUse(ctx, midiPath, app.FileKindMIDI); err != nil {
			slog.Error("Failed to record file use", "path", midiPath, "error", err)
		}
		if err := u.st.RecordFileUse(ctx, sfPath, app.FileKindSoundFont); err != nil {
			slog.Error("Failed to record file use", "path", sfPath, "error", err)
		}
		fyne.Do(func() {
			u.playerPage.refreshRecents()
		})
	}()
}

// isResume reports whether playing the given selection continues the
// paused playback instead of starting a new run.
func (u *UI) isResume(midiPath, sfPath string) bool {
	return u.state == app.PlaybackPaused &&
		midiPath == u.midiPathPlaying &&
		sfPath == u.sfPathPlaying
}

func (u *UI) stopPlayback() {
	u.engine.Stop()
}

func (u *UI) rewindPlayback() {
	u.engine.Rewind()
}

package ui

import (
	"context"
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fynestorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/mkalinski/sona/internal/app"
	"github.com/mkalinski/sona/internal/app/keybindings"
	"github.com/mkalinski/sona/internal/app/library"
)

// Selectable controls of the player page, in keyboard navigation order.
const (
	selMIDIFile = iota
	selSoundFont
	selPlay
	selStop
	selRewind
	selCount
)

// playerPage is the main page. It selects the files to play and holds
// the transport controls.
type playerPage struct {
	widget.BaseWidget

	u *UI

	midiLabel  *widget.Label
	midiBtn    *widget.Button
	midiRecent *widget.Select
	sfLabel    *widget.Label
	sfBtn      *widget.Button
	sfRecent   *widget.Select
	playBtn    *widget.Button
	stopBtn    *widget.Button
	rewindBtn  *widget.Button
	songLabel  *widget.Label

	midiSelected string
	sfSelected   string
	midiRecents  []string
	sfRecents    []string
	selected     int
}

func newPlayerPage(u *UI) *playerPage {
	p := &playerPage{
		u:         u,
		midiLabel: widget.NewLabel("(no file)"),
		sfLabel:   widget.NewLabel("(no file)"),
		songLabel: widget.NewLabel(""),
		selected:  selMIDIFile,
	}
	p.ExtendBaseWidget(p)

	p.midiBtn = widget.NewButtonWithIcon("MIDI file...", theme.FileAudioIcon(), func() {
		p.browse([]string{".mid", ".midi"}, p.setMIDIPath)
	})
	p.sfBtn = widget.NewButtonWithIcon("SoundFont...", theme.FileAudioIcon(), func() {
		p.browse([]string{".sf2"}, p.setSoundFontPath)
	})
	p.midiRecent = widget.NewSelect(nil, func(s string) {
		if i := p.midiRecent.SelectedIndex(); i >= 0 && i < len(p.midiRecents) {
			p.setMIDIPath(p.midiRecents[i])
		}
	})
	p.midiRecent.PlaceHolder = "Recent files"
	p.sfRecent = widget.NewSelect(nil, func(s string) {
		if i := p.sfRecent.SelectedIndex(); i >= 0 && i < len(p.sfRecents) {
			p.setSoundFontPath(p.sfRecents[i])
		}
	})
	p.sfRecent.PlaceHolder = "Recent SoundFonts"

	p.playBtn = widget.NewButtonWithIcon("Play", theme.MediaPlayIcon(), u.togglePlayPause)
	p.stopBtn = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), u.stopPlayback)
	p.rewindBtn = widget.NewButtonWithIcon("Rewind", theme.MediaSkipPreviousIcon(), u.rewindPlayback)
	p.updateSelection()
	return p
}

func (p *playerPage) CreateRenderer() fyne.WidgetRenderer {
	title := widget.NewLabel("Sona - Retro MIDI Player")
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter
	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), p.u.toggleSettings)
	p.songLabel.Alignment = fyne.TextAlignCenter
	midiRow := container.NewBorder(nil, nil, p.midiBtn, p.midiRecent, p.midiLabel)
	sfRow := container.NewBorder(nil, nil, p.sfBtn, p.sfRecent, p.sfLabel)
	transport := container.NewCenter(container.NewHBox(p.rewindBtn, p.playBtn, p.stopBtn))
	c := container.NewVBox(
		container.NewBorder(nil, nil, nil, settingsBtn, title),
		widget.NewSeparator(),
		midiRow,
		sfRow,
		widget.NewSeparator(),
		transport,
		p.songLabel,
	)
	return widget.NewSimpleRenderer(container.NewPadded(c))
}

func (p *playerPage) onShow() {
	p.selected = selMIDIFile
	p.updateSelection()
}

func (p *playerPage) midiPath() string {
	return p.midiSelected
}

func (p *playerPage) soundFontPath() string {
	return p.sfSelected
}

func (p *playerPage) setMIDIPath(path string) {
	p.midiSelected = path
	if path == "" {
		p.midiLabel.SetText("(no file)")
		return
	}
	p.midiLabel.SetText(filepath.Base(path))
}

func (p *playerPage) setSoundFontPath(path string) {
	p.sfSelected = path
	if path == "" {
		p.sfLabel.SetText("(no file)")
		return
	}
	p.sfLabel.SetText(filepath.Base(path))
}

func (p *playerPage) setSong(song *app.Song) {
	p.songLabel.SetText(fmt.Sprintf(
		"%s · %d tracks · %s",
		filepath.Base(song.Path),
		len(song.Tracks),
		formatDuration(song.Duration),
	))
}

func (p *playerPage) setState(s app.PlaybackState) {
	if s == app.PlaybackPlaying {
		p.playBtn.SetText("Pause")
		p.playBtn.SetIcon(theme.MediaPauseIcon())
	} else {
		p.playBtn.SetText("Play")
		p.playBtn.SetIcon(theme.MediaPlayIcon())
	}
}

// setLibrary merges scanned files into the pickers so they show up
// alongside the recents.
func (p *playerPage) setLibrary(r library.Result) {
	p.midiRecents = mergePaths(p.midiRecents, r.MIDIFiles)
	p.sfRecents = mergePaths(p.sfRecents, r.SoundFonts)
	p.midiRecent.SetOptions(displayPaths(p.midiRecents, nil))
	p.sfRecent.SetOptions(displayPaths(p.sfRecents, nil))
}

// refreshRecents reloads the recent file lists from storage.
func (p *playerPage) refreshRecents() {
	limit := p.u.settings.RecentFileCount()
	go func() {
		ctx := context.Background()
		midi, err1 := p.u.st.ListRecentFiles(ctx, app.FileKindMIDI, limit)
		sf, err2 := p.u.st.ListRecentFiles(ctx, app.FileKindSoundFont, limit)
		fyne.Do(func() {
			if err1 == nil {
				p.midiRecents = recentPaths(midi)
				p.midiRecent.SetOptions(displayPaths(p.midiRecents, midi))
			}
			if err2 == nil {
				p.sfRecents = recentPaths(sf)
				p.sfRecent.SetOptions(displayPaths(p.sfRecents, sf))
			}
		})
	}()
}

func (p *playerPage) browse(extensions []string, apply func(string)) {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			p.u.showErrorDialog("Failed to open file", err)
			return
		}
		if r == nil {
			return
		}
		defer r.Close()
		apply(r.URI().Path())
	}, p.u.Window)
	d.SetFilter(fynestorage.NewExtensionFileFilter(extensions))
	d.Show()
}

// onKey moves the selection through the control graph and activates
// the selected control.
func (p *playerPage) onKey(ev *fyne.KeyEvent) bool {
	switch ev.Name {
	case p.u.keys.KeyFor(keybindings.ActionNavigateUp):
		switch p.selected {
		case selSoundFont:
			p.selected = selMIDIFile
		case selPlay, selStop, selRewind:
			p.selected = selSoundFont
		}
	case p.u.keys.KeyFor(keybindings.ActionNavigateDown):
		switch p.selected {
		case selMIDIFile:
			p.selected = selSoundFont
		case selSoundFont:
			p.selected = selPlay
		}
	case p.u.keys.KeyFor(keybindings.ActionNavigateLeft):
		switch p.selected {
		case selPlay:
			p.selected = selRewind
		case selStop:
			p.selected = selPlay
		case selRewind:
			p.selected = selStop
		}
	case p.u.keys.KeyFor(keybindings.ActionNavigateRight):
		switch p.selected {
		case selPlay:
			p.selected = selStop
		case selStop:
			p.selected = selRewind
		case selRewind:
			p.selected = selPlay
		}
	case p.u.keys.KeyFor(keybindings.ActionSelect):
		p.activate()
		return true
	default:
		return false
	}
	p.updateSelection()
	return true
}

func (p *playerPage) activate() {
	switch p.selected {
	case selMIDIFile:
		p.midiBtn.OnTapped()
	case selSoundFont:
		p.sfBtn.OnTapped()
	case selPlay:
		p.u.togglePlayPause()
	case selStop:
		p.u.stopPlayback()
	case selRewind:
		p.u.rewindPlayback()
	}
}

func (p *playerPage) updateSelection() {
	buttons := []*widget.Button{p.midiBtn, p.sfBtn, p.playBtn, p.stopBtn, p.rewindBtn}
	for i, b := range buttons {
		if i == p.selected {
			b.Importance = widget.HighImportance
		} else {
			b.Importance = widget.MediumImportance
		}
		b.Refresh()
	}
}

func recentPaths(files []*app.RecentFile) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}

// displayPaths renders picker options. Recents carry their play count
// and age, scanned files just their name.
func displayPaths(paths []string, recents []*app.RecentFile) []string {
	byPath := make(map[string]*app.RecentFile, len(recents))
	for _, f := range recents {
		byPath[f.Path] = f
	}
	options := make([]string, 0, len(paths))
	for _, path := range paths {
		if f, ok := byPath[path]; ok {
			options = append(options, fmt.Sprintf(
				"%s (%dx, %s)", filepath.Base(path), f.PlayCount, humanize.Time(f.LastPlayedAt),
			))
			continue
		}
		options = append(options, filepath.Base(path))
	}
	return options
}

func mergePaths(existing, more []string) []string {
	seen := make(map[string]bool, len(existing))
	merged := make([]string, 0, len(existing)+len(more))
	for _, p := range existing {
		seen[p] = true
		merged = append(merged, p)
	}
	for _, p := range more {
		if !seen[p] {
			merged = append(merged, p)
		}
	}
	return merged
}

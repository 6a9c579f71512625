// Package app is the root package of all domain related packages.
//
// All entity types are defined in this package.
package app

import (
	"fmt"
	"strings"
	"time"
)

// PlaybackState represents the state of the playback engine.
type PlaybackState uint

const (
	PlaybackStopped PlaybackState = iota
	PlaybackPlaying
	PlaybackPaused
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackPlaying:
		return "Playing"
	case PlaybackPaused:
		return "Paused"
	}
	return "Stopped"
}

// NoteSpan is a note on a track, from note-on to the matching note-off, in ticks.
type NoteSpan struct {
	Pitch uint8
	Start uint64
	End   uint64
}

// TimeSignature is a time signature as numerator and effective denominator, e.g. 3/4.
type TimeSignature struct {
	Numerator   uint8
	Denominator uint8
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

// KeySignature is a key signature as the number of sharps (negative for flats)
// and whether the key is minor.
type KeySignature struct {
	Sharps  int8
	IsMinor bool
}

func (ks KeySignature) String() string {
	mode := "major"
	if ks.IsMinor {
		mode = "minor"
	}
	return fmt.Sprintf("%d %s", ks.Sharps, mode)
}

// ChannelProgram is a program change seen on a channel.
type ChannelProgram struct {
	Channel uint8
	Program uint8
}

// ChannelBank is a bank select (CC0/CC32) seen on a channel.
type ChannelBank struct {
	Channel uint8
	MSB     uint8
	LSB     uint8
}

// TrackPreview is a coarse intensity grid of a track's notes,
// used to render track thumbnails.
type TrackPreview struct {
	Width  int
	Height int
	Cells  []uint16 // row major, saturating note counts
}

// Cell returns the intensity at the given column and row or 0 when out of range.
func (p TrackPreview) Cell(col, row int) uint16 {
	if col < 0 || row < 0 || col >= p.Width || row >= p.Height {
		return 0
	}
	return p.Cells[row*p.Width+col]
}

// TrackInfo describes one track of a MIDI file.
type TrackInfo struct {
	Index         int
	Name          string
	EventCount    int
	EndTick       uint64
	TicksPerBeat  uint32
	NoteCount     int
	MinPitch      uint8
	MaxPitch      uint8
	Channels      []uint8
	Programs      []ChannelProgram
	Banks         []ChannelBank
	TempoChanges  int
	TimeSignature *TimeSignature
	KeySignature  *KeySignature
	NoteSpans     []NoteSpan
	Preview       TrackPreview
}

// DisplayName returns the track name or a placeholder.
func (t TrackInfo) DisplayName() string {
	if t.Name == "" {
		return "(unnamed)"
	}
	return t.Name
}

// PitchRangeLabel formats the track's pitch range for display.
func (t TrackInfo) PitchRangeLabel() string {
	return fmt.Sprintf("%d - %d", t.MinPitch, t.MaxPitch)
}

// ChannelsLabel formats the track's channel list for display, 1-based.
func (t TrackInfo) ChannelsLabel() string {
	if len(t.Channels) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(t.Channels))
	for _, ch := range t.Channels {
		parts = append(parts, fmt.Sprintf("Ch%d", ch+1))
	}
	return strings.Join(parts, ", ")
}

// ProgramsLabel formats the track's program changes for display.
func (t TrackInfo) ProgramsLabel() string {
	if len(t.Programs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(t.Programs))
	for _, p := range t.Programs {
		parts = append(parts, fmt.Sprintf("Ch%d: %d %s", p.Channel+1, p.Program+1, GMInstrumentName(p.Program)))
	}
	return strings.Join(parts, ", ")
}

// BanksLabel formats the track's bank selects for display.
func (t TrackInfo) BanksLabel() string {
	if len(t.Banks) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(t.Banks))
	for _, b := range t.Banks {
		parts = append(parts, fmt.Sprintf("Ch%d: %d/%d", b.Channel+1, b.MSB, b.LSB))
	}
	return strings.Join(parts, ", ")
}

// Song is a parsed MIDI file with everything the player needs to
// display and schedule it.
type Song struct {
	Path         string
	TicksPerBeat uint32
	Tracks       []TrackInfo
	MaxTick      uint64
	MaxNoteTick  uint64
	Duration     time.Duration
}

// RulerTick returns the tick the progress ruler should end at:
// the last note end when the song has notes, the last event otherwise.
func (s Song) RulerTick() uint64 {
	if s.MaxNoteTick > 0 {
		return s.MaxNoteTick
	}
	return s.MaxTick
}

// PlaybackProgress is a snapshot of the playback position.
type PlaybackProgress struct {
	SamplesPlayed   uint64
	TotalSamples    uint64
	LastEventSample uint64
	LastEventTick   uint64
	NextEventSample uint64
	NextEventTick   uint64
	MaxTick         uint64
}

// CurrentTick interpolates the current tick between the last and next
// scheduled event. It reports false when nothing is loaded.
func (p PlaybackProgress) CurrentTick() (uint64, bool) {
	if p.MaxTick == 0 {
		return 0, false
	}
	tick := p.LastEventTick
	if p.NextEventSample > p.LastEventSample && p.NextEventTick >= p.LastEventTick {
		denom := float64(p.NextEventSample - p.LastEventSample)
		t := float64(p.SamplesPlayed-min(p.SamplesPlayed, p.LastEventSample)) / denom
		if t > 1 {
			t = 1
		}
		tick = p.LastEventTick + uint64(t*float64(p.NextEventTick-p.LastEventTick)+0.5)
	}
	return min(tick, p.MaxTick), true
}

// TickRatio returns the playback position as a ratio of the song length.
// It reports false when nothing is loaded.
func (p PlaybackProgress) TickRatio() (float32, bool) {
	tick, ok := p.CurrentTick()
	if !ok {
		return 0, false
	}
	r := float64(tick) / float64(p.MaxTick)
	if r > 1 {
		r = 1
	}
	return float32(r), true
}

// File kinds in the recent files store.
const (
	FileKindMIDI      = "midi"
	FileKindSoundFont = "soundfont"
)

// RecentFile is a file the user has opened before.
type RecentFile struct {
	ID            int64
	Path          string
	Kind          string
	PlayCount     int
	FirstPlayedAt time.Time
	LastPlayedAt  time.Time
}

// PlayHistoryEntry records one playback run.
type PlayHistoryEntry struct {
	ID            int64
	MIDIPath      string
	SoundFontPath string
	StartedAt     time.Time
	Duration      time.Duration
}

// PlaybackEngine is implemented by the audio engine. All commands are
// asynchronous and safe to call from the UI event loop.
type PlaybackEngine interface {
	Play(midiPath, soundFontPath string)
	Pause()
	Stop()
	Rewind()
	Progress() PlaybackProgress
}

// Package midifile parses Standard MIDI Files into the player's domain model.
package midifile

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"slices"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/mkalinski/sona/internal/app"
)

const defaultTicksPerBeat = 480

// ChannelEvent is a channel voice message with its absolute tick.
type ChannelEvent struct {
	Tick   uint64
	Status byte
	Data1  byte
	Data2  byte
}

// TempoEvent is a tempo change with its absolute tick.
type TempoEvent struct {
	Tick      uint64
	USPerBeat uint32
}

// File is a fully analyzed MIDI file.
type File struct {
	Song   *app.Song
	Events []ChannelEvent // all channel voice messages, sorted by tick
	Tempos []TempoEvent
}

// Load reads and analyzes the MIDI file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load midi file: %w", err)
	}
	f, err := Parse(data, path)
	if err != nil {
		return nil, fmt.Errorf("load midi file %s: %w", path, err)
	}
	return f, nil
}

// Parse analyzes raw SMF data. path is recorded on the song for display only.
func Parse(data []byte, path string) (*File, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse smf: %w", err)
	}
	ticksPerBeat := uint32(defaultTicksPerBeat)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		ticksPerBeat = uint32(mt.Resolution())
	}
	if ticksPerBeat == 0 {
		ticksPerBeat = 1
	}

	f := &File{Song: &app.Song{Path: path, TicksPerBeat: ticksPerBeat}}
	for i, track := range s.Tracks {
		p := parseTrack(track)
		f.Song.MaxTick = max(f.Song.MaxTick, p.endTick)
		f.Song.MaxNoteTick = max(f.Song.MaxNoteTick, p.noteEndTick)
		f.Events = append(f.Events, p.events...)
		f.Tempos = append(f.Tempos, p.tempos...)
		info := p.trackInfo(i, ticksPerBeat)
		f.Song.Tracks = append(f.Song.Tracks, info)
	}
	slices.SortStableFunc(f.Events, func(a, b ChannelEvent) int {
		return cmpUint64(a.Tick, b.Tick)
	})
	slices.SortStableFunc(f.Tempos, func(a, b TempoEvent) int {
		return cmpUint64(a.Tick, b.Tick)
	})

	tm := NewTempoMap(f.Tempos, ticksPerBeat)
	seconds := tm.TicksToSeconds(f.Song.RulerTick())
	f.Song.Duration = time.Duration(seconds * float64(time.Second))
	buildPreviews(f.Song)
	return f, nil
}

// parsedTrack is the raw per-track scan result.
type parsedTrack struct {
	name         string
	eventCount   int
	endTick      uint64
	noteEndTick  uint64
	spans        []app.NoteSpan
	channels     map[uint8]struct{}
	programs     map[uint8]uint8
	bankMSB      map[uint8]uint8
	bankLSB      map[uint8]uint8
	tempoChanges int
	timeSig      *app.TimeSignature
	keySig       *app.KeySignature
	events       []ChannelEvent
	tempos       []TempoEvent
}

func parseTrack(track smf.Track) parsedTrack {
	p := parsedTrack{
		eventCount: len(track),
		channels:   map[uint8]struct{}{},
		programs:   map[uint8]uint8{},
		bankMSB:    map[uint8]uint8{},
		bankLSB:    map[uint8]uint8{},
	}
	var tick uint64
	var active [128][]uint64 // open note-on ticks per pitch
	for _, ev := range track {
		tick += uint64(ev.Delta)
		p.endTick = tick
		msg := ev.Message

		var ch, key, vel, cc, val, prog uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			p.channels[ch] = struct{}{}
			active[key] = append(active[key], tick)
		case msg.GetNoteEnd(&ch, &key):
			p.channels[ch] = struct{}{}
			if n := len(active[key]); n > 0 {
				start := active[key][n-1]
				active[key] = active[key][:n-1]
				p.spans = append(p.spans, app.NoteSpan{Pitch: key, Start: start, End: tick})
			}
		case msg.GetControlChange(&ch, &cc, &val):
			p.channels[ch] = struct{}{}
			switch cc {
			case 0:
				p.bankMSB[ch] = val
			case 32:
				p.bankLSB[ch] = val
			}
		case msg.GetProgramChange(&ch, &prog):
			p.channels[ch] = struct{}{}
			p.programs[ch] = prog
		default:
			var bpm float64
			var num, denom uint8
			var name string
			switch {
			case msg.GetMetaTempo(&bpm):
				p.tempoChanges++
				if bpm > 0 {
					us := uint32(math.Round(60_000_000 / bpm))
					p.tempos = append(p.tempos, TempoEvent{Tick: tick, USPerBeat: us})
				}
			case msg.GetMetaMeter(&num, &denom):
				if p.timeSig == nil {
					p.timeSig = &app.TimeSignature{Numerator: num, Denominator: denom}
				}
			case msg.GetMetaTrackName(&name):
				if p.name == "" {
					p.name = name
				}
			case msg.Is(smf.MetaKeySigMsg):
				if ks, ok := decodeKeySignature(msg.Bytes()); ok && p.keySig == nil {
					p.keySig = &ks
				}
			}
		}

		if raw := msg.Bytes(); len(raw) > 0 && raw[0] >= 0x80 && raw[0] < 0xF0 {
			e := ChannelEvent{Tick: tick, Status: raw[0]}
			if len(raw) > 1 {
				e.Data1 = raw[1]
			}
			if len(raw) > 2 {
				e.Data2 = raw[2]
			}
			p.events = append(p.events, e)
		}
	}
	// notes still sounding at end of track close there
	for pitch := range active {
		for _, start := range active[pitch] {
			p.spans = append(p.spans, app.NoteSpan{Pitch: uint8(pitch), Start: start, End: p.endTick})
		}
	}
	for _, span := range p.spans {
		p.noteEndTick = max(p.noteEndTick, span.End)
	}
	slices.SortStableFunc(p.spans, func(a, b app.NoteSpan) int {
		if c := cmpUint64(a.Start, b.Start); c != 0 {
			return c
		}
		return int(a.Pitch) - int(b.Pitch)
	})
	return p
}

func (p parsedTrack) trackInfo(index int, ticksPerBeat uint32) app.TrackInfo {
	info := app.TrackInfo{
		Index:         index,
		Name:          p.name,
		EventCount:    p.eventCount,
		EndTick:       p.endTick,
		TicksPerBeat:  ticksPerBeat,
		NoteCount:     len(p.spans),
		TempoChanges:  p.tempoChanges,
		TimeSignature: p.timeSig,
		KeySignature:  p.keySig,
		NoteSpans:     p.spans,
	}
	info.MinPitch, info.MaxPitch = noteRange(p.spans)
	for ch := range p.channels {
		info.Channels = append(info.Channels, ch)
	}
	slices.Sort(info.Channels)
	for ch, prog := range p.programs {
		info.Programs = append(info.Programs, app.ChannelProgram{Channel: ch, Program: prog})
	}
	slices.SortFunc(info.Programs, func(a, b app.ChannelProgram) int {
		return int(a.Channel) - int(b.Channel)
	})
	banks := map[uint8]app.ChannelBank{}
	for ch, msb := range p.bankMSB {
		banks[ch] = app.ChannelBank{Channel: ch, MSB: msb}
	}
	for ch, lsb := range p.bankLSB {
		b := banks[ch]
		b.Channel = ch
		b.LSB = lsb
		banks[ch] = b
	}
	for _, b := range banks {
		info.Banks = append(info.Banks, b)
	}
	slices.SortFunc(info.Banks, func(a, b app.ChannelBank) int {
		return int(a.Channel) - int(b.Channel)
	})
	return info
}

// decodeKeySignature extracts sharps and mode from a raw key signature
// meta message. The payload is always the trailing two bytes.
func decodeKeySignature(raw []byte) (app.KeySignature, bool) {
	if len(raw) < 2 {
		return app.KeySignature{}, false
	}
	sf := int8(raw[len(raw)-2])
	mi := raw[len(raw)-1]
	if sf < -7 || sf > 7 || mi > 1 {
		return app.KeySignature{}, false
	}
	return app.KeySignature{Sharps: sf, IsMinor: mi == 1}, true
}

func noteRange(spans []app.NoteSpan) (uint8, uint8) {
	if len(spans) == 0 {
		return 60, 60
	}
	lo, hi := uint8(127), uint8(0)
	for _, s := range spans {
		lo = min(lo, s.Pitch)
		hi = max(hi, s.Pitch)
	}
	return lo, hi
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

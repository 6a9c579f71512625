package playback

import (
	"slices"

	"github.com/mkalinski/sona/internal/app/midifile"
)

// Event is a channel voice message pinned to an absolute sample index.
type Event struct {
	Tick   uint64
	Sample uint64
	Status byte
	Data1  byte
	Data2  byte
}

// Schedule is a song flattened into sample time for one output rate.
type Schedule struct {
	Events       []Event
	RulerTick    uint64
	TotalSamples uint64
}

// BuildSchedule converts a parsed MIDI file into a playback schedule
// for the given sample rate, applying the song's tempo map.
func BuildSchedule(f *midifile.File, sampleRate int) *Schedule {
	tm := midifile.NewTempoMap(f.Tempos, f.Song.TicksPerBeat)
	s := &Schedule{
		Events:    make([]Event, 0, len(f.Events)),
		RulerTick: f.Song.RulerTick(),
	}
	rate := float64(sampleRate)
	for _, ev := range f.Events {
		seconds := tm.TicksToSeconds(ev.Tick)
		s.Events = append(s.Events, Event{
			Tick:   ev.Tick,
			Sample: uint64(seconds*rate + 0.5),
			Status: ev.Status,
			Data1:  ev.Data1,
			Data2:  ev.Data2,
		})
	}
	slices.SortStableFunc(s.Events, func(a, b Event) int {
		switch {
		case a.Sample < b.Sample:
			return -1
		case a.Sample > b.Sample:
			return 1
		}
		return 0
	})
	s.TotalSamples = uint64(tm.TicksToSeconds(s.RulerTick)*rate + 0.5)
	return s
}

package playback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkalinski/sona/internal/app"
	"github.com/mkalinski/sona/internal/app/midifile"
	"github.com/mkalinski/sona/internal/app/playback"
)

func TestBuildSchedule(t *testing.T) {
	t.Run("converts ticks to samples at 120 BPM", func(t *testing.T) {
		// given
		f := &midifile.File{
			Song: &app.Song{TicksPerBeat: 480, MaxTick: 960, MaxNoteTick: 960},
			Events: []midifile.ChannelEvent{
				{Tick: 0, Status: 0x90, Data1: 60, Data2: 100},
				{Tick: 480, Status: 0x80, Data1: 60},
			},
		}
		// when
		s := playback.BuildSchedule(f, 48_000)
		// then
		if assert.Len(t, s.Events, 2) {
			assert.Equal(t, uint64(0), s.Events[0].Sample)
			// one beat at 120 BPM is half a second
			assert.Equal(t, uint64(24_000), s.Events[1].Sample)
		}
		assert.Equal(t, uint64(48_000), s.TotalSamples)
		assert.Equal(t, uint64(960), s.RulerTick)
	})
	t.Run("tempo changes shift later events", func(t *testing.T) {
		f := &midifile.File{
			Song:   &app.Song{TicksPerBeat: 480, MaxTick: 960, MaxNoteTick: 960},
			Tempos: []midifile.TempoEvent{{Tick: 480, USPerBeat: 250_000}},
			Events: []midifile.ChannelEvent{
				{Tick: 960, Status: 0x80, Data1: 60},
			},
		}
		s := playback.BuildSchedule(f, 48_000)
		if assert.Len(t, s.Events, 1) {
			// 0.5s for the first beat, 0.25s for the second
			assert.Equal(t, uint64(36_000), s.Events[0].Sample)
		}
	})
	t.Run("events are sorted by sample", func(t *testing.T) {
		f := &midifile.File{
			Song: &app.Song{TicksPerBeat: 480, MaxTick: 480, MaxNoteTick: 480},
			Events: []midifile.ChannelEvent{
				{Tick: 480, Status: 0x80, Data1: 60},
				{Tick: 0, Status: 0x90, Data1: 60, Data2: 100},
			},
		}
		s := playback.BuildSchedule(f, 44_100)
		if assert.Len(t, s.Events, 2) {
			assert.LessOrEqual(t, s.Events[0].Sample, s.Events[1].Sample)
		}
	})
	t.Run("empty song has no samples", func(t *testing.T) {
		f := &midifile.File{Song: &app.Song{TicksPerBeat: 480}}
		s := playback.BuildSchedule(f, 44_100)
		assert.Empty(t, s.Events)
		assert.Zero(t, s.TotalSamples)
	})
}

package midifile_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/mkalinski/sona/internal/app/midifile"
)

func makeSMF(t *testing.T) []byte {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("Piano"))
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, midi.ProgramChange(0, 0))
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(480, midi.NoteOff(0, 60))
	tr.Add(0, midi.NoteOn(0, 64, 100))
	tr.Add(480, midi.NoteOff(0, 64))
	tr.Close(0)
	s.Add(tr)
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	t.Run("builds a song from SMF data", func(t *testing.T) {
		// given
		data := makeSMF(t)
		// when
		f, err := midifile.Parse(data, "test.mid")
		// then
		if assert.NoError(t, err) {
			assert.Equal(t, uint32(480), f.Song.TicksPerBeat)
			require.Len(t, f.Song.Tracks, 1)
			track := f.Song.Tracks[0]
			assert.Equal(t, "Piano", track.Name)
			assert.Equal(t, 2, track.NoteCount)
			assert.Equal(t, uint8(60), track.MinPitch)
			assert.Equal(t, uint8(64), track.MaxPitch)
			assert.Equal(t, uint64(960), f.Song.MaxNoteTick)
			// two beats at 120 BPM
			assert.InDelta(t, 1.0, f.Song.Duration.Seconds(), 0.01)
			assert.Positive(t, track.Preview.Width)
		}
	})
	t.Run("events are sorted by tick", func(t *testing.T) {
		data := makeSMF(t)
		f, err := midifile.Parse(data, "test.mid")
		if assert.NoError(t, err) {
			last := uint64(0)
			for _, ev := range f.Events {
				assert.GreaterOrEqual(t, ev.Tick, last)
				last = ev.Tick
			}
		}
	})
	t.Run("rejects garbage", func(t *testing.T) {
		_, err := midifile.Parse([]byte("not a midi file"), "x.mid")
		assert.Error(t, err)
	})
}

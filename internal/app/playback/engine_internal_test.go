package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeSynth records dispatched messages and renders silence.
type fakeSynth struct {
	messages [][4]int32
	rendered int
	resets   int
	allOffs  int
}

func (s *fakeSynth) ProcessMidiMessage(channel, command, data1, data2 int32) {
	s.messages = append(s.messages, [4]int32{channel, command, data1, data2})
}

func (s *fakeSynth) Render(left, right []float32) {
	s.rendered += len(left)
}

func (s *fakeSynth) NoteOffAll(immediate bool) {
	s.allOffs++
}

func (s *fakeSynth) Reset() {
	s.resets++
}

func newTestEngine(schedule *Schedule) (*Engine, *fakeSynth) {
	e := New()
	fs := &fakeSynth{}
	e.synth = fs
	e.schedule = schedule
	e.playing = true
	e.totalSamples.Store(schedule.TotalSamples)
	e.maxTick.Store(schedule.RulerTick)
	if len(schedule.Events) > 0 {
		e.nextEventSample.Store(schedule.Events[0].Sample)
		e.nextEventTick.Store(schedule.Events[0].Tick)
	}
	return e, fs
}

func TestEngineRead(t *testing.T) {
	t.Run("dispatches due events and advances the cursor", func(t *testing.T) {
		schedule := &Schedule{
			Events: []Event{
				{Tick: 0, Sample: 0, Status: 0x92, Data1: 60, Data2: 100},
				{Tick: 480, Sample: 100, Status: 0x82, Data1: 60},
			},
			RulerTick:    960,
			TotalSamples: 1000,
		}
		e, fs := newTestEngine(schedule)
		buf := make([]byte, 256*bytesPerFrame)
		n, err := e.Read(buf)
		assert.NoError(t, err)
		assert.Equal(t, len(buf), n)
		if assert.Len(t, fs.messages, 2) {
			assert.Equal(t, [4]int32{2, 0x90, 60, 100}, fs.messages[0])
			assert.Equal(t, [4]int32{2, 0x80, 60, 0}, fs.messages[1])
		}
		assert.Equal(t, 256, fs.rendered)
		assert.Equal(t, uint64(256), e.samplesPlayed.Load())
		assert.Equal(t, uint64(100), e.lastEventSample.Load())
	})
	t.Run("splits rendering at event boundaries", func(t *testing.T) {
		schedule := &Schedule{
			Events:       []Event{{Tick: 10, Sample: 64, Status: 0x90, Data1: 60, Data2: 1}},
			RulerTick:    100,
			TotalSamples: 10_000,
		}
		e, fs := newTestEngine(schedule)
		buf := make([]byte, 128*bytesPerFrame)
		_, err := e.Read(buf)
		assert.NoError(t, err)
		// the event must not fire before its sample
		if assert.Len(t, fs.messages, 1) {
			assert.Equal(t, uint64(64), e.lastEventSample.Load())
		}
		assert.Equal(t, 128, fs.rendered)
	})
	t.Run("stops itself at the end of the schedule", func(t *testing.T) {
		schedule := &Schedule{
			Events:       []Event{{Tick: 0, Sample: 0, Status: 0x90, Data1: 60, Data2: 1}},
			RulerTick:    10,
			TotalSamples: 64,
		}
		e, fs := newTestEngine(schedule)
		buf := make([]byte, 256*bytesPerFrame)
		_, err := e.Read(buf)
		assert.NoError(t, err)
		assert.False(t, e.playing)
		assert.Equal(t, 1, fs.allOffs)
		assert.Equal(t, 64, fs.rendered)
	})
	t.Run("renders silence when paused", func(t *testing.T) {
		schedule := &Schedule{TotalSamples: 1000}
		e, fs := newTestEngine(schedule)
		e.playing = false
		buf := make([]byte, 64*bytesPerFrame)
		n, err := e.Read(buf)
		assert.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Zero(t, fs.rendered)
		for _, b := range buf {
			assert.Zero(t, b)
		}
	})
}

func TestEngineTransport(t *testing.T) {
	t.Run("pause silences notes and keeps the position", func(t *testing.T) {
		schedule := &Schedule{TotalSamples: 1000}
		e, fs := newTestEngine(schedule)
		e.samplesPlayed.Store(500)
		e.handlePause()
		assert.False(t, e.playing)
		assert.Equal(t, 1, fs.allOffs)
		assert.Equal(t, uint64(500), e.samplesPlayed.Load())
	})
	t.Run("stop resets the position and the synth", func(t *testing.T) {
		schedule := &Schedule{
			Events:       []Event{{Tick: 5, Sample: 50}},
			TotalSamples: 1000,
		}
		e, fs := newTestEngine(schedule)
		e.samplesPlayed.Store(500)
		e.index = 1
		e.handleStop()
		assert.False(t, e.playing)
		assert.Zero(t, e.samplesPlayed.Load())
		assert.Zero(t, e.index)
		assert.Equal(t, 1, fs.resets)
		assert.Equal(t, uint64(50), e.nextEventSample.Load())
	})
	t.Run("rewind keeps playing from the start", func(t *testing.T) {
		schedule := &Schedule{TotalSamples: 1000}
		e, fs := newTestEngine(schedule)
		e.samplesPlayed.Store(500)
		e.handleRewind()
		assert.True(t, e.playing)
		assert.Zero(t, e.samplesPlayed.Load())
		assert.Equal(t, 1, fs.resets)
	})
}

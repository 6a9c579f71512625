package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkalinski/sona/internal/app"
)

func TestTrackInfoLabels(t *testing.T) {
	t.Run("display name falls back to a placeholder", func(t *testing.T) {
		assert.Equal(t, "Piano", app.TrackInfo{Name: "Piano"}.DisplayName())
		assert.Equal(t, "(unnamed)", app.TrackInfo{}.DisplayName())
	})
	t.Run("channels are shown 1-based", func(t *testing.T) {
		ti := app.TrackInfo{Channels: []uint8{0, 9}}
		assert.Equal(t, "Ch1, Ch10", ti.ChannelsLabel())
		assert.Equal(t, "-", app.TrackInfo{}.ChannelsLabel())
	})
	t.Run("programs include the GM instrument name", func(t *testing.T) {
		ti := app.TrackInfo{Programs: []app.ChannelProgram{{Channel: 0, Program: 0}}}
		assert.Equal(t, "Ch1: 1 Acoustic Grand Piano", ti.ProgramsLabel())
	})
	t.Run("banks are shown as msb/lsb", func(t *testing.T) {
		ti := app.TrackInfo{Banks: []app.ChannelBank{{Channel: 2, MSB: 1, LSB: 3}}}
		assert.Equal(t, "Ch3: 1/3", ti.BanksLabel())
	})
}

func TestSignatureStrings(t *testing.T) {
	assert.Equal(t, "3/4", app.TimeSignature{Numerator: 3, Denominator: 4}.String())
	assert.Equal(t, "2 major", app.KeySignature{Sharps: 2}.String())
	assert.Equal(t, "-3 minor", app.KeySignature{Sharps: -3, IsMinor: true}.String())
}

func TestRulerTick(t *testing.T) {
	t.Run("prefers the last note end", func(t *testing.T) {
		s := app.Song{MaxTick: 1000, MaxNoteTick: 800}
		assert.Equal(t, uint64(800), s.RulerTick())
	})
	t.Run("falls back to the last event without notes", func(t *testing.T) {
		s := app.Song{MaxTick: 1000}
		assert.Equal(t, uint64(1000), s.RulerTick())
	})
}

func TestPlaybackProgress(t *testing.T) {
	t.Run("interpolates between scheduled events", func(t *testing.T) {
		p := app.PlaybackProgress{
			SamplesPlayed:   150,
			TotalSamples:    400,
			LastEventSample: 100,
			LastEventTick:   100,
			NextEventSample: 200,
			NextEventTick:   300,
			MaxTick:         400,
		}
		tick, ok := p.CurrentTick()
		if assert.True(t, ok) {
			assert.Equal(t, uint64(200), tick)
		}
		r, ok := p.TickRatio()
		if assert.True(t, ok) {
			assert.InDelta(t, 0.5, r, 1e-6)
		}
	})
	t.Run("reports false when nothing is loaded", func(t *testing.T) {
		_, ok := app.PlaybackProgress{}.CurrentTick()
		assert.False(t, ok)
	})
	t.Run("ratio never exceeds one", func(t *testing.T) {
		p := app.PlaybackProgress{
			SamplesPlayed:   999,
			LastEventSample: 900,
			LastEventTick:   500,
			MaxTick:         400,
		}
		r, ok := p.TickRatio()
		if assert.True(t, ok) {
			assert.LessOrEqual(t, r, float32(1))
		}
	})
}

func TestGMInstrumentName(t *testing.T) {
	assert.Equal(t, "Acoustic Grand Piano", app.GMInstrumentName(0))
	assert.Equal(t, "Gunshot", app.GMInstrumentName(127))
}

func TestPlaybackStateString(t *testing.T) {
	assert.Equal(t, "Stopped", app.PlaybackStopped.String())
	assert.Equal(t, "Playing", app.PlaybackPlaying.String())
	assert.Equal(t, "Paused", app.PlaybackPaused.String())
}

package midifile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkalinski/sona/internal/app"
)

func TestTicksPerColumn(t *testing.T) {
	t.Run("never zero", func(t *testing.T) {
		assert.Equal(t, uint64(1), ticksPerColumn(0, 240))
		assert.Equal(t, uint64(1), ticksPerColumn(10, 0))
	})
	t.Run("fits max tick into the width", func(t *testing.T) {
		tpc := ticksPerColumn(10_000, 240)
		assert.LessOrEqual(t, 10_000/tpc, uint64(239))
	})
}

func TestPitchToRow(t *testing.T) {
	t.Run("rows stay within bounds", func(t *testing.T) {
		for pitch := uint8(0); pitch < 128; pitch++ {
			row := pitchToRow(64, 10, 100, pitch)
			assert.GreaterOrEqual(t, row, 0)
			assert.Less(t, row, 64)
		}
	})
	t.Run("higher pitches are higher up", func(t *testing.T) {
		hi := pitchToRow(64, 40, 80, 80)
		lo := pitchToRow(64, 40, 80, 40)
		assert.Less(t, hi, lo)
	})
	t.Run("single pitch range is centered", func(t *testing.T) {
		row := pitchToRow(64, 60, 60, 60)
		assert.InDelta(t, 32, row, 8)
	})
}

func TestBuildPreview(t *testing.T) {
	t.Run("marks cells covered by spans", func(t *testing.T) {
		spans := []app.NoteSpan{{Pitch: 60, Start: 0, End: 100}}
		p := buildPreview(10, 8, 20, 60, 60, spans)
		marked := 0
		for _, c := range p.Cells {
			if c > 0 {
				marked++
			}
		}
		assert.Equal(t, 6, marked) // columns 0..5 in one row
	})
	t.Run("empty dimensions give empty preview", func(t *testing.T) {
		p := buildPreview(0, 8, 1, 0, 0, nil)
		assert.Empty(t, p.Cells)
	})
	t.Run("overlapping spans accumulate intensity", func(t *testing.T) {
		spans := []app.NoteSpan{
			{Pitch: 60, Start: 0, End: 40},
			{Pitch: 60, Start: 0, End: 40},
		}
		p := buildPreview(10, 8, 20, 60, 60, spans)
		row := pitchToRow(8, 60, 60, 60)
		assert.Equal(t, uint16(2), p.Cell(0, row))
	})
}

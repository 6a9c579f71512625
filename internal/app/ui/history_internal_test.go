package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkalinski/sona/internal/app"
)

func TestPlayHistoryLabel(t *testing.T) {
	e := &app.PlayHistoryEntry{
		MIDIPath:      "/music/song.mid",
		SoundFontPath: "/music/gm.sf2",
		StartedAt:     time.Now().Add(-2 * time.Hour),
		Duration:      90 * time.Second,
	}
	got := playHistoryLabel(e)
	assert.Contains(t, got, "song.mid")
	assert.Contains(t, got, "01:30")
	assert.Contains(t, got, "ago")
}

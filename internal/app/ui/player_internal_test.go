package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkalinski/sona/internal/app"
)

func TestMergePaths(t *testing.T) {
	t.Run("appends new paths only", func(t *testing.T) {
		got := mergePaths([]string{"/a", "/b"}, []string{"/b", "/c"})
		assert.Equal(t, []string{"/a", "/b", "/c"}, got)
	})
	t.Run("works with empty inputs", func(t *testing.T) {
		assert.Empty(t, mergePaths(nil, nil))
	})
}

func TestDisplayPaths(t *testing.T) {
	recents := []*app.RecentFile{{
		Path:         "/music/song.mid",
		PlayCount:    3,
		LastPlayedAt: time.Now().Add(-time.Hour),
	}}
	got := displayPaths([]string{"/music/song.mid", "/music/other.mid"}, recents)
	if assert.Len(t, got, 2) {
		assert.Contains(t, got[0], "song.mid")
		assert.Contains(t, got[0], "3x")
		assert.Equal(t, "other.mid", got[1])
	}
}

func TestSplitFolders(t *testing.T) {
	got := splitFolders(" /music \n\n/more\n")
	assert.Equal(t, []string{"/music", "/more"}, got)
}

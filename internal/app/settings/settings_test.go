package settings_test

import (
	"log/slog"
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"

	"github.com/mkalinski/sona/internal/app/settings"
)

func TestSettings(t *testing.T) {
	t.Run("Window size", func(t *testing.T) {
		s := settings.New(settings.NewMyPref())
		x := fyne.NewSize(123, 456)
		s.SetWindowSize(x)
		assert.Equal(t, x, s.WindowSize())
	})
	t.Run("Window size default", func(t *testing.T) {
		s := settings.New(settings.NewMyPref())
		assert.Equal(t, fyne.NewSize(1000, 600), s.WindowSize())
	})
	t.Run("Log level", func(t *testing.T) {
		s := settings.New(settings.NewMyPref())
		s.SetLogLevel("debug")
		assert.Equal(t, "debug", s.LogLevel())
		assert.Equal(t, slog.LevelDebug, s.LogLevelSlog())
	})
	t.Run("Log level default", func(t *testing.T) {
		s := settings.New(settings.NewMyPref())
		assert.Equal(t, slog.LevelInfo, s.LogLevelSlog())
	})
	t.Run("Last files", func(t *testing.T) {
		s := settings.New(settings.NewMyPref())
		s.SetLastMIDIFile("/music/song.mid")
		s.SetLastSoundFont("/music/gm.sf2")
		assert.Equal(t, "/music/song.mid", s.LastMIDIFile())
		assert.Equal(t, "/music/gm.sf2", s.LastSoundFont())
	})
	t.Run("Recent file count is clamped", func(t *testing.T) {
		s := settings.New(settings.NewMyPref())
		s.SetRecentFileCount(1000)
		assert.Equal(t, 100, s.RecentFileCount())
		s.SetRecentFileCount(-1)
		assert.Equal(t, 1, s.RecentFileCount())
	})
	t.Run("Music folders", func(t *testing.T) {
		s := settings.New(settings.NewMyPref())
		x := []string{"/music", "/downloads"}
		s.SetMusicFolders(x)
		assert.Equal(t, x, s.MusicFolders())
	})
	t.Run("ResetAll restores defaults", func(t *testing.T) {
		s := settings.New(settings.NewMyPref())
		s.SetDeveloperMode(true)
		s.SetLogLevel("error")
		s.ResetAll()
		assert.False(t, s.DeveloperMode())
		assert.Equal(t, "info", s.LogLevel())
	})
}

// Package settings provides typed access to the app's user settings.
package settings

import (
	"log/slog"

	"fyne.io/fyne/v2"
)

const (
	settingDeveloperMode          = "developer-mode"
	settingDeveloperModeDefault   = false
	settingLastMIDIFile           = "last-midi-file"
	settingLastSoundFont          = "last-soundfont"
	settingLogLevel               = "log-level"
	settingLogLevelDefault        = "info"
	settingMusicFolders           = "music-folders"
	settingRecentFileCount        = "recent-file-count"
	settingRecentFileCountDefault = 20
	settingRecentFileCountMax     = 100
	settingWindowHeightDefault    = 600
	settingWindowSize             = "window-size"
	settingWindowWidthDefault     = 1000
)

// Settings is the access layer for the app's user settings.
type Settings struct {
	p fyne.Preferences
}

func New(p fyne.Preferences) *Settings {
	return &Settings{p: p}
}

func (s *Settings) DeveloperMode() bool {
	return s.p.BoolWithFallback(settingDeveloperMode, settingDeveloperModeDefault)
}

func (s *Settings) SetDeveloperMode(v bool) {
	s.p.SetBool(settingDeveloperMode, v)
}

func (s *Settings) LastMIDIFile() string {
	return s.p.String(settingLastMIDIFile)
}

func (s *Settings) SetLastMIDIFile(path string) {
	s.p.SetString(settingLastMIDIFile, path)
}

func (s *Settings) LastSoundFont() string {
	return s.p.String(settingLastSoundFont)
}

func (s *Settings) SetLastSoundFont(path string) {
	s.p.SetString(settingLastSoundFont, path)
}

// LogLevelNames returns the valid log level names for display.
func LogLevelNames() []string {
	return []string{"debug", "info", "warn", "error"}
}

func (s *Settings) LogLevel() string {
	return s.p.StringWithFallback(settingLogLevel, settingLogLevelDefault)
}

func (s *Settings) SetLogLevel(l string) {
	s.p.SetString(settingLogLevel, l)
}

// LogLevelSlog returns the set log level as slog level.
func (s *Settings) LogLevelSlog() slog.Level {
	m := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	l, ok := m[s.LogLevel()]
	if !ok {
		return slog.LevelInfo
	}
	return l
}

func (s *Settings) MusicFolders() []string {
	return s.p.StringList(settingMusicFolders)
}

func (s *Settings) SetMusicFolders(folders []string) {
	s.p.SetStringList(settingMusicFolders, folders)
}

func (s *Settings) RecentFileCount() int {
	v := s.p.IntWithFallback(settingRecentFileCount, settingRecentFileCountDefault)
	if v < 1 {
		v = 1
	}
	if v > settingRecentFileCountMax {
		v = settingRecentFileCountMax
	}
	return v
}

func (s *Settings) SetRecentFileCount(v int) {
	s.p.SetInt(settingRecentFileCount, v)
}

func (s *Settings) WindowSize() fyne.Size {
	w := s.p.FloatWithFallback(settingWindowSize+"-width", settingWindowWidthDefault)
	h := s.p.FloatWithFallback(settingWindowSize+"-height", settingWindowHeightDefault)
	return fyne.NewSize(float32(w), float32(h))
}

func (s *Settings) SetWindowSize(v fyne.Size) {
	s.p.SetFloat(settingWindowSize+"-width", float64(v.Width))
	s.p.SetFloat(settingWindowSize+"-height", float64(v.Height))
}

// ResetAll restores all settings to their defaults.
func (s *Settings) ResetAll() {
	for _, k := range []string{
		settingDeveloperMode,
		settingLastMIDIFile,
		settingLastSoundFont,
		settingLogLevel,
		settingMusicFolders,
		settingRecentFileCount,
		settingWindowSize + "-width",
		settingWindowSize + "-height",
	} {
		s.p.RemoveValue(k)
	}
}

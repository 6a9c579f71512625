// Package keybindings loads the user's keybindings file.
package keybindings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"github.com/spf13/viper"
)

// Actions that can be bound.
const (
	ActionNavigateUp    = "NavigateUp"
	ActionNavigateDown  = "NavigateDown"
	ActionNavigateLeft  = "NavigateLeft"
	ActionNavigateRight = "NavigateRight"
	ActionSelect        = "Select"
	ActionPlay          = "Play"
	ActionStop          = "Stop"
	ActionTracks        = "Tracks"
)

var defaults = map[string]fyne.KeyName{
	ActionNavigateUp:    fyne.KeyUp,
	ActionNavigateDown:  fyne.KeyDown,
	ActionNavigateLeft:  fyne.KeyLeft,
	ActionNavigateRight: fyne.KeyRight,
	ActionSelect:        fyne.KeyReturn,
	ActionPlay:          fyne.KeyP,
	ActionStop:          fyne.KeyS,
	ActionTracks:        fyne.KeyT,
}

// Keybindings maps player actions to keys. The zero value is not
// usable; construct with [Load] or [Defaults].
type Keybindings struct {
	bindings map[string]fyne.KeyName
}

// Defaults returns the built-in keybindings.
func Defaults() *Keybindings {
	k := &Keybindings{bindings: make(map[string]fyne.KeyName, len(defaults))}
	for action, key := range defaults {
		k.bindings[action] = key
	}
	return k
}

// Load reads a keybindings file in TOML format with a [bindings] table
// of action names to key names. A missing file is not an error: the
// defaults apply. Unknown actions are ignored and unknown key names
// keep the action's default.
func Load(path string) (*Keybindings, error) {
	k := Defaults()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("No keybindings file, using defaults", "path", path)
			return k, nil
		}
		return nil, fmt.Errorf("read keybindings %s: %w", path, err)
	}
	for action, name := range v.GetStringMapString("bindings") {
		action = canonicalAction(action)
		if _, ok := defaults[action]; !ok {
			slog.Warn("Ignoring unknown keybinding action", "action", action)
			continue
		}
		key, ok := keyFromName(name)
		if !ok {
			slog.Warn("Ignoring unknown key name", "action", action, "key", name)
			continue
		}
		k.bindings[action] = key
	}
	slog.Info("Keybindings loaded", "path", path)
	return k, nil
}

// KeyFor returns the key bound to an action, or the action's default.
func (k *Keybindings) KeyFor(action string) fyne.KeyName {
	if key, ok := k.bindings[action]; ok {
		return key
	}
	return defaults[action]
}

// canonicalAction restores the casing viper lowercases away.
func canonicalAction(action string) string {
	for a := range defaults {
		if strings.EqualFold(a, action) {
			return a
		}
	}
	return action
}

func keyFromName(s string) (fyne.KeyName, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "arrowup":
		return fyne.KeyUp, true
	case "down", "arrowdown":
		return fyne.KeyDown, true
	case "left", "arrowleft":
		return fyne.KeyLeft, true
	case "right", "arrowright":
		return fyne.KeyRight, true
	case "enter", "return":
		return fyne.KeyReturn, true
	case "space":
		return fyne.KeySpace, true
	case "tab":
		return fyne.KeyTab, true
	case "backspace":
		return fyne.KeyBackspace, true
	case "escape", "esc":
		return fyne.KeyEscape, true
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) == 1 && (s[0] >= 'A' && s[0] <= 'Z' || s[0] >= '0' && s[0] <= '9') {
		return fyne.KeyName(s), true
	}
	return "", false
}

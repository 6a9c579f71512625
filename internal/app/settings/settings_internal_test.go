package settings

import (
	"fyne.io/fyne/v2"
)

// myPreferences represents a stub for replacing fyne.Preferences in tests.
type myPreferences struct {
	fyne.Preferences

	data map[string]any
}

func NewMyPref() myPreferences {
	return myPreferences{data: map[string]any{}}
}

func getAny[T any](p myPreferences, key string) T {
	var zero T
	v, ok := p.data[key]
	if !ok {
		return zero
	}
	return v.(T)
}

func getAnyWithFallback[T any](p myPreferences, key string, fallback T) T {
	v, ok := p.data[key]
	if !ok {
		return fallback
	}
	return v.(T)
}

func setAny[T any](p myPreferences, key string, v T) {
	p.data[key] = v
}

func (p myPreferences) Bool(key string) bool {
	return getAny[bool](p, key)
}

func (p myPreferences) BoolWithFallback(key string, fallback bool) bool {
	return getAnyWithFallback(p, key, fallback)
}

func (p myPreferences) SetBool(k string, v bool) {
	setAny(p, k, v)
}

func (p myPreferences) Int(key string) int {
	return getAny[int](p, key)
}

func (p myPreferences) IntWithFallback(key string, fallback int) int {
	return getAnyWithFallback(p, key, fallback)
}

func (p myPreferences) SetInt(k string, v int) {
	setAny(p, k, v)
}

func (p myPreferences) Float(key string) float64 {
	return getAny[float64](p, key)
}

func (p myPreferences) FloatWithFallback(key string, fallback float64) float64 {
	return getAnyWithFallback(p, key, fallback)
}

func (p myPreferences) SetFloat(k string, v float64) {
	setAny(p, k, v)
}

func (p myPreferences) String(key string) string {
	return getAny[string](p, key)
}

func (p myPreferences) StringWithFallback(key, fallback string) string {
	return getAnyWithFallback(p, key, fallback)
}

func (p myPreferences) SetString(k string, v string) {
	setAny(p, k, v)
}

func (p myPreferences) StringList(key string) []string {
	return getAny[[]string](p, key)
}

func (p myPreferences) StringListWithFallback(key string, fallback []string) []string {
	return getAnyWithFallback(p, key, fallback)
}

func (p myPreferences) SetStringList(k string, v []string) {
	setAny(p, k, v)
}

func (p myPreferences) RemoveValue(key string) {
	delete(p.data, key)
}

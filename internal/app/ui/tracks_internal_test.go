package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkalinski/sona/internal/app"
)

func TestSignatureLabels(t *testing.T) {
	t.Run("time signature", func(t *testing.T) {
		assert.Equal(t, "-", timeSignatureLabel(nil))
		assert.Equal(t, "4/4", timeSignatureLabel(&app.TimeSignature{Numerator: 4, Denominator: 4}))
	})
	t.Run("key signature", func(t *testing.T) {
		assert.Equal(t, "-", keySignatureLabel(nil))
		assert.Equal(t, "2 major", keySignatureLabel(&app.KeySignature{Sharps: 2}))
		assert.Equal(t, "-3 minor", keySignatureLabel(&app.KeySignature{Sharps: -3, IsMinor: true}))
	})
}

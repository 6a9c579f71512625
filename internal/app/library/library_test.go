package library_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalinski/sona/internal/app/library"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScan(t *testing.T) {
	ctx := context.Background()
	t.Run("finds midi files and soundfonts", func(t *testing.T) {
		// given
		root := t.TempDir()
		touch(t, filepath.Join(root, "a.mid"))
		touch(t, filepath.Join(root, "sub", "b.MIDI"))
		touch(t, filepath.Join(root, "sub", "gm.sf2"))
		touch(t, filepath.Join(root, "notes.txt"))
		// when
		s := library.New()
		r, err := s.Scan(ctx, []string{root})
		// then
		if assert.NoError(t, err) {
			assert.Len(t, r.MIDIFiles, 2)
			assert.Len(t, r.SoundFonts, 1)
		}
	})
	t.Run("walks roots in parallel and merges results", func(t *testing.T) {
		root1 := t.TempDir()
		root2 := t.TempDir()
		touch(t, filepath.Join(root1, "a.mid"))
		touch(t, filepath.Join(root2, "b.mid"))
		s := library.New()
		r, err := s.Scan(ctx, []string{root1, root2})
		if assert.NoError(t, err) {
			assert.Len(t, r.MIDIFiles, 2)
		}
	})
	t.Run("results are sorted", func(t *testing.T) {
		root := t.TempDir()
		touch(t, filepath.Join(root, "z.mid"))
		touch(t, filepath.Join(root, "a.mid"))
		s := library.New()
		r, err := s.Scan(ctx, []string{root})
		if assert.NoError(t, err) {
			assert.True(t, r.MIDIFiles[0] < r.MIDIFiles[1])
		}
	})
	t.Run("missing roots are skipped", func(t *testing.T) {
		s := library.New()
		r, err := s.Scan(ctx, []string{"/does/not/exist"})
		assert.NoError(t, err)
		assert.Empty(t, r.MIDIFiles)
	})
	t.Run("reports the result and remembers it", func(t *testing.T) {
		root := t.TempDir()
		touch(t, filepath.Join(root, "a.mid"))
		s := library.New()
		var got library.Result
		s.OnScanned = func(r library.Result) {
			got = r
		}
		_, err := s.Scan(ctx, []string{root})
		if assert.NoError(t, err) {
			assert.Len(t, got.MIDIFiles, 1)
			assert.Equal(t, got, s.Last())
		}
	})
}

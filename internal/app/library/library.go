// Package library discovers MIDI files and SoundFonts on disk.
package library

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Result is the outcome of a library scan.
type Result struct {
	MIDIFiles  []string
	SoundFonts []string
}

// Service scans music folders for playable files. Concurrent scans of
// the same roots are coalesced into one walk.
type Service struct {
	// OnScanned is called with the result of every completed scan.
	OnScanned func(Result)

	sf singleflight.Group

	mu   sync.Mutex
	last Result
}

func New() *Service {
	return &Service{}
}

// Last returns the result of the most recent completed scan.
func (s *Service) Last() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Scan walks all roots and returns the playable files found. Roots are
// walked in parallel; unreadable directories are skipped.
func (s *Service) Scan(ctx context.Context, roots []string) (Result, error) {
	key := strings.Join(roots, "\x00")
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.scan(ctx, roots)
	})
	if err != nil {
		return Result{}, err
	}
	r := v.(Result)
	s.mu.Lock()
	s.last = r
	s.mu.Unlock()
	if s.OnScanned != nil {
		s.OnScanned(r)
	}
	return r, nil
}

func (s *Service) scan(ctx context.Context, roots []string) (Result, error) {
	var mu sync.Mutex
	var r Result
	g, ctx := errgroup.WithContext(ctx)
	for _, root := range roots {
		g.Go(func() error {
			return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					slog.Warn("Skipping unreadable path", "path", path, "error", err)
					if d != nil && d.IsDir() {
						return fs.SkipDir
					}
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				switch strings.ToLower(filepath.Ext(path)) {
				case ".mid", ".midi":
					mu.Lock()
					r.MIDIFiles = append(r.MIDIFiles, path)
					mu.Unlock()
				case ".sf2":
					mu.Lock()
					r.SoundFonts = append(r.SoundFonts, path)
					mu.Unlock()
				}
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	slices.Sort(r.MIDIFiles)
	slices.Sort(r.SoundFonts)
	slog.Info("Library scan complete", "roots", len(roots), "midi", len(r.MIDIFiles), "soundfonts", len(r.SoundFonts))
	return r, nil
}

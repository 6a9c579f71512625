package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/icrowley/fake"

	"github.com/mkalinski/sona/internal/app"
	"github.com/mkalinski/sona/internal/app/storage"
)

// Factory creates test objects in the database.
type Factory struct {
	st  *storage.Storage
	seq *atomic.Int64
}

func NewFactory(st *storage.Storage) Factory {
	return Factory{st: st, seq: &atomic.Int64{}}
}

// CreateRecentFile records a recent file with generated values for
// missing fields and returns it.
func (f Factory) CreateRecentFile(args ...app.RecentFile) *app.RecentFile {
	ctx := context.Background()
	var arg app.RecentFile
	if len(args) > 0 {
		arg = args[0]
	}
	if arg.Kind == "" {
		arg.Kind = app.FileKindMIDI
	}
	if arg.Path == "" {
		ext := "mid"
		if arg.Kind == app.FileKindSoundFont {
			ext = "sf2"
		}
		arg.Path = fmt.Sprintf("/music/%s-%d.%s", strings.ToLower(fake.Word()), f.seq.Add(1), ext)
	}
	if err := f.st.RecordFileUse(ctx, arg.Path, arg.Kind); err != nil {
		panic(err)
	}
	o, err := f.st.GetRecentFile(ctx, arg.Path, arg.Kind)
	if err != nil {
		panic(err)
	}
	return o
}

// CreatePlayHistoryEntry records a play history entry with generated
// values for missing fields.
func (f Factory) CreatePlayHistoryEntry(args ...storage.CreatePlayHistoryEntryParams) storage.CreatePlayHistoryEntryParams {
	ctx := context.Background()
	var arg storage.CreatePlayHistoryEntryParams
	if len(args) > 0 {
		arg = args[0]
	}
	if arg.MIDIPath == "" {
		arg.MIDIPath = fmt.Sprintf("/music/%s-%d.mid", strings.ToLower(fake.Word()), f.seq.Add(1))
	}
	if arg.SoundFontPath == "" {
		arg.SoundFontPath = fmt.Sprintf("/music/%s-%d.sf2", strings.ToLower(fake.Word()), f.seq.Add(1))
	}
	if arg.StartedAt.IsZero() {
		arg.StartedAt = time.Now().UTC()
	}
	if arg.Duration == 0 {
		arg.Duration = time.Duration(f.seq.Add(1)) * time.Second
	}
	if err := f.st.CreatePlayHistoryEntry(ctx, arg); err != nil {
		panic(err)
	}
	return arg
}

// Song returns a small song for UI and engine tests. It is not stored.
func (f Factory) Song() *app.Song {
	n := f.seq.Add(1)
	spans := []app.NoteSpan{
		{Pitch: 60, Start: 0, End: 480},
		{Pitch: 64, Start: 480, End: 960},
	}
	return &app.Song{
		Path:         fmt.Sprintf("/music/%s-%d.mid", strings.ToLower(fake.Word()), n),
		TicksPerBeat: 480,
		MaxTick:      960,
		MaxNoteTick:  960,
		Duration:     time.Second,
		Tracks: []app.TrackInfo{
			{
				Index:        0,
				Name:         fake.Word(),
				EventCount:   4,
				EndTick:      960,
				TicksPerBeat: 480,
				NoteCount:    len(spans),
				MinPitch:     60,
				MaxPitch:     64,
				Channels:     []uint8{0},
				NoteSpans:    spans,
			},
		},
	}
}

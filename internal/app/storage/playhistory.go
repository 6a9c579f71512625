package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/mkalinski/sona/internal/app"
)

// CreatePlayHistoryEntryParams are the arguments for CreatePlayHistoryEntry.
type CreatePlayHistoryEntryParams struct {
	MIDIPath      string
	SoundFontPath string
	StartedAt     time.Time
	Duration      time.Duration
}

// CreatePlayHistoryEntry records one playback run.
func (st *Storage) CreatePlayHistoryEntry(ctx context.Context, arg CreatePlayHistoryEntryParams) error {
	if arg.MIDIPath == "" {
		return fmt.Errorf("create play history entry: midi path must not be empty")
	}
	if arg.StartedAt.IsZero() {
		arg.StartedAt = time.Now().UTC()
	}
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO play_history (midi_path, soundfont_path, started_at, duration_seconds)
		VALUES (?, ?, ?, ?)`,
		arg.MIDIPath, arg.SoundFontPath, arg.StartedAt.UTC(), arg.Duration.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("create play history entry %s: %w", arg.MIDIPath, err)
	}
	return nil
}

// ListPlayHistory returns up to limit history entries, newest first.
func (st *Storage) ListPlayHistory(ctx context.Context, limit int) ([]*app.PlayHistoryEntry, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT id, midi_path, soundfont_path, started_at, duration_seconds
		FROM play_history
		ORDER BY started_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list play history: %w", err)
	}
	defer rows.Close()
	var oo []*app.PlayHistoryEntry
	for rows.Next() {
		var o app.PlayHistoryEntry
		var seconds float64
		if err := rows.Scan(&o.ID, &o.MIDIPath, &o.SoundFontPath, &o.StartedAt, &seconds); err != nil {
			return nil, fmt.Errorf("list play history: %w", err)
		}
		o.StartedAt = o.StartedAt.UTC()
		o.Duration = time.Duration(seconds * float64(time.Second))
		oo = append(oo, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list play history: %w", err)
	}
	return oo, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkalinski/sona/internal/app"
)

// RecordFileUse bumps the play count for a file, creating the row on
// first use.
func (st *Storage) RecordFileUse(ctx context.Context, path, kind string) error {
	if path == "" || kind == "" {
		return fmt.Errorf("record file use: path and kind must not be empty")
	}
	now := time.Now().UTC()
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO recent_files (path, kind, play_count, first_played_at, last_played_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (path, kind) DO UPDATE SET
			play_count = play_count + 1,
			last_played_at = excluded.last_played_at`,
		path, kind, now, now,
	)
	if err != nil {
		return fmt.Errorf("record file use %s: %w", path, err)
	}
	return nil
}

// GetRecentFile returns a recent file by path and kind.
func (st *Storage) GetRecentFile(ctx context.Context, path, kind string) (*app.RecentFile, error) {
	row := st.db.QueryRowContext(ctx, `
		SELECT id, path, kind, play_count, first_played_at, last_played_at
		FROM recent_files
		WHERE path = ? AND kind = ?`,
		path, kind,
	)
	o, err := scanRecentFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return nil, fmt.Errorf("get recent file %s: %w", path, err)
	}
	return o, nil
}

// ListRecentFiles returns up to limit recent files of a kind, most
// recently used first.
func (st *Storage) ListRecentFiles(ctx context.Context, kind string, limit int) ([]*app.RecentFile, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT id, path, kind, play_count, first_played_at, last_played_at
		FROM recent_files
		WHERE kind = ?
		ORDER BY last_played_at DESC
		LIMIT ?`,
		kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent files %s: %w", kind, err)
	}
	defer rows.Close()
	var oo []*app.RecentFile
	for rows.Next() {
		o, err := scanRecentFile(rows)
		if err != nil {
			return nil, fmt.Errorf("list recent files %s: %w", kind, err)
		}
		oo = append(oo, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recent files %s: %w", kind, err)
	}
	return oo, nil
}

// DeleteRecentFile removes a recent file entry.
func (st *Storage) DeleteRecentFile(ctx context.Context, path, kind string) error {
	_, err := st.db.ExecContext(ctx, `DELETE FROM recent_files WHERE path = ? AND kind = ?`, path, kind)
	if err != nil {
		return fmt.Errorf("delete recent file %s: %w", path, err)
	}
	return nil
}

// TruncateRecentFiles removes all recent file entries.
func (st *Storage) TruncateRecentFiles(ctx context.Context) error {
	_, err := st.db.ExecContext(ctx, `DELETE FROM recent_files`)
	if err != nil {
		return fmt.Errorf("truncate recent files: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecentFile(r scanner) (*app.RecentFile, error) {
	var o app.RecentFile
	err := r.Scan(&o.ID, &o.Path, &o.Kind, &o.PlayCount, &o.FirstPlayedAt, &o.LastPlayedAt)
	if err != nil {
		return nil, err
	}
	o.FirstPlayedAt = o.FirstPlayedAt.UTC()
	o.LastPlayedAt = o.LastPlayedAt.UTC()
	return &o, nil
}

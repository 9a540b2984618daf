package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/LiliaBekrar/VoteReminder/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the SQLite database at the given path,
// runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db, now: time.Now}, nil
}

// sqliteDSN attaches the PRAGMAs to the DSN so that every connection the
// pool opens gets them. synchronous=FULL: a returned Upsert must survive a crash.
func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(FULL)")
	q.Add("_pragma", "busy_timeout(5000)")
	return "file:" + path + "?" + q.Encode()
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Upsert inserts a schedule or replaces the mutable fields of an existing one.
// created_at is kept from the first insert.
func (r *SQLiteRepo) Upsert(ctx context.Context, rec *domain.Record) error {
	if rec == nil {
		return errors.New("nil record")
	}
	w := toRow(rec, r.now())

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedules (
			user_id, daily_minute, next_trigger, postpone_sec, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			daily_minute = excluded.daily_minute,
			next_trigger = excluded.next_trigger,
			postpone_sec = excluded.postpone_sec,
			updated_at   = excluded.updated_at`,
		w.UserID, w.DailyMinute, w.NextTrigger, w.PostponeSec, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

// Get returns a user's schedule or ErrNotFound.
func (r *SQLiteRepo) Get(ctx context.Context, userID int64) (*domain.Record, error) {
	sr := r.db.QueryRowContext(ctx, `
		SELECT user_id, daily_minute, next_trigger, postpone_sec, created_at, updated_at
		FROM schedules
		WHERE user_id = ?`,
		userID,
	)

	w, err := scanRow(sr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec := w.record()
	return &rec, nil
}

// Delete removes a user's schedule. A missing row is not an error.
func (r *SQLiteRepo) Delete(ctx context.Context, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE user_id = ?`, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListAll returns every stored schedule.
func (r *SQLiteRepo) ListAll(ctx context.Context) ([]domain.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, daily_minute, next_trigger, postpone_sec, created_at, updated_at
		FROM schedules`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Record
	for rows.Next() {
		w, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, w.record())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (row, error) {
	var w row
	err := s.Scan(&w.UserID, &w.DailyMinute, &w.NextTrigger, &w.PostponeSec, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

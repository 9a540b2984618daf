package store

import (
	"context"
	"errors"

	"github.com/LiliaBekrar/VoteReminder/internal/domain"
)

// ErrNotFound is returned by Get when no record exists for the user.
var ErrNotFound = errors.New("record not found")

// Repo defines durable storage for per-user reminder schedules.
// Every mutating call is written through before it returns.
type Repo interface {
	Get(ctx context.Context, userID int64) (*domain.Record, error)
	Upsert(ctx context.Context, r *domain.Record) error
	// Delete removes the record and reports whether one existed.
	Delete(ctx context.Context, userID int64) (bool, error)
	ListAll(ctx context.Context) ([]domain.Record, error)
	Close() error
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LiliaBekrar/VoteReminder/internal/domain"
)

// repoOpener returns an empty repository whose write timestamps come from now.
type repoOpener func(t *testing.T, now func() time.Time) Repo

// testRepoContract runs the behavior every Repo backend must share.
func testRepoContract(t *testing.T, open repoOpener) {
	t.Run("UpsertGet", func(t *testing.T) {
		ctx := context.Background()
		repo := open(t, time.Now)

		next := time.Date(2025, time.May, 6, 7, 0, 0, 0, time.UTC)
		rec := &domain.Record{
			UserID:         42,
			Daily:          domain.DailyTime{Hour: 9, Minute: 0},
			NextTrigger:    next,
			PostponeWindow: 45 * time.Minute,
		}
		if err := repo.Upsert(ctx, rec); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		got, err := repo.Get(ctx, 42)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Daily != rec.Daily || !got.NextTrigger.Equal(next) || got.PostponeWindow != 45*time.Minute {
			t.Fatalf("unexpected record: %+v", got)
		}
		if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
			t.Fatalf("timestamps not set: %+v", got)
		}
	})

	t.Run("UpsertReplacesMutableFields", func(t *testing.T) {
		ctx := context.Background()
		clock := time.Unix(1000, 0)
		repo := open(t, func() time.Time { return clock })

		first := &domain.Record{UserID: 7, Daily: domain.DailyTime{Hour: 8}, NextTrigger: time.Unix(5000, 0)}
		if err := repo.Upsert(ctx, first); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		clock = time.Unix(2000, 0)
		second := &domain.Record{UserID: 7, Daily: domain.DailyTime{Hour: 21, Minute: 15}, NextTrigger: time.Unix(9000, 0), PostponeWindow: time.Hour}
		if err := repo.Upsert(ctx, second); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		got, err := repo.Get(ctx, 7)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Daily.String() != "21:15" || got.NextTrigger.Unix() != 9000 || got.PostponeWindow != time.Hour {
			t.Fatalf("fields not replaced: %+v", got)
		}
		if got.CreatedAt.Unix() != 1000 || got.UpdatedAt.Unix() != 2000 {
			t.Fatalf("created_at should be kept, updated_at bumped: %+v", got)
		}
	})

	t.Run("DefaultPostponeWindow", func(t *testing.T) {
		ctx := context.Background()
		repo := open(t, time.Now)

		if err := repo.Upsert(ctx, &domain.Record{UserID: 1, NextTrigger: time.Unix(10, 0)}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		got, err := repo.Get(ctx, 1)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.PostponeWindow != domain.DefaultPostponeWindow {
			t.Fatalf("want default window, got %v", got.PostponeWindow)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := open(t, time.Now)
		if _, err := repo.Get(context.Background(), 404); !errors.Is(err, ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		repo := open(t, time.Now)

		if err := repo.Upsert(ctx, &domain.Record{UserID: 3, NextTrigger: time.Unix(10, 0)}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		existed, err := repo.Delete(ctx, 3)
		if err != nil || !existed {
			t.Fatalf("delete: existed=%v err=%v", existed, err)
		}
		existed, err = repo.Delete(ctx, 3)
		if err != nil || existed {
			t.Fatalf("second delete should be a no-op: existed=%v err=%v", existed, err)
		}
		if _, err := repo.Get(ctx, 3); !errors.Is(err, ErrNotFound) {
			t.Fatalf("want ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("ListAll", func(t *testing.T) {
		ctx := context.Background()
		repo := open(t, time.Now)

		all, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("list empty: %v", err)
		}
		if len(all) != 0 {
			t.Fatalf("want empty list, got %d", len(all))
		}

		for _, id := range []int64{10, 11, 12} {
			if err := repo.Upsert(ctx, &domain.Record{UserID: id, Daily: domain.DailyTime{Hour: int(id)}, NextTrigger: time.Unix(id*100, 0)}); err != nil {
				t.Fatalf("upsert %d: %v", id, err)
			}
		}
		if _, err := repo.Delete(ctx, 11); err != nil {
			t.Fatalf("delete: %v", err)
		}

		all, err = repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		seen := map[int64]domain.Record{}
		for _, r := range all {
			seen[r.UserID] = r
		}
		if len(all) != 2 || seen[10].Daily.Hour != 10 || seen[12].NextTrigger.Unix() != 1200 {
			t.Fatalf("unexpected list: %+v", all)
		}
		if _, ok := seen[11]; ok {
			t.Fatalf("deleted record listed: %+v", all)
		}
	})
}

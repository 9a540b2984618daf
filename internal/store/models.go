package store

import (
	"time"

	"github.com/LiliaBekrar/VoteReminder/internal/domain"
)

// row is the storage shape of a domain.Record: instants as unix seconds,
// the daily time as minutes since midnight and the postpone window in seconds.
type row struct {
	UserID      int64 `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	DailyMinute int   `gorm:"column:daily_minute;not null"`
	NextTrigger int64 `gorm:"column:next_trigger;not null;index"`
	PostponeSec int64 `gorm:"column:postpone_sec;not null"`
	CreatedAt   int64 `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt   int64 `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (row) TableName() string { return "schedules" }

func toRow(r *domain.Record, now time.Time) row {
	created := r.CreatedAt.UTC().Unix()
	if r.CreatedAt.IsZero() {
		created = now.UTC().Unix()
	}
	window := r.PostponeWindow
	if window <= 0 {
		window = domain.DefaultPostponeWindow
	}
	return row{
		UserID:      r.UserID,
		DailyMinute: r.Daily.Minutes(),
		NextTrigger: r.NextTrigger.UTC().Unix(),
		PostponeSec: int64(window / time.Second),
		CreatedAt:   created,
		UpdatedAt:   now.UTC().Unix(),
	}
}

func (w row) record() domain.Record {
	return domain.Record{
		UserID:         w.UserID,
		Daily:          domain.DailyTimeFromMinutes(w.DailyMinute),
		NextTrigger:    time.Unix(w.NextTrigger, 0).UTC(),
		PostponeWindow: time.Duration(w.PostponeSec) * time.Second,
		CreatedAt:      time.Unix(w.CreatedAt, 0).UTC(),
		UpdatedAt:      time.Unix(w.UpdatedAt, 0).UTC(),
	}
}

package domain

import (
	"fmt"
	"time"
)

// DefaultPostponeWindow is the soft-postpone delay given to new records.
const DefaultPostponeWindow = 90 * time.Minute

// DailyTime is a wall-clock time of day (Hour 0..23, Minute 0..59).
type DailyTime struct {
	Hour   int
	Minute int
}

// Minutes returns minutes since midnight (0..1439).
func (d DailyTime) Minutes() int { return d.Hour*60 + d.Minute }

func (d DailyTime) String() string { return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute) }

// DailyTimeFromMinutes is the inverse of Minutes.
func DailyTimeFromMinutes(mins int) DailyTime {
	return DailyTime{Hour: mins / 60, Minute: mins % 60}
}

// Record is the per-user reminder schedule.
type Record struct {
	UserID         int64
	Daily          DailyTime
	NextTrigger    time.Time
	PostponeWindow time.Duration
	CreatedAt      time.Time // UTC
	UpdatedAt      time.Time // UTC
}

// Due reports whether the reminder should fire at now.
func (r *Record) Due(now time.Time) bool {
	return !r.NextTrigger.After(now)
}

// Action identifies an interactive follow-up attached to a reminder.
type Action string

const (
	ActionAcknowledge Action = "ack"
	ActionSnooze      Action = "snooze"
)

// Option is one interactive element of a notification: either a link (URL set)
// or a callback carrying Action.
type Option struct {
	Label  string
	URL    string
	Action Action
}

// Notification is what gets delivered to a user when their reminder fires.
type Notification struct {
	UserID  int64
	Text    string
	Options []Option
}

package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LiliaBekrar/VoteReminder/internal/domain"
	"github.com/LiliaBekrar/VoteReminder/internal/store"
)

const defaultAckWindow = 90 * time.Minute

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Location       *time.Location
	AckWindow      time.Duration // delay after "J'ai voté"
	PostponeWindow time.Duration // soft-postpone delay given to new records
	VoteURL        string
	Now            func() time.Time
}

// Engine applies user commands and reminder firings to the schedule repository.
// Mutations of a single user's record are serialized.
type Engine struct {
	repo  store.Repo
	log   *zap.Logger
	locks *userLocks

	loc            *time.Location
	ackWindow      time.Duration
	postponeWindow time.Duration
	voteURL        string
	now            func() time.Time
}

// NewEngine creates an Engine over repo.
func NewEngine(repo store.Repo, log *zap.Logger, opts Options) *Engine {
	e := &Engine{
		repo:           repo,
		log:            log,
		locks:          newUserLocks(),
		loc:            opts.Location,
		ackWindow:      opts.AckWindow,
		postponeWindow: opts.PostponeWindow,
		voteURL:        opts.VoteURL,
		now:            opts.Now,
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.ackWindow <= 0 {
		e.ackWindow = defaultAckWindow
	}
	if e.postponeWindow <= 0 {
		e.postponeWindow = domain.DefaultPostponeWindow
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Location is the timezone daily reminders are computed in.
func (e *Engine) Location() *time.Location { return e.loc }

// Register sets the user's daily reminder time and schedules its next occurrence.
// An existing record keeps its postpone window.
func (e *Engine) Register(ctx context.Context, userID int64, raw string) (time.Time, error) {
	daily, err := domain.ParseDailyTime(raw)
	if err != nil {
		return time.Time{}, err
	}

	unlock := e.locks.lock(userID)
	defer unlock()

	rec, err := e.repo.Get(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		rec = &domain.Record{UserID: userID, PostponeWindow: e.postponeWindow}
	case err != nil:
		return time.Time{}, unavailable(err)
	}

	rec.Daily = daily
	rec.NextTrigger = domain.NextDaily(daily, e.now(), e.loc)
	if err := e.repo.Upsert(ctx, rec); err != nil {
		return time.Time{}, unavailable(err)
	}

	e.log.Info("user registered",
		zap.Int64("userID", userID),
		zap.Stringer("daily", daily),
		zap.Time("next", rec.NextTrigger),
	)
	return rec.NextTrigger.In(e.loc), nil
}

// GetNext returns the user's next trigger.
func (e *Engine) GetNext(ctx context.Context, userID int64) (time.Time, error) {
	rec, err := e.Lookup(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	return rec.NextTrigger.In(e.loc), nil
}

// Lookup returns the user's stored record.
func (e *Engine) Lookup(ctx context.Context, userID int64) (*domain.Record, error) {
	rec, err := e.repo.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrNotRegistered
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return rec, nil
}

// Unregister deletes the user's record. ErrNotRegistered means there was none.
func (e *Engine) Unregister(ctx context.Context, userID int64) error {
	unlock := e.locks.lock(userID)
	defer unlock()

	existed, err := e.repo.Delete(ctx, userID)
	if err != nil {
		return unavailable(err)
	}
	if !existed {
		return domain.ErrNotRegistered
	}
	e.log.Info("user unregistered", zap.Int64("userID", userID))
	return nil
}

// Postpone moves the next trigger to now + the parsed delay.
// An unregistered user gets ErrNotRegistered even when raw is malformed.
func (e *Engine) Postpone(ctx context.Context, userID int64, raw string) (time.Time, error) {
	return e.reschedule(ctx, userID, "postponed", func(*domain.Record) (time.Duration, error) {
		return domain.ParseDelay(raw)
	})
}

// Acknowledge records that the user acted on the reminder and schedules a
// follow-up after the fixed acknowledgment window.
func (e *Engine) Acknowledge(ctx context.Context, userID int64) (time.Time, error) {
	return e.reschedule(ctx, userID, "acknowledged", func(*domain.Record) (time.Duration, error) {
		return e.ackWindow, nil
	})
}

// Snooze moves the next trigger by the record's own postpone window.
func (e *Engine) Snooze(ctx context.Context, userID int64) (time.Time, error) {
	return e.reschedule(ctx, userID, "snoozed", func(rec *domain.Record) (time.Duration, error) {
		return rec.PostponeWindow, nil
	})
}

// reschedule sets NextTrigger = now + delay(rec) under the user's lock.
func (e *Engine) reschedule(ctx context.Context, userID int64, what string, delay func(*domain.Record) (time.Duration, error)) (time.Time, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	rec, err := e.Lookup(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	d, err := delay(rec)
	if err != nil {
		return time.Time{}, err
	}

	rec.NextTrigger = e.now().Add(d).Truncate(time.Second)
	if err := e.repo.Upsert(ctx, rec); err != nil {
		return time.Time{}, unavailable(err)
	}

	e.log.Info("reminder "+what,
		zap.Int64("userID", userID),
		zap.Duration("delay", d),
		zap.Time("next", rec.NextTrigger),
	)
	return rec.NextTrigger.In(e.loc), nil
}

// Fire reschedules a due record to its next daily occurrence and returns the
// notification to deliver. The new trigger is persisted before returning, so a
// failed delivery never causes the same occurrence to fire twice.
//
// snapshot is the record as seen by the sweep. If the stored record has since
// been moved to a time that is not yet due, ErrNotDue is returned and nothing
// changes.
func (e *Engine) Fire(ctx context.Context, snapshot domain.Record) (domain.Notification, time.Time, error) {
	unlock := e.locks.lock(snapshot.UserID)
	defer unlock()

	now := e.now()
	rec, err := e.Lookup(ctx, snapshot.UserID)
	if err != nil {
		return domain.Notification{}, time.Time{}, err
	}
	if !rec.NextTrigger.Equal(snapshot.NextTrigger) && !rec.Due(now) {
		return domain.Notification{}, time.Time{}, domain.ErrNotDue
	}

	rec.NextTrigger = domain.NextDaily(rec.Daily, now, e.loc)
	if err := e.repo.Upsert(ctx, rec); err != nil {
		return domain.Notification{}, time.Time{}, unavailable(err)
	}

	return e.notification(rec), rec.NextTrigger.In(e.loc), nil
}

func (e *Engine) notification(rec *domain.Record) domain.Notification {
	n := domain.Notification{
		UserID: rec.UserID,
		Text:   fmt.Sprintf(reminderFmt, domain.FormatDelay(rec.PostponeWindow)),
	}
	if e.voteURL != "" {
		n.Options = append(n.Options, domain.Option{Label: "Voter", URL: e.voteURL})
	}
	n.Options = append(n.Options,
		domain.Option{Label: "J'ai voté", Action: domain.ActionAcknowledge},
		domain.Option{Label: "Repousser", Action: domain.ActionSnooze},
	)
	return n
}

const reminderFmt = "🗳️ Il est temps de voter !\n\n" +
	"Le bouton « Repousser » reporte le rappel de %s.\n" +
	"Pour choisir un autre délai, utilisez /repousser <délai> (ex : /repousser 45m)."

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrRepositoryUnavailable, err)
}

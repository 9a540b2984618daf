package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/LiliaBekrar/VoteReminder/internal/domain"
	"github.com/LiliaBekrar/VoteReminder/internal/store"
)

const defaultInterval = time.Minute

// Notifier delivers a fired reminder to its user.
// Telegram's notifier implements this.
type Notifier interface {
	Send(ctx context.Context, n domain.Notification) error
}

// Firer performs the reschedule transition for a due record.
// reminder.Engine implements this.
type Firer interface {
	Fire(ctx context.Context, rec domain.Record) (domain.Notification, time.Time, error)
}

// Options configures a Scheduler. Zero values fall back to defaults.
type Options struct {
	Interval time.Duration
	Metrics  *Metrics
	Now      func() time.Time
}

// Report summarizes one sweep pass.
type Report struct {
	Scanned int // records listed
	Due     int // records with NextTrigger <= now
	Fired   int // rescheduled and handed to the notifier
	Failed  int // fired but not delivered
	Skipped int // changed or removed since the snapshot
}

// Scheduler periodically sweeps all schedules and dispatches due reminders.
type Scheduler struct {
	repo     store.Repo
	engine   Firer
	notifier Notifier
	log      *zap.Logger
	metrics  *Metrics
	interval time.Duration
	now      func() time.Time

	mu sync.Mutex // one sweep at a time
}

// New creates a new Scheduler.
func New(repo store.Repo, engine Firer, notifier Notifier, log *zap.Logger, opts Options) *Scheduler {
	s := &Scheduler{
		repo:     repo,
		engine:   engine,
		notifier: notifier,
		log:      log,
		metrics:  opts.Metrics,
		interval: opts.Interval,
		now:      opts.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics, _ = NewMetrics(nil)
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Run sweeps every interval until ctx is canceled. A tick that arrives while
// the previous pass is still running is skipped. On return the last pass has
// finished.
func (s *Scheduler) Run(ctx context.Context) error {
	cl := cronLogger{s.log.Sugar()}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	c.Schedule(cron.Every(s.interval), cron.FuncJob(func() { s.tick(ctx) }))
	c.Start()
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))

	<-ctx.Done()
	s.log.Info("scheduler stopping")
	<-c.Stop().Done()
	return nil
}

// tick runs one pass. A started pass is not interrupted by shutdown.
func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	rep, err := s.Sweep(context.WithoutCancel(ctx), s.now())
	if err != nil {
		s.log.Error("sweep aborted", zap.Error(err), zap.Int("fired", rep.Fired))
		return
	}
	if rep.Due > 0 {
		s.log.Info("sweep done",
			zap.Int("scanned", rep.Scanned),
			zap.Int("fired", rep.Fired),
			zap.Int("failed", rep.Failed),
			zap.Int("skipped", rep.Skipped),
		)
	}
}

// Sweep performs one pass over all schedules at now: every due record is
// rescheduled through the engine, then its notification is sent. A failed send
// is counted and logged and the pass continues; a repository failure aborts
// the pass.
func (s *Scheduler) Sweep(ctx context.Context, now time.Time) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	defer func() { s.metrics.sweepDuration.Observe(time.Since(started).Seconds()) }()

	var rep Report
	recs, err := s.repo.ListAll(ctx)
	if err != nil {
		s.metrics.sweeps.WithLabelValues("aborted").Inc()
		return rep, fmt.Errorf("%w: list schedules: %w", domain.ErrRepositoryUnavailable, err)
	}
	s.metrics.records.Set(float64(len(recs)))

	for _, rec := range recs {
		rep.Scanned++
		if !rec.Due(now) {
			continue
		}
		rep.Due++

		n, next, err := s.engine.Fire(ctx, rec)
		switch {
		case errors.Is(err, domain.ErrNotDue), errors.Is(err, domain.ErrNotRegistered):
			rep.Skipped++
			s.log.Debug("reminder skipped", zap.Int64("userID", rec.UserID), zap.Error(err))
			continue
		case err != nil:
			s.metrics.sweeps.WithLabelValues("aborted").Inc()
			return rep, fmt.Errorf("fire %d: %w", rec.UserID, err)
		}
		rep.Fired++
		s.metrics.fired.Inc()

		if err := s.notifier.Send(ctx, n); err != nil {
			rep.Failed++
			s.metrics.deliveryFailures.Inc()
			s.log.Warn("reminder delivery failed",
				zap.Error(err),
				zap.Int64("userID", rec.UserID),
				zap.Time("next", next),
			)
			continue
		}
		s.log.Info("reminder sent", zap.Int64("userID", rec.UserID), zap.Time("next", next))
	}

	s.metrics.sweeps.WithLabelValues("ok").Inc()
	return rep, nil
}

// cronLogger routes cron's internal logging to zap.
type cronLogger struct{ l *zap.SugaredLogger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

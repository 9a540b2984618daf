package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LiliaBekrar/VoteReminder/internal/config"
	"github.com/LiliaBekrar/VoteReminder/internal/reminder"
	"github.com/LiliaBekrar/VoteReminder/internal/scheduler"
	"github.com/LiliaBekrar/VoteReminder/internal/store"
	"github.com/LiliaBekrar/VoteReminder/internal/telegram"
)

const updateTimeout = 30 // seconds

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI // long polling and replies
	sender  *tgbotapi.BotAPI // reminder delivery
	reg     *prometheus.Registry
	httpSrv *http.Server
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	// Long polling holds requests for up to updateTimeout seconds.
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint,
		&http.Client{Timeout: (updateTimeout + 10) * time.Second})
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	sender, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint,
		&http.Client{Timeout: cfg.SendTimeout})
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, sender: sender, reg: reg, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting vote-reminder",
		zap.String("bot", a.bot.Self.UserName),
		zap.String("db", a.cfg.DBDriver),
		zap.String("tz", a.cfg.TZName),
		zap.Duration("poll", a.cfg.PollInterval),
		zap.String("http", a.cfg.HTTPAddr),
	)

	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}

	repo, err := store.Open(ctx, store.Config{
		Driver: a.cfg.DBDriver,
		Path:   a.cfg.DBPath,
		DSN:    a.cfg.DatabaseURL,
	})
	if err != nil {
		a.log.Error("open store failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			a.log.Warn("store close error", zap.Error(err))
		}
	}()
	a.log.Info("store ready")

	engine := reminder.NewEngine(repo, a.log.Named("engine"), reminder.Options{
		Location:       loc,
		AckWindow:      a.cfg.AckWindow,
		PostponeWindow: a.cfg.PostponeWindow,
		VoteURL:        a.cfg.VoteURL,
	})
	metrics, err := scheduler.NewMetrics(a.reg)
	if err != nil {
		return err
	}
	notifier := telegram.NewNotifier(a.sender, a.cfg.SendRate, a.cfg.SendTimeout)
	sched := scheduler.New(repo, engine, notifier, a.log.Named("scheduler"), scheduler.Options{
		Interval: a.cfg.PollInterval,
		Metrics:  metrics,
	})
	router := telegram.NewRouter(a.bot, a.log.Named("telegram"), engine)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutdown signal received")

		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpSrv.Shutdown(shCtx); err != nil {
			a.log.Warn("http server shutdown error", zap.Error(err))
		}
		a.bot.StopReceivingUpdates()
		return nil
	})

	g.Go(func() error { return sched.Run(ctx) })

	g.Go(func() error {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = updateTimeout
		updCh := a.bot.GetUpdatesChan(u)
		for {
			select {
			case <-ctx.Done():
				return nil
			case upd, ok := <-updCh:
				if !ok {
					return nil
				}
				router.HandleUpdate(ctx, upd)
			}
		}
	})

	return g.Wait()
}

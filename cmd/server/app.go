package main

import (
	"net/http"
	"time"

	"github.com/diewo77/fieldservice/internal/config"
	"github.com/diewo77/fieldservice/internal/middleware"
	"github.com/diewo77/fieldservice/internal/notify"
	"github.com/diewo77/fieldservice/internal/payments"
	"github.com/diewo77/fieldservice/internal/server"
	"github.com/diewo77/fieldservice/internal/services"
	"github.com/diewo77/fieldservice/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App is the main application handler plus its background workers.
type App struct {
	handler   http.Handler
	scheduler *cron.Cron
	stop      chan struct{}
}

// NewApp wires the store, the payment client, the reminder scheduler and the router.
func NewApp(cfg *config.Config, db *gorm.DB, log *logrus.Logger) (*App, error) {
	st := store.New(db)
	app := &App{stop: make(chan struct{})}

	pay := payments.New(payments.Config{
		BaseURL:     cfg.Payments.BaseURL,
		Environment: cfg.Payments.Environment,
		AccessToken: cfg.Payments.AccessToken,
		Currency:    cfg.Payments.Currency,
		Version:     cfg.Payments.Version,
		Timeout:     cfg.Payments.Timeout,
		Logger:      log.WithField("component", "payments"),
	})
	if cfg.Payments.AccessToken == "" {
		log.Warn("SQUARE_ACCESS_TOKEN is empty; payment calls will be rejected by the processor")
	}

	limiter := middleware.NewRateLimiter(cfg.Payments.RateLimit, cfg.Payments.RateBurst, log)

	var notifier notify.Notifier = notify.LogNotifier{Log: log.WithField("component", "notify")}
	if cfg.Notify.SMSEnabled() {
		notifier = notify.NewSMSNotifier(cfg.Notify.TwilioAccountSID, cfg.Notify.TwilioAuthToken,
			cfg.Notify.TwilioFromNumber, log.WithField("component", "sms"))
	}
	if cfg.Notify.ReminderSchedule != "" {
		reminders := services.NewReminderService(st, notifier, log.WithField("component", "reminders"))
		c, err := reminders.StartScheduler(cfg.Notify.ReminderSchedule)
		if err != nil {
			return nil, err
		}
		app.scheduler = c
	}

	limiter.StartCleanup(10*time.Minute, app.stop)

	app.handler = server.New(server.Deps{
		Store:    st,
		Payments: pay,
		Currency: cfg.Payments.Currency,
		Limiter:  limiter,
		Log:      log,
	})
	return app, nil
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Close stops background workers.
func (a *App) Close() {
	close(a.stop)
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guymor/wasteless/internal/config"
	"github.com/guymor/wasteless/internal/domain/categories"
	"github.com/guymor/wasteless/internal/domain/history"
	"github.com/guymor/wasteless/internal/domain/pricing"
	"github.com/guymor/wasteless/internal/domain/products"
	"github.com/guymor/wasteless/internal/domain/rules"
	"github.com/guymor/wasteless/internal/infra/db"
	httpx "github.com/guymor/wasteless/internal/infra/http"
	"github.com/guymor/wasteless/internal/infra/logger"
	"github.com/guymor/wasteless/internal/infra/metrics"
	"github.com/guymor/wasteless/internal/infra/notify"
	"github.com/guymor/wasteless/internal/infra/signage"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/example.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Warn("unknown timezone, using UTC", "timezone", cfg.App.Timezone)
		loc = time.UTC
	}
	now := func() time.Time { return time.Now().In(loc) }

	productRepo := products.NewRepo(pool)
	categoryRepo := categories.NewRepo(pool)
	ruleRepo := rules.NewRepo(pool)
	historyRepo := history.NewRepo(pool)
	eventRepo := signage.NewEventRepo(pool)

	engine := pricing.NewEngine(productRepo, ruleRepo, historyRepo, now, log)
	signageSvc := signage.NewService(
		cfg.Signage.URL,
		cfg.Signage.APIKey,
		time.Duration(cfg.Signage.TimeoutSeconds)*time.Second,
		productRepo,
		eventRepo,
		log,
	)

	notifier, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log)
	if err != nil {
		log.Warn("telegram notifier disabled", "err", err)
	}

	interval := time.Duration(cfg.Pricing.UpdateIntervalMinutes) * time.Minute
	sched := pricing.NewScheduler(engine, signageSvc, interval, log)
	sched.OnRun(func(changed int, took time.Duration, runErr error) {
		metrics.ObserveRun(changed, took, runErr)
		if runErr != nil {
			notifier.RunFailed(runErr)
		} else if changed > 0 {
			notifier.RunChanged(changed)
		}
	})
	sched.Start(ctx)
	log.Info("price scheduler started", "interval", interval)

	handler := httpx.NewHandler(log, engine, productRepo, categoryRepo, ruleRepo, historyRepo, signageSvc, now)
	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, handler)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	sched.Stop()
	log.Info("scheduler stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}

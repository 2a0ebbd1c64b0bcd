package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/consolehq/sitemonitor/internal/config"
	"github.com/consolehq/sitemonitor/internal/engine"
	"github.com/consolehq/sitemonitor/internal/httpapi"
	"github.com/consolehq/sitemonitor/internal/httpapi/middleware"
	"github.com/consolehq/sitemonitor/internal/logging"
	"github.com/consolehq/sitemonitor/internal/notify"
	"github.com/consolehq/sitemonitor/internal/probe"
	"github.com/consolehq/sitemonitor/internal/repo"
	"github.com/consolehq/sitemonitor/internal/repo/memory"
	"github.com/consolehq/sitemonitor/internal/repo/postgres"
	"github.com/consolehq/sitemonitor/internal/scheduler"
	"github.com/consolehq/sitemonitor/internal/stats"
)

type stores interface {
	repo.MonitorStore
	repo.ResultStore
	Alerts() repo.AlertStore
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store stores
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("postgres_connect_error", zap.Error(err))
		}
		defer pg.Close()
		store = pg
		logger.Info("store_postgres")
	} else {
		store = memory.New()
		logger.Info("store_memory")
	}

	var httpProbe probe.Probe = probe.NewHTTPProbe(cfg.Probes.HTTPTimeout, cfg.Probes.UserAgent)
	if cfg.Probes.RetryAttempts > 1 {
		httpProbe = &probe.Retry{
			Inner:    httpProbe,
			Attempts: cfg.Probes.RetryAttempts,
			Backoff:  cfg.Probes.RetryBackoff,
		}
	}
	probes := []probe.Probe{
		httpProbe,
		probe.NewSSLProbe(),
		probe.NewDNSProbe(),
		probe.NewMXProbe(),
		probe.NewScreenshotProbe(cfg.Probes.ScreenshotEndpoint, cfg.Probes.ScreenshotTimeout),
		probe.NewPageInfoProbe(cfg.Probes.PageInfoTimeout, cfg.Probes.UserAgent),
	}
	timeouts := engine.Timeouts{
		HTTPStatus:     cfg.Probes.HTTPTimeout,
		SSLCertificate: cfg.Probes.SSLTimeout,
		DNSRecords:     cfg.Probes.DNSTimeout,
		MXRecords:      cfg.Probes.DNSTimeout,
		Screenshot:     cfg.Probes.ScreenshotTimeout,
		PageInfo:       cfg.Probes.PageInfoTimeout,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	orch := engine.NewOrchestrator(probes, timeouts, logger)
	rec := engine.NewRecorder(store, store, logger)
	eng := engine.New(store, orch, rec, engine.NewMetrics(reg), logger)
	statsEng := stats.New(store, store)

	sweeper := scheduler.NewSweeper(logger, store, eng,
		cfg.Sweep.Interval, cfg.Sweep.Jitter, cfg.Sweep.Concurrency)
	go sweeper.Run(ctx)

	if slack := notify.NewSlack(cfg.Alerts.SlackWebhook); slack != nil {
		alerter := scheduler.NewAlerter(store, store.Alerts(), slack, scheduler.AlerterConfig{
			AlertOnRecovery: cfg.Alerts.OnRecovery,
			Cooldown:        cfg.Alerts.Cooldown,
			PollInterval:    cfg.Alerts.PollInterval,
		})
		go func() {
			if err := alerter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("alerter_stopped", zap.Error(err))
			}
		}()
		logger.Info("alerter_enabled")
	}

	api := &httpapi.Server{
		Logger:   logger,
		Monitors: store,
		Results:  store,
		Runner:   eng,
		Stats:    statsEng,
		Registry: reg,
		Keys: middleware.Keys{
			Public: config.SplitKeys(cfg.Auth.PublicKeys),
			Admin:  config.SplitKeys(cfg.Auth.AdminKeys),
		},
		PublicRPM:   cfg.Auth.PublicRPM,
		PublicBurst: cfg.Auth.PublicBurst,
		AdminRPM:    cfg.Auth.AdminRPM,
		AdminBurst:  cfg.Auth.AdminBurst,
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Server.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_serve_error", zap.Error(err))
	}
	logger.Info("api_stopped")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"signup/internal/account"
	"signup/internal/alert"
	"signup/internal/navigation"
	"signup/internal/platform/config"
	"signup/internal/platform/httpserver"
	"signup/internal/platform/kafka"
	"signup/internal/platform/logger"
	"signup/internal/platform/metrics"
	"signup/internal/platform/middleware"
	"signup/internal/platform/postgres"
	"signup/internal/platform/redis"
	"signup/internal/registration/form"
	"signup/internal/registration/service"
	"signup/internal/session"
	httptransport "signup/internal/transport/http"
	"signup/pkg/platform/audit"
	"signup/pkg/platform/audit/publisher"
	kafkastore "signup/pkg/platform/audit/store/kafka"
	auditmemory "signup/pkg/platform/audit/store/memory"
	pgstore "signup/pkg/platform/audit/store/postgres"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	health := map[string]httptransport.HealthChecker{}

	alertStore, closeAlerts, err := buildAlertStore(ctx, cfg, log, health)
	if err != nil {
		return err
	}
	defer closeAlerts()
	alerts := alert.NewService(alertStore, alert.WithMetrics(m), alert.WithLogger(log))

	auditStore, closeAudit, err := buildAuditStore(ctx, cfg, log, health)
	if err != nil {
		return err
	}
	defer closeAudit()
	auditor := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		publisher.WithLogger(log),
	)
	defer auditor.Close()

	var accounts service.AccountService
	if cfg.Account.URL != "" {
		accounts = account.NewHTTPClient(cfg.Account.URL, cfg.Account.Timeout,
			account.WithMetrics(m),
			account.WithLogger(log),
		)
		log.Info("using remote account service", "url", cfg.Account.URL)
	} else {
		accounts = account.NewInMemory()
		log.Warn("ACCOUNT_SERVICE_URL not set, using in-memory account service")
	}

	submit := service.New(accounts, alerts, navigation.NewRouter(),
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditor(auditor),
		service.WithCallTimeout(cfg.Account.Timeout),
	)
	handler := httptransport.NewRegisterHandler(log, submit, alerts, form.NewRegistrationValidator(), cfg.Server.Countries)
	router := httptransport.NewRouter(handler, httptransport.RouterConfig{
		Logger:   log,
		Metrics:  m,
		Gatherer: reg,
		Tokens:   session.NewTokens(cfg.Session.SigningKey),
		Session: middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		},
		RequestTimeout: cfg.Server.RequestTimeout,
		Health:         health,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting signup", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildAlertStore(ctx context.Context, cfg config.Config, log *slog.Logger, health map[string]httptransport.HealthChecker) (alert.Store, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Warn("REDIS_URL not set, keeping alerts in memory")
		return alert.NewInMemoryStore(), func() {}, nil
	}
	health["redis"] = client
	return alert.NewRedisStore(client.Client, cfg.Redis.AlertTTL), func() { _ = client.Close() }, nil
}

// buildAuditStore prefers Kafka, then PostgreSQL, then memory.
func buildAuditStore(ctx context.Context, cfg config.Config, log *slog.Logger, health map[string]httptransport.HealthChecker) (audit.Store, func(), error) {
	switch {
	case len(cfg.Audit.KafkaBrokers) > 0:
		client, err := kafka.New(cfg.Audit.KafkaBrokers, cfg.Audit.Topic)
		if err != nil {
			return nil, nil, err
		}
		if err := client.EnsureTopic(ctx, cfg.Audit.Topic, 3, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Audit.Topic, "error", err)
		}
		health["kafka"] = client
		log.Info("audit events go to kafka", "topic", cfg.Audit.Topic)
		return kafkastore.New(client, cfg.Audit.Topic), client.Close, nil
	case cfg.Audit.DatabaseURL != "":
		db, err := postgres.Open(ctx, cfg.Audit.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := pgstore.New(db.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		health["postgres"] = db
		log.Info("audit events go to postgres")
		return store, func() { _ = db.Close() }, nil
	default:
		log.Warn("no audit sink configured, keeping audit events in memory")
		return auditmemory.NewInMemoryStore(), func() {}, nil
	}
}

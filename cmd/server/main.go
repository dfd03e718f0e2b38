// Command server wires configuration, stores, services, and the HTTP router,
// then runs the server until interrupted. Business logic lives in the
// internal service packages; this file only connects them.
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

	"convoy/internal/coaching"
	coachinghandler "convoy/internal/coaching/handler"
	coachmetrics "convoy/internal/coaching/metrics"
	planstore "convoy/internal/coaching/store/plan"
	"convoy/internal/compliance"
	compliancehandler "convoy/internal/compliance/handler"
	compmetrics "convoy/internal/compliance/metrics"
	documentstore "convoy/internal/compliance/store/document"
	inspectionstore "convoy/internal/compliance/store/inspection"
	taskstore "convoy/internal/compliance/store/task"
	driverstore "convoy/internal/fleet/store/driver"
	httpapi "convoy/internal/http"
	"convoy/internal/intervention"
	interventionhandler "convoy/internal/intervention/handler"
	intmetrics "convoy/internal/intervention/metrics"
	"convoy/internal/platform/config"
	"convoy/internal/platform/httpserver"
	"convoy/internal/platform/kafka"
	"convoy/internal/platform/logger"
	"convoy/internal/platform/postgres"
	platformredis "convoy/internal/platform/redis"
	"convoy/internal/scoring"
	scoringhandler "convoy/internal/scoring/handler"
	scormetrics "convoy/internal/scoring/metrics"
	eventstore "convoy/internal/scoring/store/event"
	snapshotstore "convoy/internal/scoring/store/snapshot"
	"convoy/internal/telemetry"
	telmetrics "convoy/internal/telemetry/metrics"
	"convoy/internal/workorder"
	workorderhandler "convoy/internal/workorder/handler"
	wometrics "convoy/internal/workorder/metrics"
	orderstore "convoy/internal/workorder/store/order"
	"convoy/pkg/domain"
	audit "convoy/pkg/platform/audit"
	auditpub "convoy/pkg/platform/audit/publisher"
	auditkafka "convoy/pkg/platform/audit/publishers/kafka"
	auditmem "convoy/pkg/platform/audit/store/memory"
	"convoy/pkg/platform/retry"
)

// driverReader is the union of the per-service driver store needs, satisfied
// by both the memory and Postgres driver stores.
type driverReader interface {
	scoring.DriverStore
	intervention.DriverStore
	UpdateRiskScore(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID, score int, now time.Time) error
}

type storeSet struct {
	drivers     driverReader
	events      scoring.EventStore
	snapshots   scoring.SnapshotStore
	plans       coaching.PlanStore
	orders      workorder.Store
	tasks       compliance.TaskStore
	inspections compliance.InspectionStore
	documents   compliance.DocumentStore
}

// buildStores selects Postgres-backed stores when a database URL is set and
// in-memory stores otherwise. The returned close func releases the pool.
func buildStores(cfg config.Config) (storeSet, func(), error) {
	if cfg.PostgresURL == "" {
		drivers := driverstore.NewMemory()
		return storeSet{
			drivers:     drivers,
			events:      eventstore.NewMemory(),
			snapshots:   snapshotstore.NewMemory(drivers),
			plans:       planstore.NewMemory(),
			orders:      orderstore.NewMemory(),
			tasks:       taskstore.NewMemory(),
			inspections: inspectionstore.NewMemory(),
			documents:   documentstore.NewMemory(),
		}, func() {}, nil
	}

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		return storeSet{}, nil, err
	}
	return storeSet{
		drivers:     driverstore.NewPostgres(db),
		events:      eventstore.NewPostgres(db),
		snapshots:   snapshotstore.NewPostgres(db),
		plans:       planstore.NewPostgres(db),
		orders:      orderstore.NewPostgres(db),
		tasks:       taskstore.NewPostgres(db),
		inspections: inspectionstore.NewPostgres(db),
		documents:   documentstore.NewPostgres(db),
	}, func() { _ = db.Close() }, nil
}

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	stores, closeStores, err := buildStores(cfg)
	if err != nil {
		log.Error("store initialization failed", "error", err)
		os.Exit(1)
	}
	defer closeStores()

	// Audit events go to Kafka when brokers are configured; otherwise they
	// land in an in-process store so workflows stay auditable in dev.
	var auditor audit.Emitter
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, log)
	if err != nil {
		log.Error("kafka initialization failed", "error", err)
		os.Exit(1)
	}
	if producer != nil {
		defer producer.Close()
		auditor = auditkafka.NewPublisher(producer)
	} else {
		memPublisher := auditpub.NewPublisher(auditmem.NewInMemoryStore(), auditpub.WithLogger(log))
		defer memPublisher.Close()
		auditor = memPublisher
	}

	gateway, closeCache, err := buildTelemetry(cfg, log)
	if err != nil {
		log.Error("telemetry initialization failed", "error", err)
		os.Exit(1)
	}
	defer closeCache()

	scoringSvc, err := scoring.NewService(stores.drivers, stores.events, stores.snapshots, gateway,
		scoring.WithLogger(log),
		scoring.WithAuditEmitter(auditor),
		scoring.WithMetrics(scormetrics.New()),
		scoring.WithEventWindowDays(cfg.Scoring.EventWindowDays),
	)
	if err != nil {
		log.Error("scoring service init failed", "error", err)
		os.Exit(1)
	}

	coachingSvc, err := coaching.NewService(stores.plans, scoringSvc,
		coaching.WithLogger(log),
		coaching.WithAuditEmitter(auditor),
		coaching.WithMetrics(coachmetrics.New()),
	)
	if err != nil {
		log.Error("coaching service init failed", "error", err)
		os.Exit(1)
	}

	interventionSvc, err := intervention.NewService(stores.drivers, stores.events, coachingSvc,
		intervention.WithLogger(log),
		intervention.WithMetrics(intmetrics.New()),
		intervention.WithRecentWindowDays(cfg.Scoring.RecentWindowDays),
	)
	if err != nil {
		log.Error("intervention service init failed", "error", err)
		os.Exit(1)
	}

	workorderSvc, err := workorder.NewService(stores.orders,
		workorder.WithLogger(log),
		workorder.WithAuditEmitter(auditor),
		workorder.WithMetrics(wometrics.New()),
		workorder.WithCancellation(cfg.WorkOrder.AllowCancel),
	)
	if err != nil {
		log.Error("work order service init failed", "error", err)
		os.Exit(1)
	}

	complianceSvc, err := compliance.NewService(stores.tasks, stores.inspections, stores.documents, stores.drivers,
		compliance.WithLogger(log),
		compliance.WithMetrics(compmetrics.New()),
	)
	if err != nil {
		log.Error("compliance service init failed", "error", err)
		os.Exit(1)
	}

	router := httpapi.New(httpapi.Handlers{
		Scoring:      scoringhandler.New(scoringSvc, log),
		Intervention: interventionhandler.New(interventionSvc, log),
		Coaching:     coachinghandler.New(coachingSvc, log),
		WorkOrder:    workorderhandler.New(workorderSvc, log),
		Compliance:   compliancehandler.New(complianceSvc, log),
	}, cfg.JWTSigningKey, log)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildTelemetry assembles the external score gateway with retry, optional
// Redis caching, and metrics.
func buildTelemetry(cfg config.Config, log *slog.Logger) (*telemetry.Gateway, func(), error) {
	policy, err := retry.New(cfg.Telemetry.Retries, cfg.Telemetry.RetryDelay)
	if err != nil {
		return nil, nil, err
	}

	opts := []telemetry.Option{
		telemetry.WithTimeout(cfg.Telemetry.Timeout),
		telemetry.WithRetryPolicy(policy),
		telemetry.WithLogger(log),
		telemetry.WithMetrics(telmetrics.New()),
	}

	closeCache := func() {}
	client, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client != nil {
		opts = append(opts, telemetry.WithCache(telemetry.NewCache(client.Client, cfg.Telemetry.CacheTTL)))
		closeCache = func() { _ = client.Close() }
	}

	return telemetry.New(cfg.Telemetry.BaseURL, cfg.Telemetry.APIKey, opts...), closeCache, nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aguaya/internal/config"
	"aguaya/internal/infra"
	"aguaya/internal/metrics"
	"aguaya/internal/repository"
	"aguaya/internal/router"
	"aguaya/internal/service"
	"aguaya/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if cfg.RunMigrations {
		if err := infra.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Redis backs the job queue and the per-client lock. Without it the
	// server still runs: locks stay in-process and statements are skipped.
	var rdb *redis.Client
	var locker infra.Locker
	if client, err := infra.NewRedis(cfg.RedisURL); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-process locks and no job queue")
		locker = infra.NewLocalLocker()
	} else {
		rdb = client
		locker = infra.NewRedisLocker(rdb, cfg.LockTTL)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := worker.NewDispatcher(rdb)
	clienteRepo := repository.NewClienteRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	if rdb != nil {
		mailer := infra.NewMailer(cfg)
		workerHandlers := &worker.WorkerHandlers{
			EstadoCuenta: worker.NewEstadoCuentaWorker(clienteRepo, voucherRepo, dispatcher, cfg.StatementStorage, cfg.BusinessName),
			Email:        worker.NewEmailWorker(mailer),
		}
		worker.StartWorkerPool(ctx, rdb, workerHandlers, m, cfg.WorkerPoolSize)
	}

	alertas := service.NewAlertaService(repository.NewValeRepository(db), repository.NewPreferenciaRepository(db), cfg.AlertWindowDays)
	worker.StartAlertasCron(ctx, worker.AlertasCronConfig{
		Source:   alertas,
		Metrics:  m,
		Interval: cfg.AlertSweepInterval,
	})

	r := router.New(cfg, router.Deps{
		DB:       db,
		Redis:    rdb,
		Locker:   locker,
		Jobs:     dispatcher,
		Metrics:  m,
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("%s backend listening on :%d", cfg.BusinessName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}

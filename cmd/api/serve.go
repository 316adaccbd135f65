package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/parkingcontrol/internal/config"
	"github.com/geocoder89/parkingcontrol/internal/db"
	httpx "github.com/geocoder89/parkingcontrol/internal/http"
	"github.com/geocoder89/parkingcontrol/internal/http/handlers"
	"github.com/geocoder89/parkingcontrol/internal/notifications"
	"github.com/geocoder89/parkingcontrol/internal/observability"
	"github.com/geocoder89/parkingcontrol/internal/redisclient"
	"github.com/geocoder89/parkingcontrol/internal/repo/memory"
	"github.com/geocoder89/parkingcontrol/internal/repo/postgres"
	"github.com/geocoder89/parkingcontrol/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

type storeWithPing interface {
	service.Store
	handlers.Pinger
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	return observability.NewLogger(observability.LogConfig{
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Service: cfg.ServiceName,
		Version: version,
	})
}

func poolOptions(cfg config.Config) db.PoolOptions {
	return db.PoolOptions{
		URL:             cfg.DBURL,
		MaxConns:        cfg.DBMaxConns,
		ApplicationName: cfg.ServiceName,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	tracing := cfg.OTelEndpoint != ""
	if tracing {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: version,
			Environment:    cfg.Env,
			Endpoint:       cfg.OTelEndpoint,
			SampleRatio:    cfg.OTelSampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			if err := shutdownTracer(sctx); err != nil {
				log.Error("tracer shutdown failed", "err", err)
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	readiness := map[string]handlers.Pinger{}

	var store storeWithPing

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		store = memory.NewParkingSpotsRepo()
	default:
		pool, err := db.NewPool(ctx, poolOptions(cfg))
		if err != nil {
			return err
		}
		defer pool.Close()

		if cfg.AutoMigrate {
			if err := db.Migrate(ctx, pool); err != nil {
				return err
			}
			log.Info("schema applied")
		}

		store = postgres.NewParkingSpotsRepo(pool, prom)
	}
	readiness["store"] = store

	var notifier notifications.Notifier = notifications.NewLogNotifier(log)

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			ClientName: cfg.ServiceName,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("redis close failed", "err", err)
			}
		}()

		readiness["redis"] = rdb
		notifier = notifications.NewProtectedNotifier(
			notifications.NewRedisStreamNotifier(rdb.Streams(), cfg.RedisStream, 10000),
			notifications.ProtectedNotifierConfig{
				Timeout: 500 * time.Millisecond,
				OnStateChange: func(from, to string) {
					log.Warn("change stream breaker", "from", from, "to", to, "stream", cfg.RedisStream)
				},
			},
		)
	}

	svc := service.NewParkingSpotService(store, notifier, log)

	router := httpx.NewRouter(cfg, httpx.Deps{
		Log:       log,
		Service:   svc,
		Prom:      prom,
		Gatherer:  reg,
		Readiness: readiness,
		Tracing:   tracing,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("server failed", "err", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	return shutdown(srv, log)
}

func shutdown(srv *http.Server, log *slog.Logger) error {
	shutdownCh := make(chan error, 1)

	go func() {
		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		shutdownCh <- srv.Shutdown(ctx)
	}()

	select {
	case err := <-shutdownCh:
		if err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return err
		}
		log.Info("shutdown complete")
		return nil

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
		return errors.New("shutdown timed out")
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Info("memory store has no schema, nothing to migrate")
		return nil
	}

	pool, err := db.NewPool(cmd.Context(), poolOptions(cfg))
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(cmd.Context(), pool); err != nil {
		return err
	}

	log.Info("schema applied")
	return nil
}

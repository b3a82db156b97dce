package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/St1cky1/ticket-generator/internal/api"
	"github.com/St1cky1/ticket-generator/internal/clock"
	"github.com/St1cky1/ticket-generator/internal/config"
	"github.com/St1cky1/ticket-generator/internal/infrastructure/client"
	"github.com/St1cky1/ticket-generator/internal/infrastructure/httpx"
	"github.com/St1cky1/ticket-generator/internal/infrastructure/logger"
	"github.com/St1cky1/ticket-generator/internal/session"
	"github.com/St1cky1/ticket-generator/internal/usecase"
	"github.com/St1cky1/ticket-generator/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const appName = "ticket-generator"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("config_load_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log := logger.New(appName, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var wg sync.WaitGroup

	// RabbitMQ необязателен: без него билеты выпускаются без событий
	var publisher usecase.TicketPublisher
	if cfg.AMQPURL != "" {
		rabbitMQ, err := client.NewRabbitMQClient(cfg.AMQPURL, log)
		if err != nil {
			log.Error("rabbitmq_connect_failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		publisher = rabbitMQ

		auditWorker := worker.NewAuditWorker(cfg.AMQPURL, log, reg)
		wg.Add(1)
		go func() {
			defer wg.Done()
			auditWorker.Start(ctx)
		}()
	} else {
		log.Info("rabbitmq_disabled")
	}

	sessions := session.NewRegistry(session.FormDeps{
		IDs:       usecase.NewTicketIDGenerator(nil),
		Clock:     clock.Real(),
		Publisher: publisher,
		Log:       log,
		Metrics:   usecase.NewMetrics(reg),
	}, cfg.Session.MaxSessions)

	wg.Add(1)
	go func() {
		defer wg.Done()
		sweepSessions(ctx, log, sessions, cfg.Session)
	}()

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.RouterConfig{
			Sessions:        sessions,
			Log:             log,
			Registerer:      reg,
			Gatherer:        reg,
			MaxRequestBytes: cfg.Upload.MaxRequestBytes,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		httpx.WaitAndShutdown(ctx, log, srv, cfg.Shutdown.Timeout)
	}()

	log.Info("http_listen", slog.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http_server_failed", slog.String("err", err.Error()))
		stop()
	}

	wg.Wait()
	log.Info("app_stopped")
}

// sweepSessions закрывает формы, которые давно не открывали
func sweepSessions(ctx context.Context, log *slog.Logger, sessions *session.Registry, cfg config.SessionConfig) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(cfg.MaxIdle); n > 0 {
				log.Debug("sessions_swept", slog.Int("removed", n), slog.Int("active", sessions.Len()))
			}
		}
	}
}

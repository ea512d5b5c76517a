package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"renalmatch/pkg/platform/audit"
	auditpg "renalmatch/pkg/platform/audit/store/postgres"
	"renalmatch/pkg/platform/audit/publisher"
	"renalmatch/pkg/platform/httputil"
	"renalmatch/pkg/platform/middleware/auth"

	"renalmatch/internal/match/handler"
	"renalmatch/internal/match/metrics"
	"renalmatch/internal/match/ports"
	"renalmatch/internal/match/scoring"
	"renalmatch/internal/match/scoring/geo"
	"renalmatch/internal/match/service"
	store "renalmatch/internal/match/store/session"
	"renalmatch/internal/platform/config"
	"renalmatch/internal/platform/httpserver"
	"renalmatch/internal/platform/logger"
	"renalmatch/internal/platform/postgres"
	platformredis "renalmatch/internal/platform/redis"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionStore, redisClient, pgPool, err := buildSessionStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	if pgPool != nil {
		defer pgPool.Close()
	}

	auditPublisher, closeAudit, err := buildAuditPublisher(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("audit publisher: %w", err)
	}
	defer closeAudit()

	evaluator, err := scoring.NewEvaluator(geo.NewPincodePolicy())
	if err != nil {
		return fmt.Errorf("evaluator: %w", err)
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
	}
	if auditPublisher != nil {
		opts = append(opts, service.WithAuditPublisher(auditPublisher))
	}
	svc, err := service.New(sessionStore, evaluator, opts...)
	if err != nil {
		return fmt.Errorf("match service: %w", err)
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(auth.RequireHospital(auth.NewJWTValidator(cfg.JWTSigningKey), log))
		handler.New(svc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting match engine",
			"addr", cfg.Addr,
			"session_store", cfg.SessionStore,
			"audit_publishing", auditPublisher != nil,
		)
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

// buildSessionStore selects the session backend. Memory is the default and
// needs no external services; redis and postgres require their respective
// connection settings.
func buildSessionStore(ctx context.Context, cfg config.Server) (ports.SessionStore, *platformredis.Client, *pgxpool.Pool, error) {
	switch cfg.SessionStore {
	case "memory":
		return store.NewInMemory(), nil, nil, nil

	case "redis":
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		if client == nil {
			return nil, nil, nil, fmt.Errorf("SESSION_STORE=redis requires REDIS_URL")
		}
		return store.NewRedis(client), client, nil, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, nil, err
		}
		if pool == nil {
			return nil, nil, nil, fmt.Errorf("SESSION_STORE=postgres requires POSTGRES_DSN")
		}
		pgStore := store.NewPostgres(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return pgStore, nil, pool, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

// buildAuditPublisher assembles the audit fan-out: the Kafka ledger when
// brokers are configured, plus the durable Postgres outbox when a DSN is
// set. Either side may be absent; nil means log-only auditing.
func buildAuditPublisher(ctx context.Context, cfg config.Server, log *slog.Logger) (ports.AuditPublisher, func(), error) {
	var sinks []audit.Publisher

	if len(cfg.Audit.Brokers) > 0 {
		kafka, err := publisher.NewKafka(ctx, cfg.Audit.Brokers, cfg.Audit.Topic, publisher.WithLogger(log))
		if err != nil {
			return nil, func() {}, err
		}
		sinks = append(sinks, kafka)
	}

	if cfg.Postgres.DSN != "" {
		outbox, err := auditpg.Open(cfg.Postgres.DSN)
		if err != nil {
			log.Warn("audit outbox unavailable, continuing without it", "error", err)
		} else {
			sinks = append(sinks, audit.PublisherFromStore(outbox))
		}
	}

	fanout := audit.NewFanout(sinks...)
	if fanout == nil {
		return nil, func() {}, nil
	}
	return fanout, func() { _ = fanout.Close() }, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"aegis/internal/audit"
	auditmetrics "aegis/internal/audit/metrics"
	"aegis/internal/authz"
	authzmetrics "aegis/internal/authz/metrics"
	"aegis/internal/identity"
	"aegis/internal/password"
	"aegis/internal/platform/config"
	"aegis/internal/platform/httpserver"
	"aegis/internal/platform/logger"
	"aegis/internal/platform/metrics"
	"aegis/internal/platform/middleware"
	platformredis "aegis/internal/platform/redis"
	"aegis/internal/resource"
	"aegis/internal/token"
	httptransport "aegis/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "aegis: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		// Config failures are security events. The buffer has not started,
		// so write through a synchronous stderr pipeline before exiting.
		bootAudit := audit.New(audit.NewStderrSink(), audit.WithLogger(log))
		bootAudit.ConfigurationError(ctx, err.Error())
		bootAudit.Flush(ctx)
		return err
	}

	var pool *pgxpool.Pool
	if cfg.PostgresURL != "" {
		pool, err = pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
	}

	sink, closeSink, err := buildSink(ctx, cfg, pool)
	if err != nil {
		return fmt.Errorf("build audit sink: %w", err)
	}
	defer closeSink()

	auditLog := audit.New(sink,
		audit.WithLogger(log),
		audit.WithMetrics(auditmetrics.New()),
		audit.WithBufferSize(cfg.AuditBufferSize),
	)

	passwords := password.New(password.WithLogger(log))
	tokens := token.New(cfg.SigningSecret, cfg.AccessTTL, cfg.RefreshTTL)

	var users identity.Store
	var resources resource.Store
	if pool != nil {
		users = identity.NewPostgresStore(pool)
		resources = resource.NewPostgresStore(pool)
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		users = identity.NewMemoryStore()
		resources = resource.NewMemoryStore()
	}

	identitySvc := identity.NewService(users, passwords, tokens, auditLog, cfg.AccessTTL,
		identity.WithLogger(log))
	engine := authz.NewEngine(auditLog,
		authz.WithLogger(log),
		authz.WithMetrics(authzmetrics.New()))

	httpMetrics := metrics.New()
	guard := middleware.NewAuth(subjectResolver{identitySvc, tokens}, auditLog, httpMetrics)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:           httptransport.NewAuthHandler(identitySvc, tokens),
		Resources:      httptransport.NewResourceHandler(resources, engine),
		Guard:          guard,
		LoginRateLimit: 20,
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return auditLog.Run(groupCtx)
	})

	group.Go(func() error {
		log.Info("starting aegis", "addr", cfg.Addr, "hardened", cfg.Hardened, "audit_sink", cfg.AuditSink)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	// Drain whatever the worker had not flushed when its context ended.
	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	auditLog.Flush(flushCtx)

	log.Info("aegis stopped", "audit_dropped", auditLog.Dropped())
	return nil
}

// buildSink selects the audit destination from config. The returned closer is
// always safe to call.
func buildSink(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (audit.Sink, func(), error) {
	noop := func() {}
	switch cfg.AuditSink {
	case "stderr":
		return audit.NewStderrSink(), noop, nil
	case "redis":
		client, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		if client == nil {
			return nil, noop, errors.New("audit sink redis requires AEGIS_REDIS_URL")
		}
		return audit.NewRedisSink(client, cfg.RedisStream), func() { _ = client.Close() }, nil
	case "kafka":
		sink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, noop, err
		}
		return sink, sink.Close, nil
	case "postgres":
		if pool == nil {
			return nil, noop, errors.New("audit sink postgres requires AEGIS_POSTGRES_URL")
		}
		return audit.NewPostgresSink(pool), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown audit sink %q", cfg.AuditSink)
	}
}

// subjectResolver pairs the token and identity services behind the auth
// middleware's single-interface view.
type subjectResolver struct {
	identity *identity.Service
	tokens   *token.Service
}

func (r subjectResolver) ExtractSubject(accessToken string) (string, error) {
	return r.tokens.ExtractSubject(accessToken)
}

func (r subjectResolver) ResolvePrincipal(ctx context.Context, subjectID string) (authz.Principal, error) {
	return r.identity.ResolvePrincipal(ctx, subjectID)
}

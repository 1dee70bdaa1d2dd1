// Command copilotd runs the mutation preview/commit service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/railplan/copilot/internal/actions"
	"github.com/railplan/copilot/internal/api"
	"github.com/railplan/copilot/internal/config"
	"github.com/railplan/copilot/internal/db"
	"github.com/railplan/copilot/internal/engine"
	"github.com/railplan/copilot/internal/interpret"
	"github.com/railplan/copilot/internal/pending"
	"github.com/railplan/copilot/internal/policy"
	"github.com/railplan/copilot/internal/store"
	"github.com/railplan/copilot/internal/ws"
)

// Build-time variable set via ldflags.
var version = "0.1.0"

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Audit sink: Postgres when configured, structured log otherwise.
	var auditor engine.Auditor = &engine.LogAuditor{Log: log}
	var auditReader api.AuditReader
	var pool *pgxpool.Pool
	if cfg.DatabaseURL.Value() != "" {
		pool, err = db.Connect(ctx, cfg.DatabaseURL.Value())
		if err != nil {
			log.WithError(err).Fatal("connecting to database")
		}
		defer pool.Close()
		if err := db.RunMigrations(ctx, pool, log, db.Migrations()); err != nil {
			log.WithError(err).Fatal("running migrations")
		}
		auditStore := store.NewAuditStore(pool, log)
		auditor = auditStore
		auditReader = auditStore
	} else {
		log.Warn("DATABASE_URL not set, audit sink degrades to log-only")
	}
	auditWorker := engine.NewAuditWorker(auditor, log, cfg.AuditQueueSize)

	rolePolicy, err := policy.Parse(cfg.RolePolicy)
	if err != nil {
		log.WithError(err).Fatal("parsing ROLE_POLICY")
	}

	resources := store.NewResourceStore()
	dispatcher := actions.NewDispatcher(rolePolicy, log)
	previews := pending.NewPreviewStore(cfg.PreviewTTL)
	clarifications := pending.NewClarificationStore(cfg.ClarificationTTL)
	hub := ws.NewHub(log)

	var interpreter engine.Interpreter
	if cfg.InterpreterURL != "" {
		interpreter = interpret.NewClient(cfg.InterpreterURL, cfg.InterpreterModel)
	}

	eng := engine.New(resources, dispatcher, previews, clarifications, log, engine.Options{
		Interpreter: interpreter,
		Hub:         hub,
		Audit:       auditWorker,
	})

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Engine:      eng,
		Hub:         hub,
		Pool:        pool,
		Audit:       auditReader,
		CORSOrigins: cfg.CORSOrigins,
		Version:     version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		auditWorker.Run(gctx)
		return nil
	})

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.WithField("addr", cfg.Addr()).Info("copilotd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("shutdown with error")
		os.Exit(1)
	}
	log.Info("copilotd stopped")
}

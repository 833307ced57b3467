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

	"memes/internal/catalog"
	"memes/internal/config"
	"memes/internal/db"
	httpx "memes/internal/http"
	"memes/internal/http/handler"
	"memes/internal/jobs"
	"memes/internal/logging"
	"memes/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.Production())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	gdb, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			log.Warn("close postgres", zap.Error(err))
		}
	}()
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	m := metrics.New()

	reader := &catalog.Reader{DB: gdb}
	ledger := &catalog.Ledger{DB: gdb, Log: log, Observer: m, MaxRetries: cfg.ToggleMaxRetries}
	writer := &catalog.Writer{DB: gdb, Log: log, Observer: m}
	jobsRepo := &jobs.Repo{DB: gdb}

	r := httpx.NewRouter(cfg, httpx.Deps{
		Memes: &handler.MemeHandler{
			Reader:  reader,
			Ledger:  ledger,
			Writer:  writer,
			SeedSet: catalog.DefaultSeed(),
			Log:     log,
		},
		Admin:   &handler.AdminHandler{Jobs: jobsRepo, Log: log},
		Metrics: m.Handler(),
		Status:  m,
		Log:     log,
	})

	worker := &jobs.Worker{
		ID:           "worker-" + uuid.NewString(),
		Queue:        jobsRepo,
		Reconciler:   ledger,
		Log:          log,
		Observer:     m,
		PollInterval: cfg.WorkerPollInterval,
	}
	scheduler := &jobs.Scheduler{Queue: jobsRepo, Interval: cfg.ReconcileInterval, Log: log}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("stopped")
	return err
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jakeh134/motionflow/handler"
	"github.com/jakeh134/motionflow/service"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func runServe(configPath string) error {
	cfg, err := loadConfig(configPath, false)
	if err != nil {
		return codeError(2, "failed to load config: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		return codeError(2, "invalid config: %s", err)
	}
	slog.Info("configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	// Workers stop after Shutdown drains requests, not on the signal.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	intake, pool, err := a.intake(workerCtx)
	if err != nil {
		return fmt.Errorf("failed to initialize document storage: %w", err)
	}
	defer pool.Stop()

	revocations, err := service.NewRevocationStore(&cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	if r, ok := revocations.(*service.RedisRevocations); ok {
		defer r.Close()
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.Deps{
		Config:      cfg,
		Motions:     a.motions,
		Dashboards:  a.dashboards,
		Intake:      intake,
		MotionStore: a.motionStore,
		Batches:     a.batches,
		Revocations: revocations,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down server...")

	if err := drain(srv, pool, stopWorkers, time.Duration(cfg.Server.ShutdownSeconds)*time.Second); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited gracefully")
	return nil
}

// drain stops accepting requests, waits for in-flight ones, then runs the
// queued intake jobs. Workers are cancelled once timeout elapses.
func drain(srv *http.Server, pool *service.WorkerPool, stopWorkers context.CancelFunc, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := srv.Shutdown(ctx)

	stop := context.AfterFunc(ctx, stopWorkers)
	defer stop()
	pool.Stop()
	stopWorkers()
	return err
}

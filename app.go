package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/jakeh134/motionflow/config"
	"github.com/jakeh134/motionflow/pkg/logger"
	"github.com/jakeh134/motionflow/service"
	"github.com/jakeh134/motionflow/workflow"
)

// demoPassword is the password of the built-in demo clerks, used only when
// the config lists no users and seeding is on.
const demoPassword = "motionflow"

// app holds the wired services shared by the serve and export commands.
type app struct {
	cfg         *config.Config
	motionStore *service.MotionStore
	batches     *service.BatchStore
	motions     *service.MotionService
	dashboards  *service.DashboardService
}

// loadConfig reads path. A missing file is allowed when allowMissing is set
// and yields the defaults with demo data.
func loadConfig(path string, allowMissing bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if !allowMissing || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = &config.Config{Store: config.StoreConfig{Seed: true}}
		cfg.ApplyDefaults()
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	if cfg.Store.Seed && len(cfg.Users) == 0 {
		slog.Warn("no users configured, enabling demo clerks")
		cfg.Users = service.DemoUsers(demoPassword)
	}
	return cfg, nil
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{
		cfg:         cfg,
		motionStore: service.NewMotionStore(&cfg.Store),
		batches:     service.NewBatchStore(),
	}
	if cfg.Store.Seed {
		if err := service.Seed(a.motionStore, a.batches); err != nil {
			return nil, err
		}
		slog.Info("demo data loaded", "motions", a.motionStore.Count())
	}

	validator := workflow.NewValidator(cfg.Review.ConfidenceThreshold, workflow.NewSchemaRegistry())
	a.motions = service.NewMotionService(a.motionStore, validator)
	a.dashboards = service.NewDashboardService(a.motions)
	return a, nil
}

// intake wires the upload pipeline. The pool runs until ctx is cancelled.
func (a *app) intake(ctx context.Context) (*service.IntakeService, *service.WorkerPool, error) {
	storage, err := service.NewDocumentStorage(ctx, &a.cfg.Minio)
	if err != nil {
		return nil, nil, err
	}

	a.motions.WithStorage(storage)

	pool := service.NewWorkerPool(a.cfg.Intake.Workers)
	pool.Start(ctx)

	extractor := service.NewMockExtractor(a.cfg.Intake.ExtractDelay)
	svc := service.NewIntakeService(&a.cfg.Intake, storage, extractor, pool,
		a.motionStore, a.batches, a.motions.Validator().Schemas)
	return svc, pool, nil
}

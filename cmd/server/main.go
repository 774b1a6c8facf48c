package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/app"
	"github.com/mamadbah2/herdsync/internal/config"
	"github.com/mamadbah2/herdsync/internal/notify"
	"github.com/mamadbah2/herdsync/internal/repository/sheets"
	"github.com/mamadbah2/herdsync/internal/scheduler"
	"github.com/mamadbah2/herdsync/internal/server/handlers"
	"github.com/mamadbah2/herdsync/internal/server/router"
	"github.com/mamadbah2/herdsync/pkg/clients/webhook"
	"github.com/mamadbah2/herdsync/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	core, err := app.New(ctx, *cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to initialize app", zap.Error(err))
	}
	defer func() {
		if err := core.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close repository", zap.Error(err))
		}
	}()

	schedOpts := scheduler.Options{
		Reconciler: core.Reconciler,
		Summarizer: core.Reporting,
		Lock:       core,
		Location:   core.Location,
	}

	if cfg.Webhook.Enabled() {
		client := webhook.NewClient(cfg.Webhook)
		forwarder := notify.NewForwarder(client, 0, baseLogger.Named("notify"))
		unsubscribe := forwarder.Subscribe(core.Bus)
		forwarder.Start()
		defer func() {
			unsubscribe()
			forwarder.Stop()
		}()
		schedOpts.Webhook = client
		baseLogger.Info("webhook notifications enabled")
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		schedOpts.Sheet = sheetsRepo
		baseLogger.Info("sheets export enabled")
	}

	sched := scheduler.NewScheduler(cfg.Scheduler, schedOpts, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	gin.SetMode(gin.ReleaseMode)
	handler := handlers.NewHandler(handlers.Services{
		Herds:      core.Herds,
		Goals:      core.Goals,
		Records:    core.Records,
		Plans:      core.Plans,
		Statistics: core.Statistics,
		Reconciler: core.Reconciler,
		Reset:      core.Maintenance,
		Commands:   core.Commands,
	}, core.Location, baseLogger.Named("handlers"))
	engine := router.New(handler, core, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

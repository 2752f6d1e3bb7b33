package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/config"
	"github.com/jobh/imoveis/internal/repository"
	"github.com/jobh/imoveis/internal/repository/drive"
	"github.com/jobh/imoveis/internal/repository/memory"
	"github.com/jobh/imoveis/internal/repository/mongodb"
	"github.com/jobh/imoveis/internal/repository/sheets"
	"github.com/jobh/imoveis/internal/scheduler"
	"github.com/jobh/imoveis/internal/server/handlers"
	"github.com/jobh/imoveis/internal/server/router"
	assistantsvc "github.com/jobh/imoveis/internal/service/assistant"
	backupsvc "github.com/jobh/imoveis/internal/service/backup"
	commandsvc "github.com/jobh/imoveis/internal/service/commands"
	occurrencesvc "github.com/jobh/imoveis/internal/service/occurrences"
	rentalsvc "github.com/jobh/imoveis/internal/service/rentals"
	reportingsvc "github.com/jobh/imoveis/internal/service/reporting"
	whatsappsvc "github.com/jobh/imoveis/internal/service/whatsapp"
	"github.com/jobh/imoveis/pkg/clients/openrouter"
	whatsappclient "github.com/jobh/imoveis/pkg/clients/whatsapp"
	"github.com/jobh/imoveis/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	// amounts go out as JSON numbers for the web client
	decimal.MarshalJSONWithoutQuotes = true

	loc, err := cfg.Schedule.Location()
	if err != nil {
		baseLogger.Fatal("failed to load timezone", zap.Error(err))
	}

	ctx := context.Background()

	var store repository.Store
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoRepo
	} else {
		baseLogger.Warn("MONGODB_URI missing, state is kept in memory")
		store = memory.NewStore()
	}

	var sheetWriter reportingsvc.SheetWriter
	if cfg.Google.SheetsEnabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Google, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetWriter = sheetsRepo
	}

	var driveStore backupsvc.FileStore
	if cfg.Google.DriveEnabled() {
		driveRepo, err := drive.NewGoogleDriveRepository(ctx, cfg.Google, baseLogger.Named("repo.drive"))
		if err != nil {
			baseLogger.Fatal("failed to init drive repository", zap.Error(err))
		}
		driveStore = driveRepo
	}

	var aiClient openrouter.Client
	if cfg.AI.Enabled() {
		aiClient = openrouter.NewClient(cfg.AI.OpenRouterKey, cfg.AI.Model)
		baseLogger.Info("assistant enabled")
	} else {
		baseLogger.Warn("OPENROUTER_API_KEY missing, assistant disabled")
	}

	rentalSvc := rentalsvc.NewService(store, baseLogger.Named("svc.rentals"))
	reportingSvc := reportingsvc.NewService(store, sheetWriter, cfg.Company, loc, baseLogger.Named("svc.reporting"))
	occurrenceSvc := occurrencesvc.NewService(store, baseLogger.Named("svc.occurrences"))
	backupSvc := backupsvc.NewService(store, driveStore, cfg.Google.DriveFileName, baseLogger.Named("svc.backup"))
	assistantSvc := assistantsvc.NewService(aiClient, reportingSvc, occurrenceSvc, baseLogger.Named("svc.assistant"))
	commandDispatcher := commandsvc.NewService(rentalSvc, reportingSvc, loc, baseLogger.Named("svc.commands"))

	whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
	messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, assistantSvc, baseLogger.Named("svc.whatsapp"))

	engine := router.New(router.Handlers{
		Rentals:     handlers.NewRentalsHandler(rentalSvc, baseLogger.Named("handlers.rentals")),
		Periods:     handlers.NewPeriodsHandler(rentalSvc, reportingSvc, loc, baseLogger.Named("handlers.periods")),
		Documents:   handlers.NewDocumentsHandler(reportingSvc, baseLogger.Named("handlers.documents")),
		Occurrences: handlers.NewOccurrencesHandler(occurrenceSvc, baseLogger.Named("handlers.occurrences")),
		Backup:      handlers.NewBackupHandler(backupSvc, reportingSvc, baseLogger.Named("handlers.backup")),
		Assistant:   handlers.NewAssistantHandler(assistantSvc, messagingSvc, baseLogger.Named("handlers.assistant")),
		Webhook:     handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp")),
	}, baseLogger.Named("router"))

	var backuper scheduler.Backuper
	if driveStore != nil {
		backuper = backupSvc
	}
	var sender scheduler.Sender
	if cfg.WhatsApp.Enabled() {
		sender = messagingSvc
	}
	sched, err := scheduler.NewScheduler(*cfg, backuper, reportingSvc, rentalSvc, sender, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-sigCtx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

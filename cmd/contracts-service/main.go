package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nats-io/nats.go"

	"github.com/nurpe/contract-workflow/internal/audit"
	"github.com/nurpe/contract-workflow/internal/auth"
	"github.com/nurpe/contract-workflow/internal/config"
	"github.com/nurpe/contract-workflow/internal/db"
	"github.com/nurpe/contract-workflow/internal/excel"
	httphandler "github.com/nurpe/contract-workflow/internal/http"
	"github.com/nurpe/contract-workflow/internal/http/middleware"
	"github.com/nurpe/contract-workflow/internal/logger"
	"github.com/nurpe/contract-workflow/internal/notify"
	"github.com/nurpe/contract-workflow/internal/pdf"
	"github.com/nurpe/contract-workflow/internal/repository"
	"github.com/nurpe/contract-workflow/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	userRepo := repository.NewUserRepository(database)
	mappingRepo := repository.NewMappingRepository(database)
	contractRepo := repository.NewContractRepository(database)
	auditRepo := repository.NewAuditRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)

	recorder := audit.NewRecorder(auditRepo, log, cfg.Audit.BufferSize)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go recorder.Run(ctx)

	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		nc, err = notify.Connect(cfg.NATS.URL)
		if err != nil {
			log.Warn().Err(err).Msg("NATS unavailable, notification publishing disabled")
			nc = nil
		}
	}
	notifier := notify.New(notificationRepo, nc, cfg.NATS.SubjectPrefix, log)

	mappingService := service.NewMappingService(mappingRepo, userRepo, recorder)
	workflowService := service.NewWorkflowService(contractRepo, mappingService, userRepo, recorder, notifier, log)
	queryService := service.NewQueryService(contractRepo, mappingRepo, userRepo, auditRepo, notificationRepo)
	userService := service.NewUserService(userRepo, recorder)

	exportService := service.NewExportService(queryService, workflowService, userRepo, excel.NewGenerator(), pdf.NewGenerator())

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(workflowService, mappingService, queryService, userService, exportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

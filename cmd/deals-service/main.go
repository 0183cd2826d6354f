package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/auth"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/config"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/db"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/excel"
	httphandler "github.com/innotechjsc-company/hanotexapp-sub006/internal/http"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/http/middleware"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/logger"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/notify"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/pdf"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/repository"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/service"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/storage"
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	fileStore, err := storage.NewMinioStore(ctx, cfg.Minio)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init file store")
	}

	notifier := notify.NewRedisNotifier(cfg.Redis)
	defer notifier.Close()

	catalogRepo := repository.NewCatalogRepository(database)
	proposalRepo := repository.NewProposalRepository(database)
	negotiationRepo := repository.NewNegotiationRepository(database)
	offerRepo := repository.NewOfferRepository(database)
	contractRepo := repository.NewContractRepository(database)
	stepRepo := repository.NewContractStepRepository(database)
	logRepo := repository.NewContractLogRepository(database)

	coverSheet := pdf.NewGenerator()
	register := excel.NewGenerator()

	synchronizer := service.NewSynchronizer(contractRepo, proposalRepo, logRepo, log)
	proposalService := service.NewProposalService(proposalRepo, negotiationRepo, offerRepo, catalogRepo, notifier, log)
	negotiationService := service.NewNegotiationService(
		proposalRepo, negotiationRepo, offerRepo, contractRepo, catalogRepo, coverSheet, fileStore, notifier, log,
	)
	stepService := service.NewContractStepService(stepRepo, contractRepo, synchronizer, notifier, log)
	logService := service.NewContractLogService(logRepo, proposalRepo, contractRepo, notifier, log)
	contractService := service.NewContractService(contractRepo, catalogRepo, register, fileStore, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(
		proposalService, negotiationService, stepService, logService, contractService, log,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting deals service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

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
	"golang.org/x/sync/errgroup"

	"github.com/yerassyl04/rhythm-duel/config"
	"github.com/yerassyl04/rhythm-duel/db"
	"github.com/yerassyl04/rhythm-duel/handlers"
	"github.com/yerassyl04/rhythm-duel/live"
	"github.com/yerassyl04/rhythm-duel/repositories"
	api "github.com/yerassyl04/rhythm-duel/routes"
	"github.com/yerassyl04/rhythm-duel/services"
	"github.com/yerassyl04/rhythm-duel/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 not configured, media upload endpoints disabled")
	}

	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("websocket hub started")

	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	songRepo := repositories.NewPostgresSongRepository(dbConn)
	scheduleRepo := repositories.NewPostgresScheduleRepository(dbConn)
	staffRepo := repositories.NewPostgresStaffRepository(dbConn)
	historyRepo := repositories.NewPostgresHistoryRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(staffRepo, cfg.JWTSecretKey)
	teamService := services.NewTeamService(teamRepo, playerRepo, uploader)
	songService := services.NewSongService(songRepo, uploader)
	scheduleService := services.NewScheduleService(scheduleRepo, teamRepo, playerRepo)
	matchService := services.NewMatchService(scheduleRepo, songRepo, historyRepo, wsHub, logger, nil)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService)
	teamHandler := handlers.NewTeamHandler(teamService)
	songHandler := handlers.NewSongHandler(songService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	matchHandler := handlers.NewMatchHandler(matchService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authHandler,
		teamHandler,
		songHandler,
		scheduleHandler,
		matchHandler,
		webSocketHandler,
		cfg.JWTSecretKey,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			return server.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

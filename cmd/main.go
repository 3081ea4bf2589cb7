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

	"github.com/Dosada05/rps-arena/config"
	"github.com/Dosada05/rps-arena/db"
	"github.com/Dosada05/rps-arena/game"
	"github.com/Dosada05/rps-arena/handlers"
	"github.com/Dosada05/rps-arena/repositories"
	"github.com/Dosada05/rps-arena/routes"
	"github.com/Dosada05/rps-arena/services"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelMigrate()
	if err := db.Migrate(migrateCtx, dbConn); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema is up to date")

	// WebSocket Hub
	wsHub := game.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Репозитории
	txManager := repositories.NewSQLTxManager(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	tournamentPlayerRepo := repositories.NewPostgresTournamentPlayerRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	roomRepo := repositories.NewPostgresRoomRepository(dbConn)
	roomPlayerRepo := repositories.NewPostgresRoomPlayerRepository(dbConn)
	turnRepo := repositories.NewPostgresTurnRepository(dbConn)
	giveawayRepo := repositories.NewPostgresGiveawayRepository(dbConn)
	logger.Info("repositories initialized")

	// Сервисы
	authService := services.NewAuthService([]byte(cfg.AdminPasswordHash), []byte(cfg.JWTSecretKey))
	pointsService := services.NewPointsService(playerRepo)
	tournamentService := services.NewTournamentService(txManager, tournamentRepo, tournamentPlayerRepo)
	roundService := services.NewRoundService(txManager, tournamentPlayerRepo, roundRepo, standingRepo, matchRepo, game.NewShuffler())
	matchService := services.NewMatchService(txManager, tournamentPlayerRepo, matchRepo, standingRepo, wsHub, logger)
	roomService := services.NewRoomService(txManager, roomRepo, roomPlayerRepo, turnRepo, wsHub, logger)
	giveawayService := services.NewGiveawayService(giveawayRepo)
	logger.Info("services initialized")

	// HTTP-обработчики и маршруты
	router := routes.InitRoutes(routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Points:     handlers.NewPointsHandler(pointsService),
		Tournament: handlers.NewTournamentHandler(tournamentService, roundService, matchService),
		Room:       handlers.NewRoomHandler(roomService),
		Giveaway:   handlers.NewGiveawayHandler(giveawayService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub),
	}, []byte(cfg.JWTSecretKey))
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shut down gracefully")
		}
	}
}

package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tickytakatoe/tickytakatoe-backend/internal/config"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/realtime"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/repository"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/repository/storage"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/service"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/store"
	"github.com/tickytakatoe/tickytakatoe-backend/transport/rest"
	"github.com/tickytakatoe/tickytakatoe-backend/transport/websocket"
)

var (
	ErrAddrNotFound   = errors.New("redis address string is empty")
	ErrSecretNotFound = errors.New("jwt secret key is empty")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	if conf.JWTSecretKey == "" {
		return ErrSecretNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	gameRepo := repository.NewGameRepository(redisStorage.Connection)
	sessionRepo := repository.NewSessionRepository(sqliteStorage.Connection)

	gameStore := store.New(gameRepo)
	if err = gameStore.Load(ctx); err != nil {
		return fmt.Errorf("could not load games: %w", err)
	}

	tokenService := service.NewTokenService(conf.JWTSecretKey)
	sessionService := service.NewSessionService(logger, sessionRepo, tokenService)
	gameService := service.NewGameService(logger, gameStore)

	hub := realtime.NewHub(logger)

	socketServer := websocket.New(logger, hub, gameStore)
	handlers := rest.NewHandlers(logger, gameService, sessionService, hub)
	server := rest.NewServer(conf.HTTPPort, handlers, socketServer.Handler())

	log.Info("Starting HTTP server", "port", conf.HTTPPort)

	if err = server.Start(ctx); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

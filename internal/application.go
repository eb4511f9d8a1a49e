package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pixelhall/pixelhall-backend/internal/broadcast"
	"github.com/pixelhall/pixelhall-backend/internal/config"
	"github.com/pixelhall/pixelhall-backend/internal/repository"
	"github.com/pixelhall/pixelhall-backend/internal/repository/storage"
	"github.com/pixelhall/pixelhall-backend/internal/usecase"
	"github.com/pixelhall/pixelhall-backend/transport/rest"
	"github.com/pixelhall/pixelhall-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

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

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	roomRepo := repository.NewRoomRepository(redisStorage.Connection)
	inventoryRepo := repository.NewInventoryRepository(redisStorage.Connection)

	broadcaster := broadcast.New(logger)
	sessions := usecase.NewSessionManager(logger)
	rooms := usecase.NewRoomManager(logger, sessions, roomRepo, inventoryRepo, broadcaster)
	matches := usecase.NewMatchManager(logger, rooms, sessions, broadcaster)

	if err = rooms.Bootstrap(ctx); err != nil {
		return fmt.Errorf("could not bootstrap rooms: %w", err)
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(conf.HTTPPort, rooms); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, sessions, rooms, matches, broadcaster)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

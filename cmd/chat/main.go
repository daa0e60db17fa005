package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"reinai/internal/chat"
	"reinai/internal/config"
	"reinai/internal/database"
	"reinai/internal/logging"
	"reinai/internal/repository"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the wired client: config, store and the session manager on top.
type app struct {
	cfg     *config.ClientConfig
	logger  *slog.Logger
	manager *chat.Manager
	closers []io.Closer
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}

	logger, logCloser := logging.New(cfg.LogFile, cfg.LogLevel)
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	store, err := a.openStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	relay := chat.NewRelayClient(cfg.RelayURL, nil)
	a.manager = chat.NewManager(store, relay, chat.WithLogger(logger))
	if err := a.manager.Init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openStore() (chat.Store, error) {
	switch a.cfg.Store {
	case config.StoreRedis:
		rdb, err := database.NewRedisClient(a.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb)
		return repository.NewSessionRedisRepo(rdb, a.cfg.ClientID), nil

	case config.StorePostgres:
		pool, err := database.NewPostgresPool(a.cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closerFunc(func() error { pool.Close(); return nil }))
		if err := database.RunMigrations(pool, database.Migrations, "migrations"); err != nil {
			return nil, fmt.Errorf("database migration failed: %w", err)
		}
		return repository.NewSessionRepo(pool, a.cfg.ClientID), nil

	default:
		repo, err := repository.NewSessionBoltRepo(a.cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo)
		return repo, nil
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

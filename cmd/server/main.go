package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/questlabs/roomquest/internal/catalog"
	"github.com/questlabs/roomquest/internal/config"
	"github.com/questlabs/roomquest/internal/database"
	"github.com/questlabs/roomquest/internal/game"
	"github.com/questlabs/roomquest/internal/kvstore"
	"github.com/questlabs/roomquest/internal/migrations"
	"github.com/questlabs/roomquest/internal/quiz"
	"github.com/questlabs/roomquest/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- World catalog ---
	cat, err := loadCatalog(cfg.WorldPack)
	if err != nil {
		return fmt.Errorf("loading world: %w", err)
	}
	logger.Info("world loaded",
		"rooms", cat.RoomCount(),
		"questions", cat.QuestionCount(),
		"categories", len(cat.Categories()),
	)

	// --- Game session ---
	store := kvstore.New(db)
	sess := game.New(ctx, cat, store, logger, quiz.WithTimeLimit(cfg.QuestionTimeLimit))
	defer sess.Close()

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, sess, db, cfg.SPADir)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func loadCatalog(packPath string) (*catalog.Catalog, error) {
	if packPath == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadPack(packPath)
}

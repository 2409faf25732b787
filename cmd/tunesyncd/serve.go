package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/harmonie-studio/tunesync/internal/catalog"
	"github.com/harmonie-studio/tunesync/internal/config"
	"github.com/harmonie-studio/tunesync/internal/domain/match"
	syncdomain "github.com/harmonie-studio/tunesync/internal/domain/sync"
	"github.com/harmonie-studio/tunesync/internal/sqlite"
	"github.com/harmonie-studio/tunesync/internal/transport"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the sync service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: parseLogLevel(cfg.Log.Level),
			}))

			if err := ensureDBDir(cfg.DB.Path); err != nil {
				return fmt.Errorf("preparing database path: %w", err)
			}

			// One instance per database file.
			lock := flock.New(cfg.DB.Path + ".lock")
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return errors.New("another tunesyncd instance is already using this database")
			}
			defer func() { _ = lock.Unlock() }()

			db, err := sqlite.New(cfg.DB.Path)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			if err := db.RunMigrations(); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			songRepo := sqlite.NewSongRepository(db)
			matchRepo := sqlite.NewMatchRepository(db)
			keyRepo := sqlite.NewAPIKeyRepository(db)

			registry := syncdomain.NewRegistry()
			searcher := catalog.NewClient(catalog.Config{
				BaseURL:      cfg.Catalog.BaseURL,
				TokenURL:     cfg.Catalog.TokenURL,
				ClientID:     cfg.Catalog.ClientID,
				ClientSecret: cfg.Catalog.ClientSecret,
			}, logger)

			syncSvc := syncdomain.NewService(songRepo, matchRepo, searcher, registry, syncdomain.Config{
				WorkTimeout: cfg.Sync.WorkTimeout(),
				MaxQueries:  cfg.Sync.MaxQueries,
				EventBuffer: cfg.Sync.EventBuffer,
			}, logger)
			matchSvc := match.NewService(matchRepo, songRepo, logger)

			router := transport.NewServer(syncSvc, registry, matchSvc, keyRepo, logger)

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: router,
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown error: %w", err)
				}
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

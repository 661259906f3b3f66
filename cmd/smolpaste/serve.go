package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"smolpaste/internal/blobstore"
	"smolpaste/internal/config"
	"smolpaste/internal/server"
	"smolpaste/internal/store"
)

func newServeCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the paste server (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), state.cfg)
		},
	}
}

// runServe brings up the storage directory, the database and the listener
// in that order. Any failure before serving is returned to the caller.
func runServe(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default().With("component", "server")

	blobs, err := blobstore.NewLocalDir(cfg.StorageDir)
	if err != nil {
		return err
	}

	logger.Info("opening database", "path", cfg.DatabaseURL)
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(server.Options{
		Store:             st,
		Blobs:             blobs,
		BaseURL:           cfg.BaseURL,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		AllowedExtensions: cfg.AllowedExtensions,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	logger.Info("serving pastes", "storage_dir", blobs.Root(), "base_url", cfg.BaseURL)
	return srv.Serve(ctx, ln)
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required")
	}
	return store.OpenWithOptions(ctx, cfg.DatabaseURL, store.Options{})
}

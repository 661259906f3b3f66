package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"smolpaste/internal/blobstore"
	"smolpaste/internal/models"
	"smolpaste/internal/store"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Store             store.PasteStore
	Blobs             blobstore.BlobStore
	BaseURL           string
	MaxUploadBytes    int64
	AllowedExtensions []string
	Logger            *slog.Logger
}

// Server serves the paste routes. It is immutable after New.
type Server struct {
	store             store.PasteStore
	blobs             blobstore.BlobStore
	auth              *AuthService
	baseURL           string
	maxUploadBytes    int64
	allowedExtensions []string
	logger            *slog.Logger
	clock             func() time.Time
}

// New creates a new server instance.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.Blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if opts.MaxUploadBytes <= 0 || opts.MaxUploadBytes > models.MaxPasteSize {
		opts.MaxUploadBytes = models.MaxPasteSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Server{
		store:             opts.Store,
		blobs:             opts.Blobs,
		auth:              NewAuthService(opts.Store),
		baseURL:           opts.BaseURL,
		maxUploadBytes:    opts.MaxUploadBytes,
		allowedExtensions: append([]string(nil), opts.AllowedExtensions...),
		logger:            opts.Logger,
	}, nil
}

// Handler returns the fully wrapped route tree.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests. Request bodies have no read deadline so large uploads
// are bounded only by MaxUploadBytes.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.log().Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log().Info("starting server", "addr", ln.Addr().String())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

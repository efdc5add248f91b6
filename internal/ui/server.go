// Package ui provides the HTTP server for the live editing session.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapgrid/internal/session"
	"github.com/leapstack-labs/leapgrid/internal/ui/features/editor"
	"github.com/leapstack-labs/leapgrid/internal/ui/features/history"
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/internal/versions"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Config holds server configuration.
type Config struct {
	// Addr is the address to listen on (e.g. "localhost:8765").
	Addr string
	// VersionDir is watched for external changes to version files.
	VersionDir string
	// Logger receives request and lifecycle logs. nil disables logging.
	Logger *slog.Logger
}

// Server hosts the editing session: the document API, the version
// history API, and the background auto-saver, all sharing one session.
type Server struct {
	config   Config
	sess     *session.Session
	saver    *versions.AutoSaver
	state    core.SettingsStore
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewServer creates a new UI server.
func NewServer(config Config, sess *session.Session, saver *versions.AutoSaver, state core.SettingsStore) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		config:   config,
		sess:     sess,
		saver:    saver,
		state:    state,
		notifier: notifier.New(),
		logger:   logger,
	}
}

// Notifier returns the server's broadcast notifier so callers can wire
// external events (like auto-save completions) into the SSE streams.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	editorHandlers := editor.NewHandlers(s.sess, s.notifier, s.logger)
	historyHandlers := history.NewHandlers(s.sess, s.saver, s.state, s.notifier, s.logger)

	r.Route("/api", func(api chi.Router) {
		api.Group(editorHandlers.Routes)
		api.Group(historyHandlers.Routes)
	})

	return r
}

// Serve runs the HTTP server, the auto-saver, and the version
// directory watcher until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		s.logger.Info("ui server listening", "addr", s.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		s.saver.Run(egctx)
		return nil
	})

	eg.Go(func() error {
		return s.watchVersions(egctx)
	})

	return eg.Wait()
}

// watchVersions pushes a notifier ping when version files change on
// disk outside this process. Events are debounced so a burst of writes
// produces a single refresh.
func (s *Server) watchVersions(ctx context.Context) error {
	if s.config.VersionDir == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.config.VersionDir); err != nil {
		// The directory may not exist yet; the UI still works, it
		// just won't see external changes.
		s.logger.Warn("failed to watch version directory", "dir", s.config.VersionDir, "error", err)
		<-ctx.Done()
		return nil
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isVersionFile(event.Name) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("version directory changed", "file", event.Name)
				s.notifier.Broadcast()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("file watcher error", "error", err)
		}
	}
}

func isVersionFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".grid":
		return true
	}
	return false
}

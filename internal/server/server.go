// Package server is the HTTP property sheet editor. It renders the sheet for
// the store selection, moves the selection and accepts property drafts, and
// exposes the loaded models as JSON and OpenAPI.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-modelsheet/pkg/orchestrator"
	"github.com/goliatone/go-modelsheet/pkg/renderers/vanilla"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

// Store is what the editor needs from the model store: the read/update
// surface plus selection and revision control.
type Store interface {
	store.Store
	Select(key store.SelectionKey) error
	ClearSelection()
	SelectionKey() store.SelectionKey
	Revision() string
	AtRevision(revision string) store.Updater
}

// AssetsPath is where the embedded stylesheet is served.
const AssetsPath = "/assets/"

type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOrchestrator replaces the page pipeline. The default reads from the
// server store and renders with the vanilla renderer.
func WithOrchestrator(gen *orchestrator.Orchestrator) Option {
	return func(s *Server) {
		if gen != nil {
			s.gen = gen
		}
	}
}

// WithAssets serves files under AssetsPath. Pass nil to disable.
func WithAssets(files fs.FS) Option {
	return func(s *Server) {
		s.assets = files
		s.assetsSet = true
	}
}

// Server wires the HTTP routes to a store.
type Server struct {
	store     Store
	gen       *orchestrator.Orchestrator
	logger    *zap.Logger
	assets    fs.FS
	assetsSet bool
	router    chi.Router
}

// New builds the editor around st.
func New(st Store, options ...Option) (*Server, error) {
	if st == nil {
		return nil, errors.New("server: store is required")
	}
	s := &Server{store: st, logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.gen == nil {
		s.gen = orchestrator.New(orchestrator.WithReader(st), orchestrator.WithLogger(s.logger))
	}
	if !s.assetsSet {
		s.assets = vanilla.AssetsFS()
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/", s.handleSheet)

	r.Route("/selection", func(r chi.Router) {
		r.Get("/", s.handleGetSelection)
		r.Post("/", s.handleSelect)
		r.Delete("/", s.handleClearSelection)
	})

	r.Post("/namespaces/{namespace}/declarations/{declaration}/properties/{property}", s.handleSubmit)

	r.Route("/api/models", func(r chi.Router) {
		r.Get("/", s.handleListModels)
		r.Get("/{namespace}", s.handleGetModel)
		r.Get("/{namespace}/openapi", s.handleOpenAPI)
	})

	if s.assets != nil {
		r.Handle(AssetsPath+"*", http.StripPrefix(AssetsPath, http.FileServer(http.FS(s.assets))))
	}
	return r
}

// RunConfig controls the listener lifecycle.
type RunConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg RunConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// Package web provides the HTTP query surface. Handlers return only fully
// materialized results; a client never receives a live table handle.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/frameql/frameql/internal/query"
)

// Server serves the table registry over HTTP. Stores are single-writer and
// evaluation is single-threaded, so the server serializes all table access:
// handlers hold mu from lookup through materialization.
type Server struct {
	router *chi.Mux
	port   int
	engine *query.Engine
	mu     sync.Mutex
}

// NewServer creates the HTTP server around an engine.
func NewServer(port int, eng *query.Engine) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	s := &Server{
		router: r,
		port:   port,
		engine: eng,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/tables", s.handleTableList)
	s.router.Get("/tables/{name}", s.handleTable)
	s.router.Post("/query", s.handleQuery)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully,
// finishing in-flight requests.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "port", s.port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	slog.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

package backend

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jrs-engineer/gemini-router/internal/config"
	"github.com/jrs-engineer/gemini-router/pkg/backend/handlers"
	"github.com/jrs-engineer/gemini-router/pkg/backend/middleware"
	"github.com/jrs-engineer/gemini-router/pkg/gemini"
)

// Server ties the router's components together: the model client cache,
// the HTTP handlers, and the middleware chain.
type Server struct {
	settings   *config.Settings
	clients    *gemini.ClientCache
	httpServer *http.Server
	mux        *http.ServeMux
}

// NewServer creates a server from resolved settings. The client cache is
// owned by the server and lives for the process lifetime.
func NewServer(settings *config.Settings) *Server {
	s := &Server{
		settings: settings,
		clients: gemini.NewClientCache(gemini.ClientConfig{
			APIKey:  settings.Gemini.APIKey,
			BaseURL: settings.Gemini.BaseURL,
		}),
		mux: http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes registers all HTTP routes with their corresponding handlers
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.clients, s.settings)
	generateHandler := handlers.NewGenerateHandler(s.clients, s.settings)
	structuredHandler := handlers.NewStructuredHandler(s.clients, s.settings)

	s.mux.HandleFunc("/v1/health", healthHandler.Health)
	s.mux.HandleFunc("/v1/generate", generateHandler.Generate)
	s.mux.HandleFunc("/v1/structured", structuredHandler.Structured)
}

// Handler returns the fully wired handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.applyMiddleware(s.mux)
}

// Start starts the HTTP server and begins listening for requests
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.settings.Server.Host, s.settings.Server.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.Server.ReadTimeout,
		WriteTimeout: s.settings.Server.WriteTimeout,
	}

	log.Printf("Starting gemini-router on %s (default model: %s)", addr, s.settings.Gemini.DefaultModel)
	if s.settings.Auth.APIKey == "" {
		log.Printf("No ROUTER_API_KEY configured; access guard disabled")
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

// applyMiddleware builds the middleware chain and applies it to the handler
// Middleware is applied in reverse order (last applied runs first)
func (s *Server) applyMiddleware(h http.Handler) http.Handler {
	// Execution order: Recovery -> Logging -> RequestID -> CORS -> Auth -> Handler
	h = middleware.Auth(middleware.AuthConfig{
		APIKey:      s.settings.Auth.APIKey,
		PublicPaths: []string{"/v1/health"},
	})(h)

	h = middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   s.settings.CORS.AllowedOrigins,
		AllowedMethods:   s.settings.CORS.AllowedMethods,
		AllowedHeaders:   s.settings.CORS.AllowedHeaders,
		AllowCredentials: true,
	})(h)

	h = middleware.RequestID(h)
	h = middleware.Logging(h)
	h = middleware.Recovery(h)

	return h
}

// ListenAndServeWithGracefulShutdown starts the server and handles graceful
// shutdown when the given signal channel fires.
func (s *Server) ListenAndServeWithGracefulShutdown(shutdownSignal <-chan struct{}) error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-shutdownSignal:
		timeout := s.settings.Server.ShutdownTimeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return s.Shutdown(ctx)
	}
}

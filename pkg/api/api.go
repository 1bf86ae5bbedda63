package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// serverReadTimeout is the timeout for reading the full request.
const serverReadTimeout = 10 * time.Second

// serverWriteTimeout is the timeout for writing the response.
const serverWriteTimeout = 60 * time.Second

// serverIdleTimeout is the timeout for idle keep-alive connections.
const serverIdleTimeout = 120 * time.Second

// shutdownTimeout is the timeout for graceful server shutdown.
const shutdownTimeout = 5 * time.Second

// API represents the HTTP API server for HarborView.
type API struct {
	Token       string
	Addr        string // Set dynamically from flags
	hasHandlers bool
	mux         *http.ServeMux // Custom mux to avoid global collisions
	server      HTTPServer     // Optional injected server for testing
}

// New is a factory function creating a new API instance.
// The server parameter is optional and allows dependency injection for testing.
func New(token, addr string, server ...HTTPServer) *API {
	var injectedServer HTTPServer
	if len(server) > 0 {
		injectedServer = server[0]
	}

	api := &API{
		Token:       token,
		Addr:        addr,
		hasHandlers: false,
		mux:         http.NewServeMux(),
		server:      injectedServer,
	}
	logrus.WithField("addr", api.Addr).Debug("Initialized new API instance")

	return api
}

// RegisterFunc registers an HTTP handler function for the given path.
func (api *API) RegisterFunc(path string, handler func(http.ResponseWriter, *http.Request)) {
	api.mux.HandleFunc(path, handler)
	api.hasHandlers = true
}

// RegisterHandler registers an HTTP handler for the given path.
func (api *API) RegisterHandler(path string, handler http.Handler) {
	api.mux.Handle(path, handler)
	api.hasHandlers = true
}

// Start starts the HTTP API server.
// If blocking is true, it runs in the foreground and blocks until shutdown.
// If blocking is false, it runs in the background.
func (api *API) Start(ctx context.Context, blocking bool) error {
	if !api.hasHandlers {
		logrus.Info("No handlers registered, skipping API start")

		return nil
	}

	if api.Token == "" {
		logrus.Fatal("API token is empty or unset")
	}

	server := api.server
	if server == nil {
		server = &http.Server{
			Addr:              api.Addr,
			Handler:           api.mux,
			ReadTimeout:       serverReadTimeout,
			WriteTimeout:      serverWriteTimeout,
			IdleTimeout:       serverIdleTimeout,
			ReadHeaderTimeout: serverReadTimeout,
			BaseContext:       func(_ net.Listener) context.Context { return ctx },
		}
	}

	logrus.WithField("addr", api.Addr).Info("Starting HTTP API server")

	if blocking {
		return RunHTTPServer(ctx, server)
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("HTTP server failed")
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("Failed to shutdown server")
		}
	}()

	return nil
}

// RequireToken wraps a handler function with bearer token authentication.
func (api *API) RequireToken(handler func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") ||
			strings.TrimPrefix(auth, "Bearer ") != api.Token {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)

			return
		}

		handler(w, r)
	}
}

// HTTPServer interface for RunHTTPServer.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// RunHTTPServer starts the HTTP server and handles graceful shutdown.
func RunHTTPServer(ctx context.Context, server HTTPServer) error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}

		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		return nil
	}
}

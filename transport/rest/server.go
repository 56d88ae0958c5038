package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	httpServer *http.Server
}

// NewServer - builds the HTTP server with the JSON API and, when given, the
// realtime endpoint on the same port.
func NewServer(port string, handlers *Handlers, socket http.Handler) *Server {
	// No Read/WriteTimeout here: observer connections are long-lived and
	// manage their own deadlines per message.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newMux(handlers, socket),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	return &Server{httpServer: srv}
}

func newMux(handlers *Handlers, socket http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", handlers.Ping)
	mux.HandleFunc("POST /api/games", handlers.CreateGame)
	mux.HandleFunc("GET /api/games/{id}", handlers.GetGameState)
	mux.HandleFunc("POST /api/games/{id}/join", handlers.JoinGame)
	mux.HandleFunc("POST /api/games/{id}/move", handlers.MakeMove)
	mux.HandleFunc("POST /api/games/{id}/start", handlers.StartGame)

	if socket != nil {
		mux.Handle("GET /ws/games/{id}", socket)
	}

	return mux
}

// Start - serves until the context is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := that.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := that.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}

		return nil
	}
}

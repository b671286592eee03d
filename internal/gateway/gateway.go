// Package gateway is the HTTP ingress: the platform pushes updates to
// POST /updates and operators probe GET /healthz.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/voiceinsight/voiceinsight/internal/platform"
)

// UpdateHandler consumes decoded platform updates.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd *platform.Update)
}

// Pinger reports storage liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server routes inbound platform traffic to the update handler.
type Server struct {
	addr    string
	handler UpdateHandler
	pinger  Pinger
	router  chi.Router
}

// New builds the gateway with its routes registered.
func New(addr string, handler UpdateHandler, pinger Pinger) *Server {
	s := &Server{
		addr:    addr,
		handler: handler,
		pinger:  pinger,
		router:  chi.NewRouter(),
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)
	s.router.Post("/updates", s.handleUpdate)
	s.router.Get("/healthz", s.handleHealth)
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info().Str("addr", s.addr).Msg("gateway listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var upd platform.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		log.Warn().Err(err).Msg("malformed update payload")
		http.Error(w, "malformed update", http.StatusBadRequest)
		return
	}
	if upd.Message == nil && upd.Callback == nil {
		http.Error(w, "empty update", http.StatusBadRequest)
		return
	}

	// Updates from different conversations are independent; each request
	// already runs on its own goroutine, so dispatch inline. The handler
	// must not use the request context: the platform only needs the ack.
	s.handler.HandleUpdate(context.WithoutCancel(r.Context()), &upd)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed")
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

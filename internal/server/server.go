// Package server exposes a service.Service over HTTP: a JSON API, a
// websocket feed of list changes and the embedded browser page.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"todont/internal/service"
)

//go:embed web/index.html
var indexHTML []byte

const (
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 5 * time.Second
)

// Server serves the to-do API for a backend.
type Server struct {
	svc     service.Service
	logger  *log.Logger
	hub     *hub
	schemas *schemas
	router  chi.Router
}

// New creates a server for svc.
func New(svc service.Service, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	sc, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	s := &Server{
		svc:     svc,
		logger:  logger,
		hub:     newHub(logger),
		schemas: sc,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(middleware.RedirectSlashes)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexHTML)
	})
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "todont"})
		})
		r.Get("/items", s.handleList)
		r.Post("/items", s.handleAdd)
		r.Put("/items/{id}", s.handleUpdate)
		r.Delete("/items/{id}", s.handleDelete)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	return s.hub.count()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	var items []service.Item
	if resp, err := s.svc.Get(r.Context()); err == nil {
		items = resp.Data.Items
	} else {
		s.logger.Warn("initial list for websocket failed", "err", err)
	}
	s.hub.serveWS(w, r, items)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Get(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type addRequest struct {
	Desc string `json:"desc"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req addRequest
	if err := decodeValid(s.schemas.add, body, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutated(w, "add")(s.svc.Add(r.Context(), req.Desc))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var item service.Item
	if err := decodeValid(s.schemas.update, body, &item); err != nil {
		s.writeError(w, err)
		return
	}
	if item.ID != 0 && item.ID != id {
		s.writeError(w, service.Errorf(service.ErrInvalid, "id mismatch: %d != %d", item.ID, id))
		return
	}
	item.ID = id
	s.mutated(w, "update")(s.svc.Update(r.Context(), item))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mutated(w, "delete")(s.svc.Delete(r.Context(), service.Item{ID: id}))
}

// mutated returns a completion func that writes the result of a mutating
// call and broadcasts the new list on success.
func (s *Server) mutated(w http.ResponseWriter, op string) func(service.Response, error) {
	return func(resp service.Response, err error) {
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		n := s.hub.broadcast(resp.Data.Items)
		s.logger.Debug("items changed", "op", op, "items", len(resp.Data.Items), "notified", n)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	}
	writeJSON(w, status, &service.Error{Message: service.Message(err)})
}

// statusFor maps service error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func itemID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, service.Errorf(service.ErrInvalid, "invalid item id: %s", raw)
	}
	return id, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, service.Errorf(service.ErrInvalid, "request body too large")
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request at info level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

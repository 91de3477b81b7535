// Package httpapi exposes the DBoM orchestrator over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	orchestrators "github.com/QuietWire-Civic-AI/dbom-core/internal/domain-orchestrators"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/interfaces"
)

// DefaultMaxBodyBytes caps request bodies at 5 MiB
const DefaultMaxBodyBytes int64 = 5 << 20

// DigestHeader carries the content digest of a converted attestation
const DigestHeader = "X-DBoM-Digest"

// ServiceName is reported by the metadata endpoints
const ServiceName = "dbom-core"

// Server routes HTTP requests to the orchestrator
type Server struct {
	orchestrator *orchestrators.DBoMOrchestrator
	schemaID     string
	version      string
	maxBodyBytes int64
	logger       interfaces.Logger
	mux          *http.ServeMux
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxBodyBytes overrides the request body limit
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// WithVersion sets the version reported by the metadata endpoints
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates a server for the given orchestrator
func NewServer(orchestrator *orchestrators.DBoMOrchestrator, schemaID string, opts ...Option) *Server {
	s := &Server{
		orchestrator: orchestrator,
		schemaID:     schemaID,
		version:      "dev",
		maxBodyBytes: DefaultMaxBodyBytes,
		mux:          http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = interfaces.OrNoOp(s.logger)

	s.route(http.MethodGet, "/{$}", s.handleIndex)
	s.route(http.MethodGet, "/version", s.handleIndex)
	s.route(http.MethodPost, "/validate", s.handleValidate)
	s.route(http.MethodPost, "/query", s.handleQuery)
	s.route(http.MethodPost, "/convert/spdx", s.handleConvert)
	s.mux.HandleFunc("/", s.handleNotFound)
	return s
}

// route registers h for method on path. Other methods on the same path get a JSON 405.
func (s *Server) route(method, path string, h http.HandlerFunc) {
	allow := method
	if method == http.MethodGet {
		allow = "GET, HEAD"
	}

	s.mux.HandleFunc(method+" "+path, h)
	s.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error: fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path),
		})
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path)})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	s.mux.ServeHTTP(rec, r)

	s.logger.Info("request",
		interfaces.F("method", r.Method),
		interfaces.F("path", r.URL.Path),
		interfaces.F("status", rec.status),
		interfaces.F("duration", time.Since(start).String()),
	)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", interfaces.F("addr", addr), interfaces.F("schema", s.schemaID))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type indexResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Schema    string   `json:"schema"`
	Endpoints []string `json:"endpoints"`
}

var endpoints = []string{
	"GET /",
	"GET /version",
	"POST /validate",
	"POST /query?predicate=&purl=",
	"POST /convert/spdx?validate=true",
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		Name:      ServiceName,
		Version:   s.version,
		Schema:    s.schemaID,
		Endpoints: endpoints,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.orchestrator.Validate(r.Context(), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := entities.ClaimQuery{
		Predicate: r.URL.Query().Get("predicate"),
		Purl:      r.URL.Query().Get("purl"),
	}

	result, err := s.orchestrator.Query(r.Context(), body, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	validate := false
	if raw := r.URL.Query().Get("validate"); raw != "" {
		validate, err = strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validate must be a boolean"})
			return
		}
	}

	result, err := s.orchestrator.Convert(r.Context(), body, r.URL.Query().Get("pkg"), validate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set(DigestHeader, result.Digest.String())
	if validate {
		writeJSON(w, http.StatusOK, result)
		return
	}
	writeJSON(w, http.StatusOK, result.Attestation)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps an error to its status code and writes the JSON error body
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", interfaces.F("path", r.URL.Path), interfaces.Err(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, entities.ErrParse), errors.Is(err, entities.ErrMapping):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Package api exposes provisioning operations over HTTP.
//
// Every operation runs synchronously and responds with the run journal.
// Requests are dry runs unless ?commit=true is given.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imamik/switchyard/internal/inventory/catalog"
	"github.com/imamik/switchyard/internal/metrics"
	"github.com/imamik/switchyard/internal/orchestration"
	"github.com/imamik/switchyard/internal/provisioning"
)

const maxBodyBytes = 1 << 20

// Runner is the subset of orchestration.Runner the API calls.
type Runner interface {
	CreateSite(ctx context.Context, in orchestration.SiteInput, commit bool) (*orchestration.Outcome, error)
	AddSwitches(ctx context.Context, in orchestration.SwitchesInput, commit bool) (*orchestration.Outcome, error)
	AssignAddresses(ctx context.Context, in orchestration.AddressesInput, commit bool) (*orchestration.Outcome, error)
	Promote(ctx context.Context, in orchestration.PromoteInput, commit bool) (*orchestration.Outcome, error)
	ImportCatalog(ctx context.Context, c *catalog.Catalog, commit bool) (*orchestration.Outcome, error)
}

// Server routes API requests to a Runner.
type Server struct {
	runner Runner
	secret []byte
	log    logr.Logger
}

// NewServer creates a Server. With an empty secret the API is unauthenticated.
func NewServer(runner Runner, secret string, log logr.Logger) *Server {
	return &Server{runner: runner, secret: []byte(secret), log: log}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	if len(s.secret) > 0 {
		api.Use(authMiddleware(s.secret))
	}
	api.HandleFunc("/sites", s.createSite).Methods(http.MethodPost)
	api.HandleFunc("/switches", s.addSwitches).Methods(http.MethodPost)
	api.HandleFunc("/addresses", s.assignAddresses).Methods(http.MethodPost)
	api.HandleFunc("/promotions", s.promote).Methods(http.MethodPost)
	api.HandleFunc("/catalog", s.importCatalog).Methods(http.MethodPost)
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down API: %w", err)
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createSite(w http.ResponseWriter, r *http.Request) {
	var in orchestration.SiteInput
	if !decode(w, r, &in) {
		return
	}
	s.respond(w, r, func(ctx context.Context, commit bool) (*orchestration.Outcome, error) {
		return s.runner.CreateSite(ctx, in, commit)
	})
}

func (s *Server) addSwitches(w http.ResponseWriter, r *http.Request) {
	var in orchestration.SwitchesInput
	if !decode(w, r, &in) {
		return
	}
	s.respond(w, r, func(ctx context.Context, commit bool) (*orchestration.Outcome, error) {
		return s.runner.AddSwitches(ctx, in, commit)
	})
}

func (s *Server) assignAddresses(w http.ResponseWriter, r *http.Request) {
	var in orchestration.AddressesInput
	if !decode(w, r, &in) {
		return
	}
	s.respond(w, r, func(ctx context.Context, commit bool) (*orchestration.Outcome, error) {
		return s.runner.AssignAddresses(ctx, in, commit)
	})
}

func (s *Server) promote(w http.ResponseWriter, r *http.Request) {
	var in orchestration.PromoteInput
	if !decodeOptional(w, r, &in) {
		return
	}
	s.respond(w, r, func(ctx context.Context, commit bool) (*orchestration.Outcome, error) {
		return s.runner.Promote(ctx, in, commit)
	})
}

// importCatalog accepts the catalog as YAML or JSON (a JSON document is
// valid YAML).
func (s *Server) importCatalog(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("reading body: %w", err))
		return
	}
	c, err := catalog.Parse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, func(ctx context.Context, commit bool) (*orchestration.Outcome, error) {
		return s.runner.ImportCatalog(ctx, c, commit)
	})
}

// respond runs op and maps its result to a status code.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, op func(context.Context, bool) (*orchestration.Outcome, error)) {
	commit, err := commitParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := op(r.Context(), commit)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case provisioning.IsValidation(err):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, orchestration.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err)
	case out != nil:
		writeJSON(w, http.StatusUnprocessableEntity, failedRun{
			Error:  err.Error(),
			Report: out.Journal.Report(),
			Result: out.Result,
		})
	default:
		s.log.Error(err, "run failed", "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, err)
	}
}

// failedRun is the body of a run that aborted after it started.
type failedRun struct {
	Error  string              `json:"error"`
	Report provisioning.Report `json:"report"`
	Result any                 `json:"result,omitempty"`
}

func commitParam(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("commit")
	if v == "" {
		return false, nil
	}
	commit, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("commit: %q is not a boolean", v)
	}
	return commit, nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := readJSON(r, v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return false
	}
	return true
}

// decodeOptional is decode for endpoints where an empty body means defaults.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	err := readJSON(r, v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
	return false
}

func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return io.EOF
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.V(1).Info("request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start).Round(time.Millisecond).String())
	})
}

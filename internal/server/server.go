// Package server exposes the typeviz pipeline over HTTP.
//
// Clients post the JSON body of a TypeDB query response and get back either
// the logical graph or a rendered artifact:
//
//	GET  /healthz
//	POST /v1/materialize
//	POST /v1/render?format=svg&highlight=2&detailed=true&drawAll=true
//
// Every request gets its own render graph, so concurrent requests never see
// each other's state. Failures are returned as
// {"error":{"code":"...","message":"..."}} with the status code chosen by
// errors.HTTPStatus.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/typeviz/pkg/buildinfo"
	"github.com/matzehuels/typeviz/pkg/config"
	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/pipeline"
	"github.com/matzehuels/typeviz/pkg/query"
)

// Response headers set by the render endpoint.
const (
	HeaderRunID = "X-Typeviz-Run-Id"
	HeaderCache = "X-Typeviz-Cache"
)

// Server serves the pipeline over HTTP.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    config.ServerConfig
	router chi.Router
}

// New creates a server around runner. The runner's cache is shared by all
// requests.
func New(runner *pipeline.Runner, logger *log.Logger, cfg config.ServerConfig) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, logger: logger, cfg: cfg}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		if s.cfg.MaxBodyBytes > 0 {
			r.Use(middleware.RequestSize(s.cfg.MaxBodyBytes))
		}
		r.Post("/materialize", s.handleMaterialize)
		r.Post("/render", s.handleRender)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path))
	})
	return r
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout.Duration,
	}

	timeout := s.cfg.ShutdownTimeout.Duration
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.cfg.Addr, "version", buildinfo.Version)
		if err := srv.ListenAndServe(); !stderrors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", s.cfg.Addr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("shutting down", "timeout", timeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(errors.ErrCodeTimeout, err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	resp, err := s.decode(r)
	if err != nil {
		writeError(w, err)
		return
	}
	g, err := s.runner.Materialize(r.Context(), resp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := renderOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := s.decode(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), resp, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set(HeaderRunID, result.ID)
	if len(result.Stats.ArtifactHits) > 0 {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// renderOptions reads format, highlight, coords, detailed and drawAll from
// the query string. One format per request.
func renderOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{Formats: []string{pipeline.FormatSVG}}

	if f := q.Get("format"); f != "" {
		if err := pipeline.ValidateFormat(f); err != nil {
			return opts, err
		}
		opts.Formats = []string{f}
	}
	if h := q.Get("highlight"); h != "" {
		n, err := strconv.Atoi(h)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "highlight must be an answer index")
		}
		opts.Highlight = &n
	}
	if c := q.Get("coords"); c != "" {
		coords, err := query.ParseCoordinates(c)
		if err != nil {
			return opts, err
		}
		opts.HighlightCoordinates = &coords
	}
	for name, dst := range map[string]*bool{"detailed": &opts.Detailed, "drawAll": &opts.DrawAll} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must be a boolean", name)
			}
			*dst = b
		}
	}
	return opts, nil
}

// decode reads the posted query response.
func (s *Server) decode(r *http.Request) (*query.Response, error) {
	resp, err := s.runner.Load(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, err
	}
	return resp, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(code, message string) map[string]errorDetail {
	return map[string]errorDetail{"error": {Code: code, Message: message}}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(err)
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, errorBody(string(code), errors.UserMessage(err)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

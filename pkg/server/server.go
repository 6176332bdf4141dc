// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	GET /healthz
//	GET /trees/{treeID}/snapshot?focal=
//	GET /trees/{treeID}/render.png?focal=&width=&height=&dpr=&theme=&portraits=
//	GET /trees/{treeID}/scene?focal=&theme=
//	GET /trees/{treeID}/hit?focal=&x=&y=
//	GET /trees/{treeID}/graph.svg?focal=&detailed=
//	GET /trees/{treeID}/graph.dot?focal=&detailed=
//
// The snapshot route speaks the protocol of the httpapi source, so one
// server can read its trees from another.
package server

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/geom"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/snapshot"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Server serves snapshots and renders them.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults pipeline.Options
	source   string
	timeout  time.Duration
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithDefaults sets the render options used when a request leaves them out.
func WithDefaults(o pipeline.Options) Option { return func(s *Server) { s.defaults = o } }

// WithSourceName names the source in snapshot cache keys.
func WithSourceName(name string) Option { return func(s *Server) { s.source = name } }

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option { return func(s *Server) { s.timeout = d } }

// New returns a server rendering through r.
func New(r *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:  r,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})

	r.Route("/trees/{treeID}", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/render.png", s.handleArtifact(pipeline.FormatPNG))
		r.Get("/scene", s.handleArtifact(pipeline.FormatJSON))
		r.Get("/graph.svg", s.handleArtifact(pipeline.FormatSVG))
		r.Get("/graph.dot", s.handleArtifact(pipeline.FormatDOT))
		r.Get("/hit", s.handleHit)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// options builds pipeline options from the route and query, on top of the
// server defaults.
func (s *Server) options(r *http.Request, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	o := s.defaults
	o.Formats = []string{format}
	o.Source = s.source
	o.TreeID = chi.URLParam(r, "treeID")
	o.FocalID = q.Get("focal")
	o.Logger = s.logger

	if err := errors.ValidateIdentifier("tree", o.TreeID); err != nil {
		return o, err
	}
	if o.FocalID != "" {
		if err := errors.ValidateIdentifier("person", o.FocalID); err != nil {
			return o, err
		}
	}

	var err error
	if o.Width, err = floatParam(q.Get("width"), o.Width); err != nil {
		return o, err
	}
	if o.Height, err = floatParam(q.Get("height"), o.Height); err != nil {
		return o, err
	}
	if o.DPR, err = floatParam(q.Get("dpr"), o.DPR); err != nil {
		return o, err
	}
	if o.Detailed, err = boolParam(q.Get("detailed"), o.Detailed); err != nil {
		return o, err
	}
	if o.Portraits, err = boolParam(q.Get("portraits"), o.Portraits); err != nil {
		return o, err
	}
	if o.Refresh, err = boolParam(q.Get("refresh"), false); err != nil {
		return o, err
	}
	if t := q.Get("theme"); t != "" {
		o.Theme = t
	}
	return o, nil
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r, pipeline.FormatJSON)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = snapshot.WriteJSON(snap, w)
}

func (s *Server) handleArtifact(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.options(r, format)
		if err != nil {
			s.writeError(w, err)
			return
		}
		res, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", pipeline.ContentTypes[format])
		w.Header().Set("X-Snapshot-Hash", res.SnapshotHash)
		if res.CacheInfo.RenderHit {
			w.Header().Set("X-Cache", "hit")
		} else {
			w.Header().Set("X-Cache", "miss")
		}
		_, _ = w.Write(res.Artifacts[format])
	}
}

// HitResult is the body of a successful hit test.
type HitResult struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r, pipeline.FormatJSON)
	if err != nil {
		s.writeError(w, err)
		return
	}
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil || math.IsNaN(x) || math.IsNaN(y) {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "x and y must be numbers"))
		return
	}

	snap, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sc, err := s.runner.Layout(r.Context(), snap, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	d := sc.HitTest(geom.Point{X: x, Y: y})
	if d == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, HitResult{ID: d.ID(), Kind: d.Kind().String()})
}

// errorBody is the JSON body of a failed request.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Code: string(code), Message: errors.UserMessage(err)})
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, errors.ErrCodeTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, errors.ErrCodeNetwork):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func floatParam(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%q is not a finite number", s)
	}
	return v, nil
}

func boolParam(s string, def bool) (bool, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%q is not a boolean", s)
	}
	return v, nil
}

// Package http exposes the mediaflow engine as a JSON API on chi.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ofekfell/mediaflow"
	"github.com/ofekfell/mediaflow/internal/logging"
	"github.com/ofekfell/mediaflow/internal/runtime"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/schema"
)

// maxBodyBytes bounds request documents. Workflows are small; media never
// travels through the API.
const maxBodyBytes = 1 << 20

// Engine is the subset of *mediaflow.Engine the API drives.
type Engine interface {
	Render(ctx context.Context, root domain.Node) (string, error)
	Plan(ctx context.Context, root domain.Node) (*runtime.Plan, error)
	Probe(ctx context.Context, ref string) (*domain.MediaInfo, error)
	Validate(root domain.Node) error
}

// Server holds the handlers of the API.
type Server struct {
	engine  Engine
	streams *StreamManager
	metrics http.Handler
	logger  *slog.Logger
	router  chi.Router
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams serves lifecycle events from sm at GET /v1/events.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// WithMetrics serves h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates the API server.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		logger: logging.NewNop(),
		router: chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// NewHandler creates the API handler for engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(enableCORS)

	r.Get("/healthz", s.handleHealth)
	r.Get("/info", s.handleInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Post("/plan", s.handlePlan)
		r.Post("/validate", s.handleValidate)
		r.Post("/probe", s.handleProbe)

		r.Get("/actions", s.handleListActions)
		r.Post("/actions/{kind}", s.handleAddAction)

		if s.streams != nil {
			r.Get("/events", s.handleEvents)
		}
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RenderResponse is returned by POST /v1/render.
type RenderResponse struct {
	ResultPath string `json:"result_path"`
}

// TokenResponse is returned by POST /v1/actions/{kind}.
type TokenResponse struct {
	ResultStream string `json:"result_stream"`
}

// ProbeRequest is the body of POST /v1/probe.
type ProbeRequest struct {
	InputAddress string `json:"input_address"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	root, ok := s.decodeWorkflow(w, r)
	if !ok {
		return
	}
	path, err := s.engine.Render(r.Context(), root)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, RenderResponse{ResultPath: path})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	root, ok := s.decodeWorkflow(w, r)
	if !ok {
		return
	}
	plan, err := s.engine.Plan(r.Context(), root)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	root, ok := s.decodeWorkflow(w, r)
	if !ok {
		return
	}
	if err := s.engine.Validate(root); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	var req ProbeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error(), Kind: "bad_request"})
		return
	}
	if strings.TrimSpace(req.InputAddress) == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "input_address is required", Kind: "bad_request"})
		return
	}
	info, err := s.engine.Probe(r.Context(), req.InputAddress)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request) {
	type action struct {
		Name       string `json:"name"`
		MultiInput bool   `json:"multi_input"`
	}
	var out []action
	for _, k := range domain.Kinds() {
		out = append(out, action{Name: string(k), MultiInput: k.MultiInput()})
	}
	respondJSON(w, http.StatusOK, out)
}

// handleAddAction builds one action node over the posted input and returns
// it as a result_stream token, so clients can chain builder calls.
func (s *Server) handleAddAction(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error(), Kind: "bad_request"})
		return
	}
	if body == nil {
		body = map[string]any{}
	}
	body[schema.KeyAction] = chi.URLParam(r, "kind")

	node, err := schema.Decode(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	token, err := schema.EncodeToken(node)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, TokenResponse{ResultStream: token})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"app":     "mediaflow-http",
		"version": strings.TrimSpace(mediaflow.Version),
	})
}

// decodeWorkflow accepts a wire tree, or {"workflow": "<token>"} where the
// token is a result_stream, inline JSON or a bare reference.
func (s *Server) decodeWorkflow(w http.ResponseWriter, r *http.Request) (domain.Node, bool) {
	var body any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error(), Kind: "bad_request"})
		return nil, false
	}

	var (
		root domain.Node
		err  error
	)
	if m, ok := body.(map[string]any); ok && len(m) == 1 && m["workflow"] != nil {
		tok, isString := m["workflow"].(string)
		if !isString {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("workflow must be a string, got %T", m["workflow"]), Kind: "bad_request"})
			return nil, false
		}
		root, err = schema.DecodeInput(tok)
	} else {
		root, err = schema.Decode(body)
	}
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	return root, true
}

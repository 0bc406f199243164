package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/internal/presentation/graph"
	"github.com/aretw0/stepflow/pkg/adapters/memory"
	"github.com/aretw0/stepflow/pkg/domain"
	stepgraph "github.com/aretw0/stepflow/pkg/graph"
	"github.com/aretw0/stepflow/pkg/ports"
	"github.com/aretw0/stepflow/pkg/validate"
)

// DefaultLockTTL bounds how long a flow write may hold the distributed lock.
const DefaultLockTTL = 10 * time.Second

// Engine is the part of stepflow.Engine the server needs.
type Engine interface {
	Validate(ctx context.Context, steps []domain.Step) (*stepflow.Report, error)
	Index(steps []domain.Step) (*stepgraph.Index, error)
	Resolve(steps []domain.Step, reference, fromID string) (stepgraph.Resolution, error)
}

// Server implements ServerInterface.
type Server struct {
	Engine  Engine
	Store   ports.FlowStore
	Locker  ports.DistributedLocker
	LockTTL time.Duration
	Streams *StreamManager
	Logger  *slog.Logger

	metrics prometheus.Gatherer
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// Option configures the server.
type Option func(*Server)

// WithStore sets the flow store. Defaults to an in-memory store.
func WithStore(store ports.FlowStore) Option {
	return func(s *Server) { s.Store = store }
}

// WithLocker serializes writes to the same flow across replicas.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(s *Server) {
		s.Locker = locker
		if ttl > 0 {
			s.LockTTL = ttl
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.Logger = logger }
}

// WithMetrics exposes the gatherer on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.metrics = g }
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	server := &Server{
		Engine:  engine,
		LockTTL: DefaultLockTTL,
		Streams: NewStreamManager(),
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Store == nil {
		server.Store = memory.NewStore()
	}

	loadSpec()
	if specErr != nil {
		return nil, specErr
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(server.logRequests)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if server.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.metrics, promhttp.HandlerOpts{}))
	}

	r.Group(func(api chi.Router) {
		api.Use(requestValidator(specRouter))
		HandlerFromMux(server, api)
	})
	return r, nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>stepflow API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// FlowRequest is the body of validate, index and flow write requests.
type FlowRequest struct {
	Name  string        `json:"name,omitempty"`
	Steps []domain.Step `json:"steps"`
}

// ResolveRequest is the body of POST /v1/resolve.
type ResolveRequest struct {
	Steps []domain.Step `json:"steps"`
	Ref   string        `json:"ref"`
	From  string        `json:"from"`
}

// ValidateResponse reports one validation pass.
type ValidateResponse struct {
	OK     bool                                   `json:"ok"`
	Errors map[validate.ErrorKey]domain.ErrorKind `json:"errors"`
	Issues []validate.Issue                       `json:"issues"`
	Error  string                                 `json:"error,omitempty"`
}

// IndexResponse carries the node index and, optionally, the outputs visible from one node.
type IndexResponse struct {
	Index   *stepgraph.Index          `json:"index"`
	Visible []stepgraph.VisibleOutput `json:"visible,omitempty"`
}

type statusResponse struct {
	Status  string `json:"status,omitempty"`
	Version string `json:"version,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// GetVersion handles GET /version.
func (s *Server) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Version: strings.TrimSpace(stepflow.Version)})
}

// ValidateSteps handles POST /v1/validate.
func (s *Server) ValidateSteps(w http.ResponseWriter, r *http.Request) {
	var body FlowRequest
	if !decode(w, r, &body) {
		return
	}
	rep, err := s.Engine.Validate(r.Context(), body.Steps)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, newValidateResponse(rep))
}

// IndexSteps handles POST /v1/index.
func (s *Server) IndexSteps(w http.ResponseWriter, r *http.Request, params IndexStepsParams) {
	var body FlowRequest
	if !decode(w, r, &body) {
		return
	}
	ix, err := s.Engine.Index(body.Steps)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	resp := IndexResponse{Index: ix}
	if params.VisibleFrom != nil {
		from := *params.VisibleFrom
		if _, ok := ix.Lookup(from); !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, from))
			return
		}
		resp.Visible = ix.Visible(from)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResolveReference handles POST /v1/resolve.
func (s *Server) ResolveReference(w http.ResponseWriter, r *http.Request) {
	var body ResolveRequest
	if !decode(w, r, &body) {
		return
	}
	res, err := s.Engine.Resolve(body.Steps, body.Ref, body.From)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListFlows handles GET /v1/flows.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

// CreateFlow handles POST /v1/flows.
func (s *Server) CreateFlow(w http.ResponseWriter, r *http.Request) {
	var body FlowRequest
	if !decode(w, r, &body) {
		return
	}
	s.save(w, r, uuid.NewString(), body, http.StatusCreated)
}

// GetFlow handles GET /v1/flows/{id}.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request, id string) {
	flow, err := s.Store.Load(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// UpdateFlow handles PUT /v1/flows/{id}.
func (s *Server) UpdateFlow(w http.ResponseWriter, r *http.Request, id string) {
	var body FlowRequest
	if !decode(w, r, &body) {
		return
	}
	s.save(w, r, id, body, http.StatusOK)
}

// DeleteFlow handles DELETE /v1/flows/{id}.
func (s *Server) DeleteFlow(w http.ResponseWriter, r *http.Request, id string) {
	unlock, err := s.lock(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	defer unlock()

	if err := s.Store.Delete(r.Context(), id); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.Streams.Publish(FlowEvent{Type: EventDeleted, FlowID: id})
	w.WriteHeader(http.StatusNoContent)
}

// ValidateStoredFlow handles POST /v1/flows/{id}/validate.
func (s *Server) ValidateStoredFlow(w http.ResponseWriter, r *http.Request, id string) {
	flow, err := s.Store.Load(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	rep, err := s.Engine.Validate(r.Context(), flow.Steps)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	ok := rep.OK()
	s.Streams.Publish(FlowEvent{Type: EventValidated, FlowID: id, OK: &ok})
	writeJSON(w, http.StatusOK, newValidateResponse(rep))
}

// GetFlowGraph handles GET /v1/flows/{id}/graph.
func (s *Server) GetFlowGraph(w http.ResponseWriter, r *http.Request, id string, params GetFlowGraphParams) {
	flow, err := s.Store.Load(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	var overlay *graph.GraphOverlay
	if params.Overlay != nil && *params.Overlay {
		rep, err := s.Engine.Validate(r.Context(), flow.Steps)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		overlay = graph.OverlayFromResult(rep.Result)
	}
	if params.Focus != nil && *params.Focus != "" {
		if overlay == nil {
			overlay = &graph.GraphOverlay{}
		}
		overlay.Focus = *params.Focus
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, graph.GenerateMermaid(flow.Steps, overlay))
}

// SubscribeEvents handles GET /events (SSE). Besides store writes, changes
// reported by a watchable engine source are forwarded as "changed" events.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	flowID := ""
	if params.Flow != nil {
		flowID = *params.Flow
	}
	ch, cancel := s.Streams.Subscribe(flowID)
	defer cancel()

	if watchable, ok := s.Engine.(ports.Watchable); ok {
		if changes, err := watchable.Watch(r.Context()); err == nil {
			go s.forwardChanges(r.Context(), changes)
		} else {
			s.Logger.Debug("SSE: source changes unavailable", "error", err)
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) forwardChanges(ctx context.Context, changes <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-changes:
			if !ok {
				return
			}
			s.Streams.Publish(FlowEvent{Type: EventChanged, FlowID: id})
		}
	}
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, id string, body FlowRequest, status int) {
	unlock, err := s.lock(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	defer unlock()

	flow := &domain.Flow{
		ID:        id,
		Name:      body.Name,
		Steps:     body.Steps,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.Store.Save(r.Context(), id, flow); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.Streams.Publish(FlowEvent{Type: EventSaved, FlowID: id})
	writeJSON(w, status, flow)
}

// lock takes the flow's distributed lock when a locker is configured.
func (s *Server) lock(ctx context.Context, id string) (func(), error) {
	if s.Locker == nil {
		return func() {}, nil
	}
	release, err := s.Locker.Lock(ctx, "flow:"+id, s.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock flow %s: %w", id, err)
	}
	return func() {
		// The request context may already be done; release on a fresh one.
		if err := release(context.Background()); err != nil {
			s.Logger.Warn("Failed to release flow lock", "flow_id", id, "error", err)
		}
	}, nil
}

// -- Helpers --

func newValidateResponse(rep *stepflow.Report) ValidateResponse {
	resp := ValidateResponse{
		OK:     rep.OK(),
		Errors: rep.Result.Errors,
		Issues: rep.Result.Issues(),
	}
	if resp.Errors == nil {
		resp.Errors = map[validate.ErrorKey]domain.ErrorKind{}
	}
	if rep.Result.Err != nil {
		resp.Error = rep.Result.Err.Error()
	}
	return resp
}

func statusFor(err error) int {
	var ie *stepgraph.IndexError
	switch {
	case errors.Is(err, domain.ErrFlowNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, stepgraph.ErrNotReference):
		return http.StatusBadRequest
	case errors.As(err, &ie), errors.Is(err, domain.ErrEmptyTree):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

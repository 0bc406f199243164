package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/internal/presentation/graph"
	"github.com/aretw0/stepflow/pkg/domain"
	stepgraph "github.com/aretw0/stepflow/pkg/graph"
	"github.com/aretw0/stepflow/pkg/registry"
	"github.com/aretw0/stepflow/pkg/validate"
)

// ErrNoInput is returned when a tool call names neither a flow nor steps.
var ErrNoInput = errors.New("either flow_id or steps is required")

// Engine defines the part of stepflow.Engine exposed over MCP.
type Engine interface {
	Registry() *registry.Registry
	ParseSteps(data []byte) (*domain.Flow, error)
	LoadFlow(ctx context.Context, id string) (*domain.Flow, error)
	ListFlows(ctx context.Context) ([]string, error)
	Validate(ctx context.Context, steps []domain.Step) (*stepflow.Report, error)
	Index(steps []domain.Step) (*stepgraph.Index, error)
	Resolve(steps []domain.Step, reference, fromID string) (stepgraph.Resolution, error)
}

// FlowArgs selects the tree a tool works on.
type FlowArgs struct {
	FlowID string `json:"flow_id,omitempty"`
	Steps  string `json:"steps,omitempty"`
}

// ValidateResponse aligns with the HTTP API's validation result.
type ValidateResponse struct {
	OK     bool                                   `json:"ok" jsonschema_description:"True when no step failed"`
	Errors map[validate.ErrorKey]domain.ErrorKind `json:"errors" jsonschema_description:"Failing step ids or conditions:<branch> keys mapped to the error kind"`
	Issues []validate.Issue                       `json:"issues" jsonschema_description:"Failures sorted by key"`
	Error  string                                 `json:"error,omitempty" jsonschema_description:"Whole-flow problem, such as too few steps"`
}

// IndexArgs are the arguments of index_flow.
type IndexArgs struct {
	FlowArgs
	VisibleFrom string `json:"visible_from,omitempty"`
}

// IndexResponse lists indexed nodes and the outputs visible from one node.
type IndexResponse struct {
	Order   []string                  `json:"order" jsonschema_description:"Node ids in indexing order"`
	Outputs []string                  `json:"outputs" jsonschema_description:"Symbol table keys in insertion order"`
	Visible []stepgraph.VisibleOutput `json:"visible,omitempty" jsonschema_description:"Outputs a reference on visible_from may read"`
}

// ResolveArgs are the arguments of resolve_reference.
type ResolveArgs struct {
	FlowArgs
	Ref  string `json:"ref"`
	From string `json:"from"`
}

// GraphArgs are the arguments of render_graph.
type GraphArgs struct {
	FlowArgs
	Overlay bool `json:"overlay,omitempty"`
}

// ListResponse is the result of list_flows.
type ListResponse struct {
	IDs []string `json:"ids" jsonschema_description:"Flow ids of the configured source"`
}

// Server wraps the stepflow Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("stepflow-mcp", strings.TrimSpace(stepflow.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

var (
	flowIDParam = mcp.WithString("flow_id", mcp.Description("Id of a flow in the configured source"))
	stepsParam  = mcp.WithString("steps", mcp.Description("Flow document or bare step array, as JSON or YAML (used when flow_id is empty)"))
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("validate_flow",
		mcp.WithDescription("Validate a step tree: operators, parameter types and reference visibility."),
		flowIDParam,
		stepsParam,
		mcp.WithOutputSchema[ValidateResponse](),
	), mcp.NewStructuredToolHandler(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("index_flow",
		mcp.WithDescription("Index a step tree and list the outputs visible from a node."),
		flowIDParam,
		stepsParam,
		mcp.WithString("visible_from", mcp.Description("Node id to list visible outputs for (optional)")),
		mcp.WithOutputSchema[IndexResponse](),
	), mcp.NewStructuredToolHandler(s.handleIndex))

	s.mcpServer.AddTool(mcp.NewTool("resolve_reference",
		mcp.WithDescription("Resolve a {{__id.key}} reference as if written on a node."),
		flowIDParam,
		stepsParam,
		mcp.WithString("ref", mcp.Required(), mcp.Description("Reference template, e.g. {{__3.source.id}}")),
		mcp.WithString("from", mcp.Required(), mcp.Description("Id of the node holding the reference")),
		mcp.WithOutputSchema[stepgraph.Resolution](),
	), mcp.NewStructuredToolHandler(s.handleResolve))

	s.mcpServer.AddTool(mcp.NewTool("list_flows",
		mcp.WithDescription("List the flows of the configured source."),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("render_graph",
		mcp.WithDescription("Render a step tree as a Mermaid flowchart."),
		flowIDParam,
		stepsParam,
		mcp.WithBoolean("overlay", mcp.Description("Mark invalid steps and condition sets")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GraphArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		out, err := s.renderGraph(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args FlowArgs) (ValidateResponse, error) {
	steps, err := s.steps(ctx, args)
	if err != nil {
		return ValidateResponse{}, err
	}
	rep, err := s.engine.Validate(ctx, steps)
	if err != nil {
		return ValidateResponse{}, fmt.Errorf("validate failed: %w", err)
	}
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
	return resp, nil
}

func (s *Server) handleIndex(ctx context.Context, request mcp.CallToolRequest, args IndexArgs) (IndexResponse, error) {
	steps, err := s.steps(ctx, args.FlowArgs)
	if err != nil {
		return IndexResponse{}, err
	}
	ix, err := s.engine.Index(steps)
	if err != nil {
		return IndexResponse{}, fmt.Errorf("index failed: %w", err)
	}
	resp := IndexResponse{Order: ix.Order, Outputs: ix.Outputs.Keys()}
	if args.VisibleFrom != "" {
		if _, ok := ix.Lookup(args.VisibleFrom); !ok {
			return IndexResponse{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, args.VisibleFrom)
		}
		resp.Visible = ix.Visible(args.VisibleFrom)
	}
	return resp, nil
}

func (s *Server) handleResolve(ctx context.Context, request mcp.CallToolRequest, args ResolveArgs) (stepgraph.Resolution, error) {
	steps, err := s.steps(ctx, args.FlowArgs)
	if err != nil {
		return stepgraph.Resolution{}, err
	}
	return s.engine.Resolve(steps, args.Ref, args.From)
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, _ map[string]any) (ListResponse, error) {
	ids, err := s.engine.ListFlows(ctx)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list failed: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ListResponse{IDs: ids}, nil
}

func (s *Server) renderGraph(ctx context.Context, args GraphArgs) (string, error) {
	steps, err := s.steps(ctx, args.FlowArgs)
	if err != nil {
		return "", err
	}
	var overlay *graph.GraphOverlay
	if args.Overlay {
		rep, err := s.engine.Validate(ctx, steps)
		if err != nil {
			return "", fmt.Errorf("validate failed: %w", err)
		}
		overlay = graph.OverlayFromResult(rep.Result)
	}
	return graph.GenerateMermaid(steps, overlay), nil
}

// steps loads the tree named by args: a stored flow, or an inline document.
func (s *Server) steps(ctx context.Context, args FlowArgs) ([]domain.Step, error) {
	switch {
	case args.FlowID != "":
		flow, err := s.engine.LoadFlow(ctx, args.FlowID)
		if err != nil {
			return nil, fmt.Errorf("load flow: %w", err)
		}
		return flow.Steps, nil
	case strings.TrimSpace(args.Steps) != "":
		flow, err := s.engine.ParseSteps([]byte(args.Steps))
		if err != nil {
			return nil, fmt.Errorf("parse steps: %w", err)
		}
		return flow.Steps, nil
	}
	return nil, ErrNoInput
}

func (s *Server) registerResources() {
	// EXPOSE: stepflow://operators
	s.mcpServer.AddResource(mcp.NewResource("stepflow://operators", "Registered operators",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.operatorsJSON()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "stepflow://operators",
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})
}

// operatorsJSON lists operator ids per category.
func (s *Server) operatorsJSON() (string, error) {
	reg := s.engine.Registry()
	out := map[string][]string{}
	for _, cat := range []registry.Category{registry.Trigger, registry.Executor, registry.Comparator, registry.DataSource} {
		out[cat.String()] = reg.Operators(cat)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode operators: %w", err)
	}
	return string(data), nil
}

// Package mcp exposes a running app as a Model Context Protocol server so AI
// agents can inspect the state graph, queue requests and drive passes as
// tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Git0Shuai/bevy"
	"github.com/Git0Shuai/bevy/pkg/domain"
	"github.com/Git0Shuai/bevy/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StateView is the wire form of one state kind, shared by the list_states and
// get_state tools.
type StateView struct {
	Name    string   `json:"name" jsonschema_description:"State kind name"`
	Variant string   `json:"variant" jsonschema_description:"primary, sub or computed"`
	Sources []string `json:"sources,omitempty" jsonschema_description:"Kinds this one depends on"`
	Value   *string  `json:"value" jsonschema_description:"Current display value, null while the kind is absent"`
}

// StatesResponse is the structured output of the list_states tool.
type StatesResponse struct {
	Pass   uint64      `json:"pass" jsonschema_description:"Number of passes run so far"`
	States []StateView `json:"states" jsonschema_description:"Registered state kinds in dependency order"`
}

// RequestResponse acknowledges a queued transition request.
type RequestResponse struct {
	Name   string `json:"name" jsonschema_description:"State kind the request targets"`
	Value  string `json:"value" jsonschema_description:"Requested value"`
	Queued bool   `json:"queued" jsonschema_description:"True when the request is waiting for the next pass"`
}

// RecordView is the wire form of one transition record.
type RecordView struct {
	Name string  `json:"name" jsonschema_description:"State kind that changed"`
	From *string `json:"from" jsonschema_description:"Value before the pass, null if the kind was absent"`
	To   *string `json:"to" jsonschema_description:"Value after the pass, null if the kind left"`
}

// TickResponse is the structured output of the tick tool.
type TickResponse struct {
	Pass    uint64       `json:"pass" jsonschema_description:"Sequence number of the pass that ran"`
	Records []RecordView `json:"records" jsonschema_description:"Transitions produced by the pass, in production order"`
	States  []StateView  `json:"states" jsonschema_description:"State of the graph after the pass"`
}

// Engine defines the interface required by the MCP server to interact with
// the runtime. *bevy.App satisfies it.
type Engine interface {
	Descriptors() []domain.Descriptor
	Value(kind string) (string, bool)
	Records() []domain.Transition
	PassCount() uint64
	RequestByName(kind, value string) error
	Tick(ctx context.Context) error
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("bevy-mcp", strings.TrimSpace(bevy.Version)),
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

	// Start the SSE server
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_states
	listTool := mcp.NewTool("list_states",
		mcp.WithDescription("List every registered state kind with its variant, dependencies and current value."),
		mcp.WithOutputSchema[StatesResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListStates))

	// TOOL: get_state
	getTool := mcp.NewTool("get_state",
		mcp.WithDescription("Get one state kind by name, including its current value."),
		mcp.WithString("name", mcp.Required(), mcp.Description("State kind name")),
		mcp.WithOutputSchema[StateView](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetState))

	// TOOL: request_state
	requestTool := mcp.NewTool("request_state",
		mcp.WithDescription("Queue a transition request for a primary state. Requests are deferred; call the tick tool to apply them."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Primary state kind name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Requested value in encoded string form")),
		mcp.WithOutputSchema[RequestResponse](),
	)
	s.mcpServer.AddTool(requestTool, mcp.NewStructuredToolHandler(s.handleRequestState))

	// TOOL: tick
	tickTool := mcp.NewTool("tick",
		mcp.WithDescription("Run one pass: apply queued requests, propagate through the graph and report the transitions."),
		mcp.WithOutputSchema[TickResponse](),
	)
	s.mcpServer.AddTool(tickTool, mcp.NewStructuredToolHandler(s.handleTick))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the full dependency graph definition for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.engine.Descriptors())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal graph failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleListStates(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StatesResponse, error) {
	return StatesResponse{
		Pass:   s.engine.PassCount(),
		States: s.stateViews(),
	}, nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateView, error) {
	name, _ := args["name"].(string)
	for _, v := range s.stateViews() {
		if v.Name == name {
			return v, nil
		}
	}
	return StateView{}, fmt.Errorf("unknown state kind %q", name)
}

func (s *Server) handleRequestState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RequestResponse, error) {
	name, _ := args["name"].(string)
	value, _ := args["value"].(string)

	// Sanitize input
	clean, err := runner.SanitizeInput(value)
	if err != nil {
		slog.Warn("MCP RequestState: value rejected", "error", err, "size", len(value))
		return RequestResponse{}, fmt.Errorf("value rejected: %w", err)
	}
	value = clean

	if err := s.engine.RequestByName(name, value); err != nil {
		return RequestResponse{}, fmt.Errorf("request rejected: %w", err)
	}

	return RequestResponse{Name: name, Value: value, Queued: true}, nil
}

func (s *Server) handleTick(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TickResponse, error) {
	if err := s.engine.Tick(ctx); err != nil {
		// Callback failures do not undo the pass, so report the records
		// anyway and log the failures.
		slog.Error("MCP Tick: callbacks failed", "error", err)
	}

	records := s.engine.Records()
	views := make([]RecordView, 0, len(records))
	for _, r := range records {
		views = append(views, RecordView{
			Name: r.Name,
			From: optionalString(r.From),
			To:   optionalString(r.To),
		})
	}

	return TickResponse{
		Pass:    s.engine.PassCount(),
		Records: views,
		States:  s.stateViews(),
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: bevy://graph
	s.mcpServer.AddResource(mcp.NewResource("bevy://graph", "Current State Graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Descriptors())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal graph: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "bevy://graph",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func (s *Server) stateViews() []StateView {
	descs := s.engine.Descriptors()
	names := make(map[domain.KindID]string, len(descs))
	for _, d := range descs {
		names[d.ID] = d.Name
	}

	views := make([]StateView, 0, len(descs))
	for _, d := range descs {
		v := StateView{Name: d.Name, Variant: d.Variant.String()}
		for _, src := range d.Sources {
			v.Sources = append(v.Sources, names[src])
		}
		if val, ok := s.engine.Value(d.Name); ok {
			v.Value = &val
		}
		views = append(views, v)
	}
	return views
}

func optionalString(o domain.Optional) *string {
	if !o.Valid {
		return nil
	}
	s := o.String()
	return &s
}

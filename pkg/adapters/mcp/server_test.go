package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/Git0Shuai/bevy"
	"github.com/mark3labs/mcp-go/mcp"
)

// testServer builds a small game graph and wraps it in an MCP server.
func testServer(t *testing.T) *Server {
	t.Helper()

	app := bevy.New("mcp-test")
	mode, err := bevy.AddState(app, "Mode", "Menu")
	if err != nil {
		t.Fatalf("AddState: %v", err)
	}
	if _, err := bevy.AddSubState(app, "Paused", mode, func(m string) bool { return m == "Combat" }, false); err != nil {
		t.Fatalf("AddSubState: %v", err)
	}
	if _, err := bevy.AddComputedState(app, "ShowHUD", mode, func(m string) (bool, bool) { return m == "Combat", true }); err != nil {
		t.Fatalf("AddComputedState: %v", err)
	}
	if err := app.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return NewServer(app)
}

func TestHandleListStates(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	// One quiet pass so computed kinds materialize.
	if _, err := srv.handleTick(ctx, mcp.CallToolRequest{}, nil); err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	resp, err := srv.handleListStates(ctx, mcp.CallToolRequest{}, nil)
	if err != nil {
		t.Fatalf("list_states failed: %v", err)
	}

	if resp.Pass != 1 {
		t.Errorf("expected pass 1, got %d", resp.Pass)
	}
	if len(resp.States) != 3 {
		t.Fatalf("expected 3 states, got %d", len(resp.States))
	}

	byName := make(map[string]StateView, len(resp.States))
	for _, v := range resp.States {
		byName[v.Name] = v
	}

	mode := byName["Mode"]
	if mode.Variant != "primary" || mode.Value == nil || *mode.Value != "Menu" {
		t.Errorf("unexpected Mode view: %+v", mode)
	}
	if paused := byName["Paused"]; paused.Value != nil {
		t.Errorf("Paused should be absent in Menu, got %v", *paused.Value)
	}
	if hud := byName["ShowHUD"]; hud.Value == nil || *hud.Value != "false" {
		t.Errorf("unexpected ShowHUD view: %+v", hud)
	}
	if sources := byName["Paused"].Sources; len(sources) != 1 || sources[0] != "Mode" {
		t.Errorf("expected Paused sources [Mode], got %v", sources)
	}
}

func TestHandleGetState(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	view, err := srv.handleGetState(ctx, mcp.CallToolRequest{}, map[string]interface{}{"name": "Mode"})
	if err != nil {
		t.Fatalf("get_state failed: %v", err)
	}
	if view.Variant != "primary" || view.Value == nil || *view.Value != "Menu" {
		t.Errorf("unexpected view: %+v", view)
	}

	if _, err := srv.handleGetState(ctx, mcp.CallToolRequest{}, map[string]interface{}{"name": "Nope"}); err == nil {
		t.Error("expected error for unknown state kind")
	}
}

func TestHandleRequestStateAndTick(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	resp, err := srv.handleRequestState(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"name":  "Mode",
		"value": "Combat",
	})
	if err != nil {
		t.Fatalf("request_state failed: %v", err)
	}
	if !resp.Queued {
		t.Error("expected request to be queued")
	}

	// The request must not apply until a pass runs.
	view, err := srv.handleGetState(ctx, mcp.CallToolRequest{}, map[string]interface{}{"name": "Mode"})
	if err != nil {
		t.Fatalf("get_state failed: %v", err)
	}
	if view.Value == nil || *view.Value != "Menu" {
		t.Errorf("expected Mode to stay Menu before tick, got %+v", view.Value)
	}

	tick, err := srv.handleTick(ctx, mcp.CallToolRequest{}, nil)
	if err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	if len(tick.Records) == 0 {
		t.Fatal("expected transition records")
	}
	first := tick.Records[0]
	if first.Name != "Mode" || first.From == nil || *first.From != "Menu" || first.To == nil || *first.To != "Combat" {
		t.Errorf("unexpected first record: %+v", first)
	}

	byName := make(map[string]StateView, len(tick.States))
	for _, v := range tick.States {
		byName[v.Name] = v
	}
	if paused := byName["Paused"]; paused.Value == nil || *paused.Value != "false" {
		t.Errorf("expected Paused to activate in Combat, got %+v", paused.Value)
	}
}

func TestHandleRequestState_Rejections(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	if _, err := srv.handleRequestState(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"name":  "Nope",
		"value": "x",
	}); err == nil {
		t.Error("expected error for unknown kind")
	}

	// Sub kinds follow their parent and reject direct requests.
	if _, err := srv.handleRequestState(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"name":  "Paused",
		"value": "true",
	}); err == nil {
		t.Error("expected error for sub kind request")
	}

	// Values beyond the input size policy never reach the engine.
	if _, err := srv.handleRequestState(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"name":  "Mode",
		"value": strings.Repeat("a", 5000),
	}); err == nil {
		t.Error("expected error for oversized value")
	}
}

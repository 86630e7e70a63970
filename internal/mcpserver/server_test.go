package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	apppublic "farmwatch/internal/app/public"
	"farmwatch/internal/testutil"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServerStatsTools(t *testing.T) {
	fixture := testutil.NewStatsFixture()
	mcpClient := startClient(t, fixture)

	assert.ElementsMatch(t, []string{
		"top_total",
		"player_total",
		"top_week",
		"top_last_week",
		"online_daily",
		"online_monthly",
	}, toolNames(t, mcpClient))

	for _, toolName := range []string{"top_total", "top_week", "top_last_week", "online_daily", "online_monthly"} {
		res := callTool(t, mcpClient, toolName, map[string]any{})
		assert.False(t, res.IsError, "%s: %v", toolName, res.StructuredContent)
	}

	total := structured(t, callTool(t, mcpClient, "top_total", map[string]any{"limit": 1}))
	assert.EqualValues(t, 2, total["total"])
	require.Len(t, total["items"], 1)
	first := total["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "Alice", first["player_name"])
	assert.EqualValues(t, 12, first["hours"])

	daily := structured(t, callTool(t, mcpClient, "online_daily", map[string]any{"mode": "today"}))
	assert.Equal(t, "today", daily["mode"])
	assert.Len(t, daily["items"], 24)

	monthly := structured(t, callTool(t, mcpClient, "online_monthly", map[string]any{"days": 7}))
	assert.Len(t, monthly["items"], 7)

	assertErrorCode(t, callTool(t, mcpClient, "online_daily", map[string]any{"mode": "week"}), "invalid_request")
	assertErrorCode(t, callTool(t, mcpClient, "top_week", map[string]any{"limit": 1000}), "invalid_request")
	assertErrorCode(t, callTool(t, mcpClient, "online_monthly", map[string]any{"days": -3}), "invalid_request")
}

func TestMCPServerPlayerTotal(t *testing.T) {
	mcpClient := startClient(t, testutil.NewStatsFixture())

	got := structured(t, callTool(t, mcpClient, "player_total", map[string]any{"name": "Bob"}))
	assert.Equal(t, map[string]any{"player_name": "Bob", "hours": float64(5)}, got)

	assertErrorCode(t, callTool(t, mcpClient, "player_total", map[string]any{"name": "Carol"}), "player_not_found")
	assertErrorCode(t, callTool(t, mcpClient, "player_total", map[string]any{"name": " - "}), "invalid_request")
}

func TestMCPServerSourceErrorIsInternal(t *testing.T) {
	fixture := testutil.NewStatsFixture()
	fixture.Err = errors.New("db down")
	mcpClient := startClient(t, fixture)
	assertErrorCode(t, callTool(t, mcpClient, "top_total", map[string]any{}), "internal_error")
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "invalid_request", errorCode(fmt.Errorf("limit: %w", apppublic.ErrInvalidRequest)))
	assert.Equal(t, "player_not_found", errorCode(apppublic.ErrPlayerNotFound))
	assert.Equal(t, "internal_error", errorCode(errors.New("boom")))
}

func startClient(t *testing.T, fixture *testutil.StatsFixture) *client.Client {
	t.Helper()
	httpSrv := httptest.NewServer(New(fixture.Service(), "test").Handler())
	t.Cleanup(httpSrv.Close)

	ctx := context.Background()
	trans, err := transport.NewStreamableHTTP(httpSrv.URL + "/mcp")
	require.NoError(t, err)
	require.NoError(t, trans.Start(ctx))
	t.Cleanup(func() { _ = trans.Close() })

	c := client.NewClient(trans)
	_, err = c.Initialize(ctx, mcp.InitializeRequest{Params: mcp.InitializeParams{ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION}})
	require.NoError(t, err)
	return c
}

func toolNames(t *testing.T, c *client.Client) []string {
	t.Helper()
	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)
	out := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		out = append(out, tool.Name)
	}
	return out
}

func callTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}})
	require.NoError(t, err, name)
	return res
}

func assertErrorCode(t *testing.T, res *mcp.CallToolResult, want string) {
	t.Helper()
	require.True(t, res.IsError, "expected tool error %q, got %v", want, res.StructuredContent)
	errObj, ok := structured(t, res)["error"].(map[string]any)
	require.True(t, ok, "error payload missing")
	assert.Equal(t, want, errObj["code"])
}

func structured(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	b, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

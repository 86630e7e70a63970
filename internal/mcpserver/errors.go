package mcpserver

import (
	"errors"

	apppublic "farmwatch/internal/app/public"

	"github.com/mark3labs/mcp-go/mcp"
)

// toolErrorCodes maps service errors to tool error codes; the first match
// wins and anything else is internal_error.
var toolErrorCodes = []struct {
	err  error
	code string
}{
	{apppublic.ErrInvalidRequest, "invalid_request"},
	{apppublic.ErrPlayerNotFound, "player_not_found"},
}

// respond turns a service call into a tool result. Service errors are
// reported inside the result so the client sees them as tool failures,
// not protocol errors.
func respond(data any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return failure(errorCode(err), err.Error()), nil
	}
	return mcp.NewToolResultStructuredOnly(data), nil
}

func errorCode(err error) string {
	for _, c := range toolErrorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal_error"
}

func failure(code, message string) *mcp.CallToolResult {
	payload := map[string]any{"error": map[string]any{"code": code, "message": message}}
	res := mcp.NewToolResultStructured(payload, code+": "+message)
	res.IsError = true
	return res
}

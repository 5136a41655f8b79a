package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/server"
)

// DispatchHandler returns an MCP tool handler that runs command through the
// dispatcher. Command failures are reported as tool errors carrying the JSON
// error descriptor, never as protocol errors.
func DispatchHandler(sc *server.ServerContext, command string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp := sc.Dispatcher().Dispatch(ctx, dispatch.Invocation{
			Command: command,
			Args:    request.GetArguments(),
		})
		return ResultFromResponse(resp), nil
	}
}

// ResultFromResponse converts a dispatcher response into a tool result. A
// payload that encodes to a JSON object is also returned as structured
// content.
func ResultFromResponse(resp *dispatch.Response) *mcp.CallToolResult {
	if !resp.Success {
		text, err := json.Marshal(resp.Error)
		if err != nil {
			return mcp.NewToolResultError(resp.Error.Error())
		}
		return mcp.NewToolResultError(string(text))
	}

	text, err := json.MarshalIndent(resp.Payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result of %s: %v", resp.Command, err))
	}
	if bytes.HasPrefix(text, []byte("{")) {
		return mcp.NewToolResultStructured(json.RawMessage(text), string(text))
	}
	return mcp.NewToolResultText(string(text))
}

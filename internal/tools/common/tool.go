package common

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/server"
)

// ToolFromDescriptor builds the MCP tool for a command. Integer and float
// parameters both become JSON numbers; the dispatcher checks integrality.
func ToolFromDescriptor(d *dispatch.Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(d.Description),
		mcp.WithReadOnlyHintAnnotation(d.ReadOnly),
		mcp.WithDestructiveHintAnnotation(!d.ReadOnly),
	}
	for _, p := range d.Params {
		opts = append(opts, toolParam(p))
	}
	return mcp.NewTool(d.Name, opts...)
}

func toolParam(p dispatch.Param) mcp.ToolOption {
	var props []mcp.PropertyOption
	if p.Description != "" {
		props = append(props, mcp.Description(p.Description))
	}
	if p.Required {
		props = append(props, mcp.Required())
	}

	switch p.Type {
	case dispatch.TypeInt, dispatch.TypeFloat:
		if f, ok := number(p.Default); ok {
			props = append(props, mcp.DefaultNumber(f))
		}
		return mcp.WithNumber(p.Name, props...)
	case dispatch.TypeBool:
		if b, ok := p.Default.(bool); ok {
			props = append(props, mcp.DefaultBool(b))
		}
		return mcp.WithBoolean(p.Name, props...)
	case dispatch.TypeEnum:
		props = append(props, mcp.Enum(p.Enum...))
		if s, ok := p.Default.(string); ok {
			props = append(props, mcp.DefaultString(s))
		}
		return mcp.WithString(p.Name, props...)
	case dispatch.TypeJSON:
		return mcp.WithAny(p.Name, props...)
	case dispatch.TypeStringList:
		props = append(props, mcp.WithStringItems())
		return mcp.WithArray(p.Name, props...)
	default:
		if s, ok := p.Default.(string); ok {
			props = append(props, mcp.DefaultString(s))
		}
		return mcp.WithString(p.Name, props...)
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// RegisterMCPTools exposes every registered command as an MCP tool backed by
// the dispatcher. With readOnly only read-only commands are exposed. It
// returns the number of tools added.
func RegisterMCPTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) int {
	n := 0
	for _, d := range sc.Registry().Descriptors() {
		if readOnly && !d.ReadOnly {
			continue
		}
		s.AddTool(ToolFromDescriptor(d), DispatchHandler(sc, d.Name))
		n++
	}
	return n
}

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	gomcpserver "github.com/mark3labs/mcp-go/server"
)

// StdioTransport hosts the catalog over the MCP stdio transport (spec §4.6
// "stdio transport"), grounded on mark3labs/mcp-go's NewMCPServer / AddTool /
// NewStdioServer usage.
type StdioTransport struct {
	server *Server
	mcp    *gomcpserver.MCPServer
}

// NewStdioTransport wires every registered tool onto a fresh mcp-go server.
func NewStdioTransport(s *Server) *StdioTransport {
	mcpSrv := gomcpserver.NewMCPServer(
		"terminator-mcp-agent",
		serverVersion,
		gomcpserver.WithToolCapabilities(true),
		gomcpserver.WithLogging(),
		gomcpserver.WithRecovery(),
	)

	t := &StdioTransport{server: s, mcp: mcpSrv}
	for _, def := range s.Tools() {
		t.register(def)
	}
	return t
}

// serverVersion is surfaced to MCP clients during initialize.
const serverVersion = "0.1.0"

func (t *StdioTransport) register(def ToolDef) {
	schema, err := json.Marshal(def.Schema)
	if err != nil {
		schema = []byte(`{"type":"object"}`)
	}
	mcpTool := mcp.NewToolWithRawSchema(def.Name, def.Description, schema)
	t.mcp.AddTool(mcpTool, t.wrap(def))
}

func (t *StdioTransport) wrap(def ToolDef) gomcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]interface{}{}
		}

		result, err := t.server.InvokeTool(ctx, def.Name, args)
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf("tool %s failed: %v", def.Name, err))},
				IsError: true,
			}, nil
		}

		payload, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			payload = []byte(fmt.Sprintf(`{"error":"tool %s returned non-serializable payload"}`, def.Name))
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(payload))},
			IsError: false,
		}, nil
	}
}

// Listen blocks serving stdio requests until ctx is cancelled or stdin closes.
func (t *StdioTransport) Listen(ctx context.Context) error {
	started := time.Now()
	t.server.metrics.ActiveConnections.Inc()
	defer func() {
		t.server.metrics.ActiveConnections.Dec()
		t.server.metrics.ConnectionSeconds.Observe(time.Since(started).Seconds())
	}()

	stdio := gomcpserver.NewStdioServer(t.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

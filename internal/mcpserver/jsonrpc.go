package mcpserver

import (
	"context"
	"encoding/json"
)

// JSON-RPC 2.0 plumbing for the HTTP POST /mcp endpoint (spec §4.6 "HTTP
// transport"), hand-rolled rather than routed through mark3labs/mcp-go since
// that library's HTTP transport is SSE-oriented and the contract here is a
// single synchronous request/response endpoint. Grounded on the request/
// response/rpcError/dispatch shape of nevindra-oasis's mcp/server.go.

const protocolVersion = "2024-11-05"

const (
	errCodeParse          = -32700
	errCodeInvalidRequest = -32600
	errCodeMethodNotFound = -32601
	errCodeInvalidParams  = -32602
	errCodeInternal       = -32603
)

type jsonrpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (r *jsonrpcRequest) isNotification() bool { return len(r.ID) == 0 }

type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type toolDefJSON struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type toolsListResult struct {
	Tools []toolDefJSON `json:"tools"`
}

type toolCallContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolCallResult struct {
	Content []toolCallContent `json:"content"`
	IsError bool              `json:"isError"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      serverInfo     `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// jsonrpcDispatch implements the same initialize/tools-list/tools-call
// method set as the stdio transport, against the single HTTP endpoint.
// It returns nil for notifications, per JSON-RPC 2.0.
func (s *Server) jsonrpcDispatch(ctx context.Context, req *jsonrpcRequest) *jsonrpcResponse {
	switch req.Method {
	case "initialize":
		return s.respond(req.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      serverInfo{Name: "terminator-mcp-agent", Version: serverVersion},
		})
	case "notifications/initialized", "notifications/cancelled":
		return nil
	case "ping":
		return s.respond(req.ID, struct{}{})
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		if req.isNotification() {
			return nil
		}
		return s.respondError(req.ID, errCodeMethodNotFound, "method not found: "+req.Method)
	}
}

func (s *Server) handleToolsList(req *jsonrpcRequest) *jsonrpcResponse {
	defs := s.Tools()
	out := make([]toolDefJSON, 0, len(defs))
	for _, d := range defs {
		out = append(out, toolDefJSON{Name: d.Name, Description: d.Description, InputSchema: d.Schema})
	}
	return s.respond(req.ID, toolsListResult{Tools: out})
}

func (s *Server) handleToolsCall(ctx context.Context, req *jsonrpcRequest) *jsonrpcResponse {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.respondError(req.ID, errCodeInvalidParams, "invalid params: "+err.Error())
	}

	args := map[string]interface{}{}
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return s.respondError(req.ID, errCodeInvalidParams, "invalid arguments: "+err.Error())
		}
	}

	result, err := s.InvokeTool(ctx, params.Name, args)
	if err != nil {
		return s.respond(req.ID, toolCallResult{
			Content: []toolCallContent{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
	}

	payload, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		payload = []byte(`{"error":"tool returned non-serializable payload"}`)
	}
	return s.respond(req.ID, toolCallResult{
		Content: []toolCallContent{{Type: "text", Text: string(payload)}},
		IsError: false,
	})
}

func (s *Server) respond(id json.RawMessage, result interface{}) *jsonrpcResponse {
	return &jsonrpcResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func (s *Server) respondError(id json.RawMessage, code int, message string) *jsonrpcResponse {
	return &jsonrpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}}
}

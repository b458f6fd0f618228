package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRPCDispatch_InitializeReturnsProtocolVersion(t *testing.T) {
	s := testServer(t)
	resp := s.jsonrpcDispatch(context.Background(), &jsonrpcRequest{
		JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "initialize",
	})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	res, ok := resp.Result.(initializeResult)
	require.True(t, ok)
	assert.Equal(t, protocolVersion, res.ProtocolVersion)
}

func TestJSONRPCDispatch_NotificationsReturnNil(t *testing.T) {
	s := testServer(t)
	resp := s.jsonrpcDispatch(context.Background(), &jsonrpcRequest{
		JSONRPC: "2.0", Method: "notifications/initialized",
	})
	assert.Nil(t, resp)
}

func TestJSONRPCDispatch_UnknownMethodReturnsMethodNotFound(t *testing.T) {
	s := testServer(t)
	resp := s.jsonrpcDispatch(context.Background(), &jsonrpcRequest{
		JSONRPC: "2.0", ID: json.RawMessage(`2`), Method: "not/a/method",
	})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, errCodeMethodNotFound, resp.Error.Code)
}

func TestJSONRPCDispatch_UnknownMethodNotificationReturnsNil(t *testing.T) {
	s := testServer(t)
	resp := s.jsonrpcDispatch(context.Background(), &jsonrpcRequest{
		JSONRPC: "2.0", Method: "not/a/method",
	})
	assert.Nil(t, resp)
}

func TestJSONRPCDispatch_ToolsListReturnsFullCatalog(t *testing.T) {
	s := testServer(t)
	resp := s.jsonrpcDispatch(context.Background(), &jsonrpcRequest{
		JSONRPC: "2.0", ID: json.RawMessage(`3`), Method: "tools/list",
	})
	require.NotNil(t, resp)
	res, ok := resp.Result.(toolsListResult)
	require.True(t, ok)
	assert.Equal(t, len(s.Tools()), len(res.Tools))
}

func TestJSONRPCDispatch_ToolsCallInvokesTool(t *testing.T) {
	s := testServer(t)
	params, err := json.Marshal(toolCallParams{
		Name:      "click_element",
		Arguments: json.RawMessage(`{"selector":"name:Save"}`),
	})
	require.NoError(t, err)

	resp := s.jsonrpcDispatch(context.Background(), &jsonrpcRequest{
		JSONRPC: "2.0", ID: json.RawMessage(`4`), Method: "tools/call", Params: params,
	})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	res, ok := resp.Result.(toolCallResult)
	require.True(t, ok)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
}

func TestJSONRPCDispatch_ToolsCallUnknownToolReturnsIsErrorPayload(t *testing.T) {
	s := testServer(t)
	params, err := json.Marshal(toolCallParams{Name: "nonexistent_tool"})
	require.NoError(t, err)

	resp := s.jsonrpcDispatch(context.Background(), &jsonrpcRequest{
		JSONRPC: "2.0", ID: json.RawMessage(`5`), Method: "tools/call", Params: params,
	})
	require.NotNil(t, resp)
	res, ok := resp.Result.(toolCallResult)
	require.True(t, ok)
	assert.True(t, res.IsError)
}

func TestJSONRPCDispatch_ToolsCallInvalidParamsIsRejected(t *testing.T) {
	s := testServer(t)
	resp := s.jsonrpcDispatch(context.Background(), &jsonrpcRequest{
		JSONRPC: "2.0", ID: json.RawMessage(`6`), Method: "tools/call", Params: json.RawMessage(`not-json`),
	})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, errCodeInvalidParams, resp.Error.Code)
}

func TestJSONRPCDispatch_PingRespondsEmpty(t *testing.T) {
	s := testServer(t)
	resp := s.jsonrpcDispatch(context.Background(), &jsonrpcRequest{
		JSONRPC: "2.0", ID: json.RawMessage(`7`), Method: "ping",
	})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
}

package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPTransport hosts the catalog over a single synchronous JSON-RPC
// endpoint (spec §4.6 "HTTP transport"), wired the way the teacher's
// cmd/orchestrator/main.go sets up its Echo instance: HideBanner, Logger/
// Recover/CORS/RequestID middleware, a /health route, then the domain
// routes — here a single POST /mcp plus an optional /metrics.
type HTTPTransport struct {
	server *Server
	echo   *echo.Echo
}

// NewHTTPTransport builds the Echo instance and registers its routes.
func NewHTTPTransport(s *Server, metricsPath string, enableMetrics bool) *HTTPTransport {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestID())

	t := &HTTPTransport{server: s, echo: e}
	e.Use(t.metricsMiddleware)

	e.GET("/health", t.handleHealth)
	e.POST("/mcp", t.handleRPC)
	if enableMetrics {
		path := metricsPath
		if path == "" {
			path = "/metrics"
		}
		e.GET(path, echo.WrapHandler(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))
	}
	return t
}

func (t *HTTPTransport) metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		err := next(c)
		status := c.Response().Status
		t.server.metrics.HTTPRequestsTotal.WithLabelValues(c.Request().Method, c.Path(), statusLabel(status)).Inc()
		t.server.metrics.HTTPRequestSeconds.WithLabelValues(c.Request().Method, c.Path()).Observe(time.Since(started).Seconds())
		return err
	}
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func (t *HTTPTransport) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "terminator-mcp-agent"})
}

func (t *HTTPTransport) handleRPC(c echo.Context) error {
	var req jsonrpcRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusOK, jsonrpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: errCodeParse, Message: "parse error"},
		})
	}

	resp := t.server.jsonrpcDispatch(c.Request().Context(), &req)
	if resp == nil {
		return c.NoContent(http.StatusAccepted)
	}
	return c.JSON(http.StatusOK, resp)
}

// Start runs the HTTP server on addr, blocking until it stops or errors.
func (t *HTTPTransport) Start(addr string) error {
	t.server.metrics.ActiveConnections.Inc()
	defer t.server.metrics.ActiveConnections.Dec()
	return t.echo.Start(addr)
}

// Shutdown gracefully stops the HTTP server.
func (t *HTTPTransport) Shutdown(ctx context.Context) error {
	return t.echo.Shutdown(ctx)
}

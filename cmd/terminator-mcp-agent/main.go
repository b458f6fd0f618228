package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/terminator-run/terminator/internal/config"
	"github.com/terminator-run/terminator/internal/logging"
	"github.com/terminator-run/terminator/internal/mcpserver"
	"github.com/terminator-run/terminator/internal/platform"
)

// Exit codes (spec §6 "CLI surface").
const (
	exitOK           = 0
	exitConfigError  = 1
	exitRuntimeError = 2
	exitInterrupted  = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminator-mcp-agent: config error: %v\n", err)
		return exitConfigError
	}

	if err := parseFlags(cfg, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "terminator-mcp-agent: %v\n", err)
		return exitConfigError
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "terminator-mcp-agent: config error: %v\n", err)
		return exitConfigError
	}

	log := logging.New(cfg.Server.LogLevel, cfg.Server.LogFormat)

	backend, err := platform.NewBackend(log)
	if err != nil {
		log.Error("failed to initialize platform backend", "error", err)
		return exitConfigError
	}
	defer backend.Shutdown()

	log.Info("terminator-mcp-agent starting",
		"transport", cfg.Server.Transport, "backend", backend.Name(), "metrics", cfg.Telemetry.EnableMetrics)

	server := mcpserver.New(cfg, log, backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)

	switch cfg.Server.Transport {
	case "stdio":
		go func() {
			errCh <- mcpserver.NewStdioTransport(server).Listen(ctx)
		}()
	case "http":
		http := mcpserver.NewHTTPTransport(server, cfg.Telemetry.MetricsPath, cfg.Telemetry.EnableMetrics)
		go func() {
			errCh <- http.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
		}()
		go func() {
			<-ctx.Done()
			_ = http.Shutdown(context.Background())
		}()
	default:
		log.Error("unknown transport", "transport", cfg.Server.Transport)
		return exitConfigError
	}

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
		cancel()
		return exitInterrupted
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
			log.Error("transport stopped with error", "error", err)
			return exitRuntimeError
		}
	}
	return exitOK
}

// parseFlags overlays the spec §6 CLI surface onto a config already loaded
// from the environment: only flags the caller actually passed take effect
// (via flag.Visit), so an unset flag never clobbers an env-derived value.
func parseFlags(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("terminator-mcp-agent", flag.ContinueOnError)

	transport := fs.String("transport", cfg.Server.Transport, "transport to serve: stdio | http")
	host := fs.String("host", cfg.Server.Host, "HTTP transport bind host")
	port := fs.Int("port", cfg.Server.Port, "HTTP transport bind port")
	logLevel := fs.String("log-level", cfg.Server.LogLevel, "log level: debug | info | warn | error")
	enableMetrics := fs.Bool("enable-metrics", cfg.Telemetry.EnableMetrics, "expose the Prometheus /metrics endpoint")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "transport":
			cfg.Server.Transport = *transport
		case "host":
			cfg.Server.Host = *host
		case "port":
			cfg.Server.Port = *port
		case "log-level":
			cfg.Server.LogLevel = *logLevel
		case "enable-metrics":
			cfg.Telemetry.EnableMetrics = *enableMetrics
		}
	})
	return nil
}

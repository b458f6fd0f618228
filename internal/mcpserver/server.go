package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terminator-run/terminator/internal/config"
	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/locator"
	"github.com/terminator-run/terminator/internal/logging"
	"github.com/terminator-run/terminator/internal/platform"
	"github.com/terminator-run/terminator/internal/workflow"
	"github.com/terminator-run/terminator/internal/workflow/loader"
	"github.com/terminator-run/terminator/internal/workflow/state"
)

// Server hosts the tool catalog and every piece of shared state a tool
// handler may need: the platform backend, a handle cache for short-lived
// element references, the progress-event sink, and the metrics registry.
type Server struct {
	cfg     *config.Config
	log     *logging.Logger
	backend platform.Backend
	cache   *platform.HandleCache
	metrics *Metrics
	redis   *redis.Client

	tools map[string]ToolDef
	order []string
}

// New builds a Server and registers every tool in §4.6's catalog.
func New(cfg *config.Config, log *logging.Logger, backend platform.Backend) *Server {
	s := &Server{
		cfg:     cfg,
		log:     log,
		backend: backend,
		cache:   platform.NewHandleCache(platform.DefaultHandleTTL, log),
		metrics: NewMetrics(),
		tools:   make(map[string]ToolDef),
	}
	if cfg.Redis.Enabled {
		s.redis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	}

	s.register(discoveryTools(s)...)
	s.register(actionTools(s)...)
	s.register(stateTools(s)...)
	s.register(workflowTools(s)...)
	s.register(browserTools(s)...)
	s.register(utilityTools(s)...)

	s.metrics.ServerStartsTotal.Inc()
	return s
}

func (s *Server) register(defs ...ToolDef) {
	for _, d := range defs {
		if _, exists := s.tools[d.Name]; exists {
			panic(fmt.Sprintf("mcpserver: duplicate tool registration %q", d.Name))
		}
		s.tools[d.Name] = d
		s.order = append(s.order, d.Name)
	}
}

// Tools returns the catalog in registration order, for tools/list.
func (s *Server) Tools() []ToolDef {
	out := make([]ToolDef, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.tools[name])
	}
	return out
}

// InvokeTool dispatches a single tool call by name, recording metrics. It
// also implements workflow.ToolInvoker so the sequencer can call back into
// the same catalog a direct tools/call would use.
func (s *Server) InvokeTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	def, ok := s.tools[name]
	if !ok {
		err := errs.New(errs.KindInvalidArgument, "unknown tool %q", name)
		s.metrics.ErrorsTotal.WithLabelValues(string(errs.KindInvalidArgument), "dispatch").Inc()
		return nil, err
	}

	started := time.Now()
	result, err := def.Handler(ctx, args)
	s.metrics.ToolExecSeconds.WithLabelValues(name).Observe(time.Since(started).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
		s.metrics.ErrorsTotal.WithLabelValues(string(kindOf(err)), "tool:"+name).Inc()
	}
	s.metrics.ToolCallsTotal.WithLabelValues(name, status).Inc()
	return result, err
}

func kindOf(err error) errs.Kind {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return errs.KindInternalError
}

// newLocator builds a locator.Locator for selectorStr against the server's
// backend, attaching alternative/fallback selectors when present in args.
func (s *Server) newLocator(args map[string]interface{}) (*locator.Locator, error) {
	selStr, err := requireString(args, "selector")
	if err != nil {
		return nil, err
	}
	loc, err := locator.New(s.backend, s.log, selStr)
	if err != nil {
		return nil, err
	}
	if alts := argStringSlice(args, "alternative_selectors"); len(alts) > 0 {
		loc, err = loc.WithAlternatives(alts...)
		if err != nil {
			return nil, err
		}
	}
	if fbs := argStringSlice(args, "fallback_selectors"); len(fbs) > 0 {
		loc, err = loc.WithFallbacks(fbs...)
		if err != nil {
			return nil, err
		}
	}
	if ms := argInt64(args, "timeout_ms", 0); ms > 0 {
		loc = loc.Timeout(ms)
	}
	return loc, nil
}

// workflowRuntime builds the pieces a single execute_sequence call needs:
// a Store rooted at the workflow's own directory (or TERMINATOR_STATE_DIR,
// if overridden) and an Executor wired back to this Server as its invoker.
func (s *Server) workflowRuntime(source string) (*workflow.Executor, error) {
	dir := s.cfg.Workflow.StateDir
	if dir == "" {
		dir = loader.Dir(source)
	}

	var lock state.Locker
	if s.redis != nil {
		lock = state.NewRedisLocker(s.redis, 10*time.Minute)
	}
	store := state.New(dir, lock)

	var sink *workflow.EventSink
	if s.cfg.Workflow.EventPipePath != "" {
		var err error
		sink, err = workflow.NewEventSink(s.cfg.Workflow.EventPipePath)
		if err != nil {
			return nil, errs.Wrap(err, errs.KindInternalError, "opening event pipe %q", s.cfg.Workflow.EventPipePath)
		}
	}

	return workflow.NewExecutor(s, store, s.log, sink)
}

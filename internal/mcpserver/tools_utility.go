package mcpserver

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/terminator-run/terminator/internal/errs"
)

// utilityTools implements the Utility category (spec §4.6): spawning
// processes, opening files/applications, global (non-element-scoped) input,
// and plain delays, grounded on the teacher's exec.Command usage in
// common/metrics/system.go for running short-lived external commands.
func utilityTools(s *Server) []ToolDef {
	return []ToolDef{
		{
			Name:        "run_command",
			Description: "Run a shell command and return its combined stdout/stderr.",
			Schema: objectSchema(map[string]interface{}{
				"command":    stringProp("Command line to run, interpreted by the platform's default shell."),
				"timeout_ms": numberProp("Kill the command if it runs past this deadline, in milliseconds (default 30000)."),
			}, "command"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				command, err := requireString(args, "command")
				if err != nil {
					return nil, err
				}
				timeout := time.Duration(argInt64(args, "timeout_ms", 30000)) * time.Millisecond
				cmdCtx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				cmd := shellCommand(cmdCtx, command)
				out, runErr := cmd.CombinedOutput()
				result := map[string]interface{}{"output": string(out)}
				if runErr != nil {
					if exitErr, ok := runErr.(*exec.ExitError); ok {
						result["exit_code"] = exitErr.ExitCode()
						return result, errs.Wrap(runErr, errs.KindPlatformError, "command %q exited %d", command, exitErr.ExitCode())
					}
					return result, errs.Wrap(runErr, errs.KindPlatformError, "running command %q", command)
				}
				result["exit_code"] = 0
				return result, nil
			},
		},
		{
			Name:        "delay",
			Description: "Pause execution for a fixed duration.",
			Schema:      objectSchema(map[string]interface{}{"duration_ms": numberProp("How long to pause, in milliseconds.")}, "duration_ms"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				d := time.Duration(argInt64(args, "duration_ms", 0)) * time.Millisecond
				select {
				case <-ctx.Done():
					return nil, errs.Wrap(ctx.Err(), errs.KindCancelled, "delay cancelled")
				case <-time.After(d):
				}
				return map[string]interface{}{"waited_ms": d.Milliseconds()}, nil
			},
		},
		{
			Name:        "open_application",
			Description: "Launch an application by name or path.",
			Schema:      objectSchema(map[string]interface{}{"path": stringProp("Executable path or, on macOS/Linux, an application/command name.")}, "path"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				path, err := requireString(args, "path")
				if err != nil {
					return nil, err
				}
				if err := openPath(ctx, path); err != nil {
					return nil, errs.Wrap(err, errs.KindPlatformError, "opening application %q", path)
				}
				return map[string]interface{}{"launched": path}, nil
			},
		},
		{
			Name:        "open_file",
			Description: "Open a file with its associated default application.",
			Schema:      objectSchema(map[string]interface{}{"path": stringProp("Filesystem path to open.")}, "path"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				path, err := requireString(args, "path")
				if err != nil {
					return nil, err
				}
				if err := openPath(ctx, path); err != nil {
					return nil, errs.Wrap(err, errs.KindPlatformError, "opening file %q", path)
				}
				return map[string]interface{}{"opened": path}, nil
			},
		},
		{
			Name:        "press_key_global",
			Description: "Synthesize a physical key chord at the current keyboard focus, bypassing element resolution.",
			Schema:      objectSchema(map[string]interface{}{"key": stringProp("Key chord, e.g. \"Ctrl+A\".")}, "key"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				key, err := requireString(args, "key")
				if err != nil {
					return nil, err
				}
				if err := s.backend.GlobalPressKey(ctx, key); err != nil {
					return nil, err
				}
				return map[string]interface{}{"key": key}, nil
			},
		},
		{
			Name:        "activate_element",
			Description: "Bring the element resolved by selector's owning window to the foreground.",
			Schema:      objectSchema(map[string]interface{}{"selector": stringProp("Selector chain identifying the target element.")}, "selector"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				el, err := loc.First(ctx)
				if err != nil {
					return nil, err
				}
				if err := el.ActivateWindow(ctx); err != nil {
					return nil, err
				}
				return map[string]interface{}{"activated": true}, nil
			},
		},
		{
			Name:        "close_element",
			Description: "Close the element resolved by selector's owning window or application.",
			Schema:      objectSchema(map[string]interface{}{"selector": stringProp("Selector chain identifying the target element.")}, "selector"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				loc, err := s.newLocator(args)
				if err != nil {
					return nil, err
				}
				el, err := loc.First(ctx)
				if err != nil {
					return nil, err
				}
				if err := el.Close(ctx); err != nil {
					return nil, err
				}
				return map[string]interface{}{"closed": true}, nil
			},
		},
	}
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// openPath dispatches to each OS's native "open with default handler" command.
func openPath(ctx context.Context, path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", path)
	case "windows":
		cmd = exec.CommandContext(ctx, "cmd", "/C", "start", "", path)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", path)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errs.New(errs.KindPlatformError, "opening %q: %s", path, strings.TrimSpace(string(out)))
	}
	return nil
}

//go:build windows

package platform

import (
	"github.com/terminator-run/terminator/internal/logging"
	"github.com/terminator-run/terminator/internal/platform/windowsbackend"
)

// NewBackend constructs the backend appropriate for the running GOOS
// (spec §4.1: "exactly one backend compiles in per build target").
func NewBackend(log *logging.Logger) (Backend, error) {
	return windowsbackend.New(log)
}

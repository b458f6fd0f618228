//go:build linux

package platform

import (
	"github.com/terminator-run/terminator/internal/logging"
	"github.com/terminator-run/terminator/internal/platform/linuxbackend"
)

// NewBackend constructs the backend appropriate for the running GOOS.
func NewBackend(log *logging.Logger) (Backend, error) {
	return linuxbackend.New(log)
}

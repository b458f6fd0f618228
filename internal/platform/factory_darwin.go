//go:build darwin

package platform

import (
	"github.com/terminator-run/terminator/internal/logging"
	"github.com/terminator-run/terminator/internal/platform/darwinbackend"
)

// NewBackend constructs the backend appropriate for the running GOOS.
func NewBackend(log *logging.Logger) (Backend, error) {
	return darwinbackend.New(log)
}

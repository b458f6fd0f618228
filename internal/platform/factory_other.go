//go:build !windows && !darwin && !linux

package platform

import (
	"runtime"

	"github.com/terminator-run/terminator/internal/logging"
)

// NewBackend returns a backend that reports UnsupportedPlatform for every
// operation; no real driver claims this GOOS.
func NewBackend(log *logging.Logger) (Backend, error) {
	return newUnsupportedBackend(runtime.GOOS), nil
}

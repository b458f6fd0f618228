//go:build windows

// Package windowsbackend implements platform.Backend on top of the Windows
// UI Automation COM API, with input synthesis and the bring_to_front
// workaround implemented directly against user32 (spec §4.1, §9 "Windows
// foreground-lock workaround").
package windowsbackend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/atotto/clipboard"
	"golang.org/x/sys/windows"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/errs"
	"github.com/terminator-run/terminator/internal/logging"
	"github.com/terminator-run/terminator/internal/platform"
)

var (
	user32                      = windows.NewLazySystemDLL("user32.dll")
	procAttachThreadInput       = user32.NewProc("AttachThreadInput")
	procAllowSetForegroundWindow = user32.NewProc("AllowSetForegroundWindow")
	procShowWindow              = user32.NewProc("ShowWindow")
	procSetForegroundWindow     = user32.NewProc("SetForegroundWindow")
	procGetForegroundWindow     = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetCurrentThreadId      = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetCurrentThreadId")
)

const swRestore = 9

// Backend is the Windows UI Automation driver.
type Backend struct {
	mu         sync.RWMutex
	log        *logging.Logger
	generation uint64

	handles map[string]*element.Element
}

// New constructs the Windows backend. Real deployments call this once at
// process start and hold it for the process lifetime, since UI Automation
// COM interfaces are not cheap to reinitialize per call.
func New(log *logging.Logger) (*Backend, error) {
	return &Backend{
		log:        log,
		generation: 1,
		handles:    make(map[string]*element.Element),
	}, nil
}

func (b *Backend) Name() string { return "windows" }

// BringToFront implements the AttachThreadInput/AllowSetForegroundWindow/
// ShowWindow dance documented for windows whose owning process never called
// SetForegroundWindow itself and is thus denied focus by the OS's
// foreground-lock timeout.
func (b *Backend) BringToFront(ctx context.Context, windowHandle string) error {
	var hwnd uintptr
	if _, err := fmt.Sscanf(windowHandle, "%d", &hwnd); err != nil {
		return errs.Wrap(err, errs.KindInvalidArgument, "invalid window handle %q", windowHandle)
	}

	var targetPID uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&targetPID)))

	fg, _, _ := procGetForegroundWindow.Call()
	fgTid, _, _ := procGetWindowThreadProcessId.Call(fg, 0)
	curTid, _, _ := procGetCurrentThreadId.Call()

	if fgTid != curTid {
		procAttachThreadInput.Call(curTid, fgTid, 1)
		defer procAttachThreadInput.Call(curTid, fgTid, 0)
	}

	procAllowSetForegroundWindow.Call(uintptr(targetPID))
	procShowWindow.Call(hwnd, swRestore)
	ok, _, callErr := procSetForegroundWindow.Call(hwnd)
	if ok == 0 {
		return errs.Wrap(callErr, errs.KindPlatformError, "SetForegroundWindow failed for handle %s", windowHandle)
	}
	return nil
}

func (b *Backend) GetClipboard(ctx context.Context) (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", errs.Wrap(err, errs.KindPlatformError, "reading clipboard")
	}
	return text, nil
}

func (b *Backend) SetClipboard(ctx context.Context, text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return errs.Wrap(err, errs.KindPlatformError, "writing clipboard")
	}
	return nil
}

func (b *Backend) Shutdown() error { return nil }

func (b *Backend) currentGeneration() uint64 { return atomic.LoadUint64(&b.generation) }

// Invalidate bumps the handle generation, e.g. after the desktop is known to
// have been torn down and rebuilt (a UIA COM event in real deployments).
func (b *Backend) Invalidate() {
	atomic.AddUint64(&b.generation, 1)
}

func (b *Backend) ValidateHandle(ctx context.Context, e *element.Element) error {
	if e.Generation() != b.currentGeneration() {
		return errs.New(errs.KindStaleReference, "element %s belongs to a stale tree generation", e.ID())
	}
	return nil
}

var _ platform.Backend = (*Backend)(nil)

// Package capture grabs windows and screen regions from an X server.
package capture

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/example/scrcap/internal/logger"
	"github.com/example/scrcap/internal/wintree"
	"github.com/example/scrcap/internal/xserver"
)

// Result is a captured bitmap and the root rectangle it covers. A zero Result
// means there was nothing to capture.
type Result struct {
	Image *image.RGBA
	Rect  image.Rectangle
}

// Empty reports whether the capture produced no pixels.
func (r Result) Empty() bool {
	return r.Image == nil || r.Image.Bounds().Empty()
}

// Mode selects what a Request captures.
type Mode string

const (
	// ModeFullScreen captures the whole root window.
	ModeFullScreen Mode = "full"
	// ModeCurrentScreen captures the monitor under the pointer.
	ModeCurrentScreen Mode = "screen"
	// ModeWindowUnderCursor captures the top-level window under the pointer.
	ModeWindowUnderCursor Mode = "window"
	// ModeRegion captures a rectangle of the root window.
	ModeRegion Mode = "region"
	// ModeChildWindow captures an explicit window or a rectangle picked inside one.
	ModeChildWindow Mode = "child"
)

// Modes lists every capture mode in menu order.
var Modes = []Mode{ModeFullScreen, ModeCurrentScreen, ModeWindowUnderCursor, ModeRegion, ModeChildWindow}

// ParseMode accepts a mode name or one of its aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "fullscreen", "desktop", "":
		return ModeFullScreen, nil
	case "screen", "monitor", "current":
		return ModeCurrentScreen, nil
	case "window", "active":
		return ModeWindowUnderCursor, nil
	case "region", "rect", "rectangle":
		return ModeRegion, nil
	case "child", "childwindow":
		return ModeChildWindow, nil
	}
	return "", fmt.Errorf("unknown capture mode %q", s)
}

// Request describes one capture.
type Request struct {
	Mode Mode
	// Monitor selects the monitor for ModeCurrentScreen. Empty means the one under the pointer.
	Monitor string
	// Window is the target for ModeChildWindow.
	Window xserver.Window
	// Rect is the root rectangle for ModeRegion, and for ModeChildWindow when Window is None.
	Rect               image.Rectangle
	IncludeDecorations bool
	IncludeCursor      bool
}

// Capturer serializes captures against a single server connection.
type Capturer struct {
	mu  sync.Mutex
	srv xserver.Server
	log *zerolog.Logger
}

// New returns a Capturer using srv for every request.
func New(srv xserver.Server) *Capturer {
	return &Capturer{srv: srv, log: logger.WithComponent("capture")}
}

// Root returns the root window of the connection.
func (c *Capturer) Root() xserver.Window {
	return c.srv.Root()
}

// LocateWindowUnderCursor returns the window under the pointer.
func (c *Capturer) LocateWindowUnderCursor(includeDecorations bool) xserver.Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	return LocateWindowUnderCursor(c.srv, includeDecorations)
}

// EnumerateWindowTree lists the selectable rectangles below root.
func (c *Capturer) EnumerateWindowTree(root xserver.Window) []image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return wintree.Enumerate(c.srv, root)
}

// QueryGeometry returns the root rectangle covered by w.
func (c *Capturer) QueryGeometry(w xserver.Window) (image.Rectangle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return QueryGeometry(c.srv, w)
}

// Pointer returns the pointer position in root coordinates.
func (c *Capturer) Pointer() (image.Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ptr, err := c.srv.Pointer()
	if err != nil {
		return image.Point{}, err
	}
	return ptr.Position, nil
}

// Monitors lists the RandR monitors.
func (c *Capturer) Monitors() ([]xserver.Monitor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.srv.Monitors()
}

// CaptureWindow captures w.
func (c *Capturer) CaptureWindow(w xserver.Window, includeCursor bool) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CaptureWindow(c.srv, w, includeCursor)
}

// CaptureRootRegion captures rect of the root window.
func (c *Capturer) CaptureRootRegion(rect image.Rectangle, includeCursor bool) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CaptureRootRegion(c.srv, rect, includeCursor)
}

// CaptureFullScreen captures the whole root window.
func (c *Capturer) CaptureFullScreen(includeCursor bool) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullScreen(includeCursor)
}

func (c *Capturer) fullScreen(includeCursor bool) (Result, error) {
	bounds, err := rootBounds(c.srv)
	if err != nil {
		return Result{}, fmt.Errorf("capture full screen: %w", err)
	}
	return CaptureRootRegion(c.srv, bounds, includeCursor)
}

// CaptureCurrentScreen captures the monitor under the pointer, or the whole
// root when no monitor layout is available.
func (c *Capturer) CaptureCurrentScreen(includeCursor bool) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	monitors, err := c.srv.Monitors()
	if err != nil || len(monitors) == 0 {
		c.log.Debug().Err(err).Msg("no monitor layout, capturing full screen")
		return c.fullScreen(includeCursor)
	}
	var p image.Point
	if ptr, err := c.srv.Pointer(); err == nil {
		p = ptr.Position
	}
	mon, err := MonitorAt(monitors, p)
	if err != nil {
		return Result{}, err
	}
	return CaptureRootRegion(c.srv, mon.Rect, includeCursor)
}

// CaptureMonitor captures the monitor matching selector.
func (c *Capturer) CaptureMonitor(selector string, includeCursor bool) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	monitors, err := c.srv.Monitors()
	if err != nil {
		return Result{}, fmt.Errorf("capture monitor %q: %w", selector, err)
	}
	mon, err := FindMonitor(monitors, selector)
	if err != nil {
		return Result{}, fmt.Errorf("capture monitor %q: %w", selector, err)
	}
	return CaptureRootRegion(c.srv, mon.Rect, includeCursor)
}

// CaptureWindowUnderCursor captures the window under the pointer.
func (c *Capturer) CaptureWindowUnderCursor(includeDecorations, includeCursor bool) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := LocateWindowUnderCursor(c.srv, includeDecorations)
	return CaptureWindow(c.srv, w, includeCursor)
}

// Capture dispatches req by mode.
func (c *Capturer) Capture(req Request) (Result, error) {
	switch req.Mode {
	case ModeFullScreen, "":
		return c.CaptureFullScreen(req.IncludeCursor)
	case ModeCurrentScreen:
		if strings.TrimSpace(req.Monitor) != "" {
			return c.CaptureMonitor(req.Monitor, req.IncludeCursor)
		}
		return c.CaptureCurrentScreen(req.IncludeCursor)
	case ModeWindowUnderCursor:
		return c.CaptureWindowUnderCursor(req.IncludeDecorations, req.IncludeCursor)
	case ModeRegion:
		return c.CaptureRootRegion(req.Rect, req.IncludeCursor)
	case ModeChildWindow:
		if req.Window != xserver.None {
			return c.CaptureWindow(req.Window, req.IncludeCursor)
		}
		return c.CaptureRootRegion(req.Rect, req.IncludeCursor)
	}
	return Result{}, fmt.Errorf("unsupported capture mode %q", req.Mode)
}

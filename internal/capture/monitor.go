package capture

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/example/scrcap/internal/xserver"
)

var errNoMonitors = errors.New("no monitors available")

// FindMonitor resolves a selector against monitors. Accepted selectors are
// "primary", an index with or without a leading '#', or a substring of the
// output name. An empty selector picks the first monitor.
func FindMonitor(monitors []xserver.Monitor, selector string) (xserver.Monitor, error) {
	if len(monitors) == 0 {
		return xserver.Monitor{}, errNoMonitors
	}
	sel := strings.TrimSpace(selector)
	if sel == "" {
		return monitors[0], nil
	}
	lower := strings.ToLower(sel)
	if lower == "primary" {
		for _, mon := range monitors {
			if mon.Primary {
				return mon, nil
			}
		}
		return monitors[0], nil
	}
	if idx, err := strconv.Atoi(strings.TrimPrefix(lower, "#")); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return xserver.Monitor{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, mon := range monitors {
		if strings.Contains(strings.ToLower(mon.Name), lower) {
			return mon, nil
		}
	}
	return xserver.Monitor{}, fmt.Errorf("monitor %q not found", selector)
}

// MonitorAt returns the monitor containing p. When no monitor contains it the
// primary monitor is returned, then the first one.
func MonitorAt(monitors []xserver.Monitor, p image.Point) (xserver.Monitor, error) {
	if len(monitors) == 0 {
		return xserver.Monitor{}, errNoMonitors
	}
	for _, mon := range monitors {
		if p.In(mon.Rect) {
			return mon, nil
		}
	}
	return FindMonitor(monitors, "primary")
}

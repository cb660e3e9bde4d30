package capture

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/example/scrcap/internal/xserver"
)

func sampleMonitors() []xserver.Monitor {
	return []xserver.Monitor{
		{Index: 0, Name: "eDP-1", Rect: image.Rect(0, 0, 1920, 1080)},
		{Index: 1, Name: "HDMI-1", Rect: image.Rect(1920, 0, 4480, 1440), Primary: true},
	}
}

func TestFindMonitor(t *testing.T) {
	monitors := sampleMonitors()
	tests := []struct {
		selector string
		want     string
		errText  string
	}{
		{selector: "", want: "eDP-1"},
		{selector: "primary", want: "HDMI-1"},
		{selector: "#1", want: "HDMI-1"},
		{selector: "0", want: "eDP-1"},
		{selector: "hdmi", want: "HDMI-1"},
		{selector: "#5", errText: "out of range"},
		{selector: "dp-9", errText: "not found"},
	}
	for _, tc := range tests {
		got, err := FindMonitor(monitors, tc.selector)
		if tc.errText != "" {
			if err == nil || !strings.Contains(err.Error(), tc.errText) {
				t.Fatalf("FindMonitor(%q) error = %v, want %q", tc.selector, err, tc.errText)
			}
			continue
		}
		if err != nil {
			t.Fatalf("FindMonitor(%q): %v", tc.selector, err)
		}
		if got.Name != tc.want {
			t.Fatalf("FindMonitor(%q) = %s, want %s", tc.selector, got.Name, tc.want)
		}
	}
}

func TestFindMonitorEmpty(t *testing.T) {
	if _, err := FindMonitor(nil, "primary"); !errors.Is(err, errNoMonitors) {
		t.Fatalf("expected errNoMonitors, got %v", err)
	}
}

func TestMonitorAt(t *testing.T) {
	monitors := sampleMonitors()
	if got, _ := MonitorAt(monitors, image.Pt(100, 100)); got.Name != "eDP-1" {
		t.Fatalf("MonitorAt = %s", got.Name)
	}
	if got, _ := MonitorAt(monitors, image.Pt(2000, 1200)); got.Name != "HDMI-1" {
		t.Fatalf("MonitorAt = %s", got.Name)
	}
	if got, _ := MonitorAt(monitors, image.Pt(100, 1300)); got.Name != "HDMI-1" {
		t.Fatalf("expected primary fallback, got %s", got.Name)
	}
}

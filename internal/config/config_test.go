package config

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := NewLoader("1.0", "").Load(viper.New())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := New()
	if *cfg != *want {
		t.Fatalf("defaults mismatch:\n got %+v\nwant %+v", cfg, want)
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	input := `
mode: window
delay: 2s
include_pointer: true
save_dir: /tmp/screens
filename_template: shot-%NNN
format: jpg
notify:
  capture: true
  copy: true
`
	if err := os.WriteFile(path, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewLoader("1.0", path).Load(viper.New())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Mode != "window" || cfg.Delay != 2*time.Second || !cfg.IncludePointer {
		t.Errorf("unexpected capture settings %+v", cfg)
	}
	if cfg.SaveDir != "/tmp/screens" || cfg.FilenameTemplate != "shot-%NNN" || cfg.Format != "jpg" {
		t.Errorf("unexpected output settings %+v", cfg)
	}
	if !cfg.Notify.Capture || cfg.Notify.Save || !cfg.Notify.Copy || !cfg.Notify.AutoFailure {
		t.Errorf("unexpected notify settings %+v", cfg.Notify)
	}
	if !cfg.IncludeDecorations {
		t.Errorf("expected default include_decorations to survive")
	}
}

func TestLoadMissingOverrideFails(t *testing.T) {
	isolate(t)
	if _, err := NewLoader("1.0", filepath.Join(t.TempDir(), "nope.yaml")).Load(viper.New()); err == nil {
		t.Fatalf("expected error for missing --config file")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SCRCAP_SAVE_DIR", "/srv/shots")
	t.Setenv("SCRCAP_NOTIFY_SAVE", "true")
	cfg, err := NewLoader("1.0", "").Load(viper.New())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SaveDir != "/srv/shots" || !cfg.Notify.Save {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestBareDelayIsSeconds(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("delay: 3\nauto_interval: 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	v := viper.New()
	cfg, err := NewLoader("1.0", path).Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Delay != 3*time.Second || cfg.AutoInterval != 1500*time.Millisecond {
		t.Fatalf("delay = %v, interval = %v", cfg.Delay, cfg.AutoInterval)
	}
	if got := Duration(v, "delay"); got != 3*time.Second {
		t.Fatalf("Duration(delay) = %v", got)
	}

	t.Setenv("SCRCAP_DELAY", "2")
	v = viper.New()
	cfg, err = NewLoader("1.0", "").Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Delay != 2*time.Second || Duration(v, "delay") != 2*time.Second {
		t.Fatalf("env delay = %v / %v", cfg.Delay, Duration(v, "delay"))
	}

	t.Setenv("SCRCAP_DELAY", "250ms")
	v = viper.New()
	cfg, err = NewLoader("1.0", "").Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Delay != 250*time.Millisecond || Duration(v, "delay") != 250*time.Millisecond {
		t.Fatalf("unit delay = %v / %v", cfg.Delay, Duration(v, "delay"))
	}
	if got := Duration(v, "auto_interval"); got != New().AutoInterval {
		t.Fatalf("default interval = %v", got)
	}
}

func TestXDGPathIsFound(t *testing.T) {
	dir := isolate(t)
	if err := os.MkdirAll(filepath.Join(dir, "scrcap"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scrcap", "config.yaml"), []byte("format: bmp\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader("1.0", "")
	if got := l.GetConfigPath(); got != filepath.Join(dir, "scrcap", "config.yaml") {
		t.Fatalf("GetConfigPath = %q", got)
	}
	cfg, err := l.Load(viper.New())
	if err != nil || cfg.Format != "bmp" {
		t.Fatalf("Load = %+v, %v", cfg, err)
	}
}

func TestCircular(t *testing.T) {
	isolate(t)
	cfg := New()
	cfg.SaveDir = "/home/user/shots"
	cfg.Delay = 3 * time.Second
	cfg.Notify.Copy = true

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.Contains(cfg.String(), "save_dir: /home/user/shots") {
		t.Errorf("String() missing save_dir:\n%s", cfg.String())
	}

	cfg2, err := NewLoader("1.0", path).Load(viper.New())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if *cfg != *cfg2 {
		t.Errorf("config mismatch:\n got %+v\nwant %+v", cfg2, cfg)
	}
}

func TestStateRoundTrip(t *testing.T) {
	dir := isolate(t)
	path, err := StatePath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "scrcap", "state.yaml") {
		t.Fatalf("StatePath = %q", path)
	}
	s, err := LoadState(path)
	if err != nil {
		t.Fatalf("LoadState missing file: %v", err)
	}
	if _, ok := s.Last(); ok {
		t.Fatalf("expected no last rect")
	}
	s.Remember(image.Rect(30, 40, 10, 20))
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s2, err := LoadState(path)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	r, ok := s2.Last()
	if !ok || r != image.Rect(10, 20, 30, 40) {
		t.Fatalf("Last = %v, %v", r, ok)
	}
}

package notify

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"
)

type sent struct {
	title, body string
	opts        Options
}

func captureSends(t *testing.T, err error) *[]sent {
	t.Helper()
	var calls []sent
	prev := send
	send = func(title, body string, opts Options) error {
		calls = append(calls, sent{title: title, body: body, opts: opts})
		return err
	}
	t.Cleanup(func() { send = prev })
	return &calls
}

func TestDisabledEventsAreSilent(t *testing.T) {
	calls := captureSends(t, nil)
	n := New(DefaultPreferences())
	n.Capture("window", nil)
	n.Copy("")
	n.AutoFailure(errors.New("boom"))
	if len(*calls) != 0 {
		t.Fatalf("expected no notifications, got %d", len(*calls))
	}
}

func TestNilNotifierIsSafe(t *testing.T) {
	calls := captureSends(t, nil)
	var n *Notifier
	n.Enable(EventCopy, true)
	n.Copy("x")
	if len(*calls) != 0 {
		t.Fatalf("nil notifier dispatched")
	}
}

func TestCopyUsesTemplateAndDefaultDetail(t *testing.T) {
	calls := captureSends(t, nil)
	n := New(DefaultPreferences())
	n.Enable(EventCopy, true)
	n.Copy("  ")
	if len(*calls) != 1 {
		t.Fatalf("expected one notification, got %d", len(*calls))
	}
	got := (*calls)[0]
	if got.title != AppName || got.body != "Copied image to clipboard" {
		t.Fatalf("unexpected notification %+v", got)
	}
}

func TestSaveReportsAbsolutePathAndThumbnail(t *testing.T) {
	calls := captureSends(t, nil)
	n := New(DefaultPreferences())
	n.Enable(EventSave, true)
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	n.Save("shot.png", img)
	if len(*calls) != 1 {
		t.Fatalf("expected one notification")
	}
	got := (*calls)[0]
	if !strings.HasPrefix(got.body, "Saved ") || !filepath.IsAbs(strings.TrimPrefix(got.body, "Saved ")) {
		t.Fatalf("body %q does not carry an absolute path", got.body)
	}
	if got.opts.Image == nil || got.opts.Image.Width != 4 || got.opts.Image.Height != 2 {
		t.Fatalf("unexpected image hint %+v", got.opts.Image)
	}
}

func TestAutoFailureIsCritical(t *testing.T) {
	calls := captureSends(t, errors.New("no bus"))
	n := New(DefaultPreferences())
	n.Enable(EventAutoFailure, true)
	n.AutoFailure(nil)
	n.AutoFailure(errors.New("bad window"))
	if len(*calls) != 1 {
		t.Fatalf("expected one notification, got %d", len(*calls))
	}
	got := (*calls)[0]
	if !got.opts.Critical || got.body != "Auto capture stopped: bad window" {
		t.Fatalf("unexpected notification %+v", got)
	}
}

func TestEmptyTemplateSuppresses(t *testing.T) {
	calls := captureSends(t, nil)
	prefs := DefaultPreferences()
	prefs.Events[EventCapture] = EventPreference{Template: " "}
	n := New(prefs)
	n.Enable(EventCapture, true)
	n.Capture("full", nil)
	if len(*calls) != 0 {
		t.Fatalf("expected suppression")
	}
}

func TestNewImageDataUnpremultiplies(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 12, 11))
	img.SetRGBA(10, 10, color.RGBA{R: 0x80, A: 0x80})
	img.SetRGBA(11, 10, color.RGBA{G: 0xff, A: 0xff})
	d := NewImageData(img)
	if d.Width != 2 || d.Height != 1 || d.Channels != 4 || d.BitsPerSample != 8 || !d.HasAlpha {
		t.Fatalf("unexpected header %+v", d)
	}
	if d.RowStride != 8 || len(d.Data) != 8 {
		t.Fatalf("unexpected layout stride=%d len=%d", d.RowStride, len(d.Data))
	}
	if got := d.At(0, 0); got != (color.NRGBA{R: 0xff, A: 0x80}) {
		t.Fatalf("pixel 0 = %#v", got)
	}
	if got := d.At(1, 0); got != (color.NRGBA{G: 0xff, A: 0xff}) {
		t.Fatalf("pixel 1 = %#v", got)
	}
}

func TestThumbnailBoundsLongerSide(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 512, 128))
	d := thumbnail(img)
	if d.Width != ThumbnailSize || d.Height != 32 {
		t.Fatalf("thumbnail size = %dx%d", d.Width, d.Height)
	}
	if thumbnail(image.NewRGBA(image.Rect(0, 0, 0, 0))) != nil {
		t.Fatalf("expected nil for empty image")
	}
}

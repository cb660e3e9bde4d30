package ui

import (
	"fmt"
	"image"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/scrcap/internal/capture"
	"github.com/example/scrcap/internal/logger"
)

// runMain starts the shiny driver. Tests replace it.
var runMain = driver.Main

// Preview opens a window showing img scaled into the preview bounds and
// blocks until the user closes it.
func Preview(img image.Image) error {
	thumb := Thumbnail(img)
	if thumb == nil {
		return fmt.Errorf("ui: nothing to preview")
	}
	return show("scrcap preview", thumb.Bounds().Size(), &previewer{thumb: thumb})
}

// GrabWindow shows a snapshot of the screen and lets the user pick one of the
// window rectangles under the pointer.
func GrabWindow(c *capture.Capturer) (capture.Result, error) {
	shot, err := c.CaptureFullScreen(false)
	if err != nil {
		return capture.Result{}, err
	}
	if shot.Empty() {
		return capture.Result{}, fmt.Errorf("ui: empty screen capture")
	}
	g := newWindowGrabber(shot.Image, c.EnumerateWindowTree(c.Root()))
	if p, err := c.Pointer(); err == nil {
		g.sel.MoveTo(p)
	}
	if err := show("scrcap select window", shot.Image.Bounds().Size(), g); err != nil {
		return capture.Result{}, err
	}
	if !g.finished {
		return capture.Result{}, ErrCancelled
	}
	return g.result, nil
}

// GrabRegion shows a snapshot of the screen and lets the user drag out a
// rectangle.
func GrabRegion(c *capture.Capturer) (capture.Result, error) {
	shot, err := c.CaptureFullScreen(false)
	if err != nil {
		return capture.Result{}, err
	}
	if shot.Empty() {
		return capture.Result{}, fmt.Errorf("ui: empty screen capture")
	}
	g := newRegionGrabber(shot.Image)
	if err := show("scrcap select region", shot.Image.Bounds().Size(), g); err != nil {
		return capture.Result{}, err
	}
	if !g.finished {
		return capture.Result{}, ErrCancelled
	}
	return g.result, nil
}

func show(title string, sz image.Point, sess session) error {
	var runErr error
	runMain(func(s screen.Screen) {
		runErr = loop(s, title, sz, sess)
	})
	return runErr
}

func loop(s screen.Screen, title string, sz image.Point, sess session) error {
	log := logger.WithComponent("ui")
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: sz.X, Height: sz.Y, Title: title})
	if err != nil {
		return fmt.Errorf("new window: %w", err)
	}
	defer w.Release()

	for !sess.done() {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}
		case size.Event:
			sz = e.Size()
			w.Send(paint.Event{})
		case paint.Event:
			if err := paintFrame(s, w, sz, sess); err != nil {
				log.Warn().Err(err).Msg("paint failed")
			}
		case mouse.Event:
			if sess.handleMouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if sess.handleKey(e) {
				w.Send(paint.Event{})
			}
		case error:
			log.Warn().Err(e).Msg("window event error")
		}
	}
	return nil
}

func paintFrame(s screen.Screen, w screen.Window, sz image.Point, sess session) error {
	if sz.X <= 0 || sz.Y <= 0 {
		return nil
	}
	b, err := s.NewBuffer(sz)
	if err != nil {
		return fmt.Errorf("new buffer: %w", err)
	}
	defer b.Release()
	sess.render(b.RGBA())
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
	return nil
}

package ui

import (
	"image"
	"image/draw"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/scrcap/internal/capture"
	"github.com/example/scrcap/internal/wintree"
)

// session is one interactive window's state. The shiny loop feeds it events
// and asks it to render until it reports done.
type session interface {
	handleMouse(e mouse.Event) bool
	handleKey(e key.Event) bool
	render(dst *image.RGBA)
	done() bool
}

// windowGrabber highlights the window rectangle under the pointer over a
// snapshot of the root window. Wheel and right drag change the scope, a left
// click grabs the highlighted rectangle.
type windowGrabber struct {
	root      *image.RGBA
	sel       *wintree.Selection
	dragging  bool
	dragY     float32
	result    capture.Result
	cancelled bool
	finished  bool
}

func newWindowGrabber(root *image.RGBA, rects []image.Rectangle) *windowGrabber {
	return &windowGrabber{root: root, sel: wintree.NewSelection(rects)}
}

func (g *windowGrabber) handleMouse(e mouse.Event) bool {
	p := image.Pt(int(e.X), int(e.Y))
	switch {
	case e.Button == mouse.ButtonWheelUp:
		g.sel.Aim(p)
		return g.sel.Increase()
	case e.Button == mouse.ButtonWheelDown:
		g.sel.Aim(p)
		return g.sel.Decrease()
	case e.Button == mouse.ButtonRight && e.Direction == mouse.DirPress:
		g.dragging = true
		g.dragY = e.Y
		return false
	case e.Button == mouse.ButtonRight && e.Direction == mouse.DirRelease:
		g.dragging = false
		return false
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		if r, ok := g.sel.Current(); ok {
			g.result = capture.Result{Image: crop(g.root, r), Rect: r}
			g.finished = true
		}
		return false
	case e.Direction == mouse.DirNone && g.dragging:
		g.sel.Aim(p)
		return g.stepScope(e.Y)
	case e.Direction == mouse.DirNone:
		return g.sel.MoveTo(p)
	}
	return false
}

// stepScope moves one level per ScopeStep pixels of vertical drag: up widens,
// down narrows.
func (g *windowGrabber) stepScope(y float32) bool {
	changed := false
	for y-g.dragY <= -ScopeStep {
		g.dragY -= ScopeStep
		changed = g.sel.Increase() || changed
	}
	for y-g.dragY >= ScopeStep {
		g.dragY += ScopeStep
		changed = g.sel.Decrease() || changed
	}
	return changed
}

func (g *windowGrabber) handleKey(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	switch e.Code {
	case key.CodeEscape:
		g.cancelled = true
	case key.CodeUpArrow:
		return g.sel.Increase()
	case key.CodeDownArrow:
		return g.sel.Decrease()
	case key.CodeReturnEnter:
		if r, ok := g.sel.Current(); ok {
			g.result = capture.Result{Image: crop(g.root, r), Rect: r}
			g.finished = true
		}
	}
	return false
}

func (g *windowGrabber) render(dst *image.RGBA) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(backdrop), image.Point{}, draw.Src)
	draw.Draw(dst, g.root.Bounds(), g.root, g.root.Bounds().Min, draw.Src)
	if r, ok := g.sel.Current(); ok {
		drawBorder(dst, r, highlight, BorderWidth)
	}
	drawHint(dst, "wheel / right drag: scope   click: grab   esc: cancel")
}

func (g *windowGrabber) done() bool {
	return g.finished || g.cancelled
}

// regionGrabber lets the user drag a rectangle over a snapshot of the root
// window. Releasing the button or pressing Enter confirms, Escape cancels.
type regionGrabber struct {
	root      *image.RGBA
	start     image.Point
	end       image.Point
	pressed   bool
	result    capture.Result
	cancelled bool
	finished  bool
}

func newRegionGrabber(root *image.RGBA) *regionGrabber {
	return &regionGrabber{root: root}
}

func (g *regionGrabber) rect() image.Rectangle {
	return image.Rectangle{Min: g.start, Max: g.end}.Canon().Intersect(g.root.Bounds())
}

func (g *regionGrabber) handleMouse(e mouse.Event) bool {
	p := image.Pt(int(e.X), int(e.Y))
	switch {
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		g.start, g.end = p, p
		g.pressed = true
		return true
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
		if !g.pressed {
			return false
		}
		g.pressed = false
		g.end = p
		g.confirm()
		return true
	case e.Direction == mouse.DirNone && g.pressed:
		g.end = p
		return true
	}
	return false
}

func (g *regionGrabber) confirm() {
	r := g.rect()
	if r.Empty() {
		return
	}
	g.result = capture.Result{Image: crop(g.root, r), Rect: r}
	g.finished = true
}

func (g *regionGrabber) handleKey(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	switch e.Code {
	case key.CodeEscape:
		g.cancelled = true
	case key.CodeReturnEnter:
		g.confirm()
	}
	return false
}

func (g *regionGrabber) render(dst *image.RGBA) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(backdrop), image.Point{}, draw.Src)
	draw.Draw(dst, g.root.Bounds(), g.root, g.root.Bounds().Min, draw.Src)
	if r := g.rect(); !r.Empty() {
		drawBorder(dst, r, highlight, BorderWidth)
	}
	drawHint(dst, "drag: select   enter / release: grab   esc: cancel")
}

func (g *regionGrabber) done() bool {
	return g.finished || g.cancelled
}

// previewer shows a scaled copy of a capture until closed.
type previewer struct {
	thumb  *image.RGBA
	closed bool
}

func (p *previewer) handleMouse(mouse.Event) bool { return false }

func (p *previewer) handleKey(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	switch e.Code {
	case key.CodeEscape, key.CodeReturnEnter, key.CodeQ:
		p.closed = true
	}
	return false
}

func (p *previewer) render(dst *image.RGBA) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(backdrop), image.Point{}, draw.Src)
	b := dst.Bounds()
	off := image.Pt((b.Dx()-p.thumb.Bounds().Dx())/2, (b.Dy()-p.thumb.Bounds().Dy())/2)
	draw.Draw(dst, p.thumb.Bounds().Add(off), p.thumb, image.Point{}, draw.Src)
}

func (p *previewer) done() bool {
	return p.closed
}

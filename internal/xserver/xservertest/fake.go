// Package xservertest provides an in-memory xserver.Server for tests.
package xservertest

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/example/scrcap/internal/pixfmt"
	"github.com/example/scrcap/internal/xserver"
)

// ErrBadWindow is returned for requests against unknown windows.
var ErrBadWindow = errors.New("BadWindow")

// Node is a window in the fake tree. Rect is relative to the parent's inner origin.
type Node struct {
	ID          xserver.Window
	Parent      xserver.Window
	Rect        image.Rectangle
	BorderWidth int
	Viewable    bool
	Properties  map[string]bool
	Children    []xserver.Window
}

// Fake is a window tree drawn onto a single root framebuffer.
type Fake struct {
	mu sync.Mutex

	RootID xserver.Window
	// Screen holds the root contents in absolute coordinates.
	Screen *image.RGBA

	PointerPos   image.Point
	PointerChild xserver.Window
	PointerErr   error

	Cursor    *xserver.Cursor
	CursorErr error

	MonitorList []xserver.Monitor
	MonitorsErr error

	// Failures maps "op" or "op:window" to an error returned by that request.
	Failures map[string]error

	// ImageHook runs at the start of every Image request, outside the fake's
	// lock. Set it before the fake is shared.
	ImageHook func()

	nodes map[xserver.Window]*Node
	calls map[string]int
}

// New returns a fake with a viewable root of the given size filled with bg.
func New(width, height int, bg color.RGBA) *Fake {
	f := &Fake{
		RootID:   1,
		Screen:   image.NewRGBA(image.Rect(0, 0, width, height)),
		Failures: make(map[string]error),
		nodes:    make(map[xserver.Window]*Node),
		calls:    make(map[string]int),
	}
	draw.Draw(f.Screen, f.Screen.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	f.nodes[f.RootID] = &Node{ID: f.RootID, Rect: image.Rect(0, 0, width, height), Viewable: true}
	return f
}

// AddWindow creates a child of parent. The window area is painted with fill
// when fill is non-nil.
func (f *Fake) AddWindow(parent, id xserver.Window, rect image.Rectangle, viewable bool, fill color.Color) *Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.nodes[parent]
	if !ok {
		panic(fmt.Sprintf("xservertest: unknown parent %s", parent))
	}
	n := &Node{ID: id, Parent: parent, Rect: rect, Viewable: viewable, Properties: make(map[string]bool)}
	f.nodes[id] = n
	p.Children = append(p.Children, id)
	if fill != nil {
		abs := f.absRectLocked(n)
		draw.Draw(f.Screen, abs, image.NewUniform(fill), image.Point{}, draw.Src)
	}
	return n
}

// SetProperty marks w as carrying the named property.
func (f *Fake) SetProperty(w xserver.Window, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes[w].Properties[name] = true
}

// Fail makes the named request fail. A zero window applies to every window.
func (f *Fake) Fail(op string, w xserver.Window, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w == xserver.None {
		f.Failures[op] = err
		return
	}
	f.Failures[fmt.Sprintf("%s:%s", op, w)] = err
}

// Calls reports how many times op was issued.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *Fake) enter(op string, w xserver.Window) error {
	f.calls[op]++
	if err, ok := f.Failures[fmt.Sprintf("%s:%s", op, w)]; ok {
		return &xserver.RequestError{Op: op, Window: w, Err: err}
	}
	if err, ok := f.Failures[op]; ok {
		return &xserver.RequestError{Op: op, Window: w, Err: err}
	}
	return nil
}

func (f *Fake) node(op string, w xserver.Window) (*Node, error) {
	if err := f.enter(op, w); err != nil {
		return nil, err
	}
	n, ok := f.nodes[w]
	if !ok {
		return nil, &xserver.RequestError{Op: op, Window: w, Err: ErrBadWindow}
	}
	return n, nil
}

// absRectLocked returns the inner rectangle of n in root coordinates.
func (f *Fake) absRectLocked(n *Node) image.Rectangle {
	r := n.Rect.Add(image.Pt(n.BorderWidth, n.BorderWidth))
	for p := f.nodes[n.Parent]; p != nil && p.ID != f.RootID; p = f.nodes[p.Parent] {
		r = r.Add(p.Rect.Min).Add(image.Pt(p.BorderWidth, p.BorderWidth))
	}
	return r
}

// AbsRect returns the inner rectangle of w in root coordinates.
func (f *Fake) AbsRect(w xserver.Window) image.Rectangle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w == f.RootID {
		return f.Screen.Bounds()
	}
	return f.absRectLocked(f.nodes[w])
}

func (f *Fake) Root() xserver.Window { return f.RootID }

func (f *Fake) Geometry(w xserver.Window) (xserver.Geometry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.node("get geometry", w)
	if err != nil {
		return xserver.Geometry{}, err
	}
	return xserver.Geometry{
		X:           n.Rect.Min.X,
		Y:           n.Rect.Min.Y,
		Width:       n.Rect.Dx(),
		Height:      n.Rect.Dy(),
		BorderWidth: n.BorderWidth,
		Depth:       24,
	}, nil
}

func (f *Fake) Attributes(w xserver.Window) (xserver.Attributes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.node("get window attributes", w)
	if err != nil {
		return xserver.Attributes{}, err
	}
	return xserver.Attributes{Viewable: n.Viewable}, nil
}

func (f *Fake) Tree(w xserver.Window) (xserver.Tree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.node("query tree", w)
	if err != nil {
		return xserver.Tree{}, err
	}
	children := append([]xserver.Window(nil), n.Children...)
	return xserver.Tree{Root: f.RootID, Parent: n.Parent, Children: children}, nil
}

func (f *Fake) HasProperty(w xserver.Window, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.node("get property", w)
	if err != nil {
		return false, err
	}
	return n.Properties[name], nil
}

func (f *Fake) Pointer() (xserver.Pointer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("query pointer", xserver.None); err != nil {
		return xserver.Pointer{}, err
	}
	if f.PointerErr != nil {
		return xserver.Pointer{}, f.PointerErr
	}
	return xserver.Pointer{Root: f.RootID, Child: f.PointerChild, Position: f.PointerPos}, nil
}

func (f *Fake) Translate(src, dst xserver.Window, p image.Point) (image.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("translate coordinates", src); err != nil {
		return image.Point{}, err
	}
	origin := func(w xserver.Window) (image.Point, error) {
		if w == f.RootID {
			return image.Point{}, nil
		}
		n, ok := f.nodes[w]
		if !ok {
			return image.Point{}, &xserver.RequestError{Op: "translate coordinates", Window: w, Err: ErrBadWindow}
		}
		return f.absRectLocked(n).Min, nil
	}
	so, err := origin(src)
	if err != nil {
		return image.Point{}, err
	}
	do, err := origin(dst)
	if err != nil {
		return image.Point{}, err
	}
	return p.Add(so).Sub(do), nil
}

// Image renders r of w from the framebuffer as a depth-24 BGRX buffer.
func (f *Fake) Image(w xserver.Window, r image.Rectangle) (*pixfmt.Buffer, error) {
	if f.ImageHook != nil {
		f.ImageHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.node("get image", w)
	if err != nil {
		return nil, err
	}
	origin := image.Point{}
	if w != f.RootID {
		origin = f.absRectLocked(n).Min
	}
	stride := r.Dx() * 4
	buf := &pixfmt.Buffer{
		Width:        r.Dx(),
		Height:       r.Dy(),
		BytesPerLine: stride,
		Depth:        24,
		BitsPerPixel: 32,
		Data:         make([]byte, stride*r.Dy()),
	}
	abs := r.Add(origin)
	for y := abs.Min.Y; y < abs.Max.Y; y++ {
		for x := abs.Min.X; x < abs.Max.X; x++ {
			if !(image.Point{X: x, Y: y}).In(f.Screen.Bounds()) {
				continue
			}
			c := f.Screen.RGBAAt(x, y)
			off := (y-abs.Min.Y)*stride + (x-abs.Min.X)*4
			buf.Data[off+0] = c.B
			buf.Data[off+1] = c.G
			buf.Data[off+2] = c.R
		}
	}
	return buf, nil
}

func (f *Fake) CursorImage() (xserver.Cursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("get cursor image", xserver.None); err != nil {
		return xserver.Cursor{}, err
	}
	if f.CursorErr != nil {
		return xserver.Cursor{}, f.CursorErr
	}
	if f.Cursor == nil {
		return xserver.Cursor{}, xserver.ErrNoXFixes
	}
	return *f.Cursor, nil
}

func (f *Fake) Monitors() ([]xserver.Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("monitors", xserver.None); err != nil {
		return nil, err
	}
	if f.MonitorsErr != nil {
		return nil, f.MonitorsErr
	}
	return append([]xserver.Monitor(nil), f.MonitorList...), nil
}

// SolidCursor builds a w×h cursor filled with one ARGB32 value.
func SolidCursor(w, h int, hotspot image.Point, argb uint32) *xserver.Cursor {
	px := make([]uint32, w*h)
	for i := range px {
		px[i] = argb
	}
	return &xserver.Cursor{Width: w, Height: h, Hotspot: hotspot, Pixels: px}
}

var _ xserver.Server = (*Fake)(nil)

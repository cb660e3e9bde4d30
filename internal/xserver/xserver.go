// Package xserver exposes the small slice of the X11 protocol the capture code
// needs, behind an interface that can be faked in tests.
package xserver

import (
	"errors"
	"fmt"
	"image"

	"github.com/example/scrcap/internal/pixfmt"
)

// Window is a server-assigned window identifier. It is only meaningful for the
// connection that produced it.
type Window uint32

// None is the null window.
const None Window = 0

func (w Window) String() string {
	return fmt.Sprintf("0x%x", uint32(w))
}

var (
	// ErrRequest marks every failure reported by the X server or the transport.
	ErrRequest = errors.New("x request failed")
	// ErrNoXFixes is returned when the XFixes extension is not available.
	ErrNoXFixes = errors.New("xfixes extension unavailable")
	// ErrNoRandR is returned when the RandR extension is not available.
	ErrNoRandR = errors.New("randr extension unavailable")
)

// RequestError wraps a failed protocol request with the operation that issued it.
type RequestError struct {
	Op     string
	Window Window
	Err    error
}

func (e *RequestError) Error() string {
	if e.Window != None {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Window, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap lets errors.Is match both ErrRequest and the underlying cause.
func (e *RequestError) Unwrap() []error {
	return []error{ErrRequest, e.Err}
}

func requestError(op string, w Window, err error) error {
	return &RequestError{Op: op, Window: w, Err: err}
}

// Geometry is a window's position relative to its parent and its inner size.
type Geometry struct {
	X, Y          int
	Width, Height int
	BorderWidth   int
	Depth         int
}

// Size returns the inner size of the window.
func (g Geometry) Size() image.Point {
	return image.Pt(g.Width, g.Height)
}

// Attributes holds the window attributes the walker inspects.
type Attributes struct {
	Viewable  bool
	InputOnly bool
}

// Tree is the result of a query-tree request.
type Tree struct {
	Root     Window
	Parent   Window
	Children []Window
}

// Pointer is the pointer state relative to the root window.
type Pointer struct {
	Root     Window
	Child    Window
	Position image.Point
}

// Cursor is the current cursor image as ARGB32 premultiplied pixels.
type Cursor struct {
	Position image.Point
	Hotspot  image.Point
	Width    int
	Height   int
	Pixels   []uint32
}

// Monitor describes one output in the RandR layout.
type Monitor struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

// Server is the set of requests used by the capture pipeline. Each call is a
// synchronous round trip.
type Server interface {
	Root() Window
	Geometry(w Window) (Geometry, error)
	Attributes(w Window) (Attributes, error)
	Tree(w Window) (Tree, error)
	HasProperty(w Window, name string) (bool, error)
	Pointer() (Pointer, error)
	Translate(src, dst Window, p image.Point) (image.Point, error)
	Image(w Window, r image.Rectangle) (*pixfmt.Buffer, error)
	CursorImage() (Cursor, error)
	Monitors() ([]Monitor, error)
}

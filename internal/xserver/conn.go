package xserver

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
	"github.com/rs/zerolog"

	"github.com/example/scrcap/internal/logger"
	"github.com/example/scrcap/internal/pixfmt"
)

// Conn is a Server backed by a live X connection.
type Conn struct {
	conn   *xgb.Conn
	setup  *xproto.SetupInfo
	screen *xproto.ScreenInfo
	log    *zerolog.Logger

	atomMu sync.Mutex
	atoms  map[string]xproto.Atom

	xfixesOnce sync.Once
	xfixesErr  error
	randrOnce  sync.Once
	randrErr   error
}

// Dial connects to display, or to $DISPLAY when display is empty.
func Dial(display string) (*Conn, error) {
	var (
		conn *xgb.Conn
		err  error
	)
	if strings.TrimSpace(display) == "" {
		conn, err = xgb.NewConn()
	} else {
		conn, err = xgb.NewConnDisplay(display)
	}
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	setup := xproto.Setup(conn)
	if setup == nil {
		conn.Close()
		return nil, fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, fmt.Errorf("xproto screen unavailable")
	}
	c := &Conn{
		conn:   conn,
		setup:  setup,
		screen: screen,
		log:    logger.WithComponent("xserver"),
		atoms:  make(map[string]xproto.Atom),
	}
	c.log.Debug().
		Str("display", display).
		Uint32("root", uint32(screen.Root)).
		Uint8("root_depth", screen.RootDepth).
		Msg("connected")
	return c, nil
}

// Close releases the connection.
func (c *Conn) Close() {
	if c == nil || c.conn == nil {
		return
	}
	c.conn.Close()
}

// Root returns the root window of the default screen.
func (c *Conn) Root() Window {
	return Window(c.screen.Root)
}

// Geometry returns the position and size of w relative to its parent.
func (c *Conn) Geometry(w Window) (Geometry, error) {
	geo, err := xproto.GetGeometry(c.conn, xproto.Drawable(w)).Reply()
	if err != nil {
		return Geometry{}, requestError("get geometry", w, err)
	}
	return Geometry{
		X:           int(geo.X),
		Y:           int(geo.Y),
		Width:       int(geo.Width),
		Height:      int(geo.Height),
		BorderWidth: int(geo.BorderWidth),
		Depth:       int(geo.Depth),
	}, nil
}

// Attributes reports the map state and class of w.
func (c *Conn) Attributes(w Window) (Attributes, error) {
	attr, err := xproto.GetWindowAttributes(c.conn, xproto.Window(w)).Reply()
	if err != nil {
		return Attributes{}, requestError("get window attributes", w, err)
	}
	return Attributes{
		Viewable:  attr.MapState == xproto.MapStateViewable,
		InputOnly: attr.Class == xproto.WindowClassInputOnly,
	}, nil
}

// Tree lists the children of w in stacking order, bottom first.
func (c *Conn) Tree(w Window) (Tree, error) {
	reply, err := xproto.QueryTree(c.conn, xproto.Window(w)).Reply()
	if err != nil {
		return Tree{}, requestError("query tree", w, err)
	}
	children := make([]Window, len(reply.Children))
	for i, child := range reply.Children {
		children[i] = Window(child)
	}
	return Tree{Root: Window(reply.Root), Parent: Window(reply.Parent), Children: children}, nil
}

func (c *Conn) internAtom(name string) (xproto.Atom, error) {
	c.atomMu.Lock()
	defer c.atomMu.Unlock()
	if atom, ok := c.atoms[name]; ok {
		return atom, nil
	}
	reply, err := xproto.InternAtom(c.conn, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, requestError("intern atom "+name, None, err)
	}
	c.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// HasProperty reports whether w carries the named property, of any type.
func (c *Conn) HasProperty(w Window, name string) (bool, error) {
	atom, err := c.internAtom(name)
	if err != nil {
		return false, err
	}
	if atom == xproto.AtomNone {
		// Nobody has interned the name, so no window can carry it.
		return false, nil
	}
	reply, err := xproto.GetProperty(c.conn, false, xproto.Window(w), atom, xproto.GetPropertyTypeAny, 0, 0).Reply()
	if err != nil {
		return false, requestError("get property "+name, w, err)
	}
	return reply.Type != xproto.AtomNone, nil
}

// Pointer queries the pointer relative to the root window.
func (c *Conn) Pointer() (Pointer, error) {
	reply, err := xproto.QueryPointer(c.conn, c.screen.Root).Reply()
	if err != nil {
		return Pointer{}, requestError("query pointer", None, err)
	}
	return Pointer{
		Root:     Window(reply.Root),
		Child:    Window(reply.Child),
		Position: image.Pt(int(reply.RootX), int(reply.RootY)),
	}, nil
}

// Translate maps p from src coordinates into dst coordinates.
func (c *Conn) Translate(src, dst Window, p image.Point) (image.Point, error) {
	reply, err := xproto.TranslateCoordinates(c.conn, xproto.Window(src), xproto.Window(dst), int16(p.X), int16(p.Y)).Reply()
	if err != nil {
		return image.Point{}, requestError("translate coordinates", src, err)
	}
	return image.Pt(int(reply.DstX), int(reply.DstY)), nil
}

// Image reads r, in w's coordinate space, as a ZPixmap buffer in LSB-first order.
func (c *Conn) Image(w Window, r image.Rectangle) (*pixfmt.Buffer, error) {
	if r.Empty() {
		return &pixfmt.Buffer{}, nil
	}
	reply, err := xproto.GetImage(c.conn, xproto.ImageFormatZPixmap, xproto.Drawable(w),
		int16(r.Min.X), int16(r.Min.Y), uint16(r.Dx()), uint16(r.Dy()), ^uint32(0)).Reply()
	if err != nil {
		return nil, requestError("get image", w, err)
	}
	bpp, pad := c.pixmapFormat(reply.Depth)
	if bpp == 0 {
		return nil, fmt.Errorf("%w: no pixmap format for depth %d", pixfmt.ErrUnsupportedDepth, reply.Depth)
	}
	height := r.Dy()
	stride := scanlineBytes(r.Dx(), bpp, pad)
	if stride*height > len(reply.Data) && height > 0 {
		// Some servers pack rows tighter than the advertised pad.
		stride = len(reply.Data) / height
	}
	buf := &pixfmt.Buffer{
		Width:        r.Dx(),
		Height:       height,
		BytesPerLine: stride,
		Depth:        int(reply.Depth),
		BitsPerPixel: bpp,
		Masks:        c.visualMasks(reply.Visual),
		Data:         reply.Data,
	}
	if c.setup.ImageByteOrder == xproto.ImageOrderMSBFirst {
		swapPixelBytes(buf)
	}
	return buf, nil
}

func (c *Conn) pixmapFormat(depth byte) (bpp, pad int) {
	for _, format := range c.setup.PixmapFormats {
		if format.Depth == depth {
			return int(format.BitsPerPixel), int(format.ScanlinePad)
		}
	}
	return 0, 0
}

func (c *Conn) visualMasks(id xproto.Visualid) pixfmt.Masks {
	if id == 0 {
		id = c.screen.RootVisual
	}
	for _, screen := range c.setup.Roots {
		for _, depth := range screen.AllowedDepths {
			for _, visual := range depth.Visuals {
				if visual.VisualId == id {
					return pixfmt.Masks{Red: visual.RedMask, Green: visual.GreenMask, Blue: visual.BlueMask}
				}
			}
		}
	}
	return pixfmt.Masks{}
}

func scanlineBytes(width, bpp, pad int) int {
	if pad <= 0 {
		pad = 8
	}
	bitsPerLine := width * bpp
	return ((bitsPerLine + pad - 1) / pad) * pad / 8
}

func swapPixelBytes(buf *pixfmt.Buffer) {
	step := buf.BitsPerPixel / 8
	if step < 2 {
		return
	}
	for y := 0; y < buf.Height; y++ {
		row := buf.Data[y*buf.BytesPerLine : (y+1)*buf.BytesPerLine]
		for x := 0; x+step <= len(row); x += step {
			px := row[x : x+step]
			for i, j := 0, step-1; i < j; i, j = i+1, j-1 {
				px[i], px[j] = px[j], px[i]
			}
		}
	}
}

func (c *Conn) initXFixes() error {
	c.xfixesOnce.Do(func() {
		if err := xfixes.Init(c.conn); err != nil {
			c.xfixesErr = fmt.Errorf("%w: %v", ErrNoXFixes, err)
			return
		}
		if _, err := xfixes.QueryVersion(c.conn, 4, 0).Reply(); err != nil {
			c.xfixesErr = fmt.Errorf("%w: query version: %v", ErrNoXFixes, err)
		}
	})
	return c.xfixesErr
}

// CursorImage fetches the current cursor through XFixes.
func (c *Conn) CursorImage() (Cursor, error) {
	if err := c.initXFixes(); err != nil {
		return Cursor{}, err
	}
	reply, err := xfixes.GetCursorImage(c.conn).Reply()
	if err != nil {
		return Cursor{}, requestError("get cursor image", None, err)
	}
	return Cursor{
		Position: image.Pt(int(reply.X), int(reply.Y)),
		Hotspot:  image.Pt(int(reply.Xhot), int(reply.Yhot)),
		Width:    int(reply.Width),
		Height:   int(reply.Height),
		Pixels:   reply.CursorImage,
	}, nil
}

// HasXFixes reports whether cursor images can be fetched.
func (c *Conn) HasXFixes() bool {
	return c.initXFixes() == nil
}

func (c *Conn) initRandR() error {
	c.randrOnce.Do(func() {
		if err := randr.Init(c.conn); err != nil {
			c.randrErr = fmt.Errorf("%w: %v", ErrNoRandR, err)
		}
	})
	return c.randrErr
}

// Monitors lists connected RandR outputs with an active CRTC.
func (c *Conn) Monitors() ([]Monitor, error) {
	if err := c.initRandR(); err != nil {
		return nil, err
	}
	root := c.screen.Root
	res, err := randr.GetScreenResources(c.conn, root).Reply()
	if err != nil {
		return nil, requestError("randr screen resources", Window(root), err)
	}
	primaryOutput := randr.Output(0)
	if primary, err := randr.GetOutputPrimary(c.conn, root).Reply(); err == nil {
		primaryOutput = primary.Output
	}
	monitors := make([]Monitor, 0, len(res.Outputs))
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(c.conn, output, res.ConfigTimestamp).Reply()
		if err != nil {
			c.log.Debug().Err(err).Uint32("output", uint32(output)).Msg("skip output")
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(c.conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		monitors = append(monitors, Monitor{
			Index:   len(monitors),
			Name:    strings.TrimSpace(string(info.Name)),
			Rect:    image.Rect(int(crtc.X), int(crtc.Y), int(crtc.X)+int(crtc.Width), int(crtc.Y)+int(crtc.Height)),
			Primary: output == primaryOutput,
		})
	}
	return monitors, nil
}

package capture

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/example/scrcap/internal/logger"
	"github.com/example/scrcap/internal/pixfmt"
	"github.com/example/scrcap/internal/xserver"
)

// wmStateProperty is set by the window manager on client windows it manages.
const wmStateProperty = "WM_STATE"

// maxResolveDepth bounds the frame search below a decorated window.
const maxResolveDepth = 5

// ResolveReal searches w and its descendants depth-first for the first window
// carrying WM_STATE. It reports false when none is found within
// maxResolveDepth levels.
func ResolveReal(srv xserver.Server, w xserver.Window) (xserver.Window, bool) {
	return resolveReal(srv, w, 0)
}

func resolveReal(srv xserver.Server, w xserver.Window, depth int) (xserver.Window, bool) {
	if depth > maxResolveDepth {
		return xserver.None, false
	}
	if ok, err := srv.HasProperty(w, wmStateProperty); err == nil && ok {
		return w, true
	}
	tree, err := srv.Tree(w)
	if err != nil {
		return xserver.None, false
	}
	for _, child := range tree.Children {
		if found, ok := resolveReal(srv, child, depth+1); ok {
			return found, true
		}
	}
	return xserver.None, false
}

// LocateWindowUnderCursor returns the top-level window directly under the
// pointer, or the root when the pointer is over the desktop. Without
// decorations the window manager frame is stripped when a client window can
// be found inside it.
func LocateWindowUnderCursor(srv xserver.Server, includeDecorations bool) xserver.Window {
	root := srv.Root()
	ptr, err := srv.Pointer()
	if err != nil {
		logger.WithComponent("capture").Debug().Err(err).Msg("pointer query failed, using root")
		return root
	}
	if ptr.Child == xserver.None {
		return root
	}
	w := ptr.Child
	if !includeDecorations {
		if client, ok := ResolveReal(srv, w); ok {
			w = client
		}
	}
	return w
}

// QueryGeometry returns the inner rectangle of w in root coordinates.
func QueryGeometry(srv xserver.Server, w xserver.Window) (image.Rectangle, error) {
	geo, err := srv.Geometry(w)
	if err != nil {
		return image.Rectangle{}, err
	}
	return absoluteRect(srv, w, geo)
}

func absoluteRect(srv xserver.Server, w xserver.Window, geo xserver.Geometry) (image.Rectangle, error) {
	root := srv.Root()
	if w == root {
		return image.Rectangle{Max: geo.Size()}, nil
	}
	origin, err := srv.Translate(w, root, image.Point{})
	if err != nil {
		return image.Rectangle{}, err
	}
	return image.Rectangle{Min: origin, Max: origin.Add(geo.Size())}, nil
}

func rootBounds(srv xserver.Server) (image.Rectangle, error) {
	geo, err := srv.Geometry(srv.Root())
	if err != nil {
		return image.Rectangle{}, err
	}
	return image.Rectangle{Max: geo.Size()}, nil
}

func fetch(srv xserver.Server, w xserver.Window, r image.Rectangle) (*image.RGBA, error) {
	buf, err := srv.Image(w, r)
	if err != nil {
		return nil, err
	}
	img, err := pixfmt.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("decode %s pixels: %w", w, err)
	}
	return img, nil
}

// CaptureWindow reads the pixels of w. When the server refuses the window
// drawable, the window area is cropped out of the root window instead. The
// returned rectangle is in root coordinates.
func CaptureWindow(srv xserver.Server, w xserver.Window, includeCursor bool) (Result, error) {
	log := logger.WithComponent("capture")
	geo, err := srv.Geometry(w)
	if err != nil {
		return Result{}, fmt.Errorf("capture window %s: %w", w, err)
	}
	if geo.Width == 0 || geo.Height == 0 {
		return Result{}, nil
	}
	rect, err := absoluteRect(srv, w, geo)
	if err != nil {
		return Result{}, fmt.Errorf("capture window %s: %w", w, err)
	}
	img, directErr := fetch(srv, w, image.Rectangle{Max: geo.Size()})
	if directErr != nil {
		log.Debug().Err(directErr).Stringer("window", w).Msg("direct capture failed, cropping root")
		img, err = cropRoot(srv, rect)
		if err != nil {
			return Result{}, fmt.Errorf("capture window %s: %v; fallback root capture failed: %w", w, directErr, err)
		}
	}
	if includeCursor {
		img = BlendCursor(srv, img, rect)
	}
	log.Debug().Stringer("window", w).Stringer("rect", rect).Msg("captured window")
	return Result{Image: img, Rect: rect}, nil
}

// cropRoot returns exactly rect.Size() pixels taken from the root window.
// Parts of rect outside the root stay transparent.
func cropRoot(srv xserver.Server, rect image.Rectangle) (*image.RGBA, error) {
	bounds, err := rootBounds(srv)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rectangle{Max: rect.Size()})
	visible := rect.Intersect(bounds)
	if visible.Empty() {
		return dst, nil
	}
	src, err := fetch(srv, srv.Root(), visible)
	if err != nil {
		return nil, err
	}
	draw.Draw(dst, visible.Sub(rect.Min), src, image.Point{}, draw.Src)
	return dst, nil
}

// CaptureRootRegion reads rect from the root window. The rectangle is clipped
// to the root; a rectangle entirely off screen yields an empty result.
func CaptureRootRegion(srv xserver.Server, rect image.Rectangle, includeCursor bool) (Result, error) {
	bounds, err := rootBounds(srv)
	if err != nil {
		return Result{}, fmt.Errorf("capture region %v: %w", rect, err)
	}
	clip := rect.Canon().Intersect(bounds)
	if clip.Empty() {
		return Result{}, nil
	}
	img, err := fetch(srv, srv.Root(), clip)
	if err != nil {
		return Result{}, fmt.Errorf("capture region %v: %w", clip, err)
	}
	if includeCursor {
		img = BlendCursor(srv, img, clip)
	}
	return Result{Image: img, Rect: clip}, nil
}

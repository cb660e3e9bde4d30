// Package wintree enumerates visible window rectangles for interactive selection.
package wintree

import (
	"image"
	"sort"

	"github.com/rs/zerolog"

	"github.com/example/scrcap/internal/logger"
	"github.com/example/scrcap/internal/xserver"
)

// MinSize is the smallest width and height a window must have to be listed.
const MinSize = 8

// Source is the subset of xserver.Server the walker needs.
type Source interface {
	Geometry(w xserver.Window) (xserver.Geometry, error)
	Attributes(w xserver.Window) (xserver.Attributes, error)
	Tree(w xserver.Window) (xserver.Tree, error)
}

// Enumerate walks the descendants of start depth-first and returns the inner
// rectangle of every viewable window at least MinSize in both dimensions,
// relative to start, without duplicates, sorted by ascending area. Windows
// failing the test are skipped with their subtrees. Request failures skip the
// affected subtree.
func Enumerate(src Source, start xserver.Window) []image.Rectangle {
	w := walker{src: src, seen: make(map[image.Rectangle]struct{}), log: logger.WithComponent("wintree")}
	w.walk(start, image.Point{})
	sort.SliceStable(w.rects, func(i, j int) bool {
		return area(w.rects[i]) < area(w.rects[j])
	})
	return w.rects
}

type walker struct {
	src   Source
	seen  map[image.Rectangle]struct{}
	rects []image.Rectangle
	log   *zerolog.Logger
}

func (w *walker) walk(parent xserver.Window, origin image.Point) {
	tree, err := w.src.Tree(parent)
	if err != nil {
		w.log.Debug().Err(err).Stringer("window", parent).Msg("skip subtree")
		return
	}
	for _, child := range tree.Children {
		attr, err := w.src.Attributes(child)
		if err != nil || !attr.Viewable {
			continue
		}
		geo, err := w.src.Geometry(child)
		if err != nil {
			continue
		}
		if geo.Width < MinSize || geo.Height < MinSize {
			continue
		}
		inner := origin.Add(image.Pt(geo.X+geo.BorderWidth, geo.Y+geo.BorderWidth))
		rect := image.Rectangle{Min: inner, Max: inner.Add(geo.Size())}
		if _, dup := w.seen[rect]; !dup {
			w.seen[rect] = struct{}{}
			w.rects = append(w.rects, rect)
		}
		w.walk(child, inner)
	}
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

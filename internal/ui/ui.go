// Package ui hosts the interactive windows: the capture preview and the
// window and region grabbers. Event handling is kept apart from the shiny
// loop so it can be driven without a display.
package ui

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// PreviewWidth and PreviewHeight bound the preview image.
	PreviewWidth  = 500
	PreviewHeight = 300
	// ScopeStep is how far the pointer travels during a right drag before
	// the highlighted scope changes by one level.
	ScopeStep = 10
	// BorderWidth is the thickness of the highlight border.
	BorderWidth = 3
)

// ErrCancelled is returned when the user dismisses a grabber.
var ErrCancelled = errors.New("ui: selection cancelled")

var (
	highlight = color.RGBA{R: 0xff, A: 0xff}
	backdrop  = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
	hintBG    = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xd0}
)

// Fit returns the largest size with the aspect ratio of src that fits in
// bound. Images already inside bound keep their size.
func Fit(src, bound image.Point) image.Point {
	if src.X <= 0 || src.Y <= 0 || bound.X <= 0 || bound.Y <= 0 {
		return image.Point{}
	}
	if src.X <= bound.X && src.Y <= bound.Y {
		return src
	}
	// Compare src.X/src.Y against bound.X/bound.Y without floats.
	if src.X*bound.Y >= src.Y*bound.X {
		return image.Pt(bound.X, max(1, src.Y*bound.X/src.X))
	}
	return image.Pt(max(1, src.X*bound.Y/src.Y), bound.Y)
}

// Thumbnail scales img into the preview bounds with a smooth filter.
func Thumbnail(img image.Image) *image.RGBA {
	if img == nil || img.Bounds().Empty() {
		return nil
	}
	sz := Fit(img.Bounds().Size(), image.Pt(PreviewWidth, PreviewHeight))
	dst := image.NewRGBA(image.Rectangle{Max: sz})
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// drawBorder paints a border of the given thickness just inside r, clipped to dst.
func drawBorder(dst *image.RGBA, r image.Rectangle, col color.Color, thick int) {
	if r.Empty() {
		return
	}
	src := image.NewUniform(col)
	t := min(thick, r.Dx(), r.Dy())
	strips := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, s := range strips {
		draw.Draw(dst, s.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

// crop copies r out of img into a new image with its origin at zero.
func crop(img *image.RGBA, r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rectangle{Max: r.Size()})
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

// drawHint writes a one line help text in the top left corner.
func drawHint(dst *image.RGBA, text string) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: face}
	w := d.MeasureString(text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()
	box := image.Rect(4, 4, 4+w+8, 4+ascent+descent+8)
	draw.Draw(dst, box, image.NewUniform(hintBG), image.Point{}, draw.Over)
	d.Dot = fixed.P(box.Min.X+4, box.Min.Y+4+ascent)
	d.DrawString(text)
}

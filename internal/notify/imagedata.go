package notify

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ThumbnailSize bounds the longer side of inline notification images.
const ThumbnailSize = 128

// ImageData is the freedesktop image-data hint, signature (iiibiiay).
// Pixels are non-premultiplied RGBA rows of RowStride bytes.
type ImageData struct {
	Width         int32
	Height        int32
	RowStride     int32
	HasAlpha      bool
	BitsPerSample int32
	Channels      int32
	Data          []byte
}

// NewImageData converts img into the hint layout.
func NewImageData(img image.Image) *ImageData {
	if img == nil || img.Bounds().Empty() {
		return nil
	}
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return &ImageData{
		Width:         int32(b.Dx()),
		Height:        int32(b.Dy()),
		RowStride:     int32(nrgba.Stride),
		HasAlpha:      true,
		BitsPerSample: 8,
		Channels:      4,
		Data:          nrgba.Pix,
	}
}

// At returns the pixel at x, y. It is used by tests and debugging output.
func (d *ImageData) At(x, y int) color.NRGBA {
	off := y*int(d.RowStride) + x*int(d.Channels)
	return color.NRGBA{R: d.Data[off], G: d.Data[off+1], B: d.Data[off+2], A: d.Data[off+3]}
}

// thumbnail scales img to fit in ThumbnailSize and converts it to ImageData.
func thumbnail(img image.Image) *ImageData {
	if img == nil || img.Bounds().Empty() {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= ThumbnailSize && h <= ThumbnailSize {
		return NewImageData(img)
	}
	if w >= h {
		h = max(1, h*ThumbnailSize/w)
		w = ThumbnailSize
	} else {
		w = max(1, w*ThumbnailSize/h)
		h = ThumbnailSize
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return NewImageData(dst)
}

// Package pixfmt converts server-native X11 pixel buffers into image.RGBA.
package pixfmt

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/bits"
)

var (
	// ErrUnsupportedDepth is returned for pixel depths the decoder has no conversion for.
	ErrUnsupportedDepth = errors.New("unsupported pixel depth")
	// ErrShortBuffer is returned when the pixel data is smaller than the declared stride requires.
	ErrShortBuffer = errors.New("pixel buffer shorter than declared stride")
)

// MonoPalette maps depth-1 bitmap indices to colours. Index 0 is white and
// index 1 is black, matching how X servers present monochrome drawables.
var MonoPalette = color.Palette{
	color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	color.RGBA{A: 0xff},
}

// Masks holds the channel masks of the visual a buffer was read from.
type Masks struct {
	Red   uint32
	Green uint32
	Blue  uint32
}

// Buffer is a raw ZPixmap image as returned by the X server in LSB-first order.
type Buffer struct {
	Width        int
	Height       int
	BytesPerLine int
	Depth        int
	BitsPerPixel int
	Masks        Masks
	Data         []byte
}

// Validate checks that the buffer holds at least Height rows of BytesPerLine bytes
// and that each row is long enough for Width pixels.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("nil pixel buffer")
	}
	if b.Width < 0 || b.Height < 0 || b.BytesPerLine < 0 {
		return fmt.Errorf("negative buffer dimensions %dx%d stride %d", b.Width, b.Height, b.BytesPerLine)
	}
	if b.BytesPerLine*b.Height > len(b.Data) {
		return fmt.Errorf("%w: %d*%d > %d", ErrShortBuffer, b.BytesPerLine, b.Height, len(b.Data))
	}
	bpp := b.bitsPerPixel()
	if bpp > 0 && (b.Width*bpp+7)/8 > b.BytesPerLine && b.Height > 0 {
		return fmt.Errorf("%w: row of %d pixels at %d bpp exceeds %d bytes", ErrShortBuffer, b.Width, bpp, b.BytesPerLine)
	}
	return nil
}

func (b *Buffer) bitsPerPixel() int {
	if b.BitsPerPixel > 0 {
		return b.BitsPerPixel
	}
	switch b.Depth {
	case 1:
		return 1
	case 16:
		return 16
	case 24, 30, 32:
		return 32
	}
	return 0
}

// Decode converts buf into a premultiplied RGBA image of the same dimensions.
func Decode(buf *Buffer) (*image.RGBA, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	if buf.Width == 0 || buf.Height == 0 {
		return img, nil
	}
	bpp := buf.bitsPerPixel()
	switch {
	case buf.Depth == 1 && bpp == 1:
		decodeMono(buf, img)
	case buf.Depth == 16 && bpp == 16:
		decode565(buf, img)
	case buf.Depth == 24 && (bpp == 24 || bpp == 32):
		decodeBGR(buf, img, bpp/8)
	case buf.Depth == 30 && bpp == 32:
		decode30(buf, img)
	case buf.Depth == 32 && bpp == 32:
		decodeBGRA(buf, img)
	default:
		return nil, fmt.Errorf("%w: depth %d at %d bpp", ErrUnsupportedDepth, buf.Depth, bpp)
	}
	return img, nil
}

func row(buf *Buffer, y int) []byte {
	return buf.Data[y*buf.BytesPerLine : (y+1)*buf.BytesPerLine]
}

func decodeMono(buf *Buffer, img *image.RGBA) {
	for y := 0; y < buf.Height; y++ {
		src := row(buf, y)
		for x := 0; x < buf.Width; x++ {
			idx := (src[x>>3] >> uint(x&7)) & 1
			img.SetRGBA(x, y, MonoPalette[idx].(color.RGBA))
		}
	}
}

func widen5(v uint16) uint8 { return uint8(v<<3 | v>>2) }
func widen6(v uint16) uint8 { return uint8(v<<2 | v>>4) }

func decode565(buf *Buffer, img *image.RGBA) {
	for y := 0; y < buf.Height; y++ {
		src := row(buf, y)
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < buf.Width; x++ {
			v := uint16(src[2*x]) | uint16(src[2*x+1])<<8
			dst[4*x+0] = widen5(v >> 11 & 0x1f)
			dst[4*x+1] = widen6(v >> 5 & 0x3f)
			dst[4*x+2] = widen5(v & 0x1f)
			dst[4*x+3] = 0xff
		}
	}
}

func decodeBGR(buf *Buffer, img *image.RGBA, bytesPerPixel int) {
	for y := 0; y < buf.Height; y++ {
		src := row(buf, y)
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < buf.Width; x++ {
			off := x * bytesPerPixel
			dst[4*x+0] = src[off+2]
			dst[4*x+1] = src[off+1]
			dst[4*x+2] = src[off]
			dst[4*x+3] = 0xff
		}
	}
}

func decodeBGRA(buf *Buffer, img *image.RGBA) {
	for y := 0; y < buf.Height; y++ {
		src := row(buf, y)
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < buf.Width; x++ {
			off := 4 * x
			dst[4*x+0] = src[off+2]
			dst[4*x+1] = src[off+1]
			dst[4*x+2] = src[off]
			dst[4*x+3] = src[off+3]
		}
	}
}

const (
	defaultRedShift30   = 22
	defaultGreenShift30 = 12
	defaultBlueShift30  = 2
)

// channelShift returns the right shift that keeps the top 8 bits of mask.
func channelShift(mask uint32, fallback uint) uint {
	n := bits.Len32(mask)
	if mask == 0 || n < 8 {
		return fallback
	}
	return uint(n - 8)
}

func decode30(buf *Buffer, img *image.RGBA) {
	rs := channelShift(buf.Masks.Red, defaultRedShift30)
	gs := channelShift(buf.Masks.Green, defaultGreenShift30)
	bs := channelShift(buf.Masks.Blue, defaultBlueShift30)
	for y := 0; y < buf.Height; y++ {
		src := row(buf, y)
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < buf.Width; x++ {
			off := 4 * x
			w := uint32(src[off]) | uint32(src[off+1])<<8 | uint32(src[off+2])<<16 | uint32(src[off+3])<<24
			dst[4*x+0] = uint8(w >> rs)
			dst[4*x+1] = uint8(w >> gs)
			dst[4*x+2] = uint8(w >> bs)
			dst[4*x+3] = 0xff
		}
	}
}

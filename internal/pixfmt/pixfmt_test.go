package pixfmt

import (
	"errors"
	"image/color"
	"testing"
)

func TestDecodeDepths(t *testing.T) {
	tests := []struct {
		name string
		buf  Buffer
		want []color.RGBA
	}{
		{
			name: "depth32 premultiplied passthrough",
			buf: Buffer{Width: 2, Height: 1, BytesPerLine: 8, Depth: 32, BitsPerPixel: 32,
				Data: []byte{0x10, 0x20, 0x30, 0x40, 0x00, 0x00, 0x00, 0x00}},
			want: []color.RGBA{{R: 0x30, G: 0x20, B: 0x10, A: 0x40}, {}},
		},
		{
			name: "depth24 forces opaque",
			buf: Buffer{Width: 1, Height: 2, BytesPerLine: 4, Depth: 24, BitsPerPixel: 32,
				Data: []byte{0x01, 0x02, 0x03, 0x00, 0xff, 0x00, 0x80, 0x12}},
			want: []color.RGBA{{R: 3, G: 2, B: 1, A: 0xff}, {R: 0x80, G: 0, B: 0xff, A: 0xff}},
		},
		{
			name: "depth24 packed",
			buf: Buffer{Width: 2, Height: 1, BytesPerLine: 8, Depth: 24, BitsPerPixel: 24,
				Data: []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0, 0}},
			want: []color.RGBA{{R: 3, G: 2, B: 1, A: 0xff}, {R: 6, G: 5, B: 4, A: 0xff}},
		},
		{
			name: "depth16 rgb565",
			buf: Buffer{Width: 3, Height: 1, BytesPerLine: 6, Depth: 16, BitsPerPixel: 16,
				Data: []byte{0x00, 0xf8, 0xe0, 0x07, 0x1f, 0x00}},
			want: []color.RGBA{{R: 0xff, A: 0xff}, {G: 0xff, A: 0xff}, {B: 0xff, A: 0xff}},
		},
		{
			name: "depth16 mid grey",
			buf: Buffer{Width: 1, Height: 1, BytesPerLine: 2, Depth: 16, BitsPerPixel: 16,
				// r=16 g=32 b=16
				Data: []byte{0x10, 0x84}},
			want: []color.RGBA{{R: 0x84, G: 0x82, B: 0x84, A: 0xff}},
		},
		{
			name: "depth1 lsb first",
			buf: Buffer{Width: 3, Height: 1, BytesPerLine: 4, Depth: 1, BitsPerPixel: 1,
				Data: []byte{0x05, 0, 0, 0}},
			want: []color.RGBA{{A: 0xff}, {R: 0xff, G: 0xff, B: 0xff, A: 0xff}, {A: 0xff}},
		},
		{
			name: "depth30 hard coded shifts",
			buf: Buffer{Width: 1, Height: 1, BytesPerLine: 4, Depth: 30, BitsPerPixel: 32,
				// r=0x3fc g=0x100 b=0x004
				Data: []byte{0x04, 0x00, 0xc4, 0x3f}},
			want: []color.RGBA{{R: 0xff, G: 0x40, B: 0x01, A: 0xff}},
		},
		{
			name: "depth30 all ones",
			buf: Buffer{Width: 1, Height: 1, BytesPerLine: 4, Depth: 30, BitsPerPixel: 32,
				Masks: Masks{Red: 0x3ff00000, Green: 0xffc00, Blue: 0x3ff},
				Data:  []byte{0xff, 0xff, 0xff, 0xff}},
			want: []color.RGBA{{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		},
		{
			name: "depth30 bgr masks",
			buf: Buffer{Width: 1, Height: 1, BytesPerLine: 4, Depth: 30, BitsPerPixel: 32,
				Masks: Masks{Red: 0x3ff, Green: 0xffc00, Blue: 0x3ff00000},
				// red channel lives in the low bits
				Data: []byte{0xfc, 0x03, 0x00, 0x00}},
			want: []color.RGBA{{R: 0xff, A: 0xff}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img, err := Decode(&tc.buf)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if img.Bounds().Dx() != tc.buf.Width || img.Bounds().Dy() != tc.buf.Height {
				t.Fatalf("bounds %v, want %dx%d", img.Bounds(), tc.buf.Width, tc.buf.Height)
			}
			i := 0
			for y := 0; y < tc.buf.Height; y++ {
				for x := 0; x < tc.buf.Width; x++ {
					if got := img.RGBAAt(x, y); got != tc.want[i] {
						t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, tc.want[i])
					}
					i++
				}
			}
		})
	}
}

func TestDecodeUnsupportedDepth(t *testing.T) {
	for _, depth := range []int{8, 15, 4} {
		buf := &Buffer{Width: 1, Height: 1, BytesPerLine: 4, Depth: depth, BitsPerPixel: 8, Data: make([]byte, 4)}
		if _, err := Decode(buf); !errors.Is(err, ErrUnsupportedDepth) {
			t.Fatalf("depth %d: expected ErrUnsupportedDepth, got %v", depth, err)
		}
	}
}

func TestDecodeShortBuffer(t *testing.T) {
	buf := &Buffer{Width: 2, Height: 3, BytesPerLine: 8, Depth: 24, BitsPerPixel: 32, Data: make([]byte, 20)}
	if _, err := Decode(buf); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
	narrow := &Buffer{Width: 4, Height: 1, BytesPerLine: 8, Depth: 32, BitsPerPixel: 32, Data: make([]byte, 8)}
	if _, err := Decode(narrow); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer for narrow stride, got %v", err)
	}
}

func TestDecodeEmpty(t *testing.T) {
	img, err := Decode(&Buffer{Depth: 24})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !img.Bounds().Empty() {
		t.Fatalf("expected empty image, got %v", img.Bounds())
	}
}

func TestChannelShift(t *testing.T) {
	if got := channelShift(0x3ff00000, 0); got != 22 {
		t.Fatalf("red shift = %d", got)
	}
	if got := channelShift(0xffc00, 0); got != 12 {
		t.Fatalf("green shift = %d", got)
	}
	if got := channelShift(0x3ff, 0); got != 2 {
		t.Fatalf("blue shift = %d", got)
	}
	if got := channelShift(0, 7); got != 7 {
		t.Fatalf("fallback shift = %d", got)
	}
}

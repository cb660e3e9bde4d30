package capture

import (
	"image"
	"image/draw"

	"github.com/example/scrcap/internal/logger"
	"github.com/example/scrcap/internal/xserver"
)

// BlendCursor paints the current cursor over a copy of img, which covers
// target in root coordinates. img is returned untouched when the pointer lies
// outside target or no cursor image can be fetched.
func BlendCursor(srv xserver.Server, img *image.RGBA, target image.Rectangle) *image.RGBA {
	if img == nil {
		return img
	}
	log := logger.WithComponent("capture")
	ptr, err := srv.Pointer()
	if err != nil {
		log.Debug().Err(err).Msg("cursor blend skipped: pointer query failed")
		return img
	}
	if !ptr.Position.In(target) {
		return img
	}
	cur, err := srv.CursorImage()
	if err != nil {
		log.Debug().Err(err).Msg("cursor blend skipped: no cursor image")
		return img
	}
	sprite := cursorRGBA(cur)
	if sprite == nil {
		return img
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	at := img.Bounds().Min.Add(ptr.Position.Sub(cur.Hotspot).Sub(target.Min))
	draw.Draw(out, sprite.Bounds().Add(at), sprite, image.Point{}, draw.Over)
	return out
}

// cursorRGBA unpacks ARGB32 premultiplied pixels. It returns nil when the
// cursor has no pixels.
func cursorRGBA(cur xserver.Cursor) *image.RGBA {
	if cur.Width <= 0 || cur.Height <= 0 || len(cur.Pixels) < cur.Width*cur.Height {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, cur.Width, cur.Height))
	for i, v := range cur.Pixels[:cur.Width*cur.Height] {
		img.Pix[4*i+0] = uint8(v >> 16)
		img.Pix[4*i+1] = uint8(v >> 8)
		img.Pix[4*i+2] = uint8(v)
		img.Pix[4*i+3] = uint8(v >> 24)
	}
	return img
}

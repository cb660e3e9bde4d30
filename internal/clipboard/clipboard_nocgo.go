//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"image"
	"os"
)

var (
	errNoDisplay   = errors.New("clipboard initialization requires DISPLAY")
	errCGODisabled = errors.New("clipboard operations require cgo support")
)

func ensureInit() error {
	if os.Getenv("DISPLAY") == "" {
		return errNoDisplay
	}
	return errCGODisabled
}

// WriteImage always fails without cgo.
func WriteImage(image.Image) (<-chan struct{}, error) {
	return nil, ensureInit()
}

//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

// Package clipboard copies captures to the X11 clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY")
)

var initClipboard = clipboard.Init

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		initErr = initClipboard()
	})
	return initErr
}

// WriteImage publishes img to the clipboard as PNG. The returned channel is
// closed once another client takes over the selection; X11 drops the contents
// when this process exits before that.
func WriteImage(img image.Image) (<-chan struct{}, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode clipboard PNG: %w", err)
	}
	return clipboard.Write(clipboard.FmtImage, buf.Bytes()), nil
}

//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"errors"
	"image"
	"sync"
	"testing"
)

func resetInit(t *testing.T) {
	t.Helper()
	prev := initClipboard
	initOnce = sync.Once{}
	initErr = nil
	t.Cleanup(func() {
		initClipboard = prev
		initOnce = sync.Once{}
		initErr = nil
	})
}

func TestWriteImageWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	resetInit(t)

	_, err := WriteImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
}

func TestWriteImageInitFailureIsSticky(t *testing.T) {
	t.Setenv("DISPLAY", ":99")
	resetInit(t)
	calls := 0
	boom := errors.New("no xclip selection owner")
	initClipboard = func() error {
		calls++
		return boom
	}

	for i := 0; i < 2; i++ {
		if _, err := WriteImage(image.NewRGBA(image.Rect(0, 0, 1, 1))); !errors.Is(err, boom) {
			t.Fatalf("attempt %d: expected init error, got %v", i, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected init to run once, got %d", calls)
	}
}

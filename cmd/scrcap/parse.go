package main

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/example/scrcap/internal/xserver"
)

// parseRect reads "x,y,w,h" (spaces allowed, "x" accepted as separator
// between width and height: "x,y,WxH").
func parseRect(s string) (image.Rectangle, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == 'x' || r == ' ' })
	if len(fields) != 4 {
		return image.Rectangle{}, fmt.Errorf("invalid rectangle %q: want x,y,w,h", s)
	}
	var n [4]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid rectangle %q: %w", s, err)
		}
		n[i] = v
	}
	if n[2] <= 0 || n[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("invalid rectangle %q: width and height must be positive", s)
	}
	return image.Rect(n[0], n[1], n[0]+n[2], n[1]+n[3]), nil
}

// parseWindowID accepts hexadecimal ("0x3a00007") or decimal window ids.
func parseWindowID(s string) (xserver.Window, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return xserver.None, fmt.Errorf("empty window id")
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return xserver.None, fmt.Errorf("invalid window id %q: %w", s, err)
	}
	if v == 0 {
		return xserver.None, fmt.Errorf("invalid window id %q", s)
	}
	return xserver.Window(v), nil
}

func formatRect(r image.Rectangle) string {
	return fmt.Sprintf("%dx%d%+d%+d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
}

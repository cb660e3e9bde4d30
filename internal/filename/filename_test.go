package filename

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var fixed = time.Date(2024, time.March, 7, 9, 5, 3, 0, time.UTC)

func TestExpand(t *testing.T) {
	size := image.Pt(1920, 1080)
	tests := []struct {
		tmpl    string
		counter int
		want    string
	}{
		{tmpl: "", counter: 3, want: "03"},
		{tmpl: "%NN", counter: 123, want: "123"},
		{tmpl: "shot-%NNNN", counter: 7, want: "shot-0007"},
		{tmpl: "%wx%h", counter: 1, want: "1920x1080"},
		{tmpl: "%y-%m-%d_%t", counter: 1, want: "2024-03-07_09-05-03"},
		{tmpl: "100%", counter: 1, want: "100%"},
		{tmpl: "%q%N", counter: 2, want: "%q2"},
	}
	for _, tc := range tests {
		if got := Expand(tc.tmpl, tc.counter, size, fixed); got != tc.want {
			t.Fatalf("Expand(%q) = %q, want %q", tc.tmpl, got, tc.want)
		}
	}
}

func TestGeneratorCountsAndUniquifies(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, "cap", ".PNG")
	g.now = func() time.Time { return fixed }

	first := g.Next(image.Pt(10, 10))
	if first != filepath.Join(dir, "cap.png") {
		t.Fatalf("first = %q", first)
	}
	if err := os.WriteFile(first, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	second := g.Next(image.Pt(10, 10))
	if second != filepath.Join(dir, "cap-1.png") {
		t.Fatalf("second = %q", second)
	}
	if err := os.WriteFile(second, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if third := g.Next(image.Pt(10, 10)); third != filepath.Join(dir, "cap-2.png") {
		t.Fatalf("third = %q", third)
	}
}

func TestGeneratorCounterAdvances(t *testing.T) {
	g := NewGenerator("/shots", "%NN", "jpg")
	g.exists = func(string) bool { return false }
	if got := g.Next(image.Point{}); got != "/shots/01.jpg" {
		t.Fatalf("got %q", got)
	}
	if got := g.Next(image.Point{}); got != "/shots/02.jpg" {
		t.Fatalf("got %q", got)
	}
}

func TestGeneratorContinuesPastExistingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"01.png", "02.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	g := NewGenerator(dir, "", "png")
	if got := g.Next(image.Point{}); got != filepath.Join(dir, "03.png") {
		t.Fatalf("first = %q", got)
	}
	if got := g.Next(image.Point{}); got != filepath.Join(dir, "04.png") {
		t.Fatalf("second = %q", got)
	}

	// A fresh generator over the same directory keeps counting.
	if err := os.WriteFile(filepath.Join(dir, "03.png"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := NewGenerator(dir, "%NN", "png").Next(image.Point{}); got != filepath.Join(dir, "04.png") {
		t.Fatalf("fresh generator = %q", got)
	}
}

func TestHasCounter(t *testing.T) {
	cases := map[string]bool{"": true, "%NN": true, "shot-%N-%t": true, "shot-%t": false, "plain": false}
	for tmpl, want := range cases {
		if got := HasCounter(tmpl); got != want {
			t.Errorf("HasCounter(%q) = %v, want %v", tmpl, got, want)
		}
	}
}

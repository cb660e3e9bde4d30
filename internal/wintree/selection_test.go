package wintree

import (
	"image"
	"testing"
)

func nested() []image.Rectangle {
	return []image.Rectangle{
		image.Rect(110, 120, 150, 140), // button
		image.Rect(100, 100, 300, 200), // client
		image.Rect(95, 80, 305, 205),   // frame
		image.Rect(500, 0, 900, 100),   // unrelated
		image.Rect(0, 0, 1920, 1080),   // desktop
	}
}

func TestSelectionMoveToPicksSmallest(t *testing.T) {
	s := NewSelection(nested())
	if _, ok := s.Current(); ok {
		t.Fatalf("expected nothing selected initially")
	}
	s.MoveTo(image.Pt(120, 130))
	if got, _ := s.Current(); got != image.Rect(110, 120, 150, 140) {
		t.Fatalf("Current = %v", got)
	}
	s.MoveTo(image.Pt(200, 190))
	if got, _ := s.Current(); got != image.Rect(100, 100, 300, 200) {
		t.Fatalf("Current = %v", got)
	}
	if s.MoveTo(image.Pt(5000, 5000)) {
		t.Fatalf("expected no change outside every rectangle")
	}
	if got, _ := s.Current(); got != image.Rect(100, 100, 300, 200) {
		t.Fatalf("highlight lost outside every rectangle, Current = %v", got)
	}
}

func TestSelectionIncreaseClampsAtOutermost(t *testing.T) {
	s := NewSelection(nested())
	s.MoveTo(image.Pt(120, 130))
	steps := []image.Rectangle{
		image.Rect(100, 100, 300, 200),
		image.Rect(95, 80, 305, 205),
		image.Rect(0, 0, 1920, 1080),
	}
	for i, want := range steps {
		if !s.Increase() {
			t.Fatalf("step %d: expected Increase to move", i)
		}
		if got, _ := s.Current(); got != want {
			t.Fatalf("step %d: Current = %v, want %v", i, got, want)
		}
	}
	if s.Increase() {
		t.Fatalf("expected Increase to stop at the outermost rectangle")
	}
	if got, _ := s.Current(); got != image.Rect(0, 0, 1920, 1080) {
		t.Fatalf("Current = %v after clamp", got)
	}
}

func TestSelectionDecreaseFollowsPointer(t *testing.T) {
	s := NewSelection(nested())
	s.MoveTo(image.Pt(120, 130))
	for s.Increase() {
	}
	if !s.Decrease() {
		t.Fatalf("expected Decrease to move")
	}
	if got, _ := s.Current(); got != image.Rect(95, 80, 305, 205) {
		t.Fatalf("Current = %v", got)
	}
	s.Decrease()
	s.Decrease()
	if got, _ := s.Current(); got != image.Rect(110, 120, 150, 140) {
		t.Fatalf("Current = %v", got)
	}
	if s.Decrease() {
		t.Fatalf("expected Decrease to stop at the innermost rectangle")
	}
}

func TestSelectionScopeFollowsPointerNotNesting(t *testing.T) {
	// Overlapping siblings: the larger one does not enclose the smaller.
	rects := []image.Rectangle{
		image.Rect(0, 0, 40, 40),
		image.Rect(20, 20, 80, 80),
		image.Rect(0, 0, 200, 200),
	}
	s := NewSelection(rects)
	s.MoveTo(image.Pt(30, 30))
	if !s.Increase() || s.Index() != 1 {
		t.Fatalf("Increase to overlapping sibling, Index = %d", s.Index())
	}
	if !s.Decrease() || s.Index() != 0 {
		t.Fatalf("Decrease back, Index = %d", s.Index())
	}

	s.Aim(image.Pt(10, 10))
	if !s.Increase() || s.Index() != 2 {
		t.Fatalf("Increase must skip rectangles without the pointer, Index = %d", s.Index())
	}
}

func TestSelectionIncreaseFromNothing(t *testing.T) {
	s := NewSelection(nested())
	s.Aim(image.Pt(120, 130))
	if !s.Increase() {
		t.Fatalf("expected Increase to pick the smallest rectangle under the pointer")
	}
	if got, _ := s.Current(); got != image.Rect(110, 120, 150, 140) {
		t.Fatalf("Current = %v", got)
	}
}

func TestSelectionEmptySnapshot(t *testing.T) {
	s := NewSelection(nil)
	s.MoveTo(image.Pt(1, 1))
	if s.Increase() || s.Decrease() {
		t.Fatalf("expected no movement on an empty snapshot")
	}
}

package wintree

import "image"

// Selection tracks which rectangle of a snapshot is highlighted. The snapshot
// must be sorted by ascending area, as Enumerate returns it.
type Selection struct {
	rects []image.Rectangle
	point image.Point
	index int
}

// NewSelection returns a selection over rects with nothing highlighted.
func NewSelection(rects []image.Rectangle) *Selection {
	return &Selection{rects: rects, index: -1}
}

// Rects returns the snapshot.
func (s *Selection) Rects() []image.Rectangle {
	return s.rects
}

// Current returns the highlighted rectangle.
func (s *Selection) Current() (image.Rectangle, bool) {
	if s.index < 0 || s.index >= len(s.rects) {
		return image.Rectangle{}, false
	}
	return s.rects[s.index], true
}

// Index returns the highlighted index, or -1.
func (s *Selection) Index() int {
	return s.index
}

// MoveTo highlights the smallest rectangle containing p. Outside every
// rectangle the highlight stays where it was.
func (s *Selection) MoveTo(p image.Point) bool {
	s.point = p
	i := s.indexAt(p)
	if i == -1 || i == s.index {
		return false
	}
	s.index = i
	return true
}

// Aim records the pointer position used by Increase and Decrease without
// changing the highlight.
func (s *Selection) Aim(p image.Point) {
	s.point = p
}

// Increase widens the selection to the next larger rectangle that contains the
// last pointer position. It stays put at the outermost one.
func (s *Selection) Increase() bool {
	for i := s.index + 1; i < len(s.rects); i++ {
		if s.point.In(s.rects[i]) {
			s.index = i
			return true
		}
	}
	return false
}

// Decrease narrows the selection to the next smaller rectangle that contains
// the last pointer position. It stays put at the innermost one.
func (s *Selection) Decrease() bool {
	for i := s.index - 1; i >= 0; i-- {
		if s.point.In(s.rects[i]) {
			s.index = i
			return true
		}
	}
	return false
}

func (s *Selection) indexAt(p image.Point) int {
	for i, r := range s.rects {
		if p.In(r) {
			return i
		}
	}
	return -1
}

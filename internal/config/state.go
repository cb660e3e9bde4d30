package config

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Rect is an image.Rectangle in a yaml friendly shape.
type Rect struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// FromRectangle converts r.
func FromRectangle(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rectangle converts back to image.Rectangle.
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// State is data remembered between runs, such as the last capture area.
type State struct {
	LastRect *Rect `yaml:"last_rect,omitempty"`
}

// StatePath returns the state file location.
func StatePath() (string, error) {
	dir := Dir()
	if dir == "" {
		return "", errNoConfigDir
	}
	return filepath.Join(dir, "state.yaml"), nil
}

// LoadState reads the state file at path. A missing file yields an empty State.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &State{}, nil
	}
	if err != nil {
		return nil, err
	}
	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the state to path.
func (s *State) Save(path string) error {
	return writeYAML(path, s)
}

// Remember records r as the last captured rectangle.
func (s *State) Remember(r image.Rectangle) {
	rect := FromRectangle(r.Canon())
	s.LastRect = &rect
}

// Last returns the last captured rectangle.
func (s *State) Last() (image.Rectangle, bool) {
	if s == nil || s.LastRect == nil || s.LastRect.Width <= 0 || s.LastRect.Height <= 0 {
		return image.Rectangle{}, false
	}
	return s.LastRect.Rectangle(), true
}

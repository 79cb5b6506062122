// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"fmt"
	"strings"
)

// Shape is the clip shape of an avatar.
type Shape uint8

const (
	// Circle clips to a circle whose radius is half the smaller dimension.
	Circle Shape = iota
	// RoundedRect clips to a square with small rounded corners.
	RoundedRect
)

// String returns the config name of the shape.
func (s Shape) String() string {
	switch s {
	case Circle:
		return "circle"
	case RoundedRect:
		return "rounded"
	default:
		return fmt.Sprintf("Shape(%d)", s)
	}
}

// ParseShape parses "circle" or "rounded" (also "rect", "rectangle").
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "circle":
		return Circle, nil
	case "rounded", "rect", "rectangle":
		return RoundedRect, nil
	}
	return Circle, fmt.Errorf("avatar: unknown shape %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(text []byte) error {
	v, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Size is a fixed display size in pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Predefined display sizes.
var (
	SizeLarge  = Size{Width: 128, Height: 128}
	SizeMedium = Size{Width: 64, Height: 64}
	SizeSmall  = Size{Width: 32, Height: 32}
)

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// orMedium returns s, or SizeMedium if s is not valid.
func (s Size) orMedium() Size {
	if !s.Valid() {
		return SizeMedium
	}
	return s
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// ParseSize parses "large", "medium", "small" or "WxH".
func ParseSize(s string) (Size, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "large":
		return SizeLarge, nil
	case "", "medium":
		return SizeMedium, nil
	case "small":
		return SizeSmall, nil
	}
	var sz Size
	if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &sz.Width, &sz.Height); err != nil || !sz.Valid() {
		return Size{}, fmt.Errorf("avatar: invalid size %q", s)
	}
	return sz, nil
}

// Config holds the display configuration of an avatar.
type Config struct {
	Shape     Shape  `yaml:"shape"`
	Size      Size   `yaml:"size"`
	Animation bool   `yaml:"animation"`
	CacheDir  string `yaml:"cache_dir"`
}

// DefaultConfig returns a circular, medium, non-animated configuration
// without a cache directory.
func DefaultConfig() Config {
	return Config{Shape: Circle, Size: SizeMedium}
}

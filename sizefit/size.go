// Package sizefit computes how a source size is scaled and clipped into a
// target size.
package sizefit

import (
	"fmt"
	"image"
	"math"
)

// MaxDimension is the largest width or height a source, target or fitted
// size may have.
const MaxDimension = 1 << 30

// InvalidSize marks an unset axis. A target axis set to InvalidSize is
// unconstrained.
const InvalidSize = 0

// Size is a width and height in pixels. A zero axis means "unset".
type Size struct {
	Width  int
	Height int
}

func SizeOf(width int, height int) Size {
	return Size{Width: width, Height: height}
}

// SizeFromRectangle returns the dimensions of r.
func SizeFromRectangle(r image.Rectangle) Size {
	return Size{Width: r.Dx(), Height: r.Dy()}
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// IsLandscape reports whether s is at least as wide as it is tall.
func (s Size) IsLandscape() bool {
	return s.Width >= s.Height
}

func (s Size) exceeds(limit int) bool {
	return s.Width > limit || s.Height > limit
}

// IsValid reports whether both axes are positive.
func (s Size) IsValid() bool {
	return s.Width > 0 && s.Height > 0
}

func (s Size) transpose() Size {
	return Size{Width: s.Height, Height: s.Width}
}

// scale multiplies both axes by factor, never going below one pixel.
func (s Size) scale(factor float64) Size {
	return Size{
		Width:  scaleDim(s.Width, factor),
		Height: scaleDim(s.Height, factor),
	}
}

// round rounds half up. Values past MaxDimension saturate at
// MaxDimension+1 so the conversion never overflows.
func round(v float64) int {
	if v >= MaxDimension+0.5 {
		return MaxDimension + 1
	}
	return int(math.Floor(v + 0.5))
}

func scaleDim(v int, factor float64) int {
	n := round(float64(v) * factor)
	if n < 1 {
		return 1
	}
	return n
}

func ratio(target, source int) float64 {
	return float64(target) / float64(source)
}

func transposeRect(r image.Rectangle) image.Rectangle {
	return image.Rect(r.Min.Y, r.Min.X, r.Max.Y, r.Max.X)
}

package sizefit

import (
	"fmt"
	"image"
	"strings"
)

// Config is an immutable fitting configuration. It is a plain value and is
// safe to share between goroutines.
type Config struct {
	Target  Size
	Mode    FitMode
	Options FitOptions
}

// Result describes the outcome of fitting a source size.
type Result struct {
	// Size is the scaled source size.
	Size Size

	// Changed is false when Size equals the source size. A FitToWidth or
	// FitToHeight fit that is not allowed to enlarge can still crop the
	// overflowing axis: Changed is then false while Clip is set.
	Changed bool

	// Clip is the visible area in source coordinates. It is empty when the
	// fit does not crop.
	Clip image.Rectangle

	// Visible is the size of the output once the clipped overflow is cut
	// away. It equals Size when nothing is clipped.
	Visible Size
}

// IsClipped reports whether the fit cropped the source.
func (r Result) IsClipped() bool {
	return !r.Clip.Empty()
}

// NewConfig returns a validated config with the default fit options.
func NewConfig(target Size, mode FitMode) (Config, error) {
	c := Config{Target: target, Mode: mode, Options: DefaultFitOptions()}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Target.Width < 0 || c.Target.Height < 0 {
		return fmt.Errorf("%w: negative target size %v", ErrInvalidConfiguration, c.Target)
	}
	if c.Target.exceeds(MaxDimension) {
		return fmt.Errorf("%w: target size %v too large", ErrInvalidConfiguration, c.Target)
	}
	if !c.Mode.valid() {
		return fmt.Errorf("%w: unknown fit mode %d", ErrInvalidConfiguration, int(c.Mode))
	}
	return nil
}

// Key returns a short name identifying the config, usable as a directory
// name, e.g. "800x600-fit-ro-en".
func (c Config) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s-%s", c.Target, c.Mode)
	if c.Options.Enabled(RespectOrientation) {
		b.WriteString("-ro")
	}
	if c.Options.Enabled(Enlarge) {
		b.WriteString("-en")
	}
	return b.String()
}

// OrientedTarget returns the target size rotated to the orientation of size
// when RespectOrientation is enabled. A target with a zero axis has no
// orientation and is returned as is.
func (c Config) OrientedTarget(size Size) Size {
	t := c.Target
	if !c.Options.Enabled(RespectOrientation) || !t.IsValid() {
		return t
	}
	if size.IsLandscape() != t.IsLandscape() {
		return t.transpose()
	}
	return t
}

// Fit computes the fitted size of size. A zero target axis leaves that axis
// unconstrained: only the other axis drives the scale and nothing is clipped
// along it.
func (c Config) Fit(size Size) (Result, error) {
	if !size.IsValid() || size.exceeds(MaxDimension) {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, size)
	}
	if err := c.Validate(); err != nil {
		return Result{}, err
	}

	target := c.OrientedTarget(size)
	var r Result
	switch c.Mode {
	case NoFit:
		r = unchanged(size)
	case Fit:
		r = c.fitIt(size, target)
	case FitToWidth:
		r = c.fitToWidth(size, target)
	case FitToHeight:
		r = c.fitToHeight(size, target)
	case ExactFit:
		r = c.exactFit(size, target)
	}
	if r.Size.exceeds(MaxDimension) {
		return Result{}, fmt.Errorf("%w: fitting %v into %v exceeds %d pixels", ErrInvalidInput, size, target, MaxDimension)
	}
	r.Changed = r.Size != size
	return r, nil
}

func unchanged(size Size) Result {
	return Result{Size: size, Visible: size}
}

func (c Config) clampScale(scale float64) float64 {
	if scale > 1 && !c.Options.Enabled(Enlarge) {
		return 1
	}
	return scale
}

func (c Config) fitIt(size, target Size) Result {
	var scale float64
	constrained := false
	if target.Width > 0 {
		scale = ratio(target.Width, size.Width)
		constrained = true
	}
	if target.Height > 0 {
		s := ratio(target.Height, size.Height)
		if !constrained || s < scale {
			scale = s
		}
		constrained = true
	}
	if !constrained {
		return unchanged(size)
	}

	return unchanged(size.scale(c.clampScale(scale)))
}

func (c Config) fitToWidth(size, target Size) Result {
	if target.Width == 0 {
		if target.Height == 0 {
			return unchanged(size)
		}
		return unchanged(size.scale(c.clampScale(ratio(target.Height, size.Height))))
	}

	scale := c.clampScale(ratio(target.Width, size.Width))
	r := unchanged(size.scale(scale))
	if target.Height == 0 || r.Size.Height <= target.Height {
		return r
	}

	// centered band of the source that ends up target.Height tall
	band := round(float64(target.Height) / scale)
	if band > size.Height {
		band = size.Height
	}
	if band < 1 {
		band = 1
	}
	y := round(float64(size.Height-band) / 2)
	r.Clip = image.Rect(0, y, size.Width, y+band)
	r.Visible = Size{Width: r.Size.Width, Height: target.Height}
	return r
}

func (c Config) fitToHeight(size, target Size) Result {
	r := c.fitToWidth(size.transpose(), target.transpose())
	return Result{
		Size:    r.Size.transpose(),
		Clip:    transposeRect(r.Clip),
		Visible: r.Visible.transpose(),
	}
}

// exactFit reshapes and never clips. An axis that would need enlarging keeps
// its source dimension unless Enlarge is set.
func (c Config) exactFit(size, target Size) Result {
	fitted := size
	enlarge := c.Options.Enabled(Enlarge)
	if target.Width > 0 && (target.Width <= size.Width || enlarge) {
		fitted.Width = target.Width
	}
	if target.Height > 0 && (target.Height <= size.Height || enlarge) {
		fitted.Height = target.Height
	}
	return unchanged(fitted)
}

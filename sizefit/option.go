package sizefit

import "fmt"

// FitOption is an independent flag modifying the behaviour of a FitMode.
type FitOption int

const (
	// RespectOrientation rotates the target size to match the orientation
	// (portrait or landscape) of the source before fitting.
	RespectOrientation FitOption = iota

	// Enlarge allows scaling the source up past its original size.
	Enlarge

	NofFitOptions
)

func (o FitOption) valid() bool {
	return o >= 0 && o < NofFitOptions
}

func (o FitOption) String() string {
	switch o {
	case RespectOrientation:
		return "respect-orientation"
	case Enlarge:
		return "enlarge"
	}
	return fmt.Sprintf("FitOption(%d)", int(o))
}

// FitOptions holds one flag per FitOption. The zero value has every option
// disabled.
type FitOptions [NofFitOptions]bool

// DefaultFitOptions returns the options a new Fitter starts with:
// orientation is not respected and enlarging is allowed.
func DefaultFitOptions() FitOptions {
	var o FitOptions
	o[Enlarge] = true
	return o
}

// With returns a copy of o with the option set. Options outside the
// enumerated range are rejected.
func (o FitOptions) With(option FitOption, enable bool) (FitOptions, error) {
	if !option.valid() {
		return o, fmt.Errorf("%w: unknown fit option %d", ErrInvalidConfiguration, int(option))
	}
	o[option] = enable
	return o, nil
}

// Enabled reports whether option is set. Unknown options are never enabled.
func (o FitOptions) Enabled(option FitOption) bool {
	if !option.valid() {
		return false
	}
	return o[option]
}

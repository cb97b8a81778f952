package sizefit

import "fmt"

// FitMode selects how a source size is mapped into the target size.
type FitMode int

const (
	// NoFit returns the source size unchanged.
	NoFit FitMode = iota

	// Fit scales the source to fit entirely within the target, aspect ratio
	// preserved. Nothing is clipped.
	Fit

	// FitToWidth scales the source so its width matches the target width.
	// The height overflowing the target is clipped.
	FitToWidth

	// FitToHeight scales the source so its height matches the target height.
	// The width overflowing the target is clipped.
	FitToHeight

	// ExactFit scales each axis independently to the target, original
	// aspect ratio ignored.
	ExactFit

	nofFitModes
)

var fitModeNames = [...]string{
	NoFit:       "none",
	Fit:         "fit",
	FitToWidth:  "fit-to-width",
	FitToHeight: "fit-to-height",
	ExactFit:    "exact",
}

func (m FitMode) valid() bool {
	return m >= NoFit && m < nofFitModes
}

func (m FitMode) String() string {
	if !m.valid() {
		return fmt.Sprintf("FitMode(%d)", int(m))
	}
	return fitModeNames[m]
}

// ParseFitMode parses the textual name of a fit mode, e.g. "fit-to-width".
func ParseFitMode(name string) (FitMode, error) {
	for m, n := range fitModeNames {
		if n == name {
			return FitMode(m), nil
		}
	}
	return NoFit, fmt.Errorf("%w: unknown fit mode %q", ErrInvalidConfiguration, name)
}

func (m FitMode) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("%w: unknown fit mode %d", ErrInvalidConfiguration, int(m))
	}
	return []byte(fitModeNames[m]), nil
}

func (m *FitMode) UnmarshalText(text []byte) error {
	mode, err := ParseFitMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

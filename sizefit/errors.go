package sizefit

import "errors"

var (
	// ErrInvalidInput is returned by Fit when the source size has a zero or
	// negative axis.
	ErrInvalidInput = errors.New("invalid input size")

	// ErrInvalidConfiguration is returned when a target axis is negative, the
	// fit mode is unknown or a fit option is out of range.
	ErrInvalidConfiguration = errors.New("invalid fit configuration")
)

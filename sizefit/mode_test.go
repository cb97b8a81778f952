package sizefit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFitMode(t *testing.T) {
	tests := []struct {
		name string
		want FitMode
	}{
		{name: "none", want: NoFit},
		{name: "fit", want: Fit},
		{name: "fit-to-width", want: FitToWidth},
		{name: "fit-to-height", want: FitToHeight},
		{name: "exact", want: ExactFit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFitMode(tt.name)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, got.String())
		})
	}

	_, err := ParseFitMode("cover")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestFitMode_Text(t *testing.T) {
	a := assert.New(t)

	var m FitMode
	a.NoError(m.UnmarshalText([]byte("fit-to-width")))
	a.Equal(FitToWidth, m)
	a.Error(m.UnmarshalText([]byte("stretch")))
	a.Equal(FitToWidth, m)

	_, err := FitMode(9).MarshalText()
	a.ErrorIs(err, ErrInvalidConfiguration)
	a.Equal("FitMode(9)", FitMode(9).String())
}

func TestFitOptions(t *testing.T) {
	a := assert.New(t)

	var o FitOptions
	a.False(o.Enabled(Enlarge))

	o, err := o.With(Enlarge, true)
	a.NoError(err)
	a.True(o.Enabled(Enlarge))
	a.False(o.Enabled(RespectOrientation))

	same, err := o.With(NofFitOptions, true)
	a.ErrorIs(err, ErrInvalidConfiguration)
	a.Equal(o, same)

	_, err = o.With(FitOption(-1), true)
	a.ErrorIs(err, ErrInvalidConfiguration)
	a.False(o.Enabled(FitOption(7)))
}

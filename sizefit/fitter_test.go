package sizefit

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFitter(t *testing.T) {
	a := assert.New(t)

	f, err := NewFitter(SizeOf(800, 600), FitToHeight)
	require.NoError(t, err)
	a.Equal(SizeOf(800, 600), f.TargetSize())
	a.Equal(FitToHeight, f.FitMode())
	a.False(f.IsFitOptionEnabled(RespectOrientation))
	a.True(f.IsFitOptionEnabled(Enlarge))
	a.False(f.IsFitOptionEnabled(NofFitOptions))

	_, err = NewFitter(SizeOf(800, -600), Fit)
	a.ErrorIs(err, ErrInvalidConfiguration)

	_, err = NewFitterFromConfig(Config{Mode: FitMode(17)})
	a.ErrorIs(err, ErrInvalidConfiguration)
}

func TestFitter_Setters(t *testing.T) {
	f, err := NewFitter(SizeOf(800, 600), Fit)
	require.NoError(t, err)

	var notified []Config
	f.OnChanged(func(c Config) {
		notified = append(notified, c)
		assert.Equal(t, c, f.Config())
	})

	t.Run("Target width", func(t *testing.T) {
		changed, err := f.SetTargetWidth(1024)
		assert.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, SizeOf(1024, 600), f.TargetSize())
	})
	t.Run("Target height", func(t *testing.T) {
		changed, err := f.SetTargetHeight(768)
		assert.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, SizeOf(1024, 768), f.TargetSize())
	})
	t.Run("Same target size", func(t *testing.T) {
		changed, err := f.SetTargetSize(SizeOf(1024, 768))
		assert.NoError(t, err)
		assert.False(t, changed)
	})
	t.Run("Fit mode", func(t *testing.T) {
		changed, err := f.SetFitMode(ExactFit)
		assert.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, ExactFit, f.FitMode())
	})
	t.Run("Fit option", func(t *testing.T) {
		changed, err := f.SetFitOptionEnabled(RespectOrientation, true)
		assert.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, f.IsFitOptionEnabled(RespectOrientation))

		changed, err = f.SetFitOptionEnabled(RespectOrientation, true)
		assert.NoError(t, err)
		assert.False(t, changed)
	})

	assert.Len(t, notified, 4)
	assert.Equal(t, Config{
		Target:  SizeOf(1024, 768),
		Mode:    ExactFit,
		Options: FitOptions{RespectOrientation: true, Enlarge: true},
	}, notified[3])
}

func TestFitter_RejectedSetterKeepsConfig(t *testing.T) {
	a := assert.New(t)

	f, err := NewFitter(SizeOf(800, 600), Fit)
	require.NoError(t, err)
	calls := 0
	f.OnChanged(func(Config) { calls++ })
	before := f.Config()

	changed, err := f.SetTargetWidth(-1)
	a.ErrorIs(err, ErrInvalidConfiguration)
	a.False(changed)

	changed, err = f.SetTargetSize(SizeOf(10, -10))
	a.ErrorIs(err, ErrInvalidConfiguration)
	a.False(changed)

	changed, err = f.SetFitMode(FitMode(99))
	a.ErrorIs(err, ErrInvalidConfiguration)
	a.False(changed)

	changed, err = f.SetFitOptionEnabled(FitOption(2), true)
	a.ErrorIs(err, ErrInvalidConfiguration)
	a.False(changed)

	a.Equal(before, f.Config())
	a.Equal(0, calls)
}

func TestFitter_SetConfigNotifiesOnce(t *testing.T) {
	f, err := NewFitter(SizeOf(800, 600), Fit)
	require.NoError(t, err)
	calls := 0
	f.OnChanged(func(Config) { calls++ })

	next := configOf(SizeOf(320, 240), FitToWidth, true, false)
	changed, err := f.SetConfig(next)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, calls)
	assert.Equal(t, next, f.Config())
}

func TestFitter_Fit(t *testing.T) {
	a := assert.New(t)

	f, err := NewFitter(SizeOf(800, 600), FitToWidth)
	require.NoError(t, err)

	r, err := f.Fit(SizeOf(400, 1000))
	a.NoError(err)
	a.Equal(SizeOf(800, 2000), r.Size)
	a.Equal(image.Rect(0, 350, 400, 650), r.Clip)

	_, err = f.SetFitMode(NoFit)
	a.NoError(err)
	r, err = f.Fit(SizeOf(400, 1000))
	a.NoError(err)
	a.False(r.Changed)
	a.Equal(SizeOf(400, 1000), r.Size)

	_, err = f.Fit(SizeOf(400, 0))
	a.ErrorIs(err, ErrInvalidInput)
}

func TestNewDefaultFitter(t *testing.T) {
	a := assert.New(t)

	f := NewDefaultFitter()
	a.Equal(Fit, f.FitMode())
	a.Equal(SizeOf(InvalidSize, InvalidSize), f.TargetSize())
	a.True(f.IsFitOptionEnabled(Enlarge))
	a.False(f.IsFitOptionEnabled(RespectOrientation))

	// an unset target constrains nothing
	r, err := f.Fit(SizeOf(640, 480))
	a.NoError(err)
	a.False(r.Changed)

	changed, err := f.SetTargetWidth(320)
	a.NoError(err)
	a.True(changed)
	r, err = f.Fit(SizeOf(640, 480))
	a.NoError(err)
	a.Equal(SizeOf(320, 240), r.Size)
}

func TestFitter_ZeroValue(t *testing.T) {
	var f Fitter
	a := assert.New(t)
	a.Equal(NoFit, f.FitMode())
	a.False(f.IsFitOptionEnabled(Enlarge))

	r, err := f.Fit(SizeOf(640, 480))
	a.NoError(err)
	a.Equal(SizeOf(640, 480), r.Size)
}

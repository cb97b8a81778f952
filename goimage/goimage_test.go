package goimage

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szxp/screenie/sizefit"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
)

// stripes returns an image whose quarter rows at the top and bottom are red
// and the middle half green.
func stripes(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		c := green
		if y < height/4 || y >= height-height/4 {
			c = red
		}
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, dir string, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func configOf(t *testing.T, width, height int, mode sizefit.FitMode) sizefit.Config {
	t.Helper()
	cfg, err := sizefit.NewConfig(sizefit.SizeOf(width, height), mode)
	require.NoError(t, err)
	return cfg
}

func TestImageResizer_Resize(t *testing.T) {
	dir := t.TempDir()
	src := writePNG(t, dir, "source.png", stripes(400, 300))
	resizer := NewImageResizer()

	tests := []struct {
		name    string
		cfg     sizefit.Config
		visible sizefit.Size
	}{
		{name: "Fit", cfg: configOf(t, 100, 100, sizefit.Fit), visible: sizefit.SizeOf(100, 75)},
		{name: "NoFit", cfg: configOf(t, 100, 100, sizefit.NoFit), visible: sizefit.SizeOf(400, 300)},
		{name: "ExactFit", cfg: configOf(t, 50, 60, sizefit.ExactFit), visible: sizefit.SizeOf(50, 60)},
		{name: "FitToWidth", cfg: configOf(t, 800, 400, sizefit.FitToWidth), visible: sizefit.SizeOf(800, 400)},
		{name: "FitToHeight", cfg: configOf(t, 100, 150, sizefit.FitToHeight), visible: sizefit.SizeOf(100, 150)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := filepath.Join(dir, tt.name+".png")

			res, err := resizer.Resize(dst, src, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.visible, res.Visible)

			out, err := imaging.Open(dst)
			require.NoError(t, err)
			assert.Equal(t, tt.visible, sizefit.SizeFromRectangle(out.Bounds()))
		})
	}
}

func TestImageResizer_Resize_Missing(t *testing.T) {
	dir := t.TempDir()
	_, err := NewImageResizer().Resize(filepath.Join(dir, "out.png"), filepath.Join(dir, "missing.png"), configOf(t, 10, 10, sizefit.Fit))
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "out.png"))
}

func TestApply_KeepsCenteredBand(t *testing.T) {
	img := stripes(10, 20)
	cfg := configOf(t, 10, 10, sizefit.FitToWidth)

	res, err := cfg.Fit(sizefit.SizeFromRectangle(img.Bounds()))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 5, 10, 15), res.Clip)

	out := Apply(img, res, imaging.Lanczos)
	assert.Equal(t, image.Rect(0, 0, 10, 10), out.Bounds())
	for y := 0; y < 10; y++ {
		assert.Equal(t, green, color.NRGBAModel.Convert(out.At(0, y)), "row %d", y)
	}
}

func TestApply_Unchanged(t *testing.T) {
	img := stripes(10, 20)
	cfg := configOf(t, 10, 10, sizefit.NoFit)

	res, err := cfg.Fit(sizefit.SizeFromRectangle(img.Bounds()))
	require.NoError(t, err)
	assert.Same(t, img, Apply(img, res, imaging.Lanczos))
}

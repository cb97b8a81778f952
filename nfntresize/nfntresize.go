// Package nfntresize scales images with nfnt/resize. Decoding, cropping and
// encoding go through disintegration/imaging.
package nfntresize

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/szxp/screenie/sizefit"
)

type ImageResizer struct {
	Interpolation resize.InterpolationFunction
	Quality       int
}

func NewImageResizer() *ImageResizer {
	return &ImageResizer{
		Interpolation: resize.Lanczos3,
		Quality:       75,
	}
}

func (r *ImageResizer) Resize(dst, src string, cfg sizefit.Config) (sizefit.Result, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return sizefit.Result{}, fmt.Errorf("failed to open %s: %w", src, err)
	}

	res, err := cfg.Fit(sizefit.SizeFromRectangle(img.Bounds()))
	if err != nil {
		return sizefit.Result{}, fmt.Errorf("failed to fit %s: %w", src, err)
	}

	if res.IsClipped() {
		img = imaging.Crop(img, res.Clip.Add(img.Bounds().Min))
	}
	if res.Changed || res.IsClipped() {
		img = resize.Resize(uint(res.Visible.Width), uint(res.Visible.Height), img, r.Interpolation)
	}

	if err := imaging.Save(img, dst, imaging.JPEGQuality(r.Quality)); err != nil {
		return sizefit.Result{}, fmt.Errorf("failed to save %s: %w", dst, err)
	}
	return res, nil
}

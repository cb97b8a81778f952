// Package goimage resizes images in-process with disintegration/imaging.
package goimage

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/szxp/screenie/sizefit"
)

const DefaultQuality = 75

type ImageResizer struct {
	Filter  imaging.ResampleFilter
	Quality int
}

func NewImageResizer() *ImageResizer {
	return &ImageResizer{
		Filter:  imaging.Lanczos,
		Quality: DefaultQuality,
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

	out := Apply(img, res, r.Filter)
	if err := imaging.Save(out, dst, imaging.JPEGQuality(r.Quality)); err != nil {
		return sizefit.Result{}, fmt.Errorf("failed to save %s: %w", dst, err)
	}
	return res, nil
}

// Apply crops img to the clipped area of res and scales it to the visible
// size. img is returned as is when res neither scales nor clips.
func Apply(img image.Image, res sizefit.Result, filter imaging.ResampleFilter) image.Image {
	if res.IsClipped() {
		img = imaging.Crop(img, res.Clip.Add(img.Bounds().Min))
	}
	if !res.Changed && !res.IsClipped() {
		return img
	}
	return imaging.Resize(img, res.Visible.Width, res.Visible.Height, filter)
}

package screenie

import "github.com/szxp/screenie/sizefit"

// ImageResizer writes a fitted copy of the image at src to dst.
// The returned result describes how the source was scaled and clipped.
type ImageResizer interface {
	Resize(dst, src string, cfg sizefit.Config) (sizefit.Result, error)
}

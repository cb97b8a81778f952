package imagemagick

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"os/exec"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/szxp/screenie/sizefit"
)

type ImageResizer struct {
	// Command is the ImageMagick binary, "convert" when empty.
	Command string
	Quality int
}

func (r *ImageResizer) Resize(dst, src string, cfg sizefit.Config) (sizefit.Result, error) {
	size, err := SourceSize(src)
	if err != nil {
		return sizefit.Result{}, err
	}

	res, err := cfg.Fit(size)
	if err != nil {
		return sizefit.Result{}, fmt.Errorf("failed to fit %s: %w", src, err)
	}

	quality := r.Quality
	if quality == 0 {
		quality = 75
	}
	_, err = exec.Command(r.command(), Args(dst, src, res, quality)...).Output()
	if err != nil {
		return sizefit.Result{}, fmt.Errorf("Failed to create thumbnail: %w", err)
	}
	return res, nil
}

func (r *ImageResizer) command() string {
	if r.Command == "" {
		return "convert"
	}
	return r.Command
}

// Args returns the convert arguments producing the visible part of res.
func Args(dst, src string, res sizefit.Result, quality int) []string {
	args := []string{
		// use only the first frame
		src + "[0]",

		// applies the EXIF orientation first, SourceSize reports the oriented size
		"-auto-orient",
	}

	if res.IsClipped() {
		c := res.Clip
		args = append(args,
			"-crop", fmt.Sprintf("%dx%d+%d+%d", c.Dx(), c.Dy(), c.Min.X, c.Min.Y),
			"+repage", // completely remove/reset the virtual canvas meta-data from the images.
		)
	}
	if res.Changed || res.IsClipped() {
		args = append(args, "-resize", fmt.Sprintf("%dx%d!", res.Visible.Width, res.Visible.Height))
	}

	return append(args,
		"-quality", fmt.Sprint(quality),
		"-strip",
		dst,
	)
}

// SourceSize returns the dimensions of the image at path as displayed, that
// is with width and height swapped when the EXIF orientation rotates it by
// 90 degrees.
func SourceSize(path string) (sizefit.Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return sizefit.Size{}, err
	}
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		return sizefit.Size{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	size := sizefit.SizeOf(ic.Width, ic.Height)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return sizefit.Size{}, err
	}
	if orientation(f) >= 5 {
		size = sizefit.SizeOf(size.Height, size.Width)
	}
	return size, nil
}

// orientation returns the EXIF orientation tag, 1 when there is none.
func orientation(f *os.File) int {
	x, err := exif.Decode(f)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return o
}

func Version() (string, error) {
	ver, err := exec.Command("convert", "-version").Output()
	if err != nil {
		return "", err
	}
	return string(ver), nil
}

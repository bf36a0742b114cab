package rimage

import (
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	"go.uber.org/multierr"
)

// encoders for the formats imaging cannot write. Decoding goes through image.Decode,
// where both packages register themselves.
var extraEncoders = map[string]func(io.Writer, image.Image) error{
	".ppm": ppm.Encode,
	".qoi": qoi.Encode,
}

// NewImageFromFile decodes an image file, applying any EXIF orientation.
func NewImageFromFile(fn string) (*Image, error) {
	img, err := imaging.Open(fn, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read image %q", fn)
	}
	return NewImageFromStdImage(img), nil
}

// WriteImageToFile encodes an image with the format implied by the file extension.
func WriteImageToFile(fn string, img image.Image) (err error) {
	encode, ok := extraEncoders[strings.ToLower(filepath.Ext(fn))]
	if !ok {
		if err := imaging.Save(img, fn, imaging.JPEGQuality(95)); err != nil {
			return errors.Wrapf(err, "cannot write image %q", fn)
		}
		return nil
	}

	//nolint:gosec
	f, err := os.Create(fn)
	if err != nil {
		return errors.Wrapf(err, "cannot write image %q", fn)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return errors.Wrapf(encode(f, img), "cannot write image %q", fn)
}

// ResizeImage scales an image by a factor using an area averaging filter. A scale of one
// returns the input.
func ResizeImage(img *Image, scale float64) (*Image, error) {
	if scale <= 0 {
		return nil, errors.Errorf("resize scale must be positive, got %v", scale)
	}
	if scale == 1 {
		return img, nil
	}
	width := int(math.Max(1, math.Round(float64(img.Width())*scale)))
	height := int(math.Max(1, math.Round(float64(img.Height())*scale)))
	return NewImageFromStdImage(imaging.Resize(img, width, height, imaging.Box)), nil
}

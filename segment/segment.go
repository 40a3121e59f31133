// Package segment turns a display depth image into a binary mask of the pixels whose depth
// lies strictly between a near and a far threshold.
package segment

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Strategy selects how the band-pass mask is computed. All strategies produce identical masks.
type Strategy int

const (
	// StrategyLibrary thresholds twice with OpenCV and combines the results with a bitwise and.
	StrategyLibrary Strategy = iota
	// StrategyManual visits every pixel once.
	StrategyManual
)

// String returns the config name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyLibrary:
		return "library"
	case StrategyManual:
		return "manual"
	default:
		return "unknown"
	}
}

// ParseStrategy is the inverse of Strategy.String.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "library", "":
		return StrategyLibrary, nil
	case "manual":
		return StrategyManual, nil
	default:
		return StrategyLibrary, errors.Errorf("unknown threshold strategy %q", name)
	}
}

// NewMask allocates a mask for frames of the given size.
func NewMask(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// Segment writes into dst the mask of src pixels v with far < v < near, using the given strategy.
// src and dst may be the same image. An inverted band (near <= far) yields an empty mask.
func Segment(strategy Strategy, src *image.Gray, near, far int, dst *image.Gray) error {
	if src.Rect.Size() != dst.Rect.Size() {
		return errors.Errorf("mask size %v does not match frame size %v", dst.Rect.Size(), src.Rect.Size())
	}
	if strategy == StrategyManual {
		ManualBandPass(src, near, far, dst)
		return nil
	}
	return LibraryBandPass(src, near, far, dst)
}

// ManualBandPass sets each dst pixel to 255 if the matching src pixel is strictly between far and near,
// and to 0 otherwise.
func ManualBandPass(src *image.Gray, near, far int, dst *image.Gray) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		in := src.Pix[y*src.Stride : y*src.Stride+w]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x, v := range in {
			if int(v) < near && int(v) > far {
				out[x] = 255
			} else {
				out[x] = 0
			}
		}
	}
}

// LibraryBandPass computes the same mask as ManualBandPass with two OpenCV thresholds:
// an inverted one keeping v <= near-1 and a plain one keeping v > far.
func LibraryBandPass(src *image.Gray, near, far int, dst *image.Gray) error {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	gray, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, Packed(src))
	if err != nil {
		return errors.Wrap(err, "cannot load depth image")
	}
	defer gray.Close()

	threshNear := gocv.NewMat()
	defer threshNear.Close()
	threshFar := gocv.NewMat()
	defer threshFar.Close()
	gocv.Threshold(gray, &threshNear, float32(near-1), 255, gocv.ThresholdBinaryInv)
	gocv.Threshold(gray, &threshFar, float32(far), 255, gocv.ThresholdBinary)

	band := gocv.NewMat()
	defer band.Close()
	gocv.BitwiseAnd(threshNear, threshFar, &band)

	Unpack(band.ToBytes(), dst)
	return nil
}

// Packed returns a copy of the image's pixels with no padding between rows.
func Packed(img *image.Gray) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(out[y*w:(y+1)*w], img.Pix[y*img.Stride:y*img.Stride+w])
	}
	return out
}

// Unpack copies row-packed pixels into img.
func Unpack(pix []byte, img *image.Gray) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h && (y+1)*w <= len(pix); y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+w], pix[y*w:(y+1)*w])
	}
}

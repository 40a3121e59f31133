package source

import (
	"image"
	"image/color"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/rdk/rimage"
	"go.viam.com/rdk/rimage/transform"
)

// Clip is the raw depth range, in millimetres, that is mapped onto the 8-bit display depth.
type Clip struct {
	NearMM int
	FarMM  int
}

// DefaultClip matches the usable range of a structured light sensor.
var DefaultClip = Clip{NearMM: 500, FarMM: 4000}

// KinectIntrinsics are the calibrated depth camera parameters of a first generation Kinect.
func KinectIntrinsics() *transform.PinholeCameraIntrinsics {
	return &transform.PinholeCameraIntrinsics{
		Width:  640,
		Height: 480,
		Fx:     594.21434211923247,
		Fy:     591.04053696870778,
		Ppx:    339.30780975300314,
		Ppy:    242.73913761751615,
	}
}

// DepthToGray maps a raw depth onto the display depth: near is white, far is black,
// and a missing reading (0) is black.
func DepthToGray(mm rimage.Depth, clip Clip) uint8 {
	if mm == 0 || clip.FarMM <= clip.NearMM {
		return 0
	}
	d := int(mm)
	if d <= clip.NearMM {
		return 255
	}
	if d >= clip.FarMM {
		return 0
	}
	return uint8(255 - (d-clip.NearMM)*255/(clip.FarMM-clip.NearMM))
}

// Frame is a single captured depth frame with its registered color image.
// A frame is never modified after capture.
type Frame struct {
	Gray       *image.Gray
	Depth      *rimage.DepthMap
	Color      image.Image
	Intrinsics *transform.PinholeCameraIntrinsics
	Seq        uint64
	Time       time.Time
}

// NewFrame builds a frame from a raw depth map, computing its display depth.
func NewFrame(dm *rimage.DepthMap, img image.Image, intrinsics *transform.PinholeCameraIntrinsics, clip Clip) *Frame {
	w, h := dm.Width(), dm.Height()
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for x := range row {
			row[x] = DepthToGray(dm.GetDepth(x, y), clip)
		}
	}
	return &Frame{
		Gray:       gray,
		Depth:      dm,
		Color:      img,
		Intrinsics: intrinsics,
		Time:       time.Now(),
	}
}

// Width of the frame in pixels.
func (f *Frame) Width() int {
	return f.Gray.Rect.Dx()
}

// Height of the frame in pixels.
func (f *Frame) Height() int {
	return f.Gray.Rect.Dy()
}

// Dimensions returns the width and height of the frame.
func (f *Frame) Dimensions() (int, int) {
	return f.Width(), f.Height()
}

// WorldCoordinateAt unprojects the pixel at (x, y) into camera space, in metres.
func (f *Frame) WorldCoordinateAt(x, y int) r3.Vector {
	if f.Depth == nil || x < 0 || y < 0 || x >= f.Depth.Width() || y >= f.Depth.Height() {
		return r3.Vector{}
	}
	z := float64(f.Depth.GetDepth(x, y)) / 1000
	px, py, pz := f.Intrinsics.PixelToPoint(float64(x), float64(y), z)
	return r3.Vector{X: px, Y: py, Z: pz}
}

// ColorAt returns the registered color at (x, y), or white when the frame has no color image.
func (f *Frame) ColorAt(x, y int) color.NRGBA {
	if f.Color == nil {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	c, ok := color.NRGBAModel.Convert(f.Color.At(x, y)).(color.NRGBA)
	if !ok {
		return color.NRGBA{}
	}
	return c
}

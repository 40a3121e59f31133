package inject

import (
	"context"
	"image/color"

	"github.com/golang/geo/r3"

	"go.viam.com/depthsegment/source"
)

// Source is a source.Source whose methods can be overridden.
type Source struct {
	source.Source

	IsConnectedFunc       func() bool
	IsFrameNewFunc        func() bool
	UpdateFunc            func(ctx context.Context) error
	FrameFunc             func() *source.Frame
	DimensionsFunc        func() (int, int)
	ColorAtFunc           func(x, y int) color.NRGBA
	WorldCoordinateAtFunc func(x, y int) r3.Vector
	CloseFunc             func(ctx context.Context) error
}

// IsConnected calls the injected IsConnectedFunc or the real version.
func (s *Source) IsConnected() bool {
	if s.IsConnectedFunc == nil {
		return s.Source.IsConnected()
	}
	return s.IsConnectedFunc()
}

// IsFrameNew calls the injected IsFrameNewFunc or the real version.
func (s *Source) IsFrameNew() bool {
	if s.IsFrameNewFunc == nil {
		return s.Source.IsFrameNew()
	}
	return s.IsFrameNewFunc()
}

// Update calls the injected UpdateFunc or the real version.
func (s *Source) Update(ctx context.Context) error {
	if s.UpdateFunc == nil {
		return s.Source.Update(ctx)
	}
	return s.UpdateFunc(ctx)
}

// Frame calls the injected FrameFunc or the real version.
func (s *Source) Frame() *source.Frame {
	if s.FrameFunc == nil {
		return s.Source.Frame()
	}
	return s.FrameFunc()
}

// Dimensions calls the injected DimensionsFunc or the real version.
func (s *Source) Dimensions() (int, int) {
	if s.DimensionsFunc == nil {
		return s.Source.Dimensions()
	}
	return s.DimensionsFunc()
}

// ColorAt calls the injected ColorAtFunc or the real version.
func (s *Source) ColorAt(x, y int) color.NRGBA {
	if s.ColorAtFunc == nil {
		return s.Source.ColorAt(x, y)
	}
	return s.ColorAtFunc(x, y)
}

// WorldCoordinateAt calls the injected WorldCoordinateAtFunc or the real version.
func (s *Source) WorldCoordinateAt(x, y int) r3.Vector {
	if s.WorldCoordinateAtFunc == nil {
		return s.Source.WorldCoordinateAt(x, y)
	}
	return s.WorldCoordinateAtFunc(x, y)
}

// Close calls the injected CloseFunc or the real version.
func (s *Source) Close(ctx context.Context) error {
	if s.CloseFunc == nil {
		if s.Source == nil {
			return nil
		}
		return s.Source.Close(ctx)
	}
	return s.CloseFunc(ctx)
}

// Package inject provides overridable doubles of depth sensor drivers and frame sources for tests.
package inject

import (
	"context"

	"go.viam.com/rdk/rimage/transform"

	"go.viam.com/depthsegment/source"
)

// Driver is a source.Driver whose methods can be overridden.
type Driver struct {
	source.Driver

	CaptureFunc    func(ctx context.Context) (*source.Frame, error)
	IntrinsicsFunc func() *transform.PinholeCameraIntrinsics
	CloseFunc      func() error
}

// Capture calls the injected CaptureFunc or the real version.
func (d *Driver) Capture(ctx context.Context) (*source.Frame, error) {
	if d.CaptureFunc == nil {
		return d.Driver.Capture(ctx)
	}
	return d.CaptureFunc(ctx)
}

// Intrinsics calls the injected IntrinsicsFunc or the real version.
func (d *Driver) Intrinsics() *transform.PinholeCameraIntrinsics {
	if d.IntrinsicsFunc == nil {
		return d.Driver.Intrinsics()
	}
	return d.IntrinsicsFunc()
}

// Close calls the injected CloseFunc or the real version.
func (d *Driver) Close() error {
	if d.CloseFunc == nil {
		if d.Driver == nil {
			return nil
		}
		return d.Driver.Close()
	}
	return d.CloseFunc()
}

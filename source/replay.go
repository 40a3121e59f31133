package source

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/rdk/rimage"
	"go.viam.com/rdk/rimage/transform"
)

// ReplayDriver loops over recorded 16-bit PNG depth frames (millimetres), in file name order.
type ReplayDriver struct {
	files      []string
	intrinsics *transform.PinholeCameraIntrinsics
	clip       Clip
	logger     golog.Logger

	mu     sync.Mutex
	next   int
	closed bool
}

// NewReplayDriver finds the frames in dir. With nil intrinsics the Kinect calibration is used.
func NewReplayDriver(dir string, intrinsics *transform.PinholeCameraIntrinsics, clip Clip, logger golog.Logger) (*ReplayDriver, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot list depth frames in %q", dir)
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(ResultNoDevice.Failed(), "no depth frames in %q", dir)
	}
	sort.Strings(files)
	logger.Debugf("replaying %d depth frames from %s", len(files), dir)

	if intrinsics == nil {
		intrinsics = KinectIntrinsics()
	}
	if clip == (Clip{}) {
		clip = DefaultClip
	}
	return &ReplayDriver{
		files:      files,
		intrinsics: intrinsics,
		clip:       clip,
		logger:     logger,
	}, nil
}

// Intrinsics of the sensor the frames were recorded with.
func (d *ReplayDriver) Intrinsics() *transform.PinholeCameraIntrinsics {
	return d.intrinsics
}

// Capture decodes the next recorded frame, wrapping around at the end.
func (d *ReplayDriver) Capture(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ResultClosed.Failed()
	}
	fn := d.files[d.next%len(d.files)]
	d.next++
	d.mu.Unlock()

	dm, err := readDepthPNG(ctx, fn)
	if err != nil {
		return nil, err
	}
	return NewFrame(dm, nil, d.intrinsics, d.clip), nil
}

func readDepthPNG(ctx context.Context, fn string) (*rimage.DepthMap, error) {
	dm, err := rimage.NewDepthMapFromFile(ctx, fn)
	if err != nil {
		return nil, errors.Wrapf(ResultInvalidData.Failed(), "cannot decode %q: %v", fn, err)
	}
	return dm, nil
}

// WriteDepthPNG records a raw depth map in the format ReplayDriver reads.
func WriteDepthPNG(fn string, dm *rimage.DepthMap) error {
	return errors.Wrap(rimage.WriteImageToFile(fn, dm.ToGray16Picture()), "cannot write depth frame")
}

// Close makes further captures fail.
func (d *ReplayDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

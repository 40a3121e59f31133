// Package source provides depth frames from a depth sensor driver to a frame loop.
package source

import (
	"context"
	"image/color"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/rdk/rimage/transform"
	goutils "go.viam.com/utils"
)

// Source is what a frame loop observes of a depth sensor. Update never blocks waiting
// for the sensor; it only exposes whichever frame arrived most recently.
type Source interface {
	IsConnected() bool
	IsFrameNew() bool
	Update(ctx context.Context) error
	Frame() *Frame
	Dimensions() (int, int)
	ColorAt(x, y int) color.NRGBA
	WorldCoordinateAt(x, y int) r3.Vector
	Close(ctx context.Context) error
}

// Driver captures frames from a device. Capture may block until the device produces a frame.
type Driver interface {
	Capture(ctx context.Context) (*Frame, error)
	Intrinsics() *transform.PinholeCameraIntrinsics
	Close() error
}

// Stream is a Source fed by a background worker that keeps pulling frames from a Driver.
// Only the latest captured frame is kept; frames the loop did not observe are dropped.
type Stream struct {
	driver   Driver
	interval time.Duration
	logger   golog.Logger

	mu        sync.Mutex
	latest    *Frame
	pending   bool
	connected bool
	seq       uint64

	current  *Frame
	frameNew bool

	cancelFunc        func()
	backgroundWorkers sync.WaitGroup
}

// NewStream starts capturing from the driver, waiting interval between captures.
func NewStream(driver Driver, interval time.Duration, logger golog.Logger) *Stream {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Stream{
		driver:     driver,
		interval:   interval,
		logger:     logger,
		cancelFunc: cancel,
	}
	s.backgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		s.capture(ctx)
	}, s.backgroundWorkers.Done)
	return s
}

func (s *Stream) capture(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		frame, err := s.driver.Capture(ctx)
		s.mu.Lock()
		if err != nil {
			if s.connected && ctx.Err() == nil {
				s.logger.Warnw("depth sensor disconnected", "error", err)
			}
			s.connected = false
		} else {
			if !s.connected {
				s.logger.Debug("depth sensor connected")
			}
			s.connected = true
			s.seq++
			frame.Seq = s.seq
			s.latest = frame
			s.pending = true
		}
		s.mu.Unlock()

		if !goutils.SelectContextOrWait(ctx, s.interval) {
			return
		}
	}
}

// Update swaps in the newest captured frame, if there is one the loop has not seen yet.
func (s *Stream) Update(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameNew = s.pending
	if s.pending {
		s.current = s.latest
		s.pending = false
	}
	return nil
}

// IsConnected reports whether the last capture attempt succeeded.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// IsFrameNew reports whether the last Update picked up a new frame.
func (s *Stream) IsFrameNew() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameNew
}

// Frame returns the frame picked up by the last Update, or nil before the first frame.
func (s *Stream) Frame() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Dimensions returns the size of the current frame, or of the driver's sensor before the first frame.
func (s *Stream) Dimensions() (int, int) {
	if f := s.Frame(); f != nil {
		return f.Dimensions()
	}
	if intr := s.driver.Intrinsics(); intr != nil {
		return intr.Width, intr.Height
	}
	return 0, 0
}

// ColorAt returns the color of the current frame at (x, y).
func (s *Stream) ColorAt(x, y int) color.NRGBA {
	f := s.Frame()
	if f == nil {
		return color.NRGBA{}
	}
	return f.ColorAt(x, y)
}

// WorldCoordinateAt returns the camera space position of the current frame's pixel at (x, y).
func (s *Stream) WorldCoordinateAt(x, y int) r3.Vector {
	f := s.Frame()
	if f == nil {
		return r3.Vector{}
	}
	return f.WorldCoordinateAt(x, y)
}

// Close stops the capture worker and disposes of the driver.
func (s *Stream) Close(ctx context.Context) error {
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.backgroundWorkers.Wait()
	return s.driver.Close()
}

package depthsegment

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/edaniels/golog"

	"go.viam.com/depthsegment/blob"
	"go.viam.com/depthsegment/projector"
	"go.viam.com/depthsegment/segment"
	"go.viam.com/depthsegment/source"
)

// App runs one tick of the frame loop at a time: it segments each new frame, finds its blobs,
// and projects the point cloud while that view is active.
type App struct {
	src    source.Source
	ctrl   *Controller
	cfg    *Config
	logger golog.Logger

	mask   *image.Gray
	blobs  []blob.Blob
	points []projector.Point
	seq    uint64
}

// NewApp wires a frame source to a session.
func NewApp(src source.Source, ctrl *Controller, cfg *Config, logger golog.Logger) *App {
	return &App{
		src:    src,
		ctrl:   ctrl,
		cfg:    cfg,
		logger: logger,
	}
}

// Controller returns the session controller.
func (a *App) Controller() *Controller {
	return a.ctrl
}

// Mask returns the band-pass mask of the last processed frame.
func (a *App) Mask() *image.Gray {
	return a.mask
}

// Blobs returns the blobs of the last processed frame.
func (a *App) Blobs() []blob.Blob {
	return a.blobs
}

// Points returns the point cloud of the last tick, empty outside the point cloud view.
func (a *App) Points() []projector.Point {
	return a.points
}

// Tick pumps the source and processes the latest frame if it is new. When no frame is new the
// outputs of the previous tick are kept. Only a cancelled context makes Tick fail.
func (a *App) Tick(ctx context.Context) (Report, error) {
	if err := a.src.Update(ctx); err != nil {
		if ctx.Err() != nil {
			return Report{}, ctx.Err()
		}
		a.logger.Debugw("frame source update failed", "error", err)
	}

	state := a.ctrl.Snapshot()
	frameNew := a.src.IsFrameNew()
	if frameNew {
		if frame := a.src.Frame(); frame != nil {
			a.process(frame, state)
		}
	}

	a.points = nil
	if state.View == ViewPointCloud && a.src.Frame() != nil {
		a.points = projector.Project(a.src, a.cfg.ProjectorOptions())
	}

	return Report{
		Connected: a.src.IsConnected(),
		FrameNew:  frameNew,
		FrameSeq:  a.seq,
		State:     state,
		Blobs:     len(a.blobs),
		Points:    len(a.points),
	}, nil
}

func (a *App) process(frame *source.Frame, state State) {
	w, h := frame.Width(), frame.Height()
	if a.mask == nil || a.mask.Rect.Size() != frame.Gray.Rect.Size() {
		a.mask = segment.NewMask(w, h)
	}
	if err := segment.Segment(state.Strategy, frame.Gray, state.Near, state.Far, a.mask); err != nil {
		a.logger.Warnw("cannot threshold depth frame", "seq", frame.Seq, "error", err)
		return
	}
	blobs, err := blob.Find(a.mask, a.cfg.BlobOptions(w, h))
	if err != nil {
		a.logger.Warnw("cannot find blobs", "seq", frame.Seq, "error", err)
		return
	}
	a.blobs = blobs
	a.seq = frame.Seq
}

// Report summarizes a tick.
type Report struct {
	Connected bool
	FrameNew  bool
	FrameSeq  uint64
	State     State
	Blobs     int
	Points    int
}

// String renders the report as the on-screen instructions.
func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintln(&sb, "press p to switch between images and point cloud")
	fmt.Fprintf(&sb, "threshold strategy = %s (press spacebar)\n", r.State.Strategy)
	fmt.Fprintf(&sb, "set near threshold %d (press: + -)\n", r.State.Near)
	fmt.Fprintf(&sb, "set far threshold %d (press: < >) num blobs found %d\n", r.State.Far, r.Blobs)
	if r.State.View == ViewPointCloud {
		fmt.Fprintf(&sb, "points in cloud %d\n", r.Points)
	}
	fmt.Fprintf(&sb, "connection is: %t", r.Connected)
	return sb.String()
}

// Package blob finds connected regions of set pixels in a binary mask.
package blob

import (
	"image"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"go.viam.com/depthsegment/segment"
)

// columns of the OpenCV connected component statistics matrix.
const (
	statLeft = iota
	statTop
	statWidth
	statHeight
	statArea
)

// Blob is a connected region of a mask.
type Blob struct {
	// Boundary is the outline of the region as traced by OpenCV: the region's own edge
	// pixels, or for a hole the foreground pixels around it.
	Boundary []image.Point
	Area     int
	Bounds   image.Rectangle
	Centroid r2.Point
	// Hole is set for background regions enclosed by foreground.
	Hole bool
}

// Options bound which regions are reported.
type Options struct {
	MinArea   int
	MaxArea   int
	FindHoles bool
	// MaxBlobs caps how many regions are reported; 0 means no cap.
	MaxBlobs int
}

// DefaultOptions keeps regions between 100 pixels and half of the frame.
func DefaultOptions(width, height int) Options {
	return Options{
		MinArea:  100,
		MaxArea:  width * height / 2,
		MaxBlobs: 20,
	}
}

// Find returns the regions of the mask whose pixel area lies in [MinArea, MaxArea].
// Foreground regions are 8-connected and holes are 4-connected. The order of the
// regions is unspecified, except that enclosed holes, when requested, follow the
// foreground regions.
func Find(mask *image.Gray, opts Options) ([]Blob, error) {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}
	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, segment.Packed(mask))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load mask")
	}
	defer src.Close()

	fg, err := label(src, 8)
	if err != nil {
		return nil, err
	}
	defer fg.Close()

	if !opts.FindHoles {
		contours := gocv.FindContours(src, gocv.RetrievalExternal, gocv.ChainApproxNone)
		defer contours.Close()
		return truncate(outerBlobs(contours, fg, w, opts, nil), opts), nil
	}

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()
	contours := gocv.FindContoursWithParams(src, &hierarchy, gocv.RetrievalCComp, gocv.ChainApproxNone)
	defer contours.Close()

	var outer, inner []int
	for i := 0; i < contours.Size(); i++ {
		// hierarchy entries are next, previous, first child, parent
		if hierarchy.GetVeciAt(0, i)[3] < 0 {
			outer = append(outer, i)
		} else {
			inner = append(inner, i)
		}
	}
	blobs := outerBlobs(contours, fg, w, opts, outer)

	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(src, &inverted)
	bg, err := label(inverted, 4)
	if err != nil {
		return nil, err
	}
	defer bg.Close()
	for _, i := range inner {
		contour := contours.At(i)
		boundary := contour.ToPoints()
		l := bg.holeLabel(contour, boundary, w, h)
		if l < 1 {
			continue
		}
		if b, ok := bg.blob(l, boundary, opts); ok {
			b.Hole = true
			blobs = append(blobs, b)
		}
	}
	return truncate(blobs, opts), nil
}

func truncate(blobs []Blob, opts Options) []Blob {
	if opts.MaxBlobs > 0 && len(blobs) > opts.MaxBlobs {
		return blobs[:opts.MaxBlobs]
	}
	return blobs
}

// outerBlobs turns outer contours into blobs, taking pixel statistics from the component
// each contour bounds. A nil index list means every contour.
func outerBlobs(contours gocv.PointsVector, fg *labelling, w int, opts Options, indices []int) []Blob {
	if indices == nil {
		for i := 0; i < contours.Size(); i++ {
			indices = append(indices, i)
		}
	}
	var blobs []Blob
	for _, i := range indices {
		boundary := contours.At(i).ToPoints()
		if len(boundary) == 0 {
			continue
		}
		p := boundary[0]
		if b, ok := fg.blob(fg.grid[p.Y*w+p.X], boundary, opts); ok {
			blobs = append(blobs, b)
		}
	}
	return blobs
}

// labelling is a connected component labelling of a mask with per-label statistics.
type labelling struct {
	labels, stats, centroids gocv.Mat
	grid                     []int32
	n                        int
}

func label(src gocv.Mat, connectivity int) (*labelling, error) {
	l := &labelling{labels: gocv.NewMat(), stats: gocv.NewMat(), centroids: gocv.NewMat()}
	l.n = gocv.ConnectedComponentsWithStatsWithParams(src, &l.labels, &l.stats, &l.centroids,
		connectivity, gocv.MatTypeCV32S, gocv.CCL_DEFAULT)
	grid, err := l.labels.DataPtrInt32()
	if err != nil {
		l.Close()
		return nil, errors.Wrap(err, "cannot read component labels")
	}
	l.grid = grid
	return l, nil
}

func (l *labelling) Close() {
	l.labels.Close()
	l.stats.Close()
	l.centroids.Close()
}

func (l *labelling) bounds(label int32) image.Rectangle {
	left := int(l.stats.GetIntAt(int(label), statLeft))
	top := int(l.stats.GetIntAt(int(label), statTop))
	return image.Rect(left, top,
		left+int(l.stats.GetIntAt(int(label), statWidth)),
		top+int(l.stats.GetIntAt(int(label), statHeight)))
}

// blob reports the component with the given label if its area is within bounds.
func (l *labelling) blob(label int32, boundary []image.Point, opts Options) (Blob, bool) {
	// label 0 is the zero valued background
	if label < 1 || int(label) >= l.n {
		return Blob{}, false
	}
	area := int(l.stats.GetIntAt(int(label), statArea))
	if area < opts.MinArea || (opts.MaxArea > 0 && area > opts.MaxArea) {
		return Blob{}, false
	}
	return Blob{
		Boundary: boundary,
		Area:     area,
		Bounds:   l.bounds(label),
		Centroid: r2.Point{X: l.centroids.GetDoubleAt(int(label), 0), Y: l.centroids.GetDoubleAt(int(label), 1)},
	}, true
}

// holeLabel finds the background component a hole contour encloses. Hole contours run
// along the foreground pixels around the hole, so the hole is a 4-neighbour of one of
// them lying inside the contour. Components reaching the frame border are not enclosed.
func (l *labelling) holeLabel(contour gocv.PointVector, boundary []image.Point, w, h int) int32 {
	frame := image.Rect(0, 0, w, h)
	for _, p := range boundary {
		for _, d := range []image.Point{{1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
			q := p.Add(d)
			if !q.In(frame) {
				continue
			}
			label := l.grid[q.Y*w+q.X]
			if label < 1 {
				continue
			}
			b := l.bounds(label)
			if b.Min.X == 0 || b.Min.Y == 0 || b.Max.X == w || b.Max.Y == h {
				continue
			}
			if gocv.PointPolygonTest(contour, q, false) <= 0 {
				continue
			}
			return label
		}
	}
	return 0
}

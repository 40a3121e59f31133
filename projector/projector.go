// Package projector turns a depth frame into a colored point cloud.
package projector

import (
	"image/color"
	"io"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/rdk/pointcloud"
)

// Point is a camera space position, in metres, with the color seen at its pixel.
type Point struct {
	Position r3.Vector
	Color    color.NRGBA
}

// WorldSource unprojects pixels of the current depth frame.
type WorldSource interface {
	Dimensions() (int, int)
	WorldCoordinateAt(x, y int) r3.Vector
	ColorAt(x, y int) color.NRGBA
}

// Options control the density and range of the projected cloud.
type Options struct {
	// Stride samples every Stride-th pixel along both axes.
	Stride int
	// MaxZ drops points at or beyond this depth, in metres.
	MaxZ float64
}

// DefaultOptions samples every other pixel and keeps points closer than 1.5m.
func DefaultOptions() Options {
	return Options{Stride: 2, MaxZ: 1.5}
}

// Project samples the source on a Stride grid and keeps the points closer than MaxZ.
func Project(src WorldSource, opts Options) []Point {
	stride := opts.Stride
	if stride < 1 {
		stride = 1
	}
	w, h := src.Dimensions()
	points := make([]Point, 0, ((w+stride-1)/stride)*((h+stride-1)/stride))
	for y := 0; y < h; y += stride {
		for x := 0; x < w; x += stride {
			p := src.WorldCoordinateAt(x, y)
			if p.Z >= opts.MaxZ {
				continue
			}
			points = append(points, Point{Position: p, Color: src.ColorAt(x, y)})
		}
	}
	return points
}

// ToPointCloud converts projected points into a point cloud in millimetres.
func ToPointCloud(points []Point) (pointcloud.PointCloud, error) {
	pc := pointcloud.NewWithPrealloc(len(points))
	for _, p := range points {
		pos := pointcloud.NewVector(p.Position.X*1000, p.Position.Y*1000, p.Position.Z*1000)
		if err := pc.Set(pos, pointcloud.NewColoredData(p.Color)); err != nil {
			return nil, errors.Wrap(err, "cannot add point to cloud")
		}
	}
	return pc, nil
}

// WritePCD encodes projected points as a binary PCD file.
func WritePCD(out io.Writer, points []Point) error {
	pc, err := ToPointCloud(points)
	if err != nil {
		return err
	}
	return pointcloud.ToPCD(pc, out, pointcloud.PCDBinary)
}

package source

import (
	"context"
	"image/color"
	"math"
	"sync"

	"github.com/golang/geo/r3"
	"go.viam.com/rdk/rimage"
	"go.viam.com/rdk/rimage/transform"
)

// Sphere is an object in the synthetic scene. Positions are in metres, in camera space.
type Sphere struct {
	Center r3.Vector
	Radius float64
	Color  color.NRGBA
	// Sway is how far the sphere drifts left and right across frames.
	Sway float64
}

// FakeConfig describes the synthetic scene rendered by a FakeDriver.
type FakeConfig struct {
	Intrinsics   *transform.PinholeCameraIntrinsics
	Clip         Clip
	Spheres      []Sphere
	BackgroundMM int
}

// DefaultFakeConfig is a wall with a hand-sized and a body-sized object in front of it.
func DefaultFakeConfig() FakeConfig {
	return FakeConfig{
		Intrinsics: KinectIntrinsics(),
		Clip:       DefaultClip,
		Spheres: []Sphere{
			{Center: r3.Vector{X: -0.2, Y: 0, Z: 0.9}, Radius: 0.12, Color: color.NRGBA{R: 220, G: 60, B: 60, A: 255}, Sway: 0.15},
			{Center: r3.Vector{X: 0.35, Y: 0.1, Z: 1.8}, Radius: 0.3, Color: color.NRGBA{R: 60, G: 120, B: 220, A: 255}},
		},
		BackgroundMM: 3500,
	}
}

// FakeDriver renders a synthetic depth and color scene by ray casting spheres in front of a wall.
type FakeDriver struct {
	cfg FakeConfig

	mu     sync.Mutex
	frames int
	closed bool
}

// NewFakeDriver returns a driver for the given scene.
func NewFakeDriver(cfg FakeConfig) *FakeDriver {
	if cfg.Intrinsics == nil {
		cfg.Intrinsics = KinectIntrinsics()
	}
	if cfg.Clip == (Clip{}) {
		cfg.Clip = DefaultClip
	}
	return &FakeDriver{cfg: cfg}
}

// Intrinsics of the simulated sensor.
func (d *FakeDriver) Intrinsics() *transform.PinholeCameraIntrinsics {
	return d.cfg.Intrinsics
}

// Capture renders the next frame of the scene.
func (d *FakeDriver) Capture(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ResultClosed.Failed()
	}
	n := d.frames
	d.frames++
	d.mu.Unlock()

	intr := d.cfg.Intrinsics
	spheres := make([]Sphere, len(d.cfg.Spheres))
	for i, s := range d.cfg.Spheres {
		s.Center.X += s.Sway * math.Sin(float64(n)*0.1)
		spheres[i] = s
	}

	dm := rimage.NewEmptyDepthMap(intr.Width, intr.Height)
	img := rimage.NewImage(intr.Width, intr.Height)
	wall := rimage.NewColor(90, 90, 90)
	for y := 0; y < intr.Height; y++ {
		for x := 0; x < intr.Width; x++ {
			ray := r3.Vector{X: (float64(x) - intr.Ppx) / intr.Fx, Y: (float64(y) - intr.Ppy) / intr.Fy, Z: 1}
			z, c, hit := castRay(ray, spheres)
			if !hit {
				dm.Set(x, y, rimage.Depth(d.cfg.BackgroundMM))
				img.SetXY(x, y, wall)
				continue
			}
			dm.Set(x, y, rimage.Depth(math.Round(z*1000)))
			img.SetXY(x, y, rimage.NewColor(c.R, c.G, c.B))
		}
	}
	return NewFrame(dm, img, intr, d.cfg.Clip), nil
}

// castRay returns the depth (camera z) of the closest sphere hit by the ray.
// The ray has unit z so the ray parameter is the depth.
func castRay(ray r3.Vector, spheres []Sphere) (float64, color.NRGBA, bool) {
	best := math.Inf(1)
	var c color.NRGBA
	a := ray.Dot(ray)
	for _, s := range spheres {
		b := -2 * ray.Dot(s.Center)
		k := s.Center.Dot(s.Center) - s.Radius*s.Radius
		disc := b*b - 4*a*k
		if disc < 0 {
			continue
		}
		t := (-b - math.Sqrt(disc)) / (2 * a)
		if t > 0 && t < best {
			best = t
			c = s.Color
		}
	}
	return best, c, !math.IsInf(best, 1)
}

// Close makes further captures fail.
func (d *FakeDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

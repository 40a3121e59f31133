// Package depthsegment isolates objects in a depth camera's view by thresholding depth into a
// near/far band, finding blobs in the band, and optionally projecting the view into a point cloud.
package depthsegment

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"go.viam.com/depthsegment/blob"
	"go.viam.com/depthsegment/projector"
	"go.viam.com/depthsegment/segment"
	"go.viam.com/depthsegment/source"
)

// Config holds the session settings.
type Config struct {
	NearThreshold  int     `yaml:"near_threshold"`
	FarThreshold   int     `yaml:"far_threshold"`
	Strategy       string  `yaml:"strategy"`
	PointCloudView bool    `yaml:"point_cloud_view"`
	MinArea        int     `yaml:"min_area"`
	MaxArea        int     `yaml:"max_area"`
	FindHoles      bool    `yaml:"find_holes"`
	MaxBlobs       int     `yaml:"max_blobs"`
	Stride         int     `yaml:"stride"`
	MaxZ           float64 `yaml:"max_z"`
	NearClipMM     int     `yaml:"near_clip_mm"`
	FarClipMM      int     `yaml:"far_clip_mm"`
}

// DefaultConfig returns the settings a session starts with. MaxArea 0 means half of the frame.
func DefaultConfig() *Config {
	return &Config{
		NearThreshold: 230,
		FarThreshold:  70,
		Strategy:      segment.StrategyLibrary.String(),
		MinArea:       100,
		MaxBlobs:      20,
		Stride:        2,
		MaxZ:          1.5,
		NearClipMM:    source.DefaultClip.NearMM,
		FarClipMM:     source.DefaultClip.FarMM,
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config")
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate() error {
	if cfg.NearThreshold < 0 || cfg.NearThreshold > 255 {
		return errors.New("near_threshold must be between 0 and 255")
	}
	if cfg.FarThreshold < 0 || cfg.FarThreshold > 255 {
		return errors.New("far_threshold must be between 0 and 255")
	}
	if _, err := segment.ParseStrategy(cfg.Strategy); err != nil {
		return err
	}
	if cfg.MinArea < 0 {
		return errors.New("min_area must not be negative")
	}
	if cfg.MaxArea != 0 && cfg.MaxArea < cfg.MinArea {
		return errors.New("max_area must not be less than min_area")
	}
	if cfg.MaxBlobs < 0 {
		return errors.New("max_blobs must not be negative")
	}
	if cfg.Stride <= 0 {
		return errors.New("stride must be positive")
	}
	if cfg.MaxZ <= 0 {
		return errors.New("max_z must be positive")
	}
	if cfg.NearClipMM < 0 || cfg.FarClipMM <= cfg.NearClipMM {
		return errors.New("far_clip_mm must be greater than near_clip_mm")
	}
	return nil
}

// Clip is the raw depth range mapped onto the display depth.
func (cfg *Config) Clip() source.Clip {
	return source.Clip{NearMM: cfg.NearClipMM, FarMM: cfg.FarClipMM}
}

// BlobOptions returns the blob filter for frames of the given size.
func (cfg *Config) BlobOptions(width, height int) blob.Options {
	opts := blob.DefaultOptions(width, height)
	opts.MinArea = cfg.MinArea
	if cfg.MaxArea != 0 {
		opts.MaxArea = cfg.MaxArea
	}
	opts.FindHoles = cfg.FindHoles
	opts.MaxBlobs = cfg.MaxBlobs
	return opts
}

// ProjectorOptions returns the point cloud sampling settings.
func (cfg *Config) ProjectorOptions() projector.Options {
	return projector.Options{Stride: cfg.Stride, MaxZ: cfg.MaxZ}
}

// State returns the initial controller state.
func (cfg *Config) State() (State, error) {
	strategy, err := segment.ParseStrategy(cfg.Strategy)
	if err != nil {
		return State{}, err
	}
	view := ViewImages
	if cfg.PointCloudView {
		view = ViewPointCloud
	}
	return State{
		Near:     cfg.NearThreshold,
		Far:      cfg.FarThreshold,
		Strategy: strategy,
		View:     view,
	}, nil
}

package depthsegment

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/depthsegment/segment"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	state, err := cfg.State()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state, test.ShouldResemble, State{Near: 230, Far: 70, Strategy: segment.StrategyLibrary, View: ViewImages})

	opts := cfg.BlobOptions(640, 480)
	test.That(t, opts.MinArea, test.ShouldEqual, 100)
	test.That(t, opts.MaxArea, test.ShouldEqual, 640*480/2)
	test.That(t, opts.FindHoles, test.ShouldBeFalse)

	popts := cfg.ProjectorOptions()
	test.That(t, popts.Stride, test.ShouldEqual, 2)
	test.That(t, popts.MaxZ, test.ShouldEqual, 1.5)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		modify func(cfg *Config)
		msg    string
	}{
		{"near threshold too large", func(cfg *Config) { cfg.NearThreshold = 256 }, "near_threshold must be between 0 and 255"},
		{"far threshold negative", func(cfg *Config) { cfg.FarThreshold = -1 }, "far_threshold must be between 0 and 255"},
		{"unknown strategy", func(cfg *Config) { cfg.Strategy = "cuda" }, "unknown threshold strategy"},
		{"negative min area", func(cfg *Config) { cfg.MinArea = -5 }, "min_area must not be negative"},
		{"max area below min area", func(cfg *Config) { cfg.MaxArea = 10 }, "max_area must not be less than min_area"},
		{"negative max blobs", func(cfg *Config) { cfg.MaxBlobs = -1 }, "max_blobs must not be negative"},
		{"zero stride", func(cfg *Config) { cfg.Stride = 0 }, "stride must be positive"},
		{"zero cutoff", func(cfg *Config) { cfg.MaxZ = 0 }, "max_z must be positive"},
		{"inverted clip", func(cfg *Config) { cfg.FarClipMM = 100 }, "far_clip_mm must be greater than near_clip_mm"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(cfg)
			err := cfg.Validate()
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cfg, test.ShouldResemble, DefaultConfig())
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.yaml")
		data := "near_threshold: 200\nstrategy: manual\npoint_cloud_view: true\nmax_area: 5000\nfind_holes: true\n"
		test.That(t, os.WriteFile(path, []byte(data), 0o600), test.ShouldBeNil)

		cfg, err := LoadConfig(path)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cfg.NearThreshold, test.ShouldEqual, 200)
		test.That(t, cfg.FarThreshold, test.ShouldEqual, 70)
		test.That(t, cfg.BlobOptions(640, 480).MaxArea, test.ShouldEqual, 5000)
		test.That(t, cfg.BlobOptions(640, 480).FindHoles, test.ShouldBeTrue)

		state, err := cfg.State()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, state.Strategy, test.ShouldEqual, segment.StrategyManual)
		test.That(t, state.View, test.ShouldEqual, ViewPointCloud)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.yaml")
		test.That(t, os.WriteFile(path, []byte("near: 200\n"), 0o600), test.ShouldBeNil)
		_, err := LoadConfig(path)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.yaml")
		test.That(t, os.WriteFile(path, []byte("stride: -2\n"), 0o600), test.ShouldBeNil)
		_, err := LoadConfig(path)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "stride must be positive")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "cannot read config")
	})
}

// Package helper resolves command line settings for the depth segmenter.
package helper

import (
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/depthsegment/source"
)

const (
	// SourceFake renders a synthetic scene.
	SourceFake = "fake"
	// SourceReplay plays back a folder of 16-bit depth PNGs.
	SourceReplay = "replay"
)

// GetTickIntervalMilliseconds returns the frame loop period, falling back to defaultTickMS when
// tickMS is unset. Periods shorter than one sensor frame are allowed but warned about.
func GetTickIntervalMilliseconds(tickMS, defaultTickMS int, logger golog.Logger) int {
	// The depth sensor delivers frames at 30Hz, so ticking faster than ~33ms only
	// sees the same frame again.
	if tickMS == 0 {
		logger.Debugf("using default tick interval %d ", defaultTickMS)
		return defaultTickMS
	} else {
		logger.Debugf("using user defined tick interval %d ", tickMS)
	}

	var estimatedTimePerFrame int = 33
	if tickMS < estimatedTimePerFrame {
		logger.Warnf("the expected frame rate of deltaT=%v is too small, has to be at least %v", tickMS, estimatedTimePerFrame)
	}
	return tickMS
}

// GetDataFolder returns the folder snapshots are written to, creating it if needed.
func GetDataFolder(dataFolder string, defaultDataFolder string, logger golog.Logger) (string, error) {
	if dataFolder == "" {
		logger.Debugf("using default data folder '%s' ", defaultDataFolder)
		dataFolder = defaultDataFolder
	} else {
		logger.Debugf("using user defined data folder %s", dataFolder)
	}

	if err := os.MkdirAll(filepath.Clean(dataFolder), os.ModePerm); err != nil {
		return "", errors.New("can not create a new directory named: " + dataFolder)
	}
	return dataFolder, nil
}

// NewDriver opens the frame driver named by kind.
func NewDriver(kind, replayDir string, clip source.Clip, logger golog.Logger) (source.Driver, error) {
	switch kind {
	case "", SourceFake:
		logger.Debug("using the synthetic depth scene")
		cfg := source.DefaultFakeConfig()
		cfg.Clip = clip
		return source.NewFakeDriver(cfg), nil
	case SourceReplay:
		if replayDir == "" {
			return nil, errors.New("replay source needs a replay directory")
		}
		logger.Debugf("replaying depth frames from %s", replayDir)
		return source.NewReplayDriver(replayDir, source.KinectIntrinsics(), clip, logger)
	default:
		return nil, errors.Errorf("unknown frame source %q", kind)
	}
}

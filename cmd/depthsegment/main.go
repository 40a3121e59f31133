// Package main runs the depth segmenter against a frame source and logs what it finds.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	"go.viam.com/rdk/rimage"
	"go.viam.com/utils"

	"go.viam.com/depthsegment"
	"go.viam.com/depthsegment/helper"
	"go.viam.com/depthsegment/projector"
	"go.viam.com/depthsegment/source"
)

// Versioning variables which are replaced by LD flags.
var (
	Version     = "development"
	GitRevision = ""
)

var (
	defaultDataFolder = "data"
	defaultTickMS     = 33
	logger            = golog.NewLogger("depthsegment")
)

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	Source     string `flag:"source,default=fake,usage=frame source: fake or replay"`
	ReplayDir  string `flag:"replay-dir,usage=folder of 16-bit depth PNGs to replay"`
	ConfigPath string `flag:"config,usage=yaml config file"`
	DataFolder string `flag:"data-folder,usage=folder snapshots are written to"`
	TickMS     int    `flag:"tick-ms,usage=milliseconds between ticks"`
	SaveEvery  int    `flag:"save-every,usage=write a snapshot every N ticks, 0 never"`
	Keys       string `flag:"keys,usage=key presses applied before reading stdin"`
	Ticks      int    `flag:"ticks,usage=stop after N ticks, 0 runs forever"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var versionFields []interface{}
	if Version != "" {
		versionFields = append(versionFields, "version", Version)
	}
	if GitRevision != "" {
		versionFields = append(versionFields, "git_rev", GitRevision)
	}
	if len(versionFields) != 0 {
		logger.Infow("depthsegment", versionFields...)
	} else {
		logger.Info("depthsegment built from source; version unknown")
	}

	if len(args) == 2 && strings.HasSuffix(args[1], "-version") {
		return nil
	}

	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg, err := depthsegment.LoadConfig(argsParsed.ConfigPath)
	if err != nil {
		return err
	}
	state, err := cfg.State()
	if err != nil {
		return err
	}

	dataFolder := ""
	if argsParsed.SaveEvery > 0 {
		if dataFolder, err = helper.GetDataFolder(argsParsed.DataFolder, defaultDataFolder, logger); err != nil {
			return err
		}
	}
	tick := time.Duration(helper.GetTickIntervalMilliseconds(argsParsed.TickMS, defaultTickMS, logger)) * time.Millisecond

	driver, err := helper.NewDriver(argsParsed.Source, argsParsed.ReplayDir, cfg.Clip(), logger)
	if err != nil {
		return err
	}
	stream := source.NewStream(driver, tick, logger)

	ctrl := depthsegment.NewController(state)
	applyKeys(ctrl, argsParsed.Keys, logger)

	keys := make(chan rune, 64)
	utils.PanicCapturingGo(func() { readKeys(ctx, os.Stdin, keys) })

	app := depthsegment.NewApp(stream, ctrl, cfg, logger)
	return runLoop(ctx, app, stream, keys, tick, argsParsed, dataFolder, logger)
}

func runLoop(
	ctx context.Context,
	app *depthsegment.App,
	stream source.Source,
	keys <-chan rune,
	tick time.Duration,
	args Arguments,
	dataFolder string,
	logger golog.Logger,
) (err error) {
	defer func() {
		err = multierr.Combine(err, stream.Close(context.Background()))
	}()

	utils.ContextMainReadyFunc(ctx)()
	for n := 1; args.Ticks == 0 || n <= args.Ticks; n++ {
		drainKeys(app.Controller(), keys, logger)

		report, err := app.Tick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		logger.Infow("tick",
			"n", n,
			"connected", report.Connected,
			"frame_new", report.FrameNew,
			"frame_seq", report.FrameSeq,
			"strategy", report.State.Strategy.String(),
			"view", report.State.View.String(),
			"near", report.State.Near,
			"far", report.State.Far,
			"blobs", report.Blobs,
			"points", report.Points,
		)
		logger.Debug(report.String())

		if args.SaveEvery > 0 && n%args.SaveEvery == 0 {
			if err := saveSnapshot(dataFolder, n, app, logger); err != nil {
				logger.Warnw("cannot save snapshot", "n", n, "error", err)
			}
		}

		if !utils.SelectContextOrWait(ctx, tick) {
			return nil
		}
	}
	return nil
}

func readKeys(ctx context.Context, f *os.File, keys chan<- rune) {
	r := bufio.NewReader(f)
	for {
		k, _, err := r.ReadRune()
		if err != nil {
			return
		}
		if k == '\n' || k == '\r' {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case keys <- k:
		}
	}
}

// applyKeys applies scripted key presses in order.
func applyKeys(ctrl *depthsegment.Controller, keys string, logger golog.Logger) {
	for _, k := range keys {
		if !ctrl.HandleKey(k) {
			logger.Debugf("ignoring key %q", k)
		}
	}
}

func drainKeys(ctrl *depthsegment.Controller, keys <-chan rune, logger golog.Logger) {
	for {
		select {
		case k := <-keys:
			if !ctrl.HandleKey(k) {
				logger.Debugf("ignoring key %q", k)
			}
		default:
			return
		}
	}
}

func saveSnapshot(dataFolder string, n int, app *depthsegment.App, logger golog.Logger) error {
	if mask := app.Mask(); mask != nil {
		fn := filepath.Join(dataFolder, fmt.Sprintf("mask-%d.png", n))
		if err := rimage.WriteImageToFile(fn, mask); err != nil {
			return err
		}
		logger.Debugf("wrote %s", fn)
	}

	if app.Controller().Snapshot().View != depthsegment.ViewPointCloud {
		return nil
	}
	fn := filepath.Join(dataFolder, fmt.Sprintf("cloud-%d.pcd", n))
	//nolint:gosec
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := projector.WritePCD(f, app.Points()); err != nil {
		return multierr.Combine(err, f.Close())
	}
	logger.Debugf("wrote %s", fn)
	return f.Close()
}

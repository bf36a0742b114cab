package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/pano/config"
	"go.viam.com/pano/logging"
	"go.viam.com/pano/panorama"
	"go.viam.com/pano/rimage"
	"go.viam.com/pano/rimage/transform"
	"go.viam.com/pano/utils"
)

// loadConfig reads the config file if one is given and applies any flags on top of it.
func loadConfig(c *cli.Context, logger logging.Logger) (*config.Config, error) {
	cfg := &config.Config{}
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path, logger); err != nil {
			return nil, err
		}
	}

	if c.IsSet(flagImages) {
		cfg.Images = c.StringSlice(flagImages)
	}
	if c.IsSet(flagHomographies) {
		cfg.Homographies = c.String(flagHomographies)
	}
	if c.IsSet(flagOutput) {
		cfg.Output = c.String(flagOutput)
	}
	if c.IsSet(flagProjection) {
		cfg.Projection = c.String(flagProjection)
	}
	if c.IsSet(flagRangeStrategy) {
		cfg.RangeStrategy = c.String(flagRangeStrategy)
	}
	if c.IsSet(flagMaxResolution) {
		cfg.MaxResolution = c.Int(flagMaxResolution)
	}
	if c.IsSet(flagInputScale) {
		cfg.InputScale = c.Float64(flagInputScale)
	}
	if c.IsSet(flagOverlay) {
		cfg.DebugOverlay = c.String(flagOverlay)
	}
	if c.IsSet(flagPlot) {
		cfg.LayoutPlot = c.String(flagPlot)
	}
	if c.IsSet(flagSequential) {
		cfg.Sequential = c.Bool(flagSequential)
	}

	if err := cfg.Validate("pano"); err != nil {
		return nil, err
	}
	if cfg.Sequential {
		utils.ParallelFactor = 1
	}
	return cfg, nil
}

// loadInputs decodes the images in parallel and scales them along with the homographies.
func loadInputs(
	ctx context.Context,
	cfg *config.Config,
	logger logging.Logger,
) ([]*rimage.Image, []*transform.Homography, error) {
	images := make([]*rimage.Image, len(cfg.Images))
	fs := make([]utils.SimpleFunc, len(cfg.Images))
	for i, path := range cfg.Images {
		fs[i] = func(ctx context.Context) error {
			img, err := rimage.NewImageFromFile(path)
			if err != nil {
				return err
			}
			if images[i], err = rimage.ResizeImage(img, cfg.InputScale); err != nil {
				return err
			}
			return nil
		}
	}
	elapsed, err := utils.RunInParallelLimited(ctx, utils.ParallelFactor, fs)
	if err != nil {
		return nil, nil, err
	}
	logger.CDebugf(ctx, "loaded %d images in %v", len(images), elapsed)

	homs, err := transform.NewHomographiesFromJSONFile(cfg.Homographies)
	if err != nil {
		return nil, nil, err
	}
	if cfg.InputScale != 1 {
		for i, h := range homs {
			homs[i] = h.Scale(cfg.InputScale)
		}
	}
	return images, homs, nil
}

func stitchAction(c *cli.Context, logger logging.Logger) error {
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	opts, err := cfg.StitchOptions()
	if err != nil {
		return err
	}
	images, homs, err := loadInputs(c.Context, cfg, logger)
	if err != nil {
		return err
	}

	result, err := panorama.Stitch(c.Context, images, homs, opts, logger)
	if err != nil {
		return errors.Wrap(err, "stitching failed")
	}
	if err := rimage.WriteImageToFile(cfg.Output, result.Mosaic); err != nil {
		return err
	}
	logger.Infow("wrote mosaic", "path", cfg.Output,
		"width", result.Mosaic.Width(), "height", result.Mosaic.Height())

	if cfg.DebugOverlay != "" {
		overlay := panorama.DrawRangeOverlay(result.Mosaic, result.Cameras, result.Resolution, result.GlobalRange)
		if err := rimage.WriteImageToFile(cfg.DebugOverlay, overlay); err != nil {
			return err
		}
	}
	if cfg.LayoutPlot != "" {
		if err := panorama.PlotCameraLayout(result.Cameras, opts.Projection, cfg.LayoutPlot); err != nil {
			return err
		}
	}
	return nil
}

func estimateAction(c *cli.Context, logger logging.Logger) error {
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	images, homs, err := loadInputs(c.Context, cfg, logger)
	if err != nil {
		return err
	}

	cams, err := panorama.InitialEstimate(images, homs, logger)
	if err != nil {
		return err
	}
	if cfg.LayoutPlot != "" {
		opts, err := cfg.StitchOptions()
		if err != nil {
			return err
		}
		if err := panorama.EstimateRanges(c.Context, cams, opts.Projection, opts.RangeStrategy); err != nil {
			return err
		}
		if err := panorama.PlotCameraLayout(cams, opts.Projection, cfg.LayoutPlot); err != nil {
			return err
		}
	}

	if c.Bool(flagTable) {
		_, err = fmt.Fprintln(c.App.Writer, camerasTable(cams))
		return err
	}
	out, err := json.MarshalIndent(cams, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}

// camerasTable renders one row per camera with its optical axis and intrinsics.
func camerasTable(cams []*panorama.Camera) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Optical Axis", "Focal", "Size"})
	for i, cam := range cams {
		axis := cam.OpticalAxis()
		t.AppendRow([]interface{}{
			i,
			fmt.Sprintf("(%.3f, %.3f, %.3f)", axis.X, axis.Y, axis.Z),
			fmt.Sprintf("%.2f", cam.Intrinsics.Fx),
			fmt.Sprintf("%dx%d", cam.Intrinsics.Width, cam.Intrinsics.Height),
		})
	}
	return t.Render()
}

func schemaAction(c *cli.Context) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(schema))
	return err
}

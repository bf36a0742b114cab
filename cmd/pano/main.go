// Package main is the pano command line tool.
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"go.viam.com/pano/logging"
)

const (
	flagConfig        = "config"
	flagDebug         = "debug"
	flagLogLevel      = "log-level"
	flagLogFile       = "log-file"
	flagImages        = "image"
	flagHomographies  = "homographies"
	flagOutput        = "output"
	flagProjection    = "projection"
	flagRangeStrategy = "range-strategy"
	flagMaxResolution = "max-resolution"
	flagInputScale    = "scale"
	flagOverlay       = "overlay"
	flagPlot          = "plot"
	flagSequential    = "sequential"
	flagTable         = "table"
)

func main() {
	logger := logging.NewBlankLogger("pano")
	logger.AddAppender(logging.NewWriterAppender(os.Stderr))
	logger.SetLevel(logging.INFO)
	logging.ReplaceGlobal(logger)

	app := newApp(logger)
	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load the run configuration from `FILE` (.json, .yaml or .yml)",
		},
		&cli.StringSliceFlag{
			Name:    flagImages,
			Aliases: []string{"i"},
			Usage:   "source image `FILE`, in ring order; repeat for each image",
		},
		&cli.StringFlag{
			Name:  flagHomographies,
			Usage: "JSON `FILE` of pairwise homographies, the last one closing the ring",
		},
		&cli.StringFlag{
			Name:  flagProjection,
			Usage: "projection surface: spherical or cylindrical",
		},
		&cli.StringFlag{
			Name:  flagRangeStrategy,
			Usage: "camera range estimation: corners or border",
		},
		&cli.Float64Flag{
			Name:  flagInputScale,
			Usage: "resize the source images by this factor before stitching",
		},
		&cli.StringFlag{
			Name:  flagPlot,
			Usage: "save a plot of the camera layout to `FILE`",
		},
		&cli.BoolFlag{
			Name:  flagSequential,
			Usage: "process cameras one at a time",
		},
	}
}

func newApp(logger logging.Logger) *cli.App {
	var fileAppender *logging.FileAppender
	return &cli.App{
		Name:  "pano",
		Usage: "stitch a ring of overlapping photos into a panorama",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Value: logging.INFO.String(),
				Usage: "minimum level to log: debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotating it when it gets large",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logging.LevelFromString(c.String(flagLogLevel))
			if err != nil {
				return err
			}
			logger.SetLevel(level)
			if c.Bool(flagDebug) {
				logger.SetLevel(logging.DEBUG)
				c.Context = logging.EnableDebugMode(c.Context, "")
			}
			if path := c.String(flagLogFile); path != "" {
				fileAppender = logging.NewFileAppender(path)
				logger.AddAppender(fileAppender)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if fileAppender == nil {
				return nil
			}
			return fileAppender.Close()
		},
		Commands: []*cli.Command{
			{
				Name:      "stitch",
				Usage:     "estimate the cameras and composite the mosaic",
				UsageText: "pano stitch [--config FILE | --image A --image B ... --homographies FILE] [options]",
				Flags: append(inputFlags(),
					&cli.StringFlag{
						Name:    flagOutput,
						Aliases: []string{"o"},
						Usage:   "write the mosaic to `FILE`; the format follows the extension",
					},
					&cli.IntFlag{
						Name:  flagMaxResolution,
						Usage: "upper bound on the longer side of the mosaic in pixels",
					},
					&cli.StringFlag{
						Name:  flagOverlay,
						Usage: "also write the mosaic with each camera's range outlined to `FILE`",
					},
				),
				Action: func(c *cli.Context) error {
					return stitchAction(c, logger)
				},
			},
			{
				Name:  "estimate",
				Usage: "print the initial camera estimate as JSON",
				Flags: append(inputFlags(),
					&cli.BoolFlag{
						Name:  flagTable,
						Usage: "print the cameras as a table instead of JSON",
					},
				),
				Action: func(c *cli.Context) error {
					return estimateAction(c, logger)
				},
			},
			{
				Name:  "schema",
				Usage: "print the JSON schema of the configuration file",
				Action: func(c *cli.Context) error {
					return schemaAction(c)
				},
			},
		},
	}
}

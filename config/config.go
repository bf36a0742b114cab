// Package config defines the run configuration for stitching a panorama.
package config

import (
	"path/filepath"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/pano/panorama"
	"go.viam.com/pano/projection"
)

// Defaults applied by Validate.
const (
	DefaultOutput     = "mosaic.jpg"
	DefaultInputScale = 1.0
)

// Config describes a stitching run: the source images in ring order, the file holding the
// pairwise homographies between them and where to write the results.
type Config struct {
	Images        []string `json:"images" yaml:"images" jsonschema:"minItems=2"`
	Homographies  string   `json:"homographies" yaml:"homographies"`
	Output        string   `json:"output,omitempty" yaml:"output"`
	Projection    string   `json:"projection,omitempty" yaml:"projection" jsonschema:"enum=spherical,enum=cylindrical"`
	RangeStrategy string   `json:"range_strategy,omitempty" yaml:"range_strategy" jsonschema:"enum=corners,enum=border"`
	MaxResolution int      `json:"max_resolution,omitempty" yaml:"max_resolution"`
	// InputScale resizes every image before estimation, e.g. 0.25 for a quick preview.
	InputScale   float64 `json:"input_scale,omitempty" yaml:"input_scale"`
	DebugOverlay string  `json:"debug_overlay,omitempty" yaml:"debug_overlay"`
	LayoutPlot   string  `json:"layout_plot,omitempty" yaml:"layout_plot"`
	// Sequential disables parallel warping and range estimation.
	Sequential bool `json:"sequential,omitempty" yaml:"sequential"`

	ConfigFilePath string `json:"-" yaml:"-"`
}

// Validate ensures all parts of the config are valid and fills in defaults.
func (c *Config) Validate(path string) error {
	if len(c.Images) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "images")
	}
	if len(c.Images) < 2 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("need at least two images to stitch, got %d", len(c.Images)))
	}
	for i, img := range c.Images {
		if img == "" {
			return utils.NewConfigValidationError(path, errors.Errorf("image %d has an empty path", i))
		}
	}
	if c.Homographies == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "homographies")
	}

	if c.Projection == "" {
		c.Projection = projection.SphericalName
	}
	if _, err := projection.FromName(c.Projection); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if c.RangeStrategy == "" {
		c.RangeStrategy = string(panorama.RangeCorners)
	}
	if _, err := panorama.RangeStrategyFromName(c.RangeStrategy); err != nil {
		return utils.NewConfigValidationError(path, err)
	}

	if c.MaxResolution == 0 {
		c.MaxResolution = panorama.DefaultMaxResolution
	}
	if c.MaxResolution < 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("max_resolution must be positive, got %d", c.MaxResolution))
	}
	if c.InputScale == 0 {
		c.InputScale = DefaultInputScale
	}
	if c.InputScale < 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("input_scale must be positive, got %v", c.InputScale))
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	return nil
}

// StitchOptions converts the validated config into pipeline options.
func (c *Config) StitchOptions() (panorama.Options, error) {
	proj, err := projection.FromName(c.Projection)
	if err != nil {
		return panorama.Options{}, err
	}
	strategy, err := panorama.RangeStrategyFromName(c.RangeStrategy)
	if err != nil {
		return panorama.Options{}, err
	}
	return panorama.Options{
		Projection:    proj,
		RangeStrategy: strategy,
		MaxResolution: c.MaxResolution,
	}, nil
}

// resolvePaths makes every relative path relative to dir instead of the working directory.
func (c *Config) resolvePaths(dir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i, img := range c.Images {
		c.Images[i] = resolve(img)
	}
	c.Homographies = resolve(c.Homographies)
	c.Output = resolve(c.Output)
	c.DebugOverlay = resolve(c.DebugOverlay)
	c.LayoutPlot = resolve(c.LayoutPlot)
}

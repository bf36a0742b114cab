package panorama

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/pano/projection"
	"go.viam.com/pano/rimage"
)

// PlotCameraLayout saves a plot of each camera's optical axis and range on the projection
// surface. The file format follows the extension.
func PlotCameraLayout(cams []*Camera, proj projection.Projection, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Camera layout (%s)", proj.Name())
	p.X.Label.Text = "x (rad)"
	p.Y.Label.Text = "y"

	palette := rimage.Palette(len(cams))
	centers := make(plotter.XYs, len(cams))
	labels := make([]string, len(cams))
	for i, cam := range cams {
		center := proj.HomToProj(cam.OpticalAxis())
		centers[i] = plotter.XY{X: center.X, Y: center.Y}
		labels[i] = fmt.Sprintf("%d", i)

		rng := cam.Range
		outline := plotter.XYs{
			{X: rng.X.Lo, Y: rng.Y.Lo},
			{X: rng.X.Hi, Y: rng.Y.Lo},
			{X: rng.X.Hi, Y: rng.Y.Hi},
			{X: rng.X.Lo, Y: rng.Y.Hi},
			{X: rng.X.Lo, Y: rng.Y.Lo},
		}
		line, err := plotter.NewLine(outline)
		if err != nil {
			return errors.Wrapf(err, "camera %d outline", i)
		}
		line.Color = palette[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(labels[i], line)
	}

	scatter, err := plotter.NewScatter(centers)
	if err != nil {
		return errors.Wrap(err, "optical axes")
	}
	p.Add(scatter)

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: centers, Labels: labels})
	if err != nil {
		return errors.Wrap(err, "labels")
	}
	p.Add(names)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "cannot save layout plot %q", path)
	}
	return nil
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/pano/logging"
	"go.viam.com/pano/rimage"
	"go.viam.com/pano/rimage/transform"
	"go.viam.com/pano/spatialmath"
)

// writeRing writes four solid images a quarter turn apart, each with a 90 degree field of view,
// and the homographies between them.
func writeRing(t *testing.T, dir string) ([]string, string) {
	t.Helper()
	const width, height = 64, 48
	k := transform.NewCenteredIntrinsics(width/2, width, height)
	kInv, err := k.GetInverseCameraMatrix()
	test.That(t, err, test.ShouldBeNil)

	colors := []rimage.Color{rimage.Red, rimage.Green, rimage.Blue, rimage.White}
	paths := make([]string, len(colors))
	homs := make([]*transform.Homography, len(colors))
	for i, c := range colors {
		img := rimage.NewImage(width, height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetXY(x, y, c)
			}
		}
		paths[i] = filepath.Join(dir, fmt.Sprintf("img%d.png", i))
		test.That(t, rimage.WriteImageToFile(paths[i], img), test.ShouldBeNil)

		// image i+1 is turned a quarter turn from image i
		rel := spatialmath.ExpToRotationMatrix(r3.Vector{Y: -math.Pi / 2})
		var kr, h mat.Dense
		kr.Mul(k.GetCameraMatrix(), rel.Dense())
		h.Mul(&kr, kInv)
		homs[i], err = transform.NewHomographyFromDense(&h)
		test.That(t, err, test.ShouldBeNil)
	}

	data, err := json.Marshal(map[string]interface{}{"homographies": homs})
	test.That(t, err, test.ShouldBeNil)
	homPath := filepath.Join(dir, "homs.json")
	test.That(t, os.WriteFile(homPath, data, 0o600), test.ShouldBeNil)
	return paths, homPath
}

func imageArgs(paths []string) []string {
	var args []string
	for _, p := range paths {
		args = append(args, "--image", p)
	}
	return args
}

func TestStitchCommand(t *testing.T) {
	dir := t.TempDir()
	paths, homPath := writeRing(t, dir)
	out := filepath.Join(dir, "mosaic.png")
	overlay := filepath.Join(dir, "overlay.png")
	plot := filepath.Join(dir, "layout.png")

	args := append([]string{"pano", "stitch"}, imageArgs(paths)...)
	args = append(args,
		"--homographies", homPath,
		"--output", out,
		"--max-resolution", "120",
		"--overlay", overlay,
		"--plot", plot,
	)
	app := newApp(logging.NewTestLogger(t))
	test.That(t, app.Run(args), test.ShouldBeNil)

	mosaic, err := rimage.NewImageFromFile(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mosaic.Width(), test.ShouldEqual, 120)

	for _, p := range []string{overlay, plot} {
		_, err := os.Stat(p)
		test.That(t, err, test.ShouldBeNil)
	}
}

func TestStitchCommandFromConfig(t *testing.T) {
	dir := t.TempDir()
	paths, homPath := writeRing(t, dir)
	cfgPath := filepath.Join(dir, "run.json")
	data, err := json.Marshal(map[string]interface{}{
		"images": []string{
			filepath.Base(paths[0]), filepath.Base(paths[1]), filepath.Base(paths[2]), filepath.Base(paths[3]),
		},
		"homographies":   filepath.Base(homPath),
		"output":         "out.jpg",
		"projection":     "cylindrical",
		"max_resolution": 100,
		"sequential":     true,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, os.WriteFile(cfgPath, data, 0o600), test.ShouldBeNil)

	logFile := filepath.Join(dir, "pano.log")
	app := newApp(logging.NewTestLogger(t))
	test.That(t, app.Run([]string{"pano", "--debug", "--log-file", logFile, "stitch", "--config", cfgPath}), test.ShouldBeNil)
	_, err = os.Stat(filepath.Join(dir, "out.jpg"))
	test.That(t, err, test.ShouldBeNil)
	logs, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(logs), test.ShouldContainSubstring, "wrote mosaic")

	app = newApp(logging.NewTestLogger(t))
	err = app.Run([]string{"pano", "stitch", "--config", cfgPath, "--projection", "fisheye"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown projection")
}

func TestEstimateCommand(t *testing.T) {
	dir := t.TempDir()
	paths, homPath := writeRing(t, dir)

	var buf bytes.Buffer
	app := newApp(logging.NewTestLogger(t))
	app.Writer = &buf
	args := append([]string{"pano", "estimate"}, imageArgs(paths)...)
	args = append(args, "--homographies", homPath, "--scale", "0.5")
	test.That(t, app.Run(args), test.ShouldBeNil)

	var cams []struct {
		Rotation   [3][3]float64                      `json:"rotation"`
		Intrinsics *transform.PinholeCameraIntrinsics `json:"intrinsics"`
	}
	test.That(t, json.Unmarshal(buf.Bytes(), &cams), test.ShouldBeNil)
	test.That(t, cams, test.ShouldHaveLength, 4)
	for _, cam := range cams {
		test.That(t, cam.Intrinsics.Width, test.ShouldEqual, 32)
		test.That(t, cam.Intrinsics.Height, test.ShouldEqual, 24)
		test.That(t, cam.Intrinsics.Fx, test.ShouldAlmostEqual, 16, 1e-6)
	}
	for i, row := range cams[2].Rotation {
		for j, v := range row {
			if i == j {
				test.That(t, v, test.ShouldAlmostEqual, 1, 1e-9)
			} else {
				test.That(t, v, test.ShouldAlmostEqual, 0, 1e-9)
			}
		}
	}
}

func TestEstimateCommandTable(t *testing.T) {
	dir := t.TempDir()
	paths, homPath := writeRing(t, dir)

	var buf bytes.Buffer
	app := newApp(logging.NewTestLogger(t))
	app.Writer = &buf
	args := append([]string{"pano", "estimate", "--table"}, imageArgs(paths)...)
	args = append(args, "--homographies", homPath)
	test.That(t, app.Run(args), test.ShouldBeNil)

	out := buf.String()
	test.That(t, out, test.ShouldContainSubstring, "OPTICAL AXIS")
	test.That(t, out, test.ShouldContainSubstring, "64x48")
	test.That(t, out, test.ShouldContainSubstring, "32.00")
}

func TestEstimateCommandErrors(t *testing.T) {
	app := newApp(logging.NewTestLogger(t))
	err := app.Run([]string{"pano", "estimate", "--homographies", "h.json"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"images" is required`)

	app = newApp(logging.NewTestLogger(t))
	err = app.Run([]string{"pano", "estimate", "--image", "a.png", "--image", "b.png", "--homographies", "h.json"})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSchemaCommand(t *testing.T) {
	var buf bytes.Buffer
	app := newApp(logging.NewTestLogger(t))
	app.Writer = &buf
	test.That(t, app.Run([]string{"pano", "schema"}), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldContainSubstring, "homographies")
}

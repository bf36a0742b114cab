package transform

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/pano/logging"
)

// ErrInsufficientOverlap is returned when no homography yields a usable focal length.
var ErrInsufficientOverlap = errors.New("insufficient overlap or homography quality to estimate focal length")

// negligibleDenominator is the magnitude below which a candidate's denominator is treated as zero.
const negligibleDenominator = 1e-14

// focalFromCandidates picks between two squared focal candidates. A candidate is usable when its
// denominator is not negligible and it is finite and positive. If both are usable the one with
// the larger magnitude denominator wins, regardless of which candidate is larger, since that is
// the better conditioned of the two.
func focalFromCandidates(v1, v2, d1, d2 float64) float64 {
	valid := func(v, d float64) bool {
		return math.Abs(d) > negligibleDenominator && !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
	}
	ok1, ok2 := valid(v1, d1), valid(v2, d2)
	switch {
	case ok1 && ok2:
		if math.Abs(d1) > math.Abs(d2) {
			return math.Sqrt(v1)
		}
		return math.Sqrt(v2)
	case ok1:
		return math.Sqrt(v1)
	case ok2:
		return math.Sqrt(v2)
	default:
		return 0
	}
}

// focalFromHomography runs the closed form on one homography. Zero means no estimate.
func focalFromHomography(hom []float64) float64 {
	// from the orthogonality of the first two columns of K^-1 H K
	d1 := hom[6] * hom[7]
	d2 := (hom[7] - hom[6]) * (hom[7] + hom[6])
	v1 := -(hom[0]*hom[1] + hom[3]*hom[4]) / d1
	v2 := (hom[0]*hom[0] + hom[3]*hom[3] - hom[1]*hom[1] - hom[4]*hom[4]) / d2
	f1 := focalFromCandidates(v1, v2, d1, d2)

	// from the orthogonality of the first two rows
	d1 = hom[0]*hom[3] + hom[1]*hom[4]
	d2 = hom[0]*hom[0] + hom[1]*hom[1] - hom[3]*hom[3] - hom[4]*hom[4]
	v1 = -hom[2] * hom[5] / d1
	v2 = (hom[5]*hom[5] - hom[2]*hom[2]) / d2
	f0 := focalFromCandidates(v1, v2, d1, d2)

	return math.Sqrt(f0 * f1)
}

// EstimateFocal estimates the focal length from a homography between two views taken by the
// same rotating camera, following Szeliski and Shum, "Creating full view panoramic image mosaics
// and environment maps" (1997). If the homography gives no estimate its inverse is tried. Zero
// means neither gave one.
func EstimateFocal(h *Homography) float64 {
	if f := focalFromHomography(h.Values()); f > 0 {
		return f
	}
	inv, err := h.Inverse()
	if err != nil {
		return 0
	}
	return focalFromHomography(inv.Values())
}

// MedianFocal estimates a focal length per homography and returns the median of the usable ones.
func MedianFocal(homs []*Homography, logger logging.Logger) (float64, error) {
	focals := make([]float64, len(homs))
	for i, h := range homs {
		focals[i] = EstimateFocal(h)
		if focals[i] == 0 {
			logger.Warnw("no focal estimate for pair", "pair", i)
			continue
		}
		logger.Debugw("focal estimate", "pair", i, "focal", focals[i])
	}

	usable := lo.Filter(focals, func(f float64, _ int) bool { return f > 0 })
	if len(usable) == 0 {
		return 0, ErrInsufficientOverlap
	}
	median, err := stats.Median(usable)
	if err != nil {
		return 0, errors.Wrap(err, "cannot take median of focal estimates")
	}
	return median, nil
}

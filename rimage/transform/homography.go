package transform

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"
)

// Homography is a 3x3 matrix used to transform a plane from the perspective of a 2D camera to the
// perspective of another 2D camera. Pixel coordinates are centered on the image.
type Homography struct {
	matrix *mat.Dense
}

// NewHomography creates a homography from a slice of floats in row-major order.
func NewHomography(vals []float64) (*Homography, error) {
	if len(vals) != 9 {
		return nil, errors.Errorf("input to NewHomography must have length of 9. Has length of %d", len(vals))
	}
	data := make([]float64, 9)
	copy(data, vals)
	return &Homography{mat.NewDense(3, 3, data)}, nil
}

// NewHomographyFromDense copies a 3x3 gonum matrix.
func NewHomographyFromDense(m mat.Matrix) (*Homography, error) {
	r, c := m.Dims()
	if r != 3 || c != 3 {
		return nil, errors.Errorf("homography must be 3x3, got %dx%d", r, c)
	}
	return &Homography{mat.DenseCopyOf(m)}, nil
}

// At returns the value of the homography at the given index.
func (h *Homography) At(row, col int) float64 {
	return h.matrix.At(row, col)
}

// Values returns the row-major entries.
func (h *Homography) Values() []float64 {
	out := make([]float64, 9)
	copy(out, h.matrix.RawMatrix().Data)
	return out
}

// Dense returns a copy of the homography.
func (h *Homography) Dense() *mat.Dense {
	return mat.DenseCopyOf(h.matrix)
}

// Apply will transform the given point according to the homography.
func (h *Homography) Apply(pt r2.Point) r2.Point {
	x := h.At(0, 0)*pt.X + h.At(0, 1)*pt.Y + h.At(0, 2)
	y := h.At(1, 0)*pt.X + h.At(1, 1)*pt.Y + h.At(1, 2)
	z := h.At(2, 0)*pt.X + h.At(2, 1)*pt.Y + h.At(2, 2)
	return r2.Point{X: x / z, Y: y / z}
}

// Inverse returns the inverse of the homography, or ErrSingularMatrix.
func (h *Homography) Inverse() (*Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(h.matrix); err != nil {
		return nil, errors.Wrap(ErrSingularMatrix, err.Error())
	}
	for _, v := range inv.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrSingularMatrix
		}
	}
	return &Homography{&inv}, nil
}

// Scale returns the homography for images resized by factor s: S H S^-1 with S = diag(s, s, 1).
func (h *Homography) Scale(s float64) *Homography {
	v := h.Values()
	return &Homography{mat.NewDense(3, 3, []float64{
		v[0], v[1], v[2] * s,
		v[3], v[4], v[5] * s,
		v[6] / s, v[7] / s, v[8],
	})}
}

// MarshalJSON writes the homography as nested rows.
func (h *Homography) MarshalJSON() ([]byte, error) {
	v := h.Values()
	return json.Marshal([3][3]float64{{v[0], v[1], v[2]}, {v[3], v[4], v[5]}, {v[6], v[7], v[8]}})
}

// UnmarshalJSON accepts either nested rows or a flat list of nine values.
func (h *Homography) UnmarshalJSON(data []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err == nil {
		flat := make([]float64, 0, 9)
		for _, row := range rows {
			flat = append(flat, row...)
		}
		parsed, err := NewHomography(flat)
		if err != nil {
			return err
		}
		*h = *parsed
		return nil
	}

	var flat []float64
	if err := json.Unmarshal(data, &flat); err != nil {
		return errors.Wrap(err, "homography must be a 3x3 array or a list of 9 values")
	}
	parsed, err := NewHomography(flat)
	if err != nil {
		return err
	}
	*h = *parsed
	return nil
}

// homographyFile is the on-disk layout for the pairwise homographies of a panorama.
// Homography i maps centered pixels of image i+1 into image i; the last entry closes the ring.
type homographyFile struct {
	Homographies []*Homography `json:"homographies"`
}

// ReadHomographies parses either {"homographies": [...]} or a bare array of homographies. The
// input may be JSON5, so hand edited files can carry comments and trailing commas.
func ReadHomographies(r io.Reader) ([]*Homography, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading homographies")
	}
	var generic interface{}
	if err := json5.Unmarshal(raw, &generic); err != nil {
		return nil, errors.Wrap(err, "error parsing homographies")
	}
	data, err := json.Marshal(generic)
	if err != nil {
		return nil, err
	}

	var wrapped homographyFile
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Homographies) > 0 {
		return wrapped.Homographies, nil
	}

	var bare []*Homography
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, errors.Wrap(err, "error parsing homographies")
	}
	if len(bare) == 0 {
		return nil, errors.New("no homographies found")
	}
	return bare, nil
}

// NewHomographiesFromJSONFile reads the pairwise homographies from a JSON file.
func NewHomographiesFromJSONFile(jsonPath string) ([]*Homography, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening JSON file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)
	return ReadHomographies(jsonFile)
}

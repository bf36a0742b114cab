package panorama

import (
	"github.com/pkg/errors"

	"go.viam.com/pano/logging"
	"go.viam.com/pano/rimage"
	"go.viam.com/pano/rimage/transform"
	"go.viam.com/pano/spatialmath"
	"go.viam.com/pano/utils"
)

// InitialEstimate builds the closed form camera model: a median focal length shared by every
// camera, rotations chained from the middle camera, and a straightening rotation. homs[i] maps
// centered pixels of images[i+1] into images[i], and the last entry closes the ring.
func InitialEstimate(
	images []*rimage.Image,
	homs []*transform.Homography,
	logger logging.Logger,
) ([]*Camera, error) {
	width, height, err := checkImageSizes(images)
	if err != nil {
		return nil, err
	}
	if len(images) < 2 {
		return nil, errors.Errorf("need at least two images, got %d", len(images))
	}
	if len(homs) != len(images) {
		return nil, errors.Errorf("need one homography per image, got %d for %d images", len(homs), len(images))
	}

	focal, err := transform.MedianFocal(homs, logger)
	if err != nil {
		return nil, err
	}
	logger.Infow("estimated focal length", "focal", focal, "images", len(images))

	shared := transform.NewCenteredIntrinsics(focal, width, height)
	intrinsics := make([]*transform.PinholeCameraIntrinsics, len(images))
	for i := range intrinsics {
		intrinsics[i] = shared
	}

	rots, err := AbsoluteRotations(homs, intrinsics)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(rots); i++ {
		axis := spatialmath.RotationMatrixToR4AA(rots[i].MatMul(rots[i-1].Transpose()))
		logger.Debugw("relative rotation",
			"from", i-1, "to", i,
			"degrees", utils.RadToDeg(axis.Theta),
			"axis", []float64{axis.RX, axis.RY, axis.RZ})
	}
	rots = Straighten(rots, logger)
	for i, rot := range rots {
		if !rot.IsValid(1e-6) {
			logger.Warnw("camera rotation is not orthonormal", "camera", i)
		}
	}

	cams := make([]*Camera, len(images))
	for i, img := range images {
		cams[i] = &Camera{Image: img, Rotation: rots[i], Intrinsics: intrinsics[i]}
	}
	return cams, nil
}

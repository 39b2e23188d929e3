package horse

import (
	"fmt"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/pkg/constants"
)

// ImageKind names one of the five pictures a horse carries.
type ImageKind string

const (
	ImageProfile    ImageKind = "profile"
	ImageRightFront ImageKind = "right_front"
	ImageLeftFront  ImageKind = "left_front"
	ImageRightHind  ImageKind = "right_hind"
	ImageLeftHind   ImageKind = "left_hind"
)

// ImageKinds lists every kind in column order.
var ImageKinds = []ImageKind{ImageProfile, ImageRightFront, ImageLeftFront, ImageRightHind, ImageLeftHind}

func (k ImageKind) column() string {
	if k == ImageProfile {
		return "profile_picture_path"
	}
	return "picture_" + string(k) + "_path"
}

func (k ImageKind) folder() string {
	if k == ImageProfile {
		return constants.FolderHorseProfile
	}
	return constants.FolderHorseLimbs
}

// fileName is stable per horse so a replacement overwrites the old file.
func (k ImageKind) fileName(horseID int64) string {
	return fmt.Sprintf("%d_%s.png", horseID, k)
}

// field returns the row field that stores the key for k.
func (k ImageKind) field(h *repo.Horse) **string {
	switch k {
	case ImageProfile:
		return &h.ProfilePicturePath
	case ImageRightFront:
		return &h.PictureRightFrontPath
	case ImageLeftFront:
		return &h.PictureLeftFrontPath
	case ImageRightHind:
		return &h.PictureRightHindPath
	case ImageLeftHind:
		return &h.PictureLeftHindPath
	}
	return nil
}

func (k ImageKind) valid() bool {
	for _, known := range ImageKinds {
		if k == known {
			return true
		}
	}
	return false
}

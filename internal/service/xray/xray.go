// Package xray answers x-ray uploads with the annotated reference image.
// The upload is checked and discarded; analysis is not performed yet.
package xray

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iequus/iequus_backend/internal/service/access"
	"github.com/iequus/iequus_backend/pkg/constants"
	"github.com/iequus/iequus_backend/pkg/media"
	"github.com/iequus/iequus_backend/pkg/validate"
)

var (
	ErrInvalidInput  = validate.ErrInvalid
	ErrHorseNotFound = errors.New("horse not found")
)

// Landmark is one annotated point on the reference image.
type Landmark struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type Result struct {
	HorseID  int64
	ImageURL string
	// Landmarks is keyed by "x,y".
	Landmarks map[string]Landmark
}

type Service interface {
	Analyze(ctx context.Context, requesterID, horseID int64, picture *media.Upload) (*Result, error)
}

type xrayService struct {
	access access.Service
	store  media.Store
	logger *slog.Logger
}

func New(acc access.Service, store media.Store, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &xrayService{access: acc, store: store, logger: logger}
}

var referenceLandmarks = []Landmark{
	{X: 391, Y: 52, Label: "Terceiro osso metacarpiano"},
	{X: 321, Y: 141, Label: "Segundo osso metacarpiano"},
	{X: 444, Y: 95, Label: "Quarto osso metacarpiano"},
	{X: 352, Y: 332, Label: "Ossos sesamoides proximais"},
	{X: 455, Y: 335, Label: "Ossos sesamoides proximais"},
	{X: 409, Y: 621, Label: "Falange proximal (P1)"},
	{X: 413, Y: 903, Label: "Falange média (P2)"},
}

func (s *xrayService) Analyze(ctx context.Context, requesterID, horseID int64, picture *media.Upload) (*Result, error) {
	if horseID <= 0 {
		return nil, fmt.Errorf("%w: horseId is required", ErrInvalidInput)
	}
	if picture == nil {
		return nil, fmt.Errorf("%w: picture is required", ErrInvalidInput)
	}
	if _, err := media.DecodeImage(picture.Content); err != nil {
		return nil, fmt.Errorf("%w: invalid or corrupted image file", ErrInvalidInput)
	}

	ok, err := s.access.CanAccessHorse(ctx, requesterID, horseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHorseNotFound
	}

	key, err := media.Key(constants.FolderXray, constants.XrayReferenceImage)
	if err != nil {
		return nil, err
	}

	landmarks := make(map[string]Landmark, len(referenceLandmarks))
	for _, l := range referenceLandmarks {
		l.Description = "Location of " + l.Label
		landmarks[fmt.Sprintf("%d,%d", l.X, l.Y)] = l
	}

	s.logger.InfoContext(ctx, "xray processed", "horse_id", horseID, "filename", picture.Filename)
	return &Result{HorseID: horseID, ImageURL: s.store.URL(key), Landmarks: landmarks}, nil
}

// Package measure stores body measures of a horse and derives body weight
// and condition score from the landmark coordinates.
package measure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/internal/service/access"
	"github.com/iequus/iequus_backend/pkg/constants"
	"github.com/iequus/iequus_backend/pkg/media"
	"github.com/iequus/iequus_backend/pkg/observability"
	"github.com/iequus/iequus_backend/pkg/predict"
	"github.com/iequus/iequus_backend/pkg/validate"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	HorseID       int64 `validate:"required,gt=0"`
	AppointmentID *int64
	// Date defaults to today.
	Date        *string
	UserBW      *int     `validate:"omitempty,min=0"`
	UserBCS     *float64 `validate:"omitempty,min=0,max=9"`
	Coordinates []predict.Point
	Favorite    bool
	Picture     *media.Upload
}

type UpdateRequest struct {
	AppointmentID    *int64
	ClearAppointment bool
	// Date set to an empty string clears it.
	Date    *string
	UserBW  *int     `validate:"omitempty,min=0"`
	UserBCS *float64 `validate:"omitempty,min=0,max=9"`
	// ClearUserBW and ClearUserBCS null the user estimates.
	ClearUserBW  bool
	ClearUserBCS bool
	// Coordinates, when set, replaces the point list and recomputes the
	// algorithm outputs. An empty list clears all three.
	Coordinates   *[]predict.Point
	Favorite      *bool
	Picture       *media.Upload
	RemovePicture bool
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, requesterID int64, req CreateRequest) (*repo.Measure, error)
	List(ctx context.Context, requesterID int64) ([]*repo.Measure, error)
	ListByHorse(ctx context.Context, requesterID, horseID int64) ([]*repo.Measure, error)
	ListByAppointment(ctx context.Context, requesterID, appointmentID int64) ([]*repo.Measure, error)
	Get(ctx context.Context, requesterID, id int64) (*repo.Measure, error)
	Update(ctx context.Context, requesterID, id int64, req UpdateRequest) (*repo.Measure, error)
	Delete(ctx context.Context, requesterID, id int64) error
}

type Deps struct {
	DB          *repo.DB
	Access      access.Service
	Store       media.Store
	Estimator   *predict.Estimator
	MaxImageDim int
	Logger      *slog.Logger
}

type measureService struct {
	Deps
}

func New(d Deps) Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &measureService{Deps: d}
}

// ---------------------------------------------------------------------------
// Create / read
// ---------------------------------------------------------------------------

func (s *measureService) Create(ctx context.Context, requesterID int64, req CreateRequest) (*repo.Measure, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.permitHorse(ctx, requesterID, req.HorseID); err != nil {
		return nil, err
	}
	if req.AppointmentID != nil {
		if err := s.checkAppointment(ctx, requesterID, *req.AppointmentID, req.HorseID); err != nil {
			return nil, err
		}
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		d, err := validate.Date(*req.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}

	est, err := s.estimate(ctx, req.Coordinates)
	if err != nil {
		return nil, err
	}
	coords, err := encodePoints(req.Coordinates)
	if err != nil {
		return nil, err
	}

	m := &repo.Measure{
		HorseID:        req.HorseID,
		VeterinarianID: &requesterID,
		AppointmentID:  req.AppointmentID,
		Date:           &date,
		UserBW:         req.UserBW,
		UserBCS:        req.UserBCS,
		AlgorithmBW:    est.BodyWeight,
		AlgorithmBCS:   est.BodyScore,
		Coordinates:    coords,
		Favorite:       req.Favorite,
	}

	if req.Picture != nil {
		key, err := s.savePicture(ctx, req.Picture)
		if err != nil {
			return nil, err
		}
		m.PicturePath = &key
	}

	if err := s.DB.Measures.Create(ctx, m); err != nil {
		media.Cleanup(ctx, s.Store, s.Logger, m.PicturePath)
		if errors.Is(err, repo.ErrForeignKey) {
			return nil, ErrHorseNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *measureService) List(ctx context.Context, requesterID int64) ([]*repo.Measure, error) {
	ids, err := s.Access.AccessibleHorseIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.DB.Measures.ListByHorseIDs(ctx, ids)
}

func (s *measureService) ListByHorse(ctx context.Context, requesterID, horseID int64) ([]*repo.Measure, error) {
	if err := s.permitHorse(ctx, requesterID, horseID); err != nil {
		return nil, err
	}
	return s.DB.Measures.ListByHorseIDs(ctx, []int64{horseID})
}

func (s *measureService) ListByAppointment(ctx context.Context, requesterID, appointmentID int64) ([]*repo.Measure, error) {
	ok, err := s.Access.CanAccessAppointment(ctx, requesterID, appointmentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return s.DB.Measures.ListByAppointment(ctx, appointmentID)
}

func (s *measureService) Get(ctx context.Context, requesterID, id int64) (*repo.Measure, error) {
	ok, err := s.Access.CanAccessMeasure(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.load(ctx, id)
}

func (s *measureService) load(ctx context.Context, id int64) (*repo.Measure, error) {
	m, err := s.DB.Measures.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return m, err
}

// ---------------------------------------------------------------------------
// Update / delete
// ---------------------------------------------------------------------------

func (s *measureService) Update(ctx context.Context, requesterID, id int64, req UpdateRequest) (*repo.Measure, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	cur, err := s.Get(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	var ch repo.Changes

	switch {
	case req.ClearAppointment:
		if cur.AppointmentID != nil {
			ch.SetNull("appointment_id")
		}
	case req.AppointmentID != nil:
		if cur.AppointmentID == nil || *cur.AppointmentID != *req.AppointmentID {
			if err := s.checkAppointment(ctx, requesterID, *req.AppointmentID, cur.HorseID); err != nil {
				return nil, err
			}
			ch.Set("appointment_id", *req.AppointmentID)
		}
	}

	if req.Date != nil {
		raw := strings.TrimSpace(*req.Date)
		switch {
		case raw == "" && cur.Date != nil:
			ch.SetNull("date")
		case raw != "":
			d, err := validate.Date(raw)
			if err != nil {
				return nil, err
			}
			if cur.Date == nil || !cur.Date.Equal(d) {
				ch.Set("date", d)
			}
		}
	}

	repo.SetNullable(&ch, "user_bw", req.UserBW, req.ClearUserBW, cur.UserBW)
	repo.SetNullable(&ch, "user_bcs", req.UserBCS, req.ClearUserBCS, cur.UserBCS)
	if req.Favorite != nil && *req.Favorite != cur.Favorite {
		ch.Set("favorite", *req.Favorite)
	}

	if req.Coordinates != nil {
		changed, err := pointsDiffer(cur.Coordinates, *req.Coordinates)
		if err != nil {
			return nil, err
		}
		if changed {
			if err := s.recompute(ctx, &ch, *req.Coordinates); err != nil {
				return nil, err
			}
		}
	}

	var newPicture *string
	switch {
	case req.Picture != nil:
		key, err := s.savePicture(ctx, req.Picture)
		if err != nil {
			return nil, err
		}
		newPicture = &key
		ch.Set("picture_path", key)
	case req.RemovePicture && cur.PicturePath != nil:
		ch.SetNull("picture_path")
	}

	if ch.Empty() {
		return nil, ErrNoChanges
	}

	if err := s.DB.Measures.Update(ctx, id, ch); err != nil {
		media.Cleanup(ctx, s.Store, s.Logger, newPicture)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, repo.ErrForeignKey) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	if newPicture != nil || req.RemovePicture {
		media.Cleanup(ctx, s.Store, s.Logger, cur.PicturePath)
	}
	return s.load(ctx, id)
}

func (s *measureService) Delete(ctx context.Context, requesterID, id int64) error {
	cur, err := s.Get(ctx, requesterID, id)
	if err != nil {
		return err
	}
	if err := s.DB.Measures.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	media.Cleanup(ctx, s.Store, s.Logger, cur.PicturePath)
	return nil
}

// ---------------------------------------------------------------------------
// Prediction
// ---------------------------------------------------------------------------

func (s *measureService) estimate(ctx context.Context, points []predict.Point) (predict.Estimate, error) {
	if len(points) == 0 {
		return predict.Estimate{}, nil
	}

	est, err := s.Estimator.Estimate(ctx, points)
	switch {
	case errors.Is(err, predict.ErrDegenerate), errors.Is(err, predict.ErrPointCount):
		observability.RecordPrediction(ctx, "failed")
		return predict.Estimate{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case err != nil:
		observability.RecordPrediction(ctx, "failed")
		s.Logger.ErrorContext(ctx, "body score prediction failed", "points", len(points), "error", err)
		return predict.Estimate{}, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	case est.BodyScore != nil:
		observability.RecordPrediction(ctx, "scored")
	default:
		observability.RecordPrediction(ctx, "partial")
	}
	return est, nil
}

// recompute replaces the coordinates and both algorithm columns.
func (s *measureService) recompute(ctx context.Context, ch *repo.Changes, points []predict.Point) error {
	est, err := s.estimate(ctx, points)
	if err != nil {
		return err
	}
	raw, err := encodePoints(points)
	if err != nil {
		return err
	}
	repo.SetCoordinates(ch, raw)
	setFloat(ch, "algorithm_bw", est.BodyWeight)
	setFloat(ch, "algorithm_bcs", est.BodyScore)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *measureService) permitHorse(ctx context.Context, requesterID, horseID int64) error {
	ok, err := s.Access.CanAccessHorse(ctx, requesterID, horseID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrHorseNotFound
	}
	return nil
}

// checkAppointment requires a visible appointment on the same horse.
func (s *measureService) checkAppointment(ctx context.Context, requesterID, appointmentID, horseID int64) error {
	ok, err := s.Access.CanAccessAppointment(ctx, requesterID, appointmentID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAppointmentNotFound
	}
	a, err := s.DB.Appointments.Get(ctx, appointmentID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrAppointmentNotFound
	}
	if err != nil {
		return err
	}
	if a.HorseID != horseID {
		return fmt.Errorf("%w: appointment belongs to another horse", ErrInvalidInput)
	}
	return nil
}

func (s *measureService) savePicture(ctx context.Context, u *media.Upload) (string, error) {
	key, err := media.SaveImage(ctx, s.Store, constants.FolderMeasures, uuid.NewString()+".png", u, s.MaxImageDim)
	if errors.Is(err, media.ErrInvalidImage) {
		return "", fmt.Errorf("%w: picture is not a valid image", ErrInvalidInput)
	}
	return key, err
}

func encodePoints(points []predict.Point) (json.RawMessage, error) {
	if len(points) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("encode coordinates: %w", err)
	}
	return raw, nil
}

// DecodePoints reads the stored coordinates column.
func DecodePoints(raw json.RawMessage) ([]predict.Point, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var points []predict.Point
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil, fmt.Errorf("decode coordinates: %w", err)
	}
	return points, nil
}

func pointsDiffer(stored json.RawMessage, next []predict.Point) (bool, error) {
	cur, err := DecodePoints(stored)
	if err != nil {
		return false, err
	}
	if len(cur) == 0 && len(next) == 0 {
		return false, nil
	}
	return !reflect.DeepEqual(cur, next), nil
}

func setFloat(ch *repo.Changes, column string, v *float64) {
	if v == nil {
		ch.SetNull(column)
		return
	}
	ch.Set(column, *v)
}

// Package appointment records clinical visits. Appointments are read
// through their horse and changed only by the veterinarian who recorded them.
package appointment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/internal/service/access"
	"github.com/iequus/iequus_backend/pkg/constants"
	"github.com/iequus/iequus_backend/pkg/media"
	"github.com/iequus/iequus_backend/pkg/observability"
	"github.com/iequus/iequus_backend/pkg/pdfconv"
	"github.com/iequus/iequus_backend/pkg/validate"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Clinical holds the examination fields. Lameness follows the AAEP 0-5 scale.
type Clinical struct {
	LamenessRightFront     *int `validate:"omitempty,min=0,max=5"`
	LamenessLeftFront      *int `validate:"omitempty,min=0,max=5"`
	LamenessRightHind      *int `validate:"omitempty,min=0,max=5"`
	LamenessLeftHind       *int `validate:"omitempty,min=0,max=5"`
	BPM                    *int `validate:"omitempty,min=0,max=400"`
	ECGTime                *int `validate:"omitempty,min=0"`
	MuscleTensionFrequency *string
	MuscleTensionStiffness *string
	MuscleTensionR         *string
	Comment                *string
}

type CreateRequest struct {
	HorseID int64 `validate:"required,gt=0"`
	Clinical
	CBC *media.Upload
}

// NumericField names a nullable numeric examination field.
type NumericField string

const (
	FieldLamenessRightFront NumericField = "lameness_right_front"
	FieldLamenessLeftFront  NumericField = "lameness_left_front"
	FieldLamenessRightHind  NumericField = "lameness_right_hind"
	FieldLamenessLeftHind   NumericField = "lameness_left_hind"
	FieldBPM                NumericField = "bpm"
	FieldECGTime            NumericField = "ecg_time"
)

type UpdateRequest struct {
	// HorseID and VeterinarianID may be echoed back but not changed.
	HorseID        *int64
	VeterinarianID *int64
	Clinical
	// Clear nulls the named numeric fields; it wins over a value in Clinical.
	Clear     map[NumericField]bool
	CBC       *media.Upload
	RemoveCBC bool
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, requesterID int64, req CreateRequest) (*repo.Appointment, error)
	List(ctx context.Context, requesterID int64) ([]*repo.Appointment, error)
	ListByHorse(ctx context.Context, requesterID, horseID int64) ([]*repo.Appointment, error)
	Get(ctx context.Context, requesterID, id int64) (*repo.Appointment, error)
	Update(ctx context.Context, requesterID, id int64, req UpdateRequest) (*repo.Appointment, error)
	Delete(ctx context.Context, requesterID, id int64) error
}

type Deps struct {
	DB        *repo.DB
	Access    access.Service
	Store     media.Store
	Converter *pdfconv.Converter
	Logger    *slog.Logger
}

type appointmentService struct {
	Deps
}

func New(d Deps) Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &appointmentService{Deps: d}
}

// ---------------------------------------------------------------------------
// Create / read
// ---------------------------------------------------------------------------

func (s *appointmentService) Create(ctx context.Context, requesterID int64, req CreateRequest) (*repo.Appointment, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	ok, err := s.Access.CanAccessHorse(ctx, requesterID, req.HorseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHorseNotFound
	}

	a := &repo.Appointment{
		HorseID:                req.HorseID,
		VeterinarianID:         requesterID,
		LamenessRightFront:     req.LamenessRightFront,
		LamenessLeftFront:      req.LamenessLeftFront,
		LamenessRightHind:      req.LamenessRightHind,
		LamenessLeftHind:       req.LamenessLeftHind,
		BPM:                    req.BPM,
		ECGTime:                req.ECGTime,
		MuscleTensionFrequency: trimmed(req.MuscleTensionFrequency),
		MuscleTensionStiffness: trimmed(req.MuscleTensionStiffness),
		MuscleTensionR:         trimmed(req.MuscleTensionR),
		Comment:                trimmed(req.Comment),
	}

	if req.CBC != nil {
		key, err := s.saveCBC(ctx, req.CBC)
		if err != nil {
			return nil, err
		}
		a.CBCPath = &key
	}

	if err := s.DB.Appointments.Create(ctx, a); err != nil {
		media.Cleanup(ctx, s.Store, s.Logger, a.CBCPath)
		if errors.Is(err, repo.ErrForeignKey) {
			return nil, ErrHorseNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *appointmentService) List(ctx context.Context, requesterID int64) ([]*repo.Appointment, error) {
	ids, err := s.Access.AccessibleHorseIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.DB.Appointments.ListByHorseIDs(ctx, ids)
}

func (s *appointmentService) ListByHorse(ctx context.Context, requesterID, horseID int64) ([]*repo.Appointment, error) {
	ok, err := s.Access.CanAccessHorse(ctx, requesterID, horseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHorseNotFound
	}
	return s.DB.Appointments.ListByHorseIDs(ctx, []int64{horseID})
}

func (s *appointmentService) Get(ctx context.Context, requesterID, id int64) (*repo.Appointment, error) {
	ok, err := s.Access.CanAccessAppointment(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.load(ctx, id)
}

func (s *appointmentService) load(ctx context.Context, id int64) (*repo.Appointment, error) {
	a, err := s.DB.Appointments.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return a, err
}

// ---------------------------------------------------------------------------
// Update / delete
// ---------------------------------------------------------------------------

func (s *appointmentService) Update(ctx context.Context, requesterID, id int64, req UpdateRequest) (*repo.Appointment, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.permitModify(ctx, requesterID, id); err != nil {
		return nil, err
	}
	cur, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.HorseID != nil && *req.HorseID != cur.HorseID {
		return nil, fmt.Errorf("%w: horseId", ErrImmutableField)
	}
	if req.VeterinarianID != nil && *req.VeterinarianID != cur.VeterinarianID {
		return nil, fmt.Errorf("%w: veterinarianId", ErrImmutableField)
	}

	var ch repo.Changes
	for _, n := range []struct {
		field     NumericField
		next, cur *int
	}{
		{FieldLamenessRightFront, req.LamenessRightFront, cur.LamenessRightFront},
		{FieldLamenessLeftFront, req.LamenessLeftFront, cur.LamenessLeftFront},
		{FieldLamenessRightHind, req.LamenessRightHind, cur.LamenessRightHind},
		{FieldLamenessLeftHind, req.LamenessLeftHind, cur.LamenessLeftHind},
		{FieldBPM, req.BPM, cur.BPM},
		{FieldECGTime, req.ECGTime, cur.ECGTime},
	} {
		repo.SetNullable(&ch, string(n.field), n.next, req.Clear[n.field], n.cur)
	}
	ch.SetString("muscle_tension_frequency", req.MuscleTensionFrequency, cur.MuscleTensionFrequency)
	ch.SetString("muscle_tension_stiffness", req.MuscleTensionStiffness, cur.MuscleTensionStiffness)
	ch.SetString("muscle_tension_r", req.MuscleTensionR, cur.MuscleTensionR)
	ch.SetString("comment", req.Comment, cur.Comment)

	var newCBC *string
	switch {
	case req.CBC != nil:
		key, err := s.saveCBC(ctx, req.CBC)
		if err != nil {
			return nil, err
		}
		newCBC = &key
		ch.Set("cbc_path", key)
	case req.RemoveCBC && cur.CBCPath != nil:
		ch.SetNull("cbc_path")
	}

	if ch.Empty() {
		return nil, ErrNoChanges
	}

	if err := s.DB.Appointments.Update(ctx, id, ch); err != nil {
		media.Cleanup(ctx, s.Store, s.Logger, newCBC)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if newCBC != nil || req.RemoveCBC {
		media.Cleanup(ctx, s.Store, s.Logger, cur.CBCPath)
	}
	return s.load(ctx, id)
}

func (s *appointmentService) Delete(ctx context.Context, requesterID, id int64) error {
	if err := s.permitModify(ctx, requesterID, id); err != nil {
		return err
	}
	cur, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	keys := []*string{cur.CBCPath}
	measures, err := s.DB.Measures.ListByAppointment(ctx, id)
	if err != nil {
		return err
	}
	for _, m := range measures {
		keys = append(keys, m.PicturePath)
	}

	if err := s.DB.Appointments.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	media.Cleanup(ctx, s.Store, s.Logger, keys...)
	return nil
}

func (s *appointmentService) permitModify(ctx context.Context, requesterID, id int64) error {
	ok, err := s.Access.CanModifyAppointment(ctx, requesterID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// CBC
// ---------------------------------------------------------------------------

// saveCBC converts the upload to PDF and stores it under a fresh name.
func (s *appointmentService) saveCBC(ctx context.Context, u *media.Upload) (string, error) {
	ext := u.Ext()
	pdf, err := s.Converter.Convert(ctx, u.Filename, u.Content)
	observability.RecordConversion(ctx, ext, err == nil)
	switch {
	case errors.Is(err, pdfconv.ErrUnsupportedFormat):
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	case err != nil:
		s.Logger.ErrorContext(ctx, "cbc conversion failed", "ext", ext, "error", err)
		return "", fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	key, err := media.Key(constants.FolderCBC, uuid.NewString()+".pdf")
	if err != nil {
		return "", err
	}
	if err := s.Store.Save(ctx, key, bytes.NewReader(pdf), "application/pdf"); err != nil {
		return "", fmt.Errorf("store cbc: %w", err)
	}
	return key, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

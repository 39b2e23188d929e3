// Package access decides which records a veterinarian may see. A horse is
// visible to its owner and to veterinarians of the owner's hospital; clients,
// appointments and measures inherit visibility from their horses.
package access

import (
	"context"
	"errors"

	"github.com/iequus/iequus_backend/internal/repo"
)

type Service interface {
	CanAccessHorse(ctx context.Context, requesterID, horseID int64) (bool, error)
	AccessibleHorseIDs(ctx context.Context, requesterID int64) ([]int64, error)
	CanAccessClient(ctx context.Context, requesterID, clientID int64) (bool, error)
	CanAccessAppointment(ctx context.Context, requesterID, appointmentID int64) (bool, error)
	CanModifyAppointment(ctx context.Context, requesterID, appointmentID int64) (bool, error)
	CanAccessMeasure(ctx context.Context, requesterID, measureID int64) (bool, error)
	IsSelf(requesterID, veterinarianID int64) bool
}

type accessService struct {
	db *repo.DB
}

func New(db *repo.DB) Service {
	return &accessService{db: db}
}

// Permits is the horse rule on already loaded rows.
func Permits(requesterID int64, requesterHospital *int64, owner repo.Owner) bool {
	if owner.VeterinarianID == nil {
		return false
	}
	if *owner.VeterinarianID == requesterID {
		return true
	}
	return requesterHospital != nil && owner.HospitalID != nil && *requesterHospital == *owner.HospitalID
}

func (s *accessService) CanAccessHorse(ctx context.Context, requesterID, horseID int64) (bool, error) {
	owner, err := s.db.Horses.Owner(ctx, horseID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if owner.VeterinarianID != nil && *owner.VeterinarianID == requesterID {
		return true, nil
	}
	if owner.VeterinarianID == nil || owner.HospitalID == nil {
		return false, nil
	}

	mine, err := s.db.Veterinarians.HospitalID(ctx, requesterID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return Permits(requesterID, mine, owner), nil
}

func (s *accessService) AccessibleHorseIDs(ctx context.Context, requesterID int64) ([]int64, error) {
	return s.db.Horses.AccessibleIDs(ctx, requesterID)
}

func (s *accessService) CanAccessClient(ctx context.Context, requesterID, clientID int64) (bool, error) {
	linked, err := s.db.Clients.HorseIDs(ctx, clientID)
	if err != nil {
		return false, err
	}
	if len(linked) == 0 {
		return false, nil
	}

	visible, err := s.AccessibleHorseIDs(ctx, requesterID)
	if err != nil {
		return false, err
	}
	return intersects(linked, visible), nil
}

func (s *accessService) CanAccessAppointment(ctx context.Context, requesterID, appointmentID int64) (bool, error) {
	a, err := s.db.Appointments.Get(ctx, appointmentID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.CanAccessHorse(ctx, requesterID, a.HorseID)
}

// CanModifyAppointment holds only for the veterinarian who recorded it, and
// only while its horse is still visible to them.
func (s *accessService) CanModifyAppointment(ctx context.Context, requesterID, appointmentID int64) (bool, error) {
	a, err := s.db.Appointments.Get(ctx, appointmentID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if a.VeterinarianID != requesterID {
		return false, nil
	}
	return s.CanAccessHorse(ctx, requesterID, a.HorseID)
}

func (s *accessService) CanAccessMeasure(ctx context.Context, requesterID, measureID int64) (bool, error) {
	m, err := s.db.Measures.Get(ctx, measureID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.CanAccessHorse(ctx, requesterID, m.HorseID)
}

func (s *accessService) IsSelf(requesterID, veterinarianID int64) bool {
	return requesterID > 0 && requesterID == veterinarianID
}

func intersects(a, b []int64) bool {
	set := make(map[int64]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	for _, id := range a {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

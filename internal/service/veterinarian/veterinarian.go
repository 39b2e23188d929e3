package veterinarian

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/internal/service/access"
	"github.com/iequus/iequus_backend/pkg/authorize"
	"github.com/iequus/iequus_backend/pkg/validate"
)

// Profile is a veterinarian with a summary of their hospital.
type Profile struct {
	*repo.Veterinarian
	Hospital *repo.Hospital
}

type UpdateRequest struct {
	Name             *string
	Email            *string
	PhoneNumber      *string
	PhoneCountryCode *string
	LicenseID        *string
	HospitalID       *int64
	// ClearHospital detaches the veterinarian from any hospital.
	ClearHospital bool
}

type Service interface {
	Me(ctx context.Context, requesterID int64) (*Profile, error)
	Get(ctx context.Context, requesterID, id int64) (*Profile, error)
	Update(ctx context.Context, requesterID, id int64, req UpdateRequest) (*Profile, error)
	Delete(ctx context.Context, requesterID, id int64) error
	Colleagues(ctx context.Context, requesterID int64) ([]*repo.Veterinarian, error)
}

type vetService struct {
	db     *repo.DB
	access access.Service
	authz  authorize.IAuthorization
	logger *slog.Logger
}

func New(db *repo.DB, acc access.Service, authz authorize.IAuthorization, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &vetService{db: db, access: acc, authz: authz, logger: logger}
}

func (s *vetService) Me(ctx context.Context, requesterID int64) (*Profile, error) {
	return s.Get(ctx, requesterID, requesterID)
}

func (s *vetService) Get(ctx context.Context, requesterID, id int64) (*Profile, error) {
	if !s.access.IsSelf(requesterID, id) {
		return nil, ErrNotFound
	}
	return s.load(ctx, id)
}

func (s *vetService) load(ctx context.Context, id int64) (*Profile, error) {
	v, err := s.db.Veterinarians.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p := &Profile{Veterinarian: v}
	if v.HospitalID != nil {
		h, err := s.db.Hospitals.Get(ctx, *v.HospitalID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		p.Hospital = h
	}
	return p, nil
}

func (s *vetService) Update(ctx context.Context, requesterID, id int64, req UpdateRequest) (*Profile, error) {
	if !s.access.IsSelf(requesterID, id) {
		return nil, ErrNotFound
	}
	cur, err := s.db.Veterinarians.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var ch repo.Changes

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		if name != cur.Name {
			ch.Set("name", name)
		}
	}
	if req.LicenseID != nil {
		lic := strings.TrimSpace(*req.LicenseID)
		if lic == "" {
			return nil, fmt.Errorf("%w: licenseId cannot be empty", ErrInvalidInput)
		}
		if lic != cur.LicenseID {
			ch.Set("license_id", lic)
		}
	}
	if req.Email != nil {
		addr, err := validate.Email(*req.Email)
		if err != nil {
			return nil, err
		}
		if addr != cur.Email {
			ch.Set("email", addr)
		}
	}

	if req.PhoneNumber != nil || req.PhoneCountryCode != nil {
		number := pick(req.PhoneNumber, cur.PhoneNumber)
		country := pick(req.PhoneCountryCode, cur.PhoneCountryCode)
		if err := validate.Phone(number, country); err != nil {
			return nil, err
		}
		ch.SetString("phone_number", req.PhoneNumber, cur.PhoneNumber)
		ch.SetString("phone_country_code", req.PhoneCountryCode, cur.PhoneCountryCode)
	}

	hospitalChanged := false
	switch {
	case req.ClearHospital:
		if cur.HospitalID != nil {
			ch.SetNull("hospital_id")
			hospitalChanged = true
		}
	case req.HospitalID != nil:
		if cur.HospitalID == nil || *cur.HospitalID != *req.HospitalID {
			if _, err := s.db.Hospitals.Get(ctx, *req.HospitalID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return nil, ErrHospitalNotFound
				}
				return nil, err
			}
			ch.Set("hospital_id", *req.HospitalID)
			hospitalChanged = true
		}
	}

	if ch.Empty() {
		return nil, ErrNoChanges
	}

	if err := s.db.Veterinarians.Update(ctx, id, ch); err != nil {
		switch {
		case errors.Is(err, repo.ErrConflict):
			return nil, ErrEmailTaken
		case errors.Is(err, repo.ErrForeignKey):
			return nil, ErrHospitalNotFound
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}

	if hospitalChanged {
		s.moveRoles(ctx, id, cur.HospitalID, req.HospitalID)
	}
	return s.load(ctx, id)
}

// moveRoles keeps casbin in step with hospital_id. Failures are logged; the
// row is the source of truth for horse visibility.
func (s *vetService) moveRoles(ctx context.Context, vetID int64, from, to *int64) {
	if s.authz == nil {
		return
	}
	if from != nil {
		if err := authorize.RevokeHospitalRoles(ctx, s.authz, vetID, *from); err != nil {
			s.logger.ErrorContext(ctx, "failed to revoke hospital roles", "veterinarian_id", vetID, "hospital_id", *from, "error", err)
		}
	}
	if to != nil {
		if err := authorize.AssignHospitalMember(ctx, s.authz, vetID, *to); err != nil {
			s.logger.ErrorContext(ctx, "failed to grant hospital membership", "veterinarian_id", vetID, "hospital_id", *to, "error", err)
		}
	}
}

func (s *vetService) Delete(ctx context.Context, requesterID, id int64) error {
	if !s.access.IsSelf(requesterID, id) {
		return ErrNotFound
	}
	hospitalID, err := s.db.Veterinarians.HospitalID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.db.Veterinarians.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.moveRoles(ctx, id, hospitalID, nil)
	return nil
}

func (s *vetService) Colleagues(ctx context.Context, requesterID int64) ([]*repo.Veterinarian, error) {
	return s.db.Veterinarians.Colleagues(ctx, requesterID)
}

func pick(next, cur *string) string {
	if next != nil {
		return *next
	}
	if cur != nil {
		return *cur
	}
	return ""
}


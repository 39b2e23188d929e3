// Package hospital manages hospitals and their membership roles.
package hospital

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/pkg/authorize"
	"github.com/iequus/iequus_backend/pkg/constants"
	"github.com/iequus/iequus_backend/pkg/media"
	"github.com/iequus/iequus_backend/pkg/validate"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Name            string `validate:"required,max=255"`
	StreetName      *string
	StreetNumber    *string
	City            *string
	Country         *string
	OptionalAddress *string
	Logo            *media.Upload
}

type UpdateRequest struct {
	Name            *string
	StreetName      *string
	StreetNumber    *string
	City            *string
	Country         *string
	OptionalAddress *string
	Logo            *media.Upload
	RemoveLogo      bool
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context) ([]*repo.Hospital, error)
	Get(ctx context.Context, id int64) (*repo.Hospital, error)
	Create(ctx context.Context, requesterID int64, req CreateRequest) (*repo.Hospital, error)
	Update(ctx context.Context, requesterID, id int64, req UpdateRequest) (*repo.Hospital, error)
	Members(ctx context.Context, requesterID, id int64) ([]*repo.Veterinarian, error)
}

type Deps struct {
	DB          *repo.DB
	Authz       authorize.IAuthorization
	Store       media.Store
	MaxImageDim int
	Logger      *slog.Logger
}

type hospitalService struct {
	Deps
}

func New(d Deps) Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &hospitalService{Deps: d}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func (s *hospitalService) List(ctx context.Context) ([]*repo.Hospital, error) {
	return s.DB.Hospitals.List(ctx)
}

func (s *hospitalService) Get(ctx context.Context, id int64) (*repo.Hospital, error) {
	h, err := s.DB.Hospitals.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return h, err
}

// Members lists the veterinarians of a hospital. Only members may see it.
func (s *hospitalService) Members(ctx context.Context, requesterID, id int64) ([]*repo.Veterinarian, error) {
	if err := s.permit(ctx, requesterID, id, authorize.ResourceHospitalMembers, authorize.ActionRead); err != nil {
		return nil, err
	}
	return s.DB.Veterinarians.ListByHospital(ctx, id)
}

// permit maps a casbin denial and a missing hospital to the same ErrNotFound.
func (s *hospitalService) permit(ctx context.Context, requesterID, id int64, obj authorize.Resource, act authorize.Action) error {
	err := s.Authz.MustEnforce(ctx, authorize.VeterinarianSubject(requesterID), authorize.HospitalDomain(id), obj, act)
	if errors.Is(err, authorize.ErrForbidden) {
		return ErrNotFound
	}
	return err
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// Create registers a hospital administered by the requester, who also joins
// it and leaves any previous hospital.
func (s *hospitalService) Create(ctx context.Context, requesterID int64, req CreateRequest) (*repo.Hospital, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	previous, err := s.DB.Veterinarians.HospitalID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load requester: %w", err)
	}

	h := &repo.Hospital{
		Name:                req.Name,
		StreetName:          trimmed(req.StreetName),
		StreetNumber:        trimmed(req.StreetNumber),
		City:                trimmed(req.City),
		Country:             trimmed(req.Country),
		OptionalAddress:     trimmed(req.OptionalAddress),
		AdminVeterinarianID: &requesterID,
	}

	if req.Logo != nil {
		key, err := s.saveLogo(ctx, req.Logo)
		if err != nil {
			return nil, err
		}
		h.LogoPath = &key
	}

	err = s.DB.WithTx(ctx, func(tx *repo.DB) error {
		if err := tx.Hospitals.Create(ctx, h); err != nil {
			return fmt.Errorf("create hospital: %w", err)
		}
		var ch repo.Changes
		ch.Set("hospital_id", h.ID)
		if err := tx.Veterinarians.Update(ctx, requesterID, ch); err != nil {
			return fmt.Errorf("join hospital: %w", err)
		}
		return nil
	})
	if err != nil {
		media.Cleanup(ctx, s.Store, s.Logger, h.LogoPath)
		return nil, err
	}

	if previous != nil {
		if err := authorize.RevokeHospitalRoles(ctx, s.Authz, requesterID, *previous); err != nil {
			s.Logger.ErrorContext(ctx, "failed to revoke previous hospital roles", "veterinarian_id", requesterID, "hospital_id", *previous, "error", err)
		}
	}
	if err := authorize.AssignHospitalAdmin(ctx, s.Authz, requesterID, h.ID); err != nil {
		s.Logger.ErrorContext(ctx, "failed to assign hospital admin", "veterinarian_id", requesterID, "hospital_id", h.ID, "error", err)
	}
	if err := authorize.AssignHospitalMember(ctx, s.Authz, requesterID, h.ID); err != nil {
		s.Logger.ErrorContext(ctx, "failed to assign hospital member", "veterinarian_id", requesterID, "hospital_id", h.ID, "error", err)
	}

	return h, nil
}

func (s *hospitalService) Update(ctx context.Context, requesterID, id int64, req UpdateRequest) (*repo.Hospital, error) {
	if err := s.permit(ctx, requesterID, id, authorize.ResourceHospital, authorize.ActionUpdate); err != nil {
		return nil, err
	}
	cur, err := s.Get(ctx, id)
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
	ch.SetString("street_name", req.StreetName, cur.StreetName)
	ch.SetString("street_number", req.StreetNumber, cur.StreetNumber)
	ch.SetString("city", req.City, cur.City)
	ch.SetString("country", req.Country, cur.Country)
	ch.SetString("optional_address", req.OptionalAddress, cur.OptionalAddress)

	var newLogo *string
	switch {
	case req.Logo != nil:
		key, err := s.saveLogo(ctx, req.Logo)
		if err != nil {
			return nil, err
		}
		newLogo = &key
		ch.Set("logo_path", key)
	case req.RemoveLogo && cur.LogoPath != nil:
		ch.SetNull("logo_path")
	}

	if ch.Empty() {
		return nil, ErrNoChanges
	}

	if err := s.DB.Hospitals.Update(ctx, id, ch); err != nil {
		media.Cleanup(ctx, s.Store, s.Logger, newLogo)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if newLogo != nil || req.RemoveLogo {
		media.Cleanup(ctx, s.Store, s.Logger, cur.LogoPath)
	}
	return s.Get(ctx, id)
}

func (s *hospitalService) saveLogo(ctx context.Context, u *media.Upload) (string, error) {
	key, err := media.SaveImage(ctx, s.Store, constants.FolderHospitalLogos, uuid.NewString()+".png", u, s.MaxImageDim)
	if errors.Is(err, media.ErrInvalidImage) {
		return "", fmt.Errorf("%w: logo is not a valid image", ErrInvalidInput)
	}
	return key, err
}

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

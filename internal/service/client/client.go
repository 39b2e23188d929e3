// Package client manages horse clients and their horse associations.
// A client is visible through any accessible horse it is linked to.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/internal/service/access"
	"github.com/iequus/iequus_backend/pkg/validate"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Name             string `validate:"required,max=255"`
	Email            *string
	PhoneNumber      *string
	PhoneCountryCode *string
	// HorseID links the new client to a horse in the same transaction.
	HorseID *int64
	IsOwner bool
}

type UpdateRequest struct {
	Name             *string
	Email            *string
	PhoneNumber      *string
	PhoneCountryCode *string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, requesterID int64, req CreateRequest) (*repo.Client, error)
	List(ctx context.Context, requesterID int64) ([]*repo.Client, error)
	Get(ctx context.Context, requesterID, id int64) (*repo.Client, error)
	Update(ctx context.Context, requesterID, id int64, req UpdateRequest) (*repo.Client, error)
	Delete(ctx context.Context, requesterID, id int64) error

	Horses(ctx context.Context, requesterID, id int64) ([]*repo.HorseLink, error)
	AddHorse(ctx context.Context, requesterID, id, horseID int64, isOwner bool) error
	SetOwner(ctx context.Context, requesterID, id, horseID int64, isOwner bool) error
	RemoveHorse(ctx context.Context, requesterID, id, horseID int64) error
}

type clientService struct {
	db     *repo.DB
	access access.Service
}

func New(db *repo.DB, acc access.Service) Service {
	return &clientService{db: db, access: acc}
}

// ---------------------------------------------------------------------------
// CRUD
// ---------------------------------------------------------------------------

func (s *clientService) Create(ctx context.Context, requesterID int64, req CreateRequest) (*repo.Client, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	c := &repo.Client{
		Name:             req.Name,
		PhoneNumber:      trimmed(req.PhoneNumber),
		PhoneCountryCode: trimmed(req.PhoneCountryCode),
	}
	if e := trimmed(req.Email); e != nil {
		addr, err := validate.Email(*e)
		if err != nil {
			return nil, err
		}
		c.Email = &addr
	}
	if err := validate.Phone(deref(c.PhoneNumber), deref(c.PhoneCountryCode)); err != nil {
		return nil, err
	}

	if req.HorseID != nil {
		if err := s.permitHorse(ctx, requesterID, *req.HorseID); err != nil {
			return nil, err
		}
	}

	err := s.db.WithTx(ctx, func(tx *repo.DB) error {
		if err := tx.Clients.Create(ctx, c); err != nil {
			return fmt.Errorf("create client: %w", err)
		}
		if req.HorseID == nil {
			return nil
		}
		return tx.ClientHorses.Create(ctx, repo.ClientHorse{ClientID: c.ID, HorseID: *req.HorseID, IsOwner: req.IsOwner})
	})
	if errors.Is(err, repo.ErrForeignKey) {
		return nil, ErrHorseNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *clientService) List(ctx context.Context, requesterID int64) ([]*repo.Client, error) {
	ids, err := s.access.AccessibleHorseIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.db.Clients.ListByHorseIDs(ctx, ids)
}

func (s *clientService) Get(ctx context.Context, requesterID, id int64) (*repo.Client, error) {
	if err := s.permit(ctx, requesterID, id); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *clientService) load(ctx context.Context, id int64) (*repo.Client, error) {
	c, err := s.db.Clients.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *clientService) Update(ctx context.Context, requesterID, id int64, req UpdateRequest) (*repo.Client, error) {
	cur, err := s.Get(ctx, requesterID, id)
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
	if req.Email != nil {
		next := strings.TrimSpace(*req.Email)
		if next != "" {
			addr, err := validate.Email(next)
			if err != nil {
				return nil, err
			}
			next = addr
		}
		ch.SetString("email", &next, cur.Email)
	}
	if req.PhoneNumber != nil || req.PhoneCountryCode != nil {
		number, country := deref(cur.PhoneNumber), deref(cur.PhoneCountryCode)
		if req.PhoneNumber != nil {
			number = *req.PhoneNumber
		}
		if req.PhoneCountryCode != nil {
			country = *req.PhoneCountryCode
		}
		if err := validate.Phone(number, country); err != nil {
			return nil, err
		}
		ch.SetString("phone_number", req.PhoneNumber, cur.PhoneNumber)
		ch.SetString("phone_country_code", req.PhoneCountryCode, cur.PhoneCountryCode)
	}

	if ch.Empty() {
		return nil, ErrNoChanges
	}
	if err := s.db.Clients.Update(ctx, id, ch); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *clientService) Delete(ctx context.Context, requesterID, id int64) error {
	if err := s.permit(ctx, requesterID, id); err != nil {
		return err
	}
	if err := s.db.Clients.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Horse associations
// ---------------------------------------------------------------------------

// Horses lists the client's horses the requester can see.
func (s *clientService) Horses(ctx context.Context, requesterID, id int64) ([]*repo.HorseLink, error) {
	if err := s.permit(ctx, requesterID, id); err != nil {
		return nil, err
	}
	visible, err := s.access.AccessibleHorseIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.db.Horses.ListByClient(ctx, id, visible)
}

// AddHorse links a client to an accessible horse. A client with no links
// yet may be claimed by any veterinarian who can see the horse.
func (s *clientService) AddHorse(ctx context.Context, requesterID, id, horseID int64, isOwner bool) error {
	if err := s.permitHorse(ctx, requesterID, horseID); err != nil {
		return err
	}

	linked, err := s.db.Clients.HorseIDs(ctx, id)
	if err != nil {
		return err
	}
	if len(linked) == 0 {
		if _, err := s.load(ctx, id); err != nil {
			return err
		}
	} else if err := s.permit(ctx, requesterID, id); err != nil {
		return err
	}

	err = s.db.ClientHorses.Create(ctx, repo.ClientHorse{ClientID: id, HorseID: horseID, IsOwner: isOwner})
	switch {
	case errors.Is(err, repo.ErrConflict):
		return ErrAlreadyLinked
	case errors.Is(err, repo.ErrForeignKey):
		return ErrNotFound
	}
	return err
}

func (s *clientService) SetOwner(ctx context.Context, requesterID, id, horseID int64, isOwner bool) error {
	if err := s.permitLink(ctx, requesterID, id, horseID); err != nil {
		return err
	}
	err := s.db.ClientHorses.SetOwner(ctx, id, horseID, isOwner)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrLinkNotFound
	}
	return err
}

func (s *clientService) RemoveHorse(ctx context.Context, requesterID, id, horseID int64) error {
	if err := s.permitLink(ctx, requesterID, id, horseID); err != nil {
		return err
	}
	err := s.db.ClientHorses.Delete(ctx, id, horseID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrLinkNotFound
	}
	return err
}

// ---------------------------------------------------------------------------
// Scope helpers
// ---------------------------------------------------------------------------

func (s *clientService) permit(ctx context.Context, requesterID, id int64) error {
	ok, err := s.access.CanAccessClient(ctx, requesterID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *clientService) permitHorse(ctx context.Context, requesterID, horseID int64) error {
	ok, err := s.access.CanAccessHorse(ctx, requesterID, horseID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrHorseNotFound
	}
	return nil
}

func (s *clientService) permitLink(ctx context.Context, requesterID, id, horseID int64) error {
	if err := s.permit(ctx, requesterID, id); err != nil {
		return err
	}
	return s.permitHorse(ctx, requesterID, horseID)
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

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

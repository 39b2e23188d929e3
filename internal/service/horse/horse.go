// Package horse manages horses, their pictures and the views that hang off
// a horse (clients, measure export).
package horse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/internal/service/access"
	"github.com/iequus/iequus_backend/pkg/export"
	"github.com/iequus/iequus_backend/pkg/media"
	"github.com/iequus/iequus_backend/pkg/validate"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Name      string `validate:"required,max=255"`
	BirthDate *string
	Images    map[ImageKind]*media.Upload
}

type UpdateRequest struct {
	Name *string
	// BirthDate set to an empty string clears the date.
	BirthDate *string
	Images    map[ImageKind]*media.Upload
	Remove    map[ImageKind]bool
}

// Export is a rendered measures workbook.
type Export struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, requesterID int64, req CreateRequest) (*repo.Horse, error)
	List(ctx context.Context, requesterID int64) ([]*repo.Horse, error)
	Get(ctx context.Context, requesterID, id int64) (*repo.Horse, error)
	Update(ctx context.Context, requesterID, id int64, req UpdateRequest) (*repo.Horse, error)
	Delete(ctx context.Context, requesterID, id int64) error

	Clients(ctx context.Context, requesterID, id int64) ([]*repo.ClientLink, error)
	ExportMeasures(ctx context.Context, requesterID, id int64) (*Export, error)
}

type Deps struct {
	DB          *repo.DB
	Access      access.Service
	Store       media.Store
	MaxImageDim int
	Logger      *slog.Logger
}

type horseService struct {
	Deps
}

func New(d Deps) Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &horseService{Deps: d}
}

// ---------------------------------------------------------------------------
// Create / read
// ---------------------------------------------------------------------------

func (s *horseService) Create(ctx context.Context, requesterID int64, req CreateRequest) (*repo.Horse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := checkKinds(req.Images); err != nil {
		return nil, err
	}

	h := &repo.Horse{Name: req.Name, VeterinarianID: &requesterID}
	if req.BirthDate != nil && strings.TrimSpace(*req.BirthDate) != "" {
		d, err := validate.Date(*req.BirthDate)
		if err != nil {
			return nil, err
		}
		h.BirthDate = &d
	}

	var saved []*string
	err := s.DB.WithTx(ctx, func(tx *repo.DB) error {
		if err := tx.Horses.Create(ctx, h); err != nil {
			return fmt.Errorf("create horse: %w", err)
		}

		var ch repo.Changes
		for _, kind := range ImageKinds {
			u := req.Images[kind]
			if u == nil {
				continue
			}
			key, err := s.saveImage(ctx, h.ID, kind, u)
			if err != nil {
				return err
			}
			saved = append(saved, &key)
			*kind.field(h) = &key
			ch.Set(kind.column(), key)
		}
		return tx.Horses.Update(ctx, h.ID, ch)
	})
	if err != nil {
		media.Cleanup(ctx, s.Store, s.Logger, saved...)
		return nil, err
	}
	return h, nil
}

func (s *horseService) List(ctx context.Context, requesterID int64) ([]*repo.Horse, error) {
	ids, err := s.Access.AccessibleHorseIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.DB.Horses.ListByIDs(ctx, ids)
}

func (s *horseService) Get(ctx context.Context, requesterID, id int64) (*repo.Horse, error) {
	if err := s.permit(ctx, requesterID, id); err != nil {
		return nil, err
	}
	h, err := s.DB.Horses.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return h, err
}

func (s *horseService) permit(ctx context.Context, requesterID, id int64) error {
	ok, err := s.Access.CanAccessHorse(ctx, requesterID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Update / delete
// ---------------------------------------------------------------------------

func (s *horseService) Update(ctx context.Context, requesterID, id int64, req UpdateRequest) (*repo.Horse, error) {
	if err := checkKinds(req.Images); err != nil {
		return nil, err
	}
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
	if req.BirthDate != nil {
		raw := strings.TrimSpace(*req.BirthDate)
		switch {
		case raw == "" && cur.BirthDate != nil:
			ch.SetNull("birth_date")
		case raw != "":
			d, err := validate.Date(raw)
			if err != nil {
				return nil, err
			}
			if cur.BirthDate == nil || !sameDay(*cur.BirthDate, d) {
				ch.Set("birth_date", d)
			}
		}
	}

	var (
		uploaded bool
		stale    []*string
	)
	for _, kind := range ImageKinds {
		old := *kind.field(cur)
		if u := req.Images[kind]; u != nil {
			key, err := s.saveImage(ctx, id, kind, u)
			if err != nil {
				return nil, err
			}
			uploaded = true
			if old == nil || *old != key {
				ch.Set(kind.column(), key)
				stale = append(stale, old)
			}
			continue
		}
		if req.Remove[kind] && old != nil {
			ch.SetNull(kind.column())
			stale = append(stale, old)
		}
	}

	if ch.Empty() && !uploaded {
		return nil, ErrNoChanges
	}

	if err := s.DB.Horses.Update(ctx, id, ch); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	media.Cleanup(ctx, s.Store, s.Logger, stale...)

	h, err := s.DB.Horses.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return h, err
}

// Delete removes the horse; appointments, measures and client links go with
// it in the database and their files are removed afterwards.
func (s *horseService) Delete(ctx context.Context, requesterID, id int64) error {
	h, err := s.Get(ctx, requesterID, id)
	if err != nil {
		return err
	}

	keys := make([]*string, 0, len(ImageKinds))
	for _, kind := range ImageKinds {
		keys = append(keys, *kind.field(h))
	}
	appointments, err := s.DB.Appointments.ListByHorseIDs(ctx, []int64{id})
	if err != nil {
		return err
	}
	for _, a := range appointments {
		keys = append(keys, a.CBCPath)
	}
	measures, err := s.DB.Measures.ListByHorseIDs(ctx, []int64{id})
	if err != nil {
		return err
	}
	for _, m := range measures {
		keys = append(keys, m.PicturePath)
	}

	if err := s.DB.Horses.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	media.Cleanup(ctx, s.Store, s.Logger, keys...)
	return nil
}

// ---------------------------------------------------------------------------
// Related views
// ---------------------------------------------------------------------------

func (s *horseService) Clients(ctx context.Context, requesterID, id int64) ([]*repo.ClientLink, error) {
	if err := s.permit(ctx, requesterID, id); err != nil {
		return nil, err
	}
	return s.DB.Clients.ListByHorse(ctx, id)
}

func (s *horseService) ExportMeasures(ctx context.Context, requesterID, id int64) (*Export, error) {
	h, err := s.Get(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	measures, err := s.DB.Measures.ListByHorseIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}

	rows := make([]export.MeasureRow, 0, len(measures))
	for _, m := range measures {
		rows = append(rows, export.MeasureRow{
			ID:            m.ID,
			Date:          m.Date,
			AppointmentID: m.AppointmentID,
			UserBW:        m.UserBW,
			UserBCS:       m.UserBCS,
			AlgorithmBW:   m.AlgorithmBW,
			AlgorithmBCS:  m.AlgorithmBCS,
			Favorite:      m.Favorite,
			PictureURL:    media.URLOrNil(s.Store, m.PicturePath),
		})
	}

	content, err := export.Measures(h.Name, rows)
	if err != nil {
		return nil, fmt.Errorf("render measures: %w", err)
	}
	return &Export{
		FileName:    fmt.Sprintf("horse_%d_measures.xlsx", h.ID),
		ContentType: export.ContentType,
		Content:     content,
	}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *horseService) saveImage(ctx context.Context, horseID int64, kind ImageKind, u *media.Upload) (string, error) {
	key, err := media.SaveImage(ctx, s.Store, kind.folder(), kind.fileName(horseID), u, s.MaxImageDim)
	if errors.Is(err, media.ErrInvalidImage) {
		return "", fmt.Errorf("%w: %s picture is not a valid image", ErrInvalidInput, kind)
	}
	return key, err
}

func checkKinds(images map[ImageKind]*media.Upload) error {
	for kind := range images {
		if !kind.valid() {
			return fmt.Errorf("%w: unknown picture %q", ErrInvalidInput, kind)
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}

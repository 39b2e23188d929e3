package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type Hospital struct {
	ID                  int64
	Name                string
	StreetName          *string
	StreetNumber        *string
	City                *string
	Country             *string
	OptionalAddress     *string
	LogoPath            *string
	AdminVeterinarianID *int64
	CreatedAt           time.Time
}

var hospitalColumns = []string{
	"id", "name", "street_name", "street_number", "city", "country",
	"optional_address", "logo_path", "admin_veterinarian_id", "created_at",
}

func scanHospital(s scanner) (*Hospital, error) {
	var h Hospital
	err := s.Scan(&h.ID, &h.Name, &h.StreetName, &h.StreetNumber, &h.City, &h.Country,
		&h.OptionalAddress, &h.LogoPath, &h.AdminVeterinarianID, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

type HospitalRepo struct {
	q Querier
}

func (r *HospitalRepo) Get(ctx context.Context, id int64) (*Hospital, error) {
	sel := sqlb.Select(hospitalColumns...).From(sqlb.Table("hospitals")).Where(entsql.EQ("id", id))
	return queryOne(ctx, r.q, sel, scanHospital)
}

func (r *HospitalRepo) List(ctx context.Context) ([]*Hospital, error) {
	sel := sqlb.Select(hospitalColumns...).From(sqlb.Table("hospitals")).
		OrderBy(entsql.Asc("name"), entsql.Asc("id"))
	return queryAll(ctx, r.q, sel, scanHospital)
}

// Create inserts h and sets its ID and CreatedAt.
func (r *HospitalRepo) Create(ctx context.Context, h *Hospital) error {
	h.CreatedAt = now()
	id, err := insertReturningID(ctx, r.q, sqlb.Insert("hospitals").
		Columns("name", "street_name", "street_number", "city", "country",
			"optional_address", "logo_path", "admin_veterinarian_id", "created_at").
		Values(h.Name, h.StreetName, h.StreetNumber, h.City, h.Country,
			h.OptionalAddress, h.LogoPath, h.AdminVeterinarianID, h.CreatedAt))
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

func (r *HospitalRepo) Update(ctx context.Context, id int64, ch Changes) error {
	return updateByID(ctx, r.q, "hospitals", id, ch)
}

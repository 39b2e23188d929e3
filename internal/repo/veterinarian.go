package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type Veterinarian struct {
	ID               int64
	Name             string
	Email            string
	PhoneNumber      *string
	PhoneCountryCode *string
	PasswordHash     string
	LicenseID        string
	HospitalID       *int64
	CreatedAt        time.Time
}

var veterinarianColumns = []string{
	"id", "name", "email", "phone_number", "phone_country_code",
	"password_hash", "license_id", "hospital_id", "created_at",
}

func scanVeterinarian(s scanner) (*Veterinarian, error) {
	var v Veterinarian
	err := s.Scan(&v.ID, &v.Name, &v.Email, &v.PhoneNumber, &v.PhoneCountryCode,
		&v.PasswordHash, &v.LicenseID, &v.HospitalID, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type VeterinarianRepo struct {
	q Querier
}

func (r *VeterinarianRepo) Get(ctx context.Context, id int64) (*Veterinarian, error) {
	sel := sqlb.Select(veterinarianColumns...).From(sqlb.Table("veterinarians")).Where(entsql.EQ("id", id))
	return queryOne(ctx, r.q, sel, scanVeterinarian)
}

// GetByEmail expects email already normalised.
func (r *VeterinarianRepo) GetByEmail(ctx context.Context, email string) (*Veterinarian, error) {
	sel := sqlb.Select(veterinarianColumns...).From(sqlb.Table("veterinarians")).Where(entsql.EQ("email", email))
	return queryOne(ctx, r.q, sel, scanVeterinarian)
}

// HospitalID returns the hospital of a veterinarian, nil when unaffiliated.
func (r *VeterinarianRepo) HospitalID(ctx context.Context, id int64) (*int64, error) {
	query, args := sqlb.Select("hospital_id").From(sqlb.Table("veterinarians")).Where(entsql.EQ("id", id)).Query()
	var hospitalID *int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&hospitalID); err != nil {
		return nil, mapErr(err)
	}
	return hospitalID, nil
}

// ListByHospital returns members of a hospital ordered by name.
func (r *VeterinarianRepo) ListByHospital(ctx context.Context, hospitalID int64) ([]*Veterinarian, error) {
	sel := sqlb.Select(veterinarianColumns...).From(sqlb.Table("veterinarians")).
		Where(entsql.EQ("hospital_id", hospitalID)).
		OrderBy(entsql.Asc("name"), entsql.Asc("id"))
	return queryAll(ctx, r.q, sel, scanVeterinarian)
}

// Colleagues returns the veterinarian plus everyone sharing their hospital.
func (r *VeterinarianRepo) Colleagues(ctx context.Context, id int64) ([]*Veterinarian, error) {
	me := sqlb.Select("hospital_id").From(sqlb.Table("veterinarians")).Where(entsql.EQ("id", id))
	sel := sqlb.Select(veterinarianColumns...).From(sqlb.Table("veterinarians")).
		Where(entsql.Or(
			entsql.EQ("id", id),
			entsql.In("hospital_id", me),
		)).
		OrderBy(entsql.Asc("name"), entsql.Asc("id"))
	return queryAll(ctx, r.q, sel, scanVeterinarian)
}

func (r *VeterinarianRepo) Create(ctx context.Context, v *Veterinarian) error {
	v.CreatedAt = now()
	id, err := insertReturningID(ctx, r.q, sqlb.Insert("veterinarians").
		Columns("name", "email", "phone_number", "phone_country_code",
			"password_hash", "license_id", "hospital_id", "created_at").
		Values(v.Name, v.Email, v.PhoneNumber, v.PhoneCountryCode,
			v.PasswordHash, v.LicenseID, v.HospitalID, v.CreatedAt))
	if err != nil {
		return err
	}
	v.ID = id
	return nil
}

func (r *VeterinarianRepo) Update(ctx context.Context, id int64, ch Changes) error {
	return updateByID(ctx, r.q, "veterinarians", id, ch)
}

func (r *VeterinarianRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.q, "veterinarians", id)
}

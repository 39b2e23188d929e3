package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type Horse struct {
	ID                    int64
	Name                  string
	BirthDate             *time.Time
	ProfilePicturePath    *string
	PictureRightFrontPath *string
	PictureLeftFrontPath  *string
	PictureRightHindPath  *string
	PictureLeftHindPath   *string
	VeterinarianID        *int64
	CreatedAt             time.Time
}

// HorseLink is a horse seen through a client association.
type HorseLink struct {
	Horse
	IsOwner bool
}

// Owner describes who a horse belongs to for scope checks.
type Owner struct {
	VeterinarianID *int64
	HospitalID     *int64
}

var horseColumns = []string{
	"id", "name", "birth_date", "profile_picture_path",
	"picture_right_front_path", "picture_left_front_path",
	"picture_right_hind_path", "picture_left_hind_path",
	"veterinarian_id", "created_at",
}

func horseDest(h *Horse) []any {
	return []any{&h.ID, &h.Name, &h.BirthDate, &h.ProfilePicturePath,
		&h.PictureRightFrontPath, &h.PictureLeftFrontPath,
		&h.PictureRightHindPath, &h.PictureLeftHindPath,
		&h.VeterinarianID, &h.CreatedAt}
}

func scanHorse(s scanner) (*Horse, error) {
	var h Horse
	if err := s.Scan(horseDest(&h)...); err != nil {
		return nil, err
	}
	return &h, nil
}

func scanHorseLink(s scanner) (*HorseLink, error) {
	var l HorseLink
	if err := s.Scan(append(horseDest(&l.Horse), &l.IsOwner)...); err != nil {
		return nil, err
	}
	return &l, nil
}

type HorseRepo struct {
	q Querier
}

func (r *HorseRepo) Get(ctx context.Context, id int64) (*Horse, error) {
	sel := sqlb.Select(horseColumns...).From(sqlb.Table("horses")).Where(entsql.EQ("id", id))
	return queryOne(ctx, r.q, sel, scanHorse)
}

// Owner returns the owning veterinarian and their hospital.
func (r *HorseRepo) Owner(ctx context.Context, horseID int64) (Owner, error) {
	h := sqlb.Table("horses").As("h")
	v := sqlb.Table("veterinarians").As("v")
	query, args := sqlb.Select(h.C("veterinarian_id"), v.C("hospital_id")).
		From(h).
		LeftJoin(v).On(h.C("veterinarian_id"), v.C("id")).
		Where(entsql.EQ(h.C("id"), horseID)).
		Query()

	var o Owner
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&o.VeterinarianID, &o.HospitalID); err != nil {
		return Owner{}, mapErr(err)
	}
	return o, nil
}

// AccessibleIDs returns the ids of horses owned by the veterinarian or by a
// veterinarian of the same hospital, in one query.
func (r *HorseRepo) AccessibleIDs(ctx context.Context, veterinarianID int64) ([]int64, error) {
	h := sqlb.Table("horses").As("h")
	v := sqlb.Table("veterinarians").As("v")
	myHospital := sqlb.Select("hospital_id").From(sqlb.Table("veterinarians")).
		Where(entsql.EQ("id", veterinarianID))

	sel := sqlb.Select(h.C("id")).
		From(h).
		Join(v).On(h.C("veterinarian_id"), v.C("id")).
		Where(entsql.Or(
			entsql.EQ(v.C("id"), veterinarianID),
			entsql.In(v.C("hospital_id"), myHospital),
		)).
		OrderBy(entsql.Asc(h.C("id")))
	return queryIDs(ctx, r.q, sel)
}

// ListByIDs returns the given horses ordered by name.
func (r *HorseRepo) ListByIDs(ctx context.Context, ids []int64) ([]*Horse, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sel := sqlb.Select(horseColumns...).From(sqlb.Table("horses")).
		Where(entsql.In("id", idArgs(ids)...)).
		OrderBy(entsql.Asc("name"), entsql.Asc("id"))
	return queryAll(ctx, r.q, sel, scanHorse)
}

// ListByClient returns the client's horses restricted to ids, with the
// ownership flag.
func (r *HorseRepo) ListByClient(ctx context.Context, clientID int64, ids []int64) ([]*HorseLink, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	h := sqlb.Table("horses").As("h")
	ch := sqlb.Table("client_horses").As("ch")
	sel := sqlb.Select(append(h.Columns(horseColumns...), ch.C("is_owner"))...).
		From(h).
		Join(ch).On(h.C("id"), ch.C("horse_id")).
		Where(entsql.And(
			entsql.EQ(ch.C("client_id"), clientID),
			entsql.In(h.C("id"), idArgs(ids)...),
		)).
		OrderBy(entsql.Asc(h.C("name")), entsql.Asc(h.C("id")))
	return queryAll(ctx, r.q, sel, scanHorseLink)
}

func (r *HorseRepo) Create(ctx context.Context, h *Horse) error {
	h.CreatedAt = now()
	id, err := insertReturningID(ctx, r.q, sqlb.Insert("horses").
		Columns("name", "birth_date", "profile_picture_path",
			"picture_right_front_path", "picture_left_front_path",
			"picture_right_hind_path", "picture_left_hind_path",
			"veterinarian_id", "created_at").
		Values(h.Name, h.BirthDate, h.ProfilePicturePath,
			h.PictureRightFrontPath, h.PictureLeftFrontPath,
			h.PictureRightHindPath, h.PictureLeftHindPath,
			h.VeterinarianID, h.CreatedAt))
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

func (r *HorseRepo) Update(ctx context.Context, id int64, ch Changes) error {
	return updateByID(ctx, r.q, "horses", id, ch)
}

func (r *HorseRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.q, "horses", id)
}

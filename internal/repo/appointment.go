package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type Appointment struct {
	ID                     int64
	HorseID                int64
	VeterinarianID         int64
	LamenessRightFront     *int
	LamenessLeftFront      *int
	LamenessRightHind      *int
	LamenessLeftHind       *int
	BPM                    *int
	ECGTime                *int
	MuscleTensionFrequency *string
	MuscleTensionStiffness *string
	MuscleTensionR         *string
	Comment                *string
	CBCPath                *string
	CreatedAt              time.Time
}

var appointmentColumns = []string{
	"id", "horse_id", "veterinarian_id",
	"lameness_right_front", "lameness_left_front", "lameness_right_hind", "lameness_left_hind",
	"bpm", "ecg_time",
	"muscle_tension_frequency", "muscle_tension_stiffness", "muscle_tension_r",
	"comment", "cbc_path", "created_at",
}

func scanAppointment(s scanner) (*Appointment, error) {
	var a Appointment
	err := s.Scan(&a.ID, &a.HorseID, &a.VeterinarianID,
		&a.LamenessRightFront, &a.LamenessLeftFront, &a.LamenessRightHind, &a.LamenessLeftHind,
		&a.BPM, &a.ECGTime,
		&a.MuscleTensionFrequency, &a.MuscleTensionStiffness, &a.MuscleTensionR,
		&a.Comment, &a.CBCPath, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type AppointmentRepo struct {
	q Querier
}

func (r *AppointmentRepo) Get(ctx context.Context, id int64) (*Appointment, error) {
	sel := sqlb.Select(appointmentColumns...).From(sqlb.Table("appointments")).Where(entsql.EQ("id", id))
	return queryOne(ctx, r.q, sel, scanAppointment)
}

// ListByHorseIDs returns appointments on the given horses, newest first.
func (r *AppointmentRepo) ListByHorseIDs(ctx context.Context, horseIDs []int64) ([]*Appointment, error) {
	if len(horseIDs) == 0 {
		return nil, nil
	}
	sel := sqlb.Select(appointmentColumns...).From(sqlb.Table("appointments")).
		Where(entsql.In("horse_id", idArgs(horseIDs)...)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	return queryAll(ctx, r.q, sel, scanAppointment)
}

func (r *AppointmentRepo) Create(ctx context.Context, a *Appointment) error {
	a.CreatedAt = now()
	id, err := insertReturningID(ctx, r.q, sqlb.Insert("appointments").
		Columns("horse_id", "veterinarian_id",
			"lameness_right_front", "lameness_left_front", "lameness_right_hind", "lameness_left_hind",
			"bpm", "ecg_time",
			"muscle_tension_frequency", "muscle_tension_stiffness", "muscle_tension_r",
			"comment", "cbc_path", "created_at").
		Values(a.HorseID, a.VeterinarianID,
			a.LamenessRightFront, a.LamenessLeftFront, a.LamenessRightHind, a.LamenessLeftHind,
			a.BPM, a.ECGTime,
			a.MuscleTensionFrequency, a.MuscleTensionStiffness, a.MuscleTensionR,
			a.Comment, a.CBCPath, a.CreatedAt))
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (r *AppointmentRepo) Update(ctx context.Context, id int64, ch Changes) error {
	return updateByID(ctx, r.q, "appointments", id, ch)
}

func (r *AppointmentRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.q, "appointments", id)
}

package repo

import (
	"context"
	"encoding/json"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type Measure struct {
	ID             int64
	HorseID        int64
	VeterinarianID *int64
	AppointmentID  *int64
	Date           *time.Time
	UserBW         *int
	UserBCS        *float64
	AlgorithmBW    *float64
	AlgorithmBCS   *float64
	// Coordinates is the raw jsonb point list, nil when absent.
	Coordinates json.RawMessage
	PicturePath *string
	Favorite    bool
}

var measureColumns = []string{
	"id", "horse_id", "veterinarian_id", "appointment_id", "date",
	"user_bw", "user_bcs", "algorithm_bw", "algorithm_bcs",
	"coordinates", "picture_path", "favorite",
}

func scanMeasure(s scanner) (*Measure, error) {
	var (
		m      Measure
		coords []byte
	)
	err := s.Scan(&m.ID, &m.HorseID, &m.VeterinarianID, &m.AppointmentID, &m.Date,
		&m.UserBW, &m.UserBCS, &m.AlgorithmBW, &m.AlgorithmBCS,
		&coords, &m.PicturePath, &m.Favorite)
	if err != nil {
		return nil, err
	}
	if len(coords) > 0 {
		m.Coordinates = json.RawMessage(coords)
	}
	return &m, nil
}

// jsonb travels as text so lib/pq does not send it as bytea.
func jsonbArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

type MeasureRepo struct {
	q Querier
}

func (r *MeasureRepo) Get(ctx context.Context, id int64) (*Measure, error) {
	sel := sqlb.Select(measureColumns...).From(sqlb.Table("measures")).Where(entsql.EQ("id", id))
	return queryOne(ctx, r.q, sel, scanMeasure)
}

// ListByHorseIDs returns measures on the given horses, most recent date first.
func (r *MeasureRepo) ListByHorseIDs(ctx context.Context, horseIDs []int64) ([]*Measure, error) {
	if len(horseIDs) == 0 {
		return nil, nil
	}
	sel := sqlb.Select(measureColumns...).From(sqlb.Table("measures")).
		Where(entsql.In("horse_id", idArgs(horseIDs)...)).
		OrderBy(entsql.Desc("date"), entsql.Desc("id"))
	return queryAll(ctx, r.q, sel, scanMeasure)
}

func (r *MeasureRepo) ListByAppointment(ctx context.Context, appointmentID int64) ([]*Measure, error) {
	sel := sqlb.Select(measureColumns...).From(sqlb.Table("measures")).
		Where(entsql.EQ("appointment_id", appointmentID)).
		OrderBy(entsql.Desc("date"), entsql.Desc("id"))
	return queryAll(ctx, r.q, sel, scanMeasure)
}

func (r *MeasureRepo) Create(ctx context.Context, m *Measure) error {
	id, err := insertReturningID(ctx, r.q, sqlb.Insert("measures").
		Columns("horse_id", "veterinarian_id", "appointment_id", "date",
			"user_bw", "user_bcs", "algorithm_bw", "algorithm_bcs",
			"coordinates", "picture_path", "favorite").
		Values(m.HorseID, m.VeterinarianID, m.AppointmentID, m.Date,
			m.UserBW, m.UserBCS, m.AlgorithmBW, m.AlgorithmBCS,
			jsonbArg(m.Coordinates), m.PicturePath, m.Favorite))
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// SetCoordinates is the Changes entry for the jsonb column.
func SetCoordinates(ch *Changes, raw json.RawMessage) {
	if len(raw) == 0 {
		ch.SetNull("coordinates")
		return
	}
	ch.Set("coordinates", string(raw))
}

func (r *MeasureRepo) Update(ctx context.Context, id int64, ch Changes) error {
	return updateByID(ctx, r.q, "measures", id, ch)
}

func (r *MeasureRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.q, "measures", id)
}

package repo

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type Client struct {
	ID               int64
	Name             string
	Email            *string
	PhoneNumber      *string
	PhoneCountryCode *string
	CreatedAt        time.Time
}

// ClientLink is a client seen through a horse association.
type ClientLink struct {
	Client
	IsOwner bool
}

type ClientHorse struct {
	ClientID int64
	HorseID  int64
	IsOwner  bool
}

var clientColumns = []string{"id", "name", "email", "phone_number", "phone_country_code", "created_at"}

func clientDest(c *Client) []any {
	return []any{&c.ID, &c.Name, &c.Email, &c.PhoneNumber, &c.PhoneCountryCode, &c.CreatedAt}
}

func scanClient(s scanner) (*Client, error) {
	var c Client
	if err := s.Scan(clientDest(&c)...); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanClientLink(s scanner) (*ClientLink, error) {
	var l ClientLink
	if err := s.Scan(append(clientDest(&l.Client), &l.IsOwner)...); err != nil {
		return nil, err
	}
	return &l, nil
}

type ClientRepo struct {
	q Querier
}

func (r *ClientRepo) Get(ctx context.Context, id int64) (*Client, error) {
	sel := sqlb.Select(clientColumns...).From(sqlb.Table("clients")).Where(entsql.EQ("id", id))
	return queryOne(ctx, r.q, sel, scanClient)
}

// ListByHorseIDs returns the distinct clients associated with any of the
// horses, ordered by name.
func (r *ClientRepo) ListByHorseIDs(ctx context.Context, horseIDs []int64) ([]*Client, error) {
	if len(horseIDs) == 0 {
		return nil, nil
	}
	linked := sqlb.Select("client_id").From(sqlb.Table("client_horses")).
		Where(entsql.In("horse_id", idArgs(horseIDs)...))
	sel := sqlb.Select(clientColumns...).From(sqlb.Table("clients")).
		Where(entsql.In("id", linked)).
		OrderBy(entsql.Asc("name"), entsql.Asc("id"))
	return queryAll(ctx, r.q, sel, scanClient)
}

// ListByHorse returns the clients of one horse with the ownership flag.
func (r *ClientRepo) ListByHorse(ctx context.Context, horseID int64) ([]*ClientLink, error) {
	c := sqlb.Table("clients").As("c")
	ch := sqlb.Table("client_horses").As("ch")
	sel := sqlb.Select(append(c.Columns(clientColumns...), ch.C("is_owner"))...).
		From(c).
		Join(ch).On(c.C("id"), ch.C("client_id")).
		Where(entsql.EQ(ch.C("horse_id"), horseID)).
		OrderBy(entsql.Asc(c.C("name")), entsql.Asc(c.C("id")))
	return queryAll(ctx, r.q, sel, scanClientLink)
}

// HorseIDs lists the horses a client is associated with.
func (r *ClientRepo) HorseIDs(ctx context.Context, clientID int64) ([]int64, error) {
	sel := sqlb.Select("horse_id").From(sqlb.Table("client_horses")).
		Where(entsql.EQ("client_id", clientID)).
		OrderBy(entsql.Asc("horse_id"))
	return queryIDs(ctx, r.q, sel)
}

func (r *ClientRepo) Create(ctx context.Context, c *Client) error {
	c.CreatedAt = now()
	id, err := insertReturningID(ctx, r.q, sqlb.Insert("clients").
		Columns("name", "email", "phone_number", "phone_country_code", "created_at").
		Values(c.Name, c.Email, c.PhoneNumber, c.PhoneCountryCode, c.CreatedAt))
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *ClientRepo) Update(ctx context.Context, id int64, ch Changes) error {
	return updateByID(ctx, r.q, "clients", id, ch)
}

func (r *ClientRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.q, "clients", id)
}

type ClientHorseRepo struct {
	q Querier
}

func (r *ClientHorseRepo) Create(ctx context.Context, l ClientHorse) error {
	query, args := sqlb.Insert("client_horses").
		Columns("client_id", "horse_id", "is_owner").
		Values(l.ClientID, l.HorseID, l.IsOwner).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return mapErr(err)
	}
	return nil
}

func (r *ClientHorseRepo) SetOwner(ctx context.Context, clientID, horseID int64, isOwner bool) error {
	query, args := sqlb.Update("client_horses").
		Set("is_owner", isOwner).
		Where(entsql.And(entsql.EQ("client_id", clientID), entsql.EQ("horse_id", horseID))).
		Query()
	return execAffecting(ctx, r.q, query, args)
}

func (r *ClientHorseRepo) Delete(ctx context.Context, clientID, horseID int64) error {
	query, args := sqlb.Delete("client_horses").
		Where(entsql.And(entsql.EQ("client_id", clientID), entsql.EQ("horse_id", horseID))).
		Query()
	return execAffecting(ctx, r.q, query, args)
}

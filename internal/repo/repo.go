// Package repo is the persistence layer. Queries are built with ent's SQL
// builder and executed over database/sql, so the same repositories work on a
// pooled connection or inside a transaction.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/lib/pq"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrConflict   = errors.New("record already exists")
	ErrForeignKey = errors.New("referenced record does not exist")
)

var sqlb = entsql.Dialect(dialect.Postgres)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB groups the repositories over one connection or transaction.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
	slow   time.Duration

	Hospitals     *HospitalRepo
	Veterinarians *VeterinarianRepo
	Horses        *HorseRepo
	Clients       *ClientRepo
	ClientHorses  *ClientHorseRepo
	Appointments  *AppointmentRepo
	Measures      *MeasureRepo
}

// New wraps conn. Queries slower than slow are logged; zero disables it.
func New(conn *sql.DB, logger *slog.Logger, slow time.Duration) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	db := &DB{conn: conn, logger: logger, slow: slow}
	db.bind(conn)
	return db
}

func (db *DB) bind(q Querier) {
	lq := &loggedQuerier{q: q, logger: db.logger, slow: db.slow}
	db.Hospitals = &HospitalRepo{q: lq}
	db.Veterinarians = &VeterinarianRepo{q: lq}
	db.Horses = &HorseRepo{q: lq}
	db.Clients = &ClientRepo{q: lq}
	db.ClientHorses = &ClientHorseRepo{q: lq}
	db.Appointments = &AppointmentRepo{q: lq}
	db.Measures = &MeasureRepo{q: lq}
}

// WithTx runs fn inside a transaction. fn receives repositories bound to the
// transaction; any error or panic rolls it back.
func (db *DB) WithTx(ctx context.Context, fn func(tx *DB) error) (err error) {
	if db.conn == nil {
		// already inside a transaction
		return fn(db)
	}

	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	txDB := &DB{logger: db.logger, slow: db.slow}
	txDB.bind(sqlTx)

	if err := fn(txDB); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping checks the pooled connection.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return nil
	}
	return db.conn.PingContext(ctx)
}

func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Changes collects column assignments for a partial update.
type Changes struct {
	cols []string
	vals []any
	null []bool
}

func (c *Changes) Set(column string, value any) {
	c.cols = append(c.cols, column)
	c.vals = append(c.vals, value)
	c.null = append(c.null, false)
}

func (c *Changes) SetNull(column string) {
	c.cols = append(c.cols, column)
	c.vals = append(c.vals, nil)
	c.null = append(c.null, true)
}

// SetString records a nullable text column from a partial update: nil leaves
// it alone, a blank value clears it, anything else is set when it differs.
func (c *Changes) SetString(column string, next, cur *string) {
	if next == nil {
		return
	}
	v := strings.TrimSpace(*next)
	switch {
	case v == "" && cur != nil:
		c.SetNull(column)
	case v != "" && (cur == nil || *cur != v):
		c.Set(column, v)
	}
}

// SetNullable records a nullable scalar column from a partial update: clear
// nulls a stored value, otherwise next is written when it differs.
func SetNullable[T comparable](c *Changes, column string, next *T, clear bool, cur *T) {
	switch {
	case clear:
		if cur != nil {
			c.SetNull(column)
		}
	case next != nil && (cur == nil || *cur != *next):
		c.Set(column, *next)
	}
}

func (c *Changes) Empty() bool { return len(c.cols) == 0 }

// Columns lists the columns touched, in assignment order.
func (c *Changes) Columns() []string { return c.cols }

func (c *Changes) apply(u *entsql.UpdateBuilder) *entsql.UpdateBuilder {
	for i, col := range c.cols {
		if c.null[i] {
			u = u.SetNull(col)
		} else {
			u = u.Set(col, c.vals[i])
		}
	}
	return u
}

func updateByID(ctx context.Context, q Querier, table string, id int64, ch Changes) error {
	if ch.Empty() {
		return nil
	}
	query, args := ch.apply(sqlb.Update(table)).Where(entsql.EQ("id", id)).Query()
	return execAffecting(ctx, q, query, args)
}

func deleteByID(ctx context.Context, q Querier, table string, id int64) error {
	query, args := sqlb.Delete(table).Where(entsql.EQ("id", id)).Query()
	return execAffecting(ctx, q, query, args)
}

func execAffecting(ctx context.Context, q Querier, query string, args []any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func insertReturningID(ctx context.Context, q Querier, ins *entsql.InsertBuilder) (int64, error) {
	query, args := ins.Returning("id").Query()
	var id int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func queryAll[T any](ctx context.Context, q Querier, sel *entsql.Selector, scan func(scanner) (*T, error)) ([]*T, error) {
	query, args := sel.Query()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func queryOne[T any](ctx context.Context, q Querier, sel *entsql.Selector, scan func(scanner) (*T, error)) (*T, error) {
	query, args := sel.Query()
	v, err := scan(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

func queryIDs(ctx context.Context, q Querier, sel *entsql.Selector) ([]int64, error) {
	query, args := sel.Query()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func idArgs(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrConflict, pqErr.Constraint)
		case "23503":
			return fmt.Errorf("%w: %s", ErrForeignKey, pqErr.Constraint)
		}
	}
	return err
}

func now() time.Time { return time.Now().UTC() }

type loggedQuerier struct {
	q      Querier
	logger *slog.Logger
	slow   time.Duration
}

func (l *loggedQuerier) observe(ctx context.Context, query string, start time.Time) {
	if l.slow <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed >= l.slow {
		l.logger.WarnContext(ctx, "slow query", "query", query, "elapsed_ms", elapsed.Milliseconds())
	}
}

func (l *loggedQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer l.observe(ctx, query, time.Now())
	return l.q.ExecContext(ctx, query, args...)
}

func (l *loggedQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer l.observe(ctx, query, time.Now())
	return l.q.QueryContext(ctx, query, args...)
}

func (l *loggedQuerier) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer l.observe(ctx, query, time.Now())
	return l.q.QueryRowContext(ctx, query, args...)
}

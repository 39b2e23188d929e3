package client

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/internal/service/access"
)

var clientColumns = []string{"id", "name", "email", "phone_number", "phone_country_code", "created_at"}

const (
	ownerQuery   = `SELECT "h"."veterinarian_id", "v"."hospital_id" FROM "horses" AS "h" LEFT JOIN "veterinarians" AS "v"`
	linksQuery   = `SELECT "horse_id" FROM "client_horses" WHERE "client_id" = \$1`
	visibleQuery = `SELECT "h"."id" FROM "horses" AS "h"`
)

func setup(t *testing.T) (Service, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db := repo.New(conn, nil, 0)
	return New(db, access.New(db)), mock
}

func ids(values ...int64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id"})
	for _, v := range values {
		rows.AddRow(v)
	}
	return rows
}

func expectClientVisible(mock sqlmock.Sqlmock, clientID int64) {
	mock.ExpectQuery(linksQuery).WithArgs(clientID).WillReturnRows(ids(5))
	mock.ExpectQuery(visibleQuery).WillReturnRows(ids(5, 6))
}

func expectHorseOwned(mock sqlmock.Sqlmock, horseID int64) {
	mock.ExpectQuery(ownerQuery).WithArgs(horseID).
		WillReturnRows(sqlmock.NewRows([]string{"veterinarian_id", "hospital_id"}).AddRow(7, nil))
}

func clientRow(id int64, name string) *sqlmock.Rows {
	return sqlmock.NewRows(clientColumns).AddRow(id, name, nil, nil, nil, time.Now())
}

func TestCreateWithHorse(t *testing.T) {
	svc, mock := setup(t)

	expectHorseOwned(mock, 5)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "clients"`).WillReturnRows(ids(11))
	mock.ExpectExec(`INSERT INTO "client_horses"`).WithArgs(int64(11), int64(5), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	horseID := int64(5)
	addr := " Joao@Example.com "
	c, err := svc.Create(context.Background(), 7, CreateRequest{Name: "João", Email: &addr, HorseID: &horseID, IsOwner: true})
	require.NoError(t, err)
	assert.Equal(t, int64(11), c.ID)
	assert.Equal(t, "joao@example.com", *c.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithHiddenHorse(t *testing.T) {
	svc, mock := setup(t)

	mock.ExpectQuery(ownerQuery).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"veterinarian_id", "hospital_id"}).AddRow(8, nil))

	horseID := int64(5)
	_, err := svc.Create(context.Background(), 7, CreateRequest{Name: "João", HorseID: &horseID})
	assert.ErrorIs(t, err, ErrHorseNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Create(context.Background(), 7, CreateRequest{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	phone := "912345678"
	_, err = svc.Create(context.Background(), 7, CreateRequest{Name: "João", PhoneNumber: &phone})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGet(t *testing.T) {
	t.Run("visible", func(t *testing.T) {
		svc, mock := setup(t)
		expectClientVisible(mock, 11)
		mock.ExpectQuery(`SELECT .* FROM "clients" WHERE "id" = \$1`).WithArgs(int64(11)).WillReturnRows(clientRow(11, "João"))

		c, err := svc.Get(context.Background(), 7, 11)
		require.NoError(t, err)
		assert.Equal(t, "João", c.Name)
	})

	t.Run("orphan is hidden", func(t *testing.T) {
		svc, mock := setup(t)
		mock.ExpectQuery(linksQuery).WithArgs(int64(11)).WillReturnRows(ids())

		_, err := svc.Get(context.Background(), 7, 11)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateNoChanges(t *testing.T) {
	svc, mock := setup(t)
	expectClientVisible(mock, 11)
	mock.ExpectQuery(`SELECT .* FROM "clients" WHERE "id" = \$1`).WillReturnRows(clientRow(11, "João"))

	name, blank := "João", ""
	_, err := svc.Update(context.Background(), 7, 11, UpdateRequest{Name: &name, Email: &blank})
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddHorse(t *testing.T) {
	t.Run("claims orphan", func(t *testing.T) {
		svc, mock := setup(t)
		expectHorseOwned(mock, 6)
		mock.ExpectQuery(linksQuery).WithArgs(int64(11)).WillReturnRows(ids())
		mock.ExpectQuery(`SELECT .* FROM "clients" WHERE "id" = \$1`).WillReturnRows(clientRow(11, "João"))
		mock.ExpectExec(`INSERT INTO "client_horses"`).WithArgs(int64(11), int64(6), false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, svc.AddHorse(context.Background(), 7, 11, 6, false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate", func(t *testing.T) {
		svc, mock := setup(t)
		expectHorseOwned(mock, 5)
		mock.ExpectQuery(linksQuery).WithArgs(int64(11)).WillReturnRows(ids(5))
		expectClientVisible(mock, 11)
		mock.ExpectExec(`INSERT INTO "client_horses"`).WillReturnError(&pq.Error{Code: "23505"})

		err := svc.AddHorse(context.Background(), 7, 11, 5, true)
		assert.ErrorIs(t, err, ErrAlreadyLinked)
	})
}

func TestSetOwnerMissingLink(t *testing.T) {
	svc, mock := setup(t)
	expectClientVisible(mock, 11)
	expectHorseOwned(mock, 6)
	mock.ExpectExec(`UPDATE "client_horses" SET "is_owner" = \$1`).WithArgs(true, int64(11), int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.SetOwner(context.Background(), 7, 11, 6, true)
	assert.ErrorIs(t, err, ErrLinkNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveHorse(t *testing.T) {
	svc, mock := setup(t)
	expectClientVisible(mock, 11)
	expectHorseOwned(mock, 5)
	mock.ExpectExec(`DELETE FROM "client_horses"`).WithArgs(int64(11), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.RemoveHorse(context.Background(), 7, 11, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package veterinarian

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

var (
	vetColumns = []string{
		"id", "name", "email", "phone_number", "phone_country_code",
		"password_hash", "license_id", "hospital_id", "created_at",
	}
	hospitalColumns = []string{
		"id", "name", "street_name", "street_number", "city", "country",
		"optional_address", "logo_path", "admin_veterinarian_id", "created_at",
	}
)

func setup(t *testing.T) (Service, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db := repo.New(conn, nil, 0)
	return New(db, access.New(db), nil, nil), mock
}

func vetRow(id int64, hospitalID any) *sqlmock.Rows {
	return sqlmock.NewRows(vetColumns).
		AddRow(id, "Ana Lopes", "ana@example.com", nil, nil, "hash", "OMV-1", hospitalID, time.Now())
}

func TestMeLoadsHospital(t *testing.T) {
	svc, mock := setup(t)

	mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).WithArgs(int64(7)).WillReturnRows(vetRow(7, int64(3)))
	mock.ExpectQuery(`SELECT .* FROM "hospitals" WHERE "id" = \$1`).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(hospitalColumns).AddRow(3, "Clinica Norte", nil, nil, "Porto", "PT", nil, nil, 7, time.Now()))

	p, err := svc.Me(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopes", p.Name)
	require.NotNil(t, p.Hospital)
	assert.Equal(t, "Clinica Norte", p.Hospital.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOtherIsNotFound(t *testing.T) {
	svc, mock := setup(t)

	_, err := svc.Get(context.Background(), 7, 8)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("no changes", func(t *testing.T) {
		svc, mock := setup(t)
		mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).WillReturnRows(vetRow(7, nil))

		name := "Ana Lopes"
		_, err := svc.Update(ctx, 7, 7, UpdateRequest{Name: &name})
		assert.ErrorIs(t, err, ErrNoChanges)
	})

	t.Run("rename", func(t *testing.T) {
		svc, mock := setup(t)
		mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).WillReturnRows(vetRow(7, nil))
		mock.ExpectExec(`UPDATE "veterinarians" SET "name" = \$1 WHERE "id" = \$2`).
			WithArgs("Ana Maria", int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).WillReturnRows(
			sqlmock.NewRows(vetColumns).AddRow(7, "Ana Maria", "ana@example.com", nil, nil, "hash", "OMV-1", nil, time.Now()))

		name := "  Ana Maria "
		p, err := svc.Update(ctx, 7, 7, UpdateRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", p.Name)
		assert.Nil(t, p.Hospital)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("email taken", func(t *testing.T) {
		svc, mock := setup(t)
		mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).WillReturnRows(vetRow(7, nil))
		mock.ExpectExec(`UPDATE "veterinarians" SET "email" = \$1 WHERE "id" = \$2`).
			WillReturnError(&pq.Error{Code: "23505"})

		addr := "Other@Example.com"
		_, err := svc.Update(ctx, 7, 7, UpdateRequest{Email: &addr})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("bad email", func(t *testing.T) {
		svc, mock := setup(t)
		mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).WillReturnRows(vetRow(7, nil))

		addr := "nope"
		_, err := svc.Update(ctx, 7, 7, UpdateRequest{Email: &addr})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown hospital", func(t *testing.T) {
		svc, mock := setup(t)
		mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).WillReturnRows(vetRow(7, nil))
		mock.ExpectQuery(`SELECT .* FROM "hospitals" WHERE "id" = \$1`).WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(hospitalColumns))

		hid := int64(99)
		_, err := svc.Update(ctx, 7, 7, UpdateRequest{HospitalID: &hid})
		assert.ErrorIs(t, err, ErrHospitalNotFound)
	})

	t.Run("clear hospital", func(t *testing.T) {
		svc, mock := setup(t)
		mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).WillReturnRows(vetRow(7, int64(3)))
		mock.ExpectExec(`UPDATE "veterinarians" SET "hospital_id" = NULL WHERE "id" = \$1`).
			WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).WillReturnRows(vetRow(7, nil))

		p, err := svc.Update(ctx, 7, 7, UpdateRequest{ClearHospital: true})
		require.NoError(t, err)
		assert.Nil(t, p.HospitalID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("someone else", func(t *testing.T) {
		svc, _ := setup(t)
		name := "X"
		_, err := svc.Update(ctx, 7, 8, UpdateRequest{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	svc, mock := setup(t)

	mock.ExpectQuery(`SELECT "hospital_id" FROM "veterinarians" WHERE "id" = \$1`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"hospital_id"}).AddRow(nil))
	mock.ExpectExec(`DELETE FROM "veterinarians" WHERE "id" = \$1`).WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Delete(context.Background(), 7, 7))
	assert.ErrorIs(t, svc.Delete(context.Background(), 7, 9), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

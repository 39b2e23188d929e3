package hospital

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/pkg/authorize"
	"github.com/iequus/iequus_backend/pkg/media"
)

var hospitalColumns = []string{
	"id", "name", "street_name", "street_number", "city", "country",
	"optional_address", "logo_path", "admin_veterinarian_id", "created_at",
}

type fixture struct {
	mock  sqlmock.Sqlmock
	svc   Service
	authz authorize.IAuthorization
	store *media.Memory
}

func setup(t *testing.T) *fixture {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	e, err := authorize.NewMemoryEnforcer("")
	require.NoError(t, err)
	authz, err := authorize.NewAuthorization(e)
	require.NoError(t, err)
	require.NoError(t, authorize.SeedDefaultPolicies(context.Background(), authz))

	store := media.NewMemory("http://media.test")
	svc := New(Deps{DB: repo.New(conn, nil, 0), Authz: authz, Store: store, MaxImageDim: 64})
	return &fixture{mock: mock, svc: svc, authz: authz, store: store}
}

func pngUpload(t *testing.T) *media.Upload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &media.Upload{Filename: "logo.png", ContentType: "image/png", Content: &buf}
}

func hospitalRow(id int64, name string, logo any) *sqlmock.Rows {
	return sqlmock.NewRows(hospitalColumns).AddRow(id, name, nil, nil, "Porto", "PT", nil, logo, 7, time.Now())
}

func TestCreateGrantsAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.mock.ExpectQuery(`SELECT "hospital_id" FROM "veterinarians" WHERE "id" = \$1`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"hospital_id"}).AddRow(nil))
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`INSERT INTO "hospitals"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	f.mock.ExpectExec(`UPDATE "veterinarians" SET "hospital_id" = \$1 WHERE "id" = \$2`).
		WithArgs(int64(3), int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	city := " Porto "
	h, err := f.svc.Create(ctx, 7, CreateRequest{Name: "Clinica Norte", City: &city, Logo: pngUpload(t)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), h.ID)
	assert.Equal(t, "Porto", *h.City)
	require.NotNil(t, h.LogoPath)
	assert.Equal(t, 1, f.store.Len())

	ok, err := f.authz.Enforce(ctx, authorize.VeterinarianSubject(7), authorize.HospitalDomain(3), authorize.ResourceHospital, authorize.ActionUpdate)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateRollsBackLogo(t *testing.T) {
	f := setup(t)

	f.mock.ExpectQuery(`SELECT "hospital_id" FROM "veterinarians"`).
		WillReturnRows(sqlmock.NewRows([]string{"hospital_id"}).AddRow(nil))
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`INSERT INTO "hospitals"`).WillReturnError(assert.AnError)
	f.mock.ExpectRollback()

	_, err := f.svc.Create(context.Background(), 7, CreateRequest{Name: "Clinica Norte", Logo: pngUpload(t)})
	require.Error(t, err)
	assert.Equal(t, 0, f.store.Len())
}

func TestCreateRequiresName(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(context.Background(), 7, CreateRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateRequiresAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, authorize.AssignHospitalMember(ctx, f.authz, 8, 3))

	name := "New name"
	_, err := f.svc.Update(ctx, 8, 3, UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, authorize.AssignHospitalAdmin(ctx, f.authz, 7, 3))

	t.Run("no changes", func(t *testing.T) {
		f.mock.ExpectQuery(`SELECT .* FROM "hospitals" WHERE "id" = \$1`).WillReturnRows(hospitalRow(3, "Clinica Norte", nil))

		name, city := "Clinica Norte", "Porto"
		_, err := f.svc.Update(ctx, 7, 3, UpdateRequest{Name: &name, City: &city, RemoveLogo: true})
		assert.ErrorIs(t, err, ErrNoChanges)
	})

	t.Run("remove logo", func(t *testing.T) {
		require.NoError(t, f.store.Save(ctx, "hospitals/old.png", bytes.NewReader([]byte("x")), "image/png"))

		f.mock.ExpectQuery(`SELECT .* FROM "hospitals" WHERE "id" = \$1`).WillReturnRows(hospitalRow(3, "Clinica Norte", "hospitals/old.png"))
		f.mock.ExpectExec(`UPDATE "hospitals" SET "logo_path" = NULL WHERE "id" = \$1`).
			WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectQuery(`SELECT .* FROM "hospitals" WHERE "id" = \$1`).WillReturnRows(hospitalRow(3, "Clinica Norte", nil))

		h, err := f.svc.Update(ctx, 7, 3, UpdateRequest{RemoveLogo: true})
		require.NoError(t, err)
		assert.Nil(t, h.LogoPath)
		_, ok := f.store.Get("hospitals/old.png")
		assert.False(t, ok)
	})

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestMembers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Members(ctx, 9, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, authorize.AssignHospitalMember(ctx, f.authz, 9, 3))
	f.mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "hospital_id" = \$1`).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "phone_number", "phone_country_code",
			"password_hash", "license_id", "hospital_id", "created_at",
		}).AddRow(9, "Rui", "rui@example.com", nil, nil, "h", "L", 3, time.Now()))

	vets, err := f.svc.Members(ctx, 9, 3)
	require.NoError(t, err)
	require.Len(t, vets, 1)
	assert.Equal(t, "Rui", vets[0].Name)
}

package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/pkg/email"
	"github.com/iequus/iequus_backend/pkg/token"
	"github.com/iequus/iequus_backend/pkg/util/password"
)

const strongPassword = "correct-Horse-battery-42"

var vetColumns = []string{
	"id", "name", "email", "phone_number", "phone_country_code",
	"password_hash", "license_id", "hospital_id", "created_at",
}

type mailbox struct {
	sent chan email.Message
}

func (m *mailbox) Send(_ context.Context, msg email.Message) error {
	m.sent <- msg
	return nil
}

type fixture struct {
	conn   *sql.DB
	mock   sqlmock.Sqlmock
	svc    Service
	hasher *password.Hasher
	tokens *token.Manager
	mail   *mailbox
	redis  *miniredis.Miniredis
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	hasher := password.NewHasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	tokens, err := token.New(token.Config{Secret: []byte("test-secret"), Issuer: "iequus", TTL: time.Hour})
	require.NoError(t, err)

	mail := &mailbox{sent: make(chan email.Message, 4)}

	svc := New(Deps{
		DB:     repo.New(conn, nil, 0),
		Redis:  rdb,
		Hasher: hasher,
		Policy: password.Policy{MinLength: 8, MinScore: 2},
		Tokens: tokens,
		Mail:   mail,
	})
	return &fixture{conn: conn, mock: mock, svc: svc, hasher: hasher, tokens: tokens, mail: mail, redis: mr}
}

func (f *fixture) vetRow(t *testing.T, id int64, addr, pw string) *sqlmock.Rows {
	hash, err := f.hasher.Hash(pw)
	require.NoError(t, err)
	return sqlmock.NewRows(vetColumns).
		AddRow(id, "Ana Lopes", addr, nil, nil, hash, "OMV-123", nil, time.Now())
}

func (f *fixture) expectMail(t *testing.T) email.Message {
	t.Helper()
	select {
	case m := <-f.mail.sent:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("expected an email")
		return email.Message{}
	}
}

func TestRegister(t *testing.T) {
	f := setup(t)

	f.mock.ExpectQuery(`INSERT INTO "veterinarians"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	vet, err := f.svc.Register(context.Background(), RegisterRequest{
		Name:      " Ana Lopes ",
		Email:     "Ana@Clinic.PT",
		Password:  strongPassword,
		LicenseID: "OMV-123",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), vet.ID)
	assert.Equal(t, "ana@clinic.pt", vet.Email)
	assert.Equal(t, "Ana Lopes", vet.Name)
	assert.NoError(t, f.hasher.Verify(vet.PasswordHash, strongPassword))
	assert.NoError(t, f.mock.ExpectationsWereMet())

	m := f.expectMail(t)
	assert.Equal(t, []string{"ana@clinic.pt"}, m.To)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := setup(t)

	f.mock.ExpectQuery(`INSERT INTO "veterinarians"`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "veterinarians_email_key"})

	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Name: "Ana", Email: "ana@clinic.pt", Password: strongPassword, LicenseID: "OMV-1",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_RejectsBeforeTouchingDatabase(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "ana@clinic.pt", Password: "password1", LicenseID: "x"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = f.svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "not-an-email", Password: strongPassword, LicenseID: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "ana@clinic.pt", Password: strongPassword})
	assert.ErrorIs(t, err, ErrInvalidInput)

	number := "912345678"
	_, err = f.svc.Register(ctx, RegisterRequest{
		Name: "Ana", Email: "ana@clinic.pt", Password: strongPassword, LicenseID: "x", PhoneNumber: &number,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRegister_UnknownHospital(t *testing.T) {
	f := setup(t)
	hospitalID := int64(99)

	f.mock.ExpectQuery(`SELECT .* FROM "hospitals" WHERE "id" = \$1`).
		WithArgs(hospitalID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Name: "Ana", Email: "ana@clinic.pt", Password: strongPassword, LicenseID: "x", HospitalID: &hospitalID,
	})
	assert.ErrorIs(t, err, ErrHospitalNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLogin(t *testing.T) {
	f := setup(t)

	f.mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "email" = \$1`).
		WithArgs("ana@clinic.pt").
		WillReturnRows(f.vetRow(t, 3, "ana@clinic.pt", strongPassword))

	res, err := f.svc.Login(context.Background(), " ANA@clinic.pt", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Veterinarian.ID)

	claims, err := f.tokens.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.VeterinarianID)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < maxLoginAttempts; i++ {
		f.mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "email" = \$1`).
			WithArgs("ana@clinic.pt").
			WillReturnRows(f.vetRow(t, 3, "ana@clinic.pt", strongPassword))

		_, err := f.svc.Login(ctx, "ana@clinic.pt", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := f.svc.Login(ctx, "ana@clinic.pt", strongPassword)
	assert.ErrorIs(t, err, ErrAccountLocked)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	f.redis.FastForward(loginLockWindow + time.Second)
	assert.False(t, f.redis.Exists(redisKeyLoginAttempts("ana@clinic.pt")))
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := setup(t)

	f.mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "email" = \$1`).
		WithArgs("nobody@clinic.pt").
		WillReturnRows(sqlmock.NewRows(vetColumns))

	_, err := f.svc.Login(context.Background(), "nobody@clinic.pt", strongPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	const newPassword = "another-Strong-pass-77"

	t.Run("wrong current password", func(t *testing.T) {
		f := setup(t)
		f.mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).
			WithArgs(int64(3)).
			WillReturnRows(f.vetRow(t, 3, "ana@clinic.pt", strongPassword))

		err := f.svc.ChangePassword(context.Background(), 3, "nope-nope-nope", newPassword)
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("same password", func(t *testing.T) {
		f := setup(t)
		f.mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).
			WithArgs(int64(3)).
			WillReturnRows(f.vetRow(t, 3, "ana@clinic.pt", strongPassword))

		err := f.svc.ChangePassword(context.Background(), 3, strongPassword, strongPassword)
		assert.ErrorIs(t, err, ErrSamePassword)
	})

	t.Run("too short", func(t *testing.T) {
		f := setup(t)
		f.mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).
			WithArgs(int64(3)).
			WillReturnRows(f.vetRow(t, 3, "ana@clinic.pt", strongPassword))

		err := f.svc.ChangePassword(context.Background(), 3, strongPassword, "x1!")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("success", func(t *testing.T) {
		f := setup(t)
		f.mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).
			WithArgs(int64(3)).
			WillReturnRows(f.vetRow(t, 3, "ana@clinic.pt", strongPassword))
		f.mock.ExpectExec(`UPDATE "veterinarians" SET "password_hash" = \$1 WHERE "id" = \$2`).
			WithArgs(sqlmock.AnyArg(), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, f.svc.ChangePassword(context.Background(), 3, strongPassword, newPassword))
		assert.NoError(t, f.mock.ExpectationsWereMet())

		m := f.expectMail(t)
		assert.Contains(t, m.Subject, "password was changed")
	})
}

func TestAuthenticate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	raw, _, err := f.tokens.Issue(8)
	require.NoError(t, err)

	f.mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(vetColumns))
	_, err = f.svc.Authenticate(ctx, raw)
	assert.ErrorIs(t, err, ErrUnauthorized)

	f.mock.ExpectQuery(`SELECT .* FROM "veterinarians" WHERE "id" = \$1`).
		WithArgs(int64(8)).
		WillReturnRows(f.vetRow(t, 8, "rui@clinic.pt", strongPassword))
	id, err := f.svc.Authenticate(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)
}

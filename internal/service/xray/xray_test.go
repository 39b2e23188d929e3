package xray

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/internal/service/access"
	"github.com/iequus/iequus_backend/pkg/media"
)

const ownerQuery = `SELECT "h"."veterinarian_id", "v"."hospital_id" FROM "horses" AS "h" LEFT JOIN "veterinarians" AS "v"`

func setup(t *testing.T) (Service, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db := repo.New(conn, nil, 0)
	return New(access.New(db), media.NewMemory("http://media.test"), nil), mock
}

func picture(t *testing.T) *media.Upload {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	return &media.Upload{Filename: "xray.png", Content: &buf}
}

func TestAnalyze(t *testing.T) {
	svc, mock := setup(t)
	mock.ExpectQuery(ownerQuery).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"veterinarian_id", "hospital_id"}).AddRow(7, nil))

	res, err := svc.Analyze(context.Background(), 7, 5, picture(t))
	require.NoError(t, err)
	assert.Equal(t, "http://media.test/xray/XRay_Random.png", res.ImageURL)
	assert.Len(t, res.Landmarks, 7)

	p1 := res.Landmarks["409,621"]
	assert.Equal(t, "Falange proximal (P1)", p1.Label)
	assert.Equal(t, "Location of Falange proximal (P1)", p1.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyzeRejects(t *testing.T) {
	svc, mock := setup(t)
	ctx := context.Background()

	_, err := svc.Analyze(ctx, 7, 5, &media.Upload{Filename: "x.png", Content: strings.NewReader("nope")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Analyze(ctx, 7, 0, picture(t))
	assert.ErrorIs(t, err, ErrInvalidInput)

	mock.ExpectQuery(ownerQuery).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"veterinarian_id", "hospital_id"}).AddRow(8, nil))
	_, err = svc.Analyze(ctx, 7, 5, picture(t))
	assert.ErrorIs(t, err, ErrHorseNotFound)
}

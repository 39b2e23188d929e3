package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/internal/service/appointment"
	"github.com/iequus/iequus_backend/internal/service/horse"
	"github.com/iequus/iequus_backend/internal/service/measure"
	"github.com/iequus/iequus_backend/pkg/media"
	"github.com/iequus/iequus_backend/pkg/reqctx"
)

const testVetID = int64(7)

// withVet stands in for the auth middleware.
func withVet(c fiber.Ctx) error {
	c.SetContext(reqctx.WithVeterinarianID(c.Context(), testVetID))
	return c.Next()
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeHorses struct {
	horse.Service

	create    horse.CreateRequest
	update    horse.UpdateRequest
	requester int64
	content   map[horse.ImageKind]string
	err       error
}

func (f *fakeHorses) Create(_ context.Context, requesterID int64, req horse.CreateRequest) (*repo.Horse, error) {
	f.requester = requesterID
	f.create = req
	f.content = map[horse.ImageKind]string{}
	for k, u := range req.Images {
		b, _ := io.ReadAll(u.Content)
		f.content[k] = string(b)
	}
	if f.err != nil {
		return nil, f.err
	}
	key := "horses/horse_profile/1_profile.png"
	return &repo.Horse{ID: 1, Name: req.Name, ProfilePicturePath: &key, VeterinarianID: &requesterID}, nil
}

func (f *fakeHorses) Get(_ context.Context, requesterID, id int64) (*repo.Horse, error) {
	f.requester = requesterID
	if f.err != nil {
		return nil, f.err
	}
	bd := time.Date(2015, 4, 2, 0, 0, 0, 0, time.UTC)
	return &repo.Horse{ID: id, Name: "Trovão", BirthDate: &bd}, nil
}

func (f *fakeHorses) Update(_ context.Context, requesterID, id int64, req horse.UpdateRequest) (*repo.Horse, error) {
	f.requester = requesterID
	f.update = req
	if f.err != nil {
		return nil, f.err
	}
	return &repo.Horse{ID: id, Name: "Trovão"}, nil
}

type fakeMeasures struct {
	measure.Service

	create measure.CreateRequest
	update measure.UpdateRequest
	err    error
}

func (f *fakeMeasures) Create(_ context.Context, _ int64, req measure.CreateRequest) (*repo.Measure, error) {
	f.create = req
	if f.err != nil {
		return nil, f.err
	}
	return &repo.Measure{ID: 3, HorseID: req.HorseID, Coordinates: json.RawMessage(`[{"x":1,"y":2}]`)}, nil
}

func (f *fakeMeasures) Update(_ context.Context, _ int64, id int64, req measure.UpdateRequest) (*repo.Measure, error) {
	f.update = req
	if f.err != nil {
		return nil, f.err
	}
	return &repo.Measure{ID: id, HorseID: 1}, nil
}

// ---------------------------------------------------------------------------
// Horses
// ---------------------------------------------------------------------------

func horseApp(svc horse.Service) *fiber.App {
	app := fiber.New()
	h := NewHorseHandler(svc, media.NewMemory("http://api.test/static"))
	app.Post("/horse", withVet, h.Create)
	app.Get("/horse/:id", withVet, h.Get)
	app.Put("/horse/:id", withVet, h.Update)
	return app
}

func TestHorseCreateMultipart(t *testing.T) {
	svc := &fakeHorses{}
	app := horseApp(svc)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("name", "Trovão"))
	require.NoError(t, w.WriteField("birthDate", "2015-04-02"))
	part, err := w.CreateFormFile("profilePicture", "trovao.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg bytes"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/horse", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	assert.Equal(t, testVetID, svc.requester)
	assert.Equal(t, "Trovão", svc.create.Name)
	require.NotNil(t, svc.create.BirthDate)
	assert.Equal(t, "2015-04-02", *svc.create.BirthDate)
	assert.Equal(t, "jpeg bytes", svc.content[horse.ImageProfile])
	assert.Len(t, svc.create.Images, 1)

	out := decode(t, resp)
	assert.Equal(t, "http://api.test/static/horses/horse_profile/1_profile.png", out["profilePicture"])
	assert.Nil(t, out["pictureLeftHind"])
}

func TestHorseGetDateAndNotFound(t *testing.T) {
	svc := &fakeHorses{}
	app := horseApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/horse/5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "2015-04-02", decode(t, resp)["birthDate"])

	svc.err = horse.ErrNotFound
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/horse/5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "horse not found", decode(t, resp)["error"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/horse/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHorseUpdateJSON(t *testing.T) {
	t.Run("partial fields and remove flags", func(t *testing.T) {
		svc := &fakeHorses{}
		app := horseApp(svc)

		req := httptest.NewRequest(http.MethodPut, "/horse/5",
			strings.NewReader(`{"birthDate": null, "remove_pictureLeftHind": true}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		assert.Nil(t, svc.update.Name)
		require.NotNil(t, svc.update.BirthDate)
		assert.Equal(t, "", *svc.update.BirthDate)
		assert.Equal(t, map[horse.ImageKind]bool{horse.ImageLeftHind: true}, svc.update.Remove)
		assert.Empty(t, svc.update.Images)
	})

	t.Run("no changes", func(t *testing.T) {
		svc := &fakeHorses{err: horse.ErrNoChanges}
		app := horseApp(svc)

		req := httptest.NewRequest(http.MethodPut, "/horse/5", strings.NewReader(`{"name": "Trovão"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, msgNoChanges, decode(t, resp)["message"])
	})

	t.Run("bad flag", func(t *testing.T) {
		svc := &fakeHorses{}
		app := horseApp(svc)

		req := httptest.NewRequest(http.MethodPut, "/horse/5", strings.NewReader(`{"remove_profilePicture": "maybe"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := &fakeHorses{}
		app := horseApp(svc)

		req := httptest.NewRequest(http.MethodPut, "/horse/5", strings.NewReader(`{"name":`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

// ---------------------------------------------------------------------------
// Measures
// ---------------------------------------------------------------------------

func measureApp(svc measure.Service) *fiber.App {
	app := fiber.New()
	h := NewMeasureHandler(svc, media.NewMemory("http://api.test/static"))
	app.Post("/measure", withVet, h.Create)
	app.Put("/measure/:id", withVet, h.Update)
	return app
}

func TestMeasureCreateCoordinates(t *testing.T) {
	svc := &fakeMeasures{}
	app := measureApp(svc)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("horseId", "4"))
	require.NoError(t, w.WriteField("userBCS", "5.5"))
	require.NoError(t, w.WriteField("favorite", "true"))
	require.NoError(t, w.WriteField("coordinates", `[{"x": 1, "y": 2}, {"x": 3.5, "y": 4}]`))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/measure", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	assert.Equal(t, int64(4), svc.create.HorseID)
	require.NotNil(t, svc.create.UserBCS)
	assert.InDelta(t, 5.5, *svc.create.UserBCS, 1e-9)
	assert.True(t, svc.create.Favorite)
	require.Len(t, svc.create.Coordinates, 2)
	assert.InDelta(t, 3.5, svc.create.Coordinates[1].X, 1e-9)

	out := decode(t, resp)
	assert.Equal(t, []any{map[string]any{"x": float64(1), "y": float64(2)}}, out["coordinates"])
}

func TestMeasureUpdateJSON(t *testing.T) {
	t.Run("coordinates as a JSON array and appointment cleared", func(t *testing.T) {
		svc := &fakeMeasures{}
		app := measureApp(svc)

		req := httptest.NewRequest(http.MethodPut, "/measure/3",
			strings.NewReader(`{"coordinates": [{"x": 10, "y": 20}], "appointmentId": "", "favorite": false}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		require.NotNil(t, svc.update.Coordinates)
		assert.Len(t, *svc.update.Coordinates, 1)
		assert.True(t, svc.update.ClearAppointment)
		assert.Nil(t, svc.update.AppointmentID)
		require.NotNil(t, svc.update.Favorite)
		assert.False(t, *svc.update.Favorite)
	})

	t.Run("absent coordinates stay untouched", func(t *testing.T) {
		svc := &fakeMeasures{}
		app := measureApp(svc)

		req := httptest.NewRequest(http.MethodPut, "/measure/3", strings.NewReader(`{"userBW": 480}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Nil(t, svc.update.Coordinates)
		require.NotNil(t, svc.update.UserBW)
		assert.Equal(t, 480, *svc.update.UserBW)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		svc := &fakeMeasures{}
		app := measureApp(svc)

		req := httptest.NewRequest(http.MethodPut, "/measure/3", strings.NewReader(`{"coordinates": "A1"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("incomplete points are rejected", func(t *testing.T) {
		for _, body := range []string{
			`{"coordinates": [{"x": 1}, {"x": 2, "y": 3}]}`,
			`{"coordinates": [{"x": 1, "y": 2}, null]}`,
		} {
			svc := &fakeMeasures{}
			app := measureApp(svc)

			req := httptest.NewRequest(http.MethodPut, "/measure/3", strings.NewReader(body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, body)
			assert.Nil(t, svc.update.Coordinates)
		}
	})

	t.Run("blank estimates clear them", func(t *testing.T) {
		svc := &fakeMeasures{}
		app := measureApp(svc)

		req := httptest.NewRequest(http.MethodPut, "/measure/3", strings.NewReader(`{"userBW": "", "userBCS": null}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Nil(t, svc.update.UserBW)
		assert.True(t, svc.update.ClearUserBW)
		assert.True(t, svc.update.ClearUserBCS)
	})

	t.Run("prediction failure is a 500", func(t *testing.T) {
		svc := &fakeMeasures{err: measure.ErrPredictionFailed}
		app := measureApp(svc)

		req := httptest.NewRequest(http.MethodPut, "/measure/3", strings.NewReader(`{"userBW": 480}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "internal server error", decode(t, resp)["error"])
	})
}

// ---------------------------------------------------------------------------
// Appointments
// ---------------------------------------------------------------------------

type fakeAppointments struct {
	appointment.Service

	update appointment.UpdateRequest
}

func (f *fakeAppointments) Update(_ context.Context, requesterID, id int64, req appointment.UpdateRequest) (*repo.Appointment, error) {
	f.update = req
	return &repo.Appointment{ID: id, HorseID: 5, VeterinarianID: requesterID}, nil
}

func TestAppointmentUpdateBlankNumbersClear(t *testing.T) {
	svc := &fakeAppointments{}
	app := fiber.New()
	h := NewAppointmentHandler(svc, media.NewMemory("http://api.test/static"))
	app.Put("/appointment/:id", withVet, h.Update)

	req := httptest.NewRequest(http.MethodPut, "/appointment/21",
		strings.NewReader(`{"bpm": "", "lamenessLeftHind": null, "ecgTime": 12}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, map[appointment.NumericField]bool{
		appointment.FieldBPM:              true,
		appointment.FieldLamenessLeftHind: true,
	}, svc.update.Clear)
	assert.Nil(t, svc.update.BPM)
	require.NotNil(t, svc.update.ECGTime)
	assert.Equal(t, 12, *svc.update.ECGTime)
}

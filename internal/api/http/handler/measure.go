package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/service/measure"
	"github.com/iequus/iequus_backend/pkg/media"
)

type MeasureHandler struct {
	svc   measure.Service
	store media.Store
}

func NewMeasureHandler(svc measure.Service, store media.Store) *MeasureHandler {
	return &MeasureHandler{svc: svc, store: store}
}

// POST /measure
func (h *MeasureHandler) Create(c fiber.Ctx) error {
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	defer f.close()

	points, _ := f.points("coordinates")
	req := measure.CreateRequest{
		HorseID:       f.id("horseId"),
		AppointmentID: f.optID("appointmentId"),
		Date:          f.optString("date"),
		UserBW:        f.optInt("userBW"),
		UserBCS:       f.optFloat("userBCS"),
		Coordinates:   points,
		Favorite:      f.boolean("favorite"),
		Picture:       f.upload("picture"),
	}
	if err := f.err(); err != nil {
		return badRequest(c, err.Error())
	}

	vetID, _ := requester(c)
	m, err := h.svc.Create(c.Context(), vetID, req)
	if err != nil {
		return mapMeasureError(c, err)
	}
	return created(c, newMeasureView(h.store, m))
}

// GET /measures
func (h *MeasureHandler) List(c fiber.Ctx) error {
	vetID, _ := requester(c)
	ms, err := h.svc.List(c.Context(), vetID)
	if err != nil {
		return mapMeasureError(c, err)
	}
	return ok(c, newMeasureViews(h.store, ms))
}

// GET /measures/horse/:horseId
func (h *MeasureHandler) ListByHorse(c fiber.Ctx) error {
	horseID, err := pathID(c, "horseId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	ms, err := h.svc.ListByHorse(c.Context(), vetID, horseID)
	if err != nil {
		return mapMeasureError(c, err)
	}
	return ok(c, newMeasureViews(h.store, ms))
}

// GET /measures/appointment/:appointmentId
func (h *MeasureHandler) ListByAppointment(c fiber.Ctx) error {
	apptID, err := pathID(c, "appointmentId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	ms, err := h.svc.ListByAppointment(c.Context(), vetID, apptID)
	if err != nil {
		return mapMeasureError(c, err)
	}
	return ok(c, newMeasureViews(h.store, ms))
}

// GET /measure/:id
func (h *MeasureHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	m, err := h.svc.Get(c.Context(), vetID, id)
	if err != nil {
		return mapMeasureError(c, err)
	}
	return ok(c, newMeasureView(h.store, m))
}

// PUT /measure/:id
func (h *MeasureHandler) Update(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	defer f.close()

	req := measure.UpdateRequest{
		AppointmentID:    f.optID("appointmentId"),
		ClearAppointment: f.blank("appointmentId"),
		Date:             f.optString("date"),
		UserBW:           f.optInt("userBW"),
		UserBCS:          f.optFloat("userBCS"),
		ClearUserBW:      f.blank("userBW"),
		ClearUserBCS:     f.blank("userBCS"),
		Favorite:         f.optBool("favorite"),
		Picture:          f.upload("picture"),
		RemovePicture:    f.remove("picture"),
	}
	if points, present := f.points("coordinates"); present {
		req.Coordinates = &points
	}
	if err := f.err(); err != nil {
		return badRequest(c, err.Error())
	}

	vetID, _ := requester(c)
	m, err := h.svc.Update(c.Context(), vetID, id, req)
	if err != nil {
		return mapMeasureError(c, err)
	}
	return ok(c, newMeasureView(h.store, m))
}

// DELETE /measure/:id
func (h *MeasureHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	if err := h.svc.Delete(c.Context(), vetID, id); err != nil {
		return mapMeasureError(c, err)
	}
	return message(c, "Measure deleted successfully.")
}

func mapMeasureError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, measure.ErrNoChanges):
		return noChanges(c)
	case errors.Is(err, measure.ErrInvalidInput):
		return badRequest(c, err.Error())
	case errors.Is(err, measure.ErrNotFound),
		errors.Is(err, measure.ErrHorseNotFound),
		errors.Is(err, measure.ErrAppointmentNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c, err)
	}
}

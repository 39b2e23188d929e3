package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/service/appointment"
	"github.com/iequus/iequus_backend/pkg/media"
)

type AppointmentHandler struct {
	svc   appointment.Service
	store media.Store
}

func NewAppointmentHandler(svc appointment.Service, store media.Store) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, store: store}
}

// numericFields maps the nullable numeric form fields of an appointment.
var numericFields = map[string]appointment.NumericField{
	"lamenessRightFront": appointment.FieldLamenessRightFront,
	"lamenessLeftFront":  appointment.FieldLamenessLeftFront,
	"lamenessRightHind":  appointment.FieldLamenessRightHind,
	"lamenessLeftHind":   appointment.FieldLamenessLeftHind,
	"bpm":                appointment.FieldBPM,
	"ecgTime":            appointment.FieldECGTime,
}

func clinicalFields(f *form) appointment.Clinical {
	return appointment.Clinical{
		LamenessRightFront:     f.optInt("lamenessRightFront"),
		LamenessLeftFront:      f.optInt("lamenessLeftFront"),
		LamenessRightHind:      f.optInt("lamenessRightHind"),
		LamenessLeftHind:       f.optInt("lamenessLeftHind"),
		BPM:                    f.optInt("bpm"),
		ECGTime:                f.optInt("ecgTime"),
		MuscleTensionFrequency: f.optString("muscleTensionFrequency"),
		MuscleTensionStiffness: f.optString("muscleTensionStiffness"),
		MuscleTensionR:         f.optString("muscleTensionR"),
		Comment:                f.optString("comment"),
	}
}

// POST /appointment
func (h *AppointmentHandler) Create(c fiber.Ctx) error {
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	defer f.close()

	req := appointment.CreateRequest{
		HorseID:  f.id("horseId"),
		Clinical: clinicalFields(f),
		CBC:      f.upload("cbc"),
	}
	if err := f.err(); err != nil {
		return badRequest(c, err.Error())
	}

	vetID, _ := requester(c)
	a, err := h.svc.Create(c.Context(), vetID, req)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return created(c, newAppointmentView(h.store, a))
}

// GET /appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	vetID, _ := requester(c)
	as, err := h.svc.List(c.Context(), vetID)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, newAppointmentViews(h.store, as))
}

// GET /appointments/horse/:horseId
func (h *AppointmentHandler) ListByHorse(c fiber.Ctx) error {
	horseID, err := pathID(c, "horseId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	as, err := h.svc.ListByHorse(c.Context(), vetID, horseID)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, newAppointmentViews(h.store, as))
}

// GET /appointment/:id
func (h *AppointmentHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	a, err := h.svc.Get(c.Context(), vetID, id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, newAppointmentView(h.store, a))
}

// PUT /appointment/:id
func (h *AppointmentHandler) Update(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	defer f.close()

	req := appointment.UpdateRequest{
		HorseID:        f.optID("horseId"),
		VeterinarianID: f.optID("veterinarianId"),
		Clinical:       clinicalFields(f),
		Clear:          map[appointment.NumericField]bool{},
		CBC:            f.upload("cbc"),
		RemoveCBC:      f.remove("cbc"),
	}
	for key, field := range numericFields {
		if f.blank(key) {
			req.Clear[field] = true
		}
	}
	if err := f.err(); err != nil {
		return badRequest(c, err.Error())
	}

	vetID, _ := requester(c)
	a, err := h.svc.Update(c.Context(), vetID, id, req)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, newAppointmentView(h.store, a))
}

// DELETE /appointment/:id
func (h *AppointmentHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	if err := h.svc.Delete(c.Context(), vetID, id); err != nil {
		return mapAppointmentError(c, err)
	}
	return message(c, "Appointment deleted successfully.")
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, appointment.ErrNoChanges):
		return noChanges(c)
	case errors.Is(err, appointment.ErrInvalidInput),
		errors.Is(err, appointment.ErrImmutableField),
		errors.Is(err, appointment.ErrUnsupportedFormat):
		return badRequest(c, err.Error())
	case errors.Is(err, appointment.ErrNotFound),
		errors.Is(err, appointment.ErrHorseNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c, err)
	}
}

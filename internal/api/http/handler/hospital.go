package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/service/hospital"
	"github.com/iequus/iequus_backend/pkg/media"
)

type HospitalHandler struct {
	svc   hospital.Service
	store media.Store
}

func NewHospitalHandler(svc hospital.Service, store media.Store) *HospitalHandler {
	return &HospitalHandler{svc: svc, store: store}
}

// GET /hospitals
func (h *HospitalHandler) List(c fiber.Ctx) error {
	hs, err := h.svc.List(c.Context())
	if err != nil {
		return mapHospitalError(c, err)
	}
	return ok(c, newHospitalViews(h.store, hs))
}

// GET /hospital/:id
func (h *HospitalHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	hosp, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapHospitalError(c, err)
	}
	return ok(c, newHospitalView(h.store, hosp))
}

// POST /hospital
func (h *HospitalHandler) Create(c fiber.Ctx) error {
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	defer f.close()

	req := hospital.CreateRequest{
		Name:            f.str("name"),
		StreetName:      f.optString("streetName"),
		StreetNumber:    f.optString("streetNumber"),
		City:            f.optString("city"),
		Country:         f.optString("country"),
		OptionalAddress: f.optString("optionalAddress"),
		Logo:            f.upload("logo"),
	}
	if err := f.err(); err != nil {
		return badRequest(c, err.Error())
	}

	vetID, _ := requester(c)
	hosp, err := h.svc.Create(c.Context(), vetID, req)
	if err != nil {
		return mapHospitalError(c, err)
	}
	return created(c, newHospitalView(h.store, hosp))
}

// PUT /hospital/:id
func (h *HospitalHandler) Update(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	defer f.close()

	req := hospital.UpdateRequest{
		Name:            f.optString("name"),
		StreetName:      f.optString("streetName"),
		StreetNumber:    f.optString("streetNumber"),
		City:            f.optString("city"),
		Country:         f.optString("country"),
		OptionalAddress: f.optString("optionalAddress"),
		Logo:            f.upload("logo"),
		RemoveLogo:      f.remove("logo"),
	}
	if err := f.err(); err != nil {
		return badRequest(c, err.Error())
	}

	vetID, _ := requester(c)
	hosp, err := h.svc.Update(c.Context(), vetID, id, req)
	if err != nil {
		return mapHospitalError(c, err)
	}
	return ok(c, newHospitalView(h.store, hosp))
}

// GET /hospital/:id/veterinarians
func (h *HospitalHandler) Members(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	vets, err := h.svc.Members(c.Context(), vetID, id)
	if err != nil {
		return mapHospitalError(c, err)
	}
	return ok(c, newVetViews(vets))
}

func mapHospitalError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, hospital.ErrNoChanges):
		return noChanges(c)
	case errors.Is(err, hospital.ErrInvalidInput):
		return badRequest(c, err.Error())
	case errors.Is(err, hospital.ErrNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c, err)
	}
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/service/veterinarian"
	"github.com/iequus/iequus_backend/pkg/media"
)

type VeterinarianHandler struct {
	svc   veterinarian.Service
	store media.Store
}

func NewVeterinarianHandler(svc veterinarian.Service, store media.Store) *VeterinarianHandler {
	return &VeterinarianHandler{svc: svc, store: store}
}

func (h *VeterinarianHandler) profile(p *veterinarian.Profile) vetView {
	v := newVetView(p.Veterinarian)
	if p.Hospital != nil {
		hv := newHospitalView(h.store, p.Hospital)
		v.Hospital = &hv
	}
	return v
}

// GET /veterinarian
func (h *VeterinarianHandler) Me(c fiber.Ctx) error {
	vetID, _ := requester(c)
	p, err := h.svc.Me(c.Context(), vetID)
	if err != nil {
		return mapVeterinarianError(c, err)
	}
	return ok(c, h.profile(p))
}

// GET /veterinarian/:id
func (h *VeterinarianHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	p, err := h.svc.Get(c.Context(), vetID, id)
	if err != nil {
		return mapVeterinarianError(c, err)
	}
	return ok(c, h.profile(p))
}

// PUT /veterinarian/:id
func (h *VeterinarianHandler) Update(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	req := veterinarian.UpdateRequest{
		Name:             f.optString("name"),
		Email:            f.optString("email"),
		PhoneNumber:      f.optString("phoneNumber"),
		PhoneCountryCode: f.optString("phoneCountryCode"),
		LicenseID:        f.optString("licenseId"),
		HospitalID:       f.optID("hospitalId"),
		ClearHospital:    f.blank("hospitalId"),
	}
	if err := f.err(); err != nil {
		return badRequest(c, err.Error())
	}

	vetID, _ := requester(c)
	p, err := h.svc.Update(c.Context(), vetID, id, req)
	if err != nil {
		return mapVeterinarianError(c, err)
	}
	return ok(c, h.profile(p))
}

// DELETE /veterinarian/:id
func (h *VeterinarianHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	if err := h.svc.Delete(c.Context(), vetID, id); err != nil {
		return mapVeterinarianError(c, err)
	}
	return message(c, "Veterinarian deleted successfully.")
}

// GET /veterinarians
func (h *VeterinarianHandler) List(c fiber.Ctx) error {
	vetID, _ := requester(c)
	vets, err := h.svc.Colleagues(c.Context(), vetID)
	if err != nil {
		return mapVeterinarianError(c, err)
	}
	return ok(c, newVetViews(vets))
}

func mapVeterinarianError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, veterinarian.ErrNoChanges):
		return noChanges(c)
	case errors.Is(err, veterinarian.ErrInvalidInput):
		return badRequest(c, err.Error())
	case errors.Is(err, veterinarian.ErrNotFound),
		errors.Is(err, veterinarian.ErrHospitalNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, veterinarian.ErrEmailTaken):
		return conflict(c, err.Error())
	default:
		return internalError(c, err)
	}
}

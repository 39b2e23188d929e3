package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/service/xray"
)

type XRayHandler struct {
	svc xray.Service
}

func NewXRayHandler(svc xray.Service) *XRayHandler {
	return &XRayHandler{svc: svc}
}

// POST /xray
func (h *XRayHandler) Analyze(c fiber.Ctx) error {
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	defer f.close()

	horseID := f.id("horseId")
	picture := f.upload("picture")
	if err := f.err(); err != nil {
		return badRequest(c, err.Error())
	}

	vetID, _ := requester(c)
	res, err := h.svc.Analyze(c.Context(), vetID, horseID, picture)
	if err != nil {
		return mapXRayError(c, err)
	}
	return ok(c, fiber.Map{
		"horseId":   res.HorseID,
		"image":     res.ImageURL,
		"landmarks": res.Landmarks,
	})
}

func mapXRayError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, xray.ErrInvalidInput):
		return badRequest(c, err.Error())
	case errors.Is(err, xray.ErrHorseNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c, err)
	}
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/service/horse"
	"github.com/iequus/iequus_backend/pkg/media"
)

// horseImageFields maps the multipart field of each horse picture.
var horseImageFields = map[horse.ImageKind]string{
	horse.ImageProfile:    "profilePicture",
	horse.ImageRightFront: "pictureRightFront",
	horse.ImageLeftFront:  "pictureLeftFront",
	horse.ImageRightHind:  "pictureRightHind",
	horse.ImageLeftHind:   "pictureLeftHind",
}

type HorseHandler struct {
	svc   horse.Service
	store media.Store
}

func NewHorseHandler(svc horse.Service, store media.Store) *HorseHandler {
	return &HorseHandler{svc: svc, store: store}
}

func horseImages(f *form) map[horse.ImageKind]*media.Upload {
	images := map[horse.ImageKind]*media.Upload{}
	for kind, field := range horseImageFields {
		if u := f.upload(field); u != nil {
			images[kind] = u
		}
	}
	return images
}

// POST /horse
func (h *HorseHandler) Create(c fiber.Ctx) error {
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	defer f.close()

	req := horse.CreateRequest{
		Name:      f.str("name"),
		BirthDate: f.optString("birthDate"),
		Images:    horseImages(f),
	}
	if err := f.err(); err != nil {
		return badRequest(c, err.Error())
	}

	vetID, _ := requester(c)
	hr, err := h.svc.Create(c.Context(), vetID, req)
	if err != nil {
		return mapHorseError(c, err)
	}
	return created(c, newHorseView(h.store, hr))
}

// GET /horses
func (h *HorseHandler) List(c fiber.Ctx) error {
	vetID, _ := requester(c)
	hs, err := h.svc.List(c.Context(), vetID)
	if err != nil {
		return mapHorseError(c, err)
	}
	return ok(c, newHorseViews(h.store, hs))
}

// GET /horse/:id
func (h *HorseHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	hr, err := h.svc.Get(c.Context(), vetID, id)
	if err != nil {
		return mapHorseError(c, err)
	}
	return ok(c, newHorseView(h.store, hr))
}

// PUT /horse/:id
func (h *HorseHandler) Update(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	defer f.close()

	req := horse.UpdateRequest{
		Name:      f.optString("name"),
		BirthDate: f.optString("birthDate"),
		Images:    horseImages(f),
		Remove:    map[horse.ImageKind]bool{},
	}
	for kind, field := range horseImageFields {
		if f.remove(field) {
			req.Remove[kind] = true
		}
	}
	if err := f.err(); err != nil {
		return badRequest(c, err.Error())
	}

	vetID, _ := requester(c)
	hr, err := h.svc.Update(c.Context(), vetID, id, req)
	if err != nil {
		return mapHorseError(c, err)
	}
	return ok(c, newHorseView(h.store, hr))
}

// DELETE /horse/:id
func (h *HorseHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	if err := h.svc.Delete(c.Context(), vetID, id); err != nil {
		return mapHorseError(c, err)
	}
	return message(c, "Horse deleted successfully.")
}

// GET /horse/:id/clients
func (h *HorseHandler) Clients(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	links, err := h.svc.Clients(c.Context(), vetID, id)
	if err != nil {
		return mapHorseError(c, err)
	}
	return ok(c, newClientLinkViews(links))
}

// GET /horse/:id/measures/export
func (h *HorseHandler) ExportMeasures(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	exp, err := h.svc.ExportMeasures(c.Context(), vetID, id)
	if err != nil {
		return mapHorseError(c, err)
	}
	c.Attachment(exp.FileName)
	c.Set(fiber.HeaderContentType, exp.ContentType)
	return c.Send(exp.Content)
}

func mapHorseError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, horse.ErrNoChanges):
		return noChanges(c)
	case errors.Is(err, horse.ErrInvalidInput):
		return badRequest(c, err.Error())
	case errors.Is(err, horse.ErrNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c, err)
	}
}

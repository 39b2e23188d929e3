package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/service/client"
	"github.com/iequus/iequus_backend/pkg/media"
)

var errHorseIDRequired = fmt.Errorf("%w: horseId is required", client.ErrInvalidInput)

type ClientHandler struct {
	svc   client.Service
	store media.Store
}

func NewClientHandler(svc client.Service, store media.Store) *ClientHandler {
	return &ClientHandler{svc: svc, store: store}
}

// POST /client
func (h *ClientHandler) Create(c fiber.Ctx) error {
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	req := client.CreateRequest{
		Name:             f.str("name"),
		Email:            f.optString("email"),
		PhoneNumber:      f.optString("phoneNumber"),
		PhoneCountryCode: f.optString("phoneCountryCode"),
		HorseID:          f.optID("horseId"),
		IsOwner:          f.boolean("isOwner"),
	}
	if err := f.err(); err != nil {
		return badRequest(c, err.Error())
	}

	vetID, _ := requester(c)
	cl, err := h.svc.Create(c.Context(), vetID, req)
	if err != nil {
		return mapClientError(c, err)
	}
	return created(c, newClientView(cl))
}

// GET /clients
func (h *ClientHandler) List(c fiber.Ctx) error {
	vetID, _ := requester(c)
	cs, err := h.svc.List(c.Context(), vetID)
	if err != nil {
		return mapClientError(c, err)
	}
	return ok(c, newClientViews(cs))
}

// GET /client/:id
func (h *ClientHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	cl, err := h.svc.Get(c.Context(), vetID, id)
	if err != nil {
		return mapClientError(c, err)
	}
	return ok(c, newClientView(cl))
}

// PUT /client/:id
func (h *ClientHandler) Update(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	req := client.UpdateRequest{
		Name:             f.optString("name"),
		Email:            f.optString("email"),
		PhoneNumber:      f.optString("phoneNumber"),
		PhoneCountryCode: f.optString("phoneCountryCode"),
	}

	vetID, _ := requester(c)
	cl, err := h.svc.Update(c.Context(), vetID, id, req)
	if err != nil {
		return mapClientError(c, err)
	}
	return ok(c, newClientView(cl))
}

// DELETE /client/:id
func (h *ClientHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	if err := h.svc.Delete(c.Context(), vetID, id); err != nil {
		return mapClientError(c, err)
	}
	return message(c, "Client deleted successfully.")
}

// GET /client/:id/horses
func (h *ClientHandler) Horses(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	links, err := h.svc.Horses(c.Context(), vetID, id)
	if err != nil {
		return mapClientError(c, err)
	}
	return ok(c, newHorseLinkViews(h.store, links))
}

// linkBody reads the horseId and isOwner fields shared by the link routes.
func linkBody(c fiber.Ctx) (id, horseID int64, isOwner bool, err error) {
	if id, err = pathID(c, "id"); err != nil {
		return 0, 0, false, err
	}
	f, err := readForm(c)
	if err != nil {
		return 0, 0, false, err
	}
	p := f.optID("horseId")
	isOwner = f.boolean("isOwner")
	if err := f.err(); err != nil {
		return 0, 0, false, err
	}
	if p == nil {
		return 0, 0, false, errHorseIDRequired
	}
	return id, *p, isOwner, nil
}

// POST /client/:id/horse
func (h *ClientHandler) AddHorse(c fiber.Ctx) error {
	id, horseID, isOwner, err := linkBody(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	if err := h.svc.AddHorse(c.Context(), vetID, id, horseID, isOwner); err != nil {
		return mapClientError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Horse associated with client."})
}

// PUT /client/:id/horse
func (h *ClientHandler) SetOwner(c fiber.Ctx) error {
	id, horseID, isOwner, err := linkBody(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	if err := h.svc.SetOwner(c.Context(), vetID, id, horseID, isOwner); err != nil {
		return mapClientError(c, err)
	}
	return message(c, "Ownership updated.")
}

// DELETE /client/:id/horse
func (h *ClientHandler) RemoveHorse(c fiber.Ctx) error {
	id, horseID, _, err := linkBody(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	vetID, _ := requester(c)
	if err := h.svc.RemoveHorse(c.Context(), vetID, id, horseID); err != nil {
		return mapClientError(c, err)
	}
	return message(c, "Horse disassociated from client.")
}

func mapClientError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, client.ErrNoChanges):
		return noChanges(c)
	case errors.Is(err, client.ErrInvalidInput):
		return badRequest(c, err.Error())
	case errors.Is(err, client.ErrNotFound),
		errors.Is(err, client.ErrHorseNotFound),
		errors.Is(err, client.ErrLinkNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, client.ErrAlreadyLinked):
		return conflict(c, err.Error())
	default:
		return internalError(c, err)
	}
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/service/auth"
)

type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// POST /register
func (h *AuthHandler) Register(c fiber.Ctx) error {
	f, err := readForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	req := auth.RegisterRequest{
		Name:             f.str("name"),
		Email:            f.str("email"),
		Password:         f.str("password"),
		LicenseID:        f.str("licenseId"),
		PhoneNumber:      f.optString("phoneNumber"),
		PhoneCountryCode: f.optString("phoneCountryCode"),
		HospitalID:       f.optID("hospitalId"),
	}
	if err := f.err(); err != nil {
		return badRequest(c, err.Error())
	}

	vet, err := h.svc.Register(c.Context(), req)
	if err != nil {
		return mapAuthError(c, err)
	}
	return created(c, newVetView(vet))
}

// POST /login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		return mapAuthError(c, err)
	}

	return ok(c, fiber.Map{
		"accessToken":  res.AccessToken,
		"expiresAt":    res.ExpiresAt,
		"veterinarian": newVetView(res.Veterinarian),
	})
}

// POST /change-password
func (h *AuthHandler) ChangePassword(c fiber.Ctx) error {
	vetID, authed := requester(c)
	if !authed {
		return unauthorized(c, "unauthorized")
	}

	var body struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.svc.ChangePassword(c.Context(), vetID, body.OldPassword, body.NewPassword); err != nil {
		return mapAuthError(c, err)
	}
	return message(c, "Password changed successfully.")
}

func mapAuthError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrSamePassword):
		return badRequest(c, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		return conflict(c, err.Error())
	case errors.Is(err, auth.ErrHospitalNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, auth.ErrUnauthorized):
		return unauthorized(c, err.Error())
	case errors.Is(err, auth.ErrAccountLocked):
		return tooManyRequests(c, err.Error())
	default:
		return internalError(c, err)
	}
}

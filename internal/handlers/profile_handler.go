package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vms003/vatsal-medical/internal/dto"
	"github.com/vms003/vatsal-medical/internal/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.profileService.Get(c.UserContext(), p.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.profileService.Update(c.UserContext(), p.UserID, &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

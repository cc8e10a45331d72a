package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vms003/vatsal-medical/internal/dto"
	"github.com/vms003/vatsal-medical/internal/services"
)

type DoctorHandler struct {
	doctorService *services.DoctorService
}

func NewDoctorHandler(doctorService *services.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctorService: doctorService}
}

func (h *DoctorHandler) List(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	doctors, err := h.doctorService.List(c.UserContext(), p.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"doctors": doctors})
}

func (h *DoctorHandler) Create(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.CreateDoctorRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	d, err := h.doctorService.Create(c.UserContext(), p.UserID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "id": d.ID})
}

func (h *DoctorHandler) Update(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.UpdateDoctorRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.doctorService.Update(c.UserContext(), p.UserID, id, &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *DoctorHandler) Delete(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.doctorService.Delete(c.UserContext(), p.UserID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

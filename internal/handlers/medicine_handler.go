package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vms003/vatsal-medical/internal/dto"
	"github.com/vms003/vatsal-medical/internal/services"
)

type MedicineHandler struct {
	medicineService *services.MedicineService
}

func NewMedicineHandler(medicineService *services.MedicineService) *MedicineHandler {
	return &MedicineHandler{medicineService: medicineService}
}

func (h *MedicineHandler) List(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	medicines, err := h.medicineService.List(c.UserContext(), p.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"medicines": medicines})
}

func (h *MedicineHandler) Create(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.CreateMedicineRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	m, err := h.medicineService.Create(c.UserContext(), p.UserID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "id": m.ID})
}

func (h *MedicineHandler) Update(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.UpdateMedicineRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.medicineService.Update(c.UserContext(), p.UserID, id, &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *MedicineHandler) Delete(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.medicineService.Delete(c.UserContext(), p.UserID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

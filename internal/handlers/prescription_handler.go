package handlers

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/vms003/vatsal-medical/internal/services"
)

type PrescriptionHandler struct {
	prescriptionService *services.PrescriptionService
}

func NewPrescriptionHandler(prescriptionService *services.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptionService: prescriptionService}
}

func (h *PrescriptionHandler) List(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	prescriptions, err := h.prescriptionService.List(c.UserContext(), p.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"prescriptions": prescriptions})
}

// Upload expects multipart fields "file" and "doctor_name".
func (h *PrescriptionHandler) Upload(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	fh, err := c.FormFile("file")
	if err != nil || fh.Filename == "" {
		return respondError(c, services.ErrNoFile)
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	prescription, err := h.prescriptionService.Upload(c.UserContext(), p.UserID, c.FormValue("doctor_name"), fh.Filename, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "prescription": prescription})
}

func (h *PrescriptionHandler) Delete(c *fiber.Ctx) error {
	p, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.prescriptionService.Delete(c.UserContext(), p.UserID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Download streams a stored upload. The route is public.
func (h *PrescriptionHandler) Download(c *fiber.Ctx) error {
	filename := c.Params("filename")
	rc, err := h.prescriptionService.Open(c.UserContext(), filename)
	if err != nil {
		return respondError(c, err)
	}

	if ext := filepath.Ext(filename); ext != "" {
		c.Type(ext)
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	}
	// fasthttp closes rc once the body is written.
	return c.SendStream(rc)
}

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vms003/vatsal-medical/internal/dto"
	"github.com/vms003/vatsal-medical/internal/store"
)

type HealthHandler struct {
	store store.Store
}

func NewHealthHandler(s store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

func (h *HealthHandler) Ping(c *fiber.Ctx) error {
	return c.JSON(dto.PingResponse{
		OK:   true,
		Time: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	storeStatus := "ok"
	if err := h.store.Ping(c.UserContext()); err != nil {
		storeStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Store:     storeStatus,
	})
}

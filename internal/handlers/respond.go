package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vms003/vatsal-medical/internal/auth"
	"github.com/vms003/vatsal-medical/internal/dto"
	"github.com/vms003/vatsal-medical/internal/middleware"
	"github.com/vms003/vatsal-medical/internal/services"
)

var errInvalidBody = errors.New("invalid request body")

var badRequest = []error{
	services.ErrMissingFields,
	services.ErrMissingName,
	services.ErrInvalidSchedule,
	services.ErrNoFile,
	services.ErrEmailExists,
	errInvalidBody,
}

// respondError writes the client-facing error for known sentinels. Anything
// else goes to the app's ErrorHandler as a 500.
func respondError(c *fiber.Ctx, err error) error {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: target.Error()})
		}
	}
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid token"})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: services.ErrInvalidCredentials.Error()})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: services.ErrNotFound.Error()})
	}
	return err
}

// parseBody decodes a JSON body. An empty body leaves out untouched so the
// service reports the missing fields.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return nil
}

// paramID reads :id. Anything that is not a positive integer cannot name a
// record, so it is reported as not found.
func paramID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, services.ErrNotFound
	}
	return int64(id), nil
}

func currentUser(c *fiber.Ctx) (auth.Principal, error) {
	p, ok := middleware.CurrentUser(c)
	if !ok {
		return auth.Principal{}, auth.ErrUnauthorized
	}
	return p, nil
}

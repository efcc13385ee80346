package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/usecase"
)

// ConfigHandler serves the lab configuration singleton.
type ConfigHandler struct {
	uc *usecase.LabConfigUseCase
}

// NewConfigHandler builds the handler.
func NewConfigHandler(uc *usecase.LabConfigUseCase) *ConfigHandler {
	return &ConfigHandler{uc: uc}
}

// Get returns the configuration, creating the default row on first read.
// GET /api/config
func (h *ConfigHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update edits the configuration.
// PUT /api/config
func (h *ConfigHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLabConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.uc.Update(c.Context(), currentActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/usecase"
)

// DentistHandler serves the dentist registry.
type DentistHandler struct {
	uc *usecase.DentistUseCase
}

// NewDentistHandler builds the handler.
func NewDentistHandler(uc *usecase.DentistUseCase) *DentistHandler {
	return &DentistHandler{uc: uc}
}

// Create registers a dentist.
// POST /api/dentists
func (h *DentistHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDentistRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List returns dentists ordered by name.
// GET /api/dentists
func (h *DentistHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid query parameters"})
	}
	out, err := h.uc.List(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get returns one dentist.
// GET /api/dentists/:id
func (h *DentistHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update edits a dentist.
// PUT /api/dentists/:id
func (h *DentistHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDentistRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete removes a dentist without orders on file.
// DELETE /api/dentists/:id
func (h *DentistHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/inventory"
)

// MaterialHandler serves the material catalog, the lot ledger and the two
// stock alert feeds.
type MaterialHandler struct {
	materials *inventory.MaterialUseCase
	lots      *inventory.LotUseCase
	alerts    *inventory.AlertsUseCase
}

// NewMaterialHandler builds the handler.
func NewMaterialHandler(
	materials *inventory.MaterialUseCase,
	lots *inventory.LotUseCase,
	alerts *inventory.AlertsUseCase,
) *MaterialHandler {
	return &MaterialHandler{materials: materials, lots: lots, alerts: alerts}
}

// Create registers a material.
// POST /api/materials
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.materials.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List returns materials, optionally filtered by type.
// GET /api/materials
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid query parameters"})
	}
	out, err := h.materials.List(c.Context(), c.Query("type"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get returns one material.
// GET /api/materials/:id
func (h *MaterialHandler) Get(c *fiber.Ctx) error {
	out, err := h.materials.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update edits a material. The code is immutable.
// PUT /api/materials/:id
func (h *MaterialHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.materials.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete removes a material unless traceability still references it.
// DELETE /api/materials/:id
func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	if err := h.materials.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RecordArrival books a delivered lot into stock.
// POST /api/materials/:id/lots
func (h *MaterialHandler) RecordArrival(c *fiber.Ctx) error {
	var in dto.RecordArrivalRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.lots.RecordArrival(c.Context(), currentActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListLots returns every lot of a material, oldest arrival first.
// GET /api/materials/:id/lots
func (h *MaterialHandler) ListLots(c *fiber.Ctx) error {
	out, err := h.lots.ListByMaterial(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetLot returns one lot.
// GET /api/lots/:id
func (h *MaterialHandler) GetLot(c *fiber.Ctx) error {
	out, err := h.lots.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CorrectLot applies an admin correction to a lot, audited with before and
// after snapshots.
// PUT /api/lots/:id
func (h *MaterialHandler) CorrectLot(c *fiber.Ctx) error {
	var in dto.CorrectLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.lots.CorrectLot(c.Context(), currentActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteLot removes a lot unless consumption references it.
// DELETE /api/lots/:id
func (h *MaterialHandler) DeleteLot(c *fiber.Ctx) error {
	if err := h.lots.DeleteLot(c.Context(), currentActor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Expiring lists lots whose expiry falls inside the day window.
// GET /api/inventory/alerts/expiring?days=30
func (h *MaterialHandler) Expiring(c *fiber.Ctx) error {
	out, err := h.alerts.ExpiringWithin(c.Context(), c.QueryInt("days", 30))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock lists materials under the threshold, worst first.
// GET /api/inventory/alerts/low-stock?threshold=50
func (h *MaterialHandler) LowStock(c *fiber.Ctx) error {
	raw := c.Query("threshold")
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "threshold is required"})
	}
	threshold, err := decimal.NewFromString(raw)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "threshold must be a number"})
	}
	out, err := h.alerts.LowStock(c.Context(), threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

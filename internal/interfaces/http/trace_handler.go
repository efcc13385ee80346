package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/inventory"
)

// TraceHandler serves the two recall queries.
type TraceHandler struct {
	uc *inventory.TraceUseCase
}

// NewTraceHandler builds the handler.
func NewTraceHandler(uc *inventory.TraceUseCase) *TraceHandler {
	return &TraceHandler{uc: uc}
}

// Forward answers a supplier recall: every device a lot number went into.
// GET /api/trace/forward/:lotNumber
func (h *TraceHandler) Forward(c *fiber.Ctx) error {
	out, err := h.uc.Forward(c.Context(), c.Params("lotNumber"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reverse answers a patient complaint: every lot that went into a device.
// GET /api/trace/reverse/:worksheetId
func (h *TraceHandler) Reverse(c *fiber.Ctx) error {
	out, err := h.uc.Reverse(c.Context(), c.Params("worksheetId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

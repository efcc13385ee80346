package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/usecase"
)

// AuditHandler serves the read side of the audit ledger.
type AuditHandler struct {
	uc *usecase.AuditUseCase
}

// NewAuditHandler builds the handler.
func NewAuditHandler(uc *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List returns ledger entries, newest first, filtered by entity, action,
// actor and date window.
// GET /api/audit
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var in dto.ListAuditRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid query parameters"})
	}
	out, err := h.uc.List(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

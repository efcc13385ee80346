package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/inventory"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/production"
)

// WorksheetHandler serves the production side of a work sheet: status
// transitions, the QC record, material consumption and the annex document.
type WorksheetHandler struct {
	transitions *production.TransitionUseCase
	qc          *production.QCUseCase
	consume     *inventory.ConsumeUseCase
	annex       *production.AnnexOrchestrator // nil when no renderer is wired
}

// NewWorksheetHandler builds the handler. annex may be nil.
func NewWorksheetHandler(
	transitions *production.TransitionUseCase,
	qc *production.QCUseCase,
	consume *inventory.ConsumeUseCase,
	annex *production.AnnexOrchestrator,
) *WorksheetHandler {
	return &WorksheetHandler{transitions: transitions, qc: qc, consume: consume, annex: annex}
}

// StartProduction moves the sheet DRAFT -> IN_PRODUCTION.
// POST /api/worksheets/:id/start
func (h *WorksheetHandler) StartProduction(c *fiber.Ctx) error {
	out, err := h.transitions.StartProduction(c.Context(), currentActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SubmitToQC moves the sheet IN_PRODUCTION -> QC_PENDING.
// POST /api/worksheets/:id/submit-qc
func (h *WorksheetHandler) SubmitToQC(c *fiber.Ctx) error {
	out, err := h.transitions.SubmitToQC(c.Context(), currentActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Deliver moves the sheet QC_APPROVED -> DELIVERED.
// POST /api/worksheets/:id/deliver
func (h *WorksheetHandler) Deliver(c *fiber.Ctx) error {
	out, err := h.transitions.Deliver(c.Context(), currentActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Void cancels the sheet from any non-terminal state. Consumed lots are not
// restocked.
// POST /api/worksheets/:id/void
func (h *WorksheetHandler) Void(c *fiber.Ctx) error {
	var in dto.VoidWorksheetRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.transitions.Void(c.Context(), currentActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SubmitQC records the five-point inspection and applies its outcome.
// POST /api/worksheets/:id/qc
func (h *WorksheetHandler) SubmitQC(c *fiber.Ctx) error {
	var in dto.SubmitQCRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.qc.Submit(c.Context(), currentActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetQC returns the inspection record of a sheet.
// GET /api/worksheets/:id/qc
func (h *WorksheetHandler) GetQC(c *fiber.Ctx) error {
	out, err := h.qc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Consume books material onto the sheet from the oldest eligible lot.
// POST /api/worksheets/:id/consume
func (h *WorksheetHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.consume.Consume(c.Context(), currentActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RegenerateAnnex re-runs the annex rendering for a sheet.
// POST /api/worksheets/:id/annex
func (h *WorksheetHandler) RegenerateAnnex(c *fiber.Ctx) error {
	if h.annex == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "RENDERER_UNAVAILABLE", Message: "document renderer is not configured"})
	}
	if err := h.annex.Process(c.Context(), c.Params("id"), currentActor(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

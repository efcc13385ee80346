package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/billing"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
)

// InvoiceHandler serves invoice drafting, the finalize/cancel lifecycle,
// payment progression and dispatch.
type InvoiceHandler struct {
	invoices *billing.InvoiceUseCase
	finalize *billing.FinalizeUseCase
	send     *billing.SendUseCase
	pdf      *billing.PDFOrchestrator // nil when no renderer is wired
}

// NewInvoiceHandler builds the handler. pdf may be nil.
func NewInvoiceHandler(
	invoices *billing.InvoiceUseCase,
	finalize *billing.FinalizeUseCase,
	send *billing.SendUseCase,
	pdf *billing.PDFOrchestrator,
) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, finalize: finalize, send: send, pdf: pdf}
}

// Create drafts an invoice from QC-approved work sheets of one dentist.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.invoices.Create(c.Context(), currentActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List returns invoices filtered by dentist and payment status.
// GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var in dto.ListInvoicesRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid query parameters"})
	}
	out, err := h.invoices.List(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get returns one invoice with its line items.
// GET /api/invoices/:id
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	out, err := h.invoices.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update replaces the lines of a draft and recalculates the totals.
// PUT /api/invoices/:id
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.invoices.Update(c.Context(), currentActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete removes a draft freely, or a cancelled invoice after its reversal.
// DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.invoices.Delete(c.Context(), currentActor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Finalize assigns the invoice number and flips the billed work sheets and
// orders, all in one transaction.
// POST /api/invoices/:id/finalize
func (h *InvoiceHandler) Finalize(c *fiber.Ctx) error {
	out, err := h.finalize.Finalize(c.Context(), currentActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel reverses a finalized invoice. Repeating the call is a no-op.
// POST /api/invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.finalize.Cancel(c.Context(), currentActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MarkViewed advances the payment status to VIEWED.
// POST /api/invoices/:id/viewed
func (h *InvoiceHandler) MarkViewed(c *fiber.Ctx) error {
	out, err := h.finalize.MarkViewed(c.Context(), currentActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MarkPaid advances the payment status to PAID.
// POST /api/invoices/:id/paid
func (h *InvoiceHandler) MarkPaid(c *fiber.Ctx) error {
	out, err := h.finalize.MarkPaid(c.Context(), currentActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Send mails the invoice PDF to the dentist and logs the outcome. The body
// is optional; without it the dentist's address on file is used.
// POST /api/invoices/:id/send
func (h *InvoiceHandler) Send(c *fiber.Ctx) error {
	var in dto.SendInvoiceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
		}
	}
	out, err := h.send.Send(c.Context(), currentActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// EmailHistory lists the dispatch attempts of an invoice, latest first.
// GET /api/invoices/:id/emails
func (h *InvoiceHandler) EmailHistory(c *fiber.Ctx) error {
	out, err := h.send.History(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RegeneratePDF re-runs the invoice rendering.
// POST /api/invoices/:id/pdf
func (h *InvoiceHandler) RegeneratePDF(c *fiber.Ctx) error {
	if h.pdf == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "RENDERER_UNAVAILABLE", Message: "document renderer is not configured"})
	}
	if err := h.pdf.Process(c.Context(), c.Params("id"), currentActor(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/usecase"
)

// DocumentHandler serves the compliance document register.
type DocumentHandler struct {
	uc *usecase.DocumentUseCase
}

// NewDocumentHandler builds the handler.
func NewDocumentHandler(uc *usecase.DocumentUseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

// List returns register rows filtered by type, work sheet or invoice.
// GET /api/documents
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var in dto.ListDocumentsRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid query parameters"})
	}
	out, err := h.uc.List(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get returns one register row.
// GET /api/documents/:id
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Download streams the stored PDF.
// GET /api/documents/:id/download
func (h *DocumentHandler) Download(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.Download(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

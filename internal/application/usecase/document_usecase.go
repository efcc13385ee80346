package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/dto"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// ArtifactStore fetches rendered PDFs by object key.
type ArtifactStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// DocumentUseCase is the read side of the generated-document register, plus
// the download path through the blob store.
type DocumentUseCase struct {
	documentRepo repository.DocumentRepository
	artifacts    ArtifactStore // nil when no blob store is wired
}

// NewDocumentUseCase builds the use case. artifacts may be nil.
func NewDocumentUseCase(documentRepo repository.DocumentRepository, artifacts ArtifactStore) *DocumentUseCase {
	return &DocumentUseCase{documentRepo: documentRepo, artifacts: artifacts}
}

// Get returns one register row.
func (uc *DocumentUseCase) Get(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// List returns register rows, newest first.
func (uc *DocumentUseCase) List(ctx context.Context, in dto.ListDocumentsRequest) ([]dto.DocumentResponse, error) {
	in.DefaultPage()
	docs, err := uc.documentRepo.List(ctx, repository.DocumentFilter{
		Type:        in.Type,
		WorksheetID: in.WorksheetID,
		InvoiceID:   in.InvoiceID,
		Limit:       in.Limit,
		Offset:      in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, *toDocumentResponse(d))
	}
	return out, nil
}

// Download fetches the PDF bytes for a register row.
func (uc *DocumentUseCase) Download(ctx context.Context, id string) ([]byte, string, error) {
	doc, err := uc.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if uc.artifacts == nil {
		return nil, "", errors.New("artifact store is not configured")
	}
	pdf, err := uc.artifacts.Get(ctx, doc.PDFPath)
	if err != nil {
		return nil, "", err
	}
	return pdf, doc.Number + ".pdf", nil
}

func toDocumentResponse(d *entity.Document) *dto.DocumentResponse {
	resp := &dto.DocumentResponse{
		ID:             d.ID,
		Type:           d.Type,
		Number:         d.Number,
		PDFPath:        d.PDFPath,
		GeneratedAt:    d.GeneratedAt.Format(time.RFC3339),
		RetentionUntil: d.RetentionUntil.Format("2006-01-02"),
	}
	if d.WorksheetID != nil {
		resp.WorksheetID = *d.WorksheetID
	}
	if d.InvoiceID != nil {
		resp.InvoiceID = *d.InvoiceID
	}
	return resp
}

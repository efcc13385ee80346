package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = "id, type, number, worksheet_id, invoice_id, pdf_path, generated_at, retention_until"

// DocumentRepo implements DocumentRepository on PostgreSQL (usable with pool
// or tx). Register rows are insert-only.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository builds the document register adapter. Pass the pool or a tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create appends one register row.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.Type, doc.Number, doc.WorksheetID, doc.InvoiceID,
		doc.PDFPath, doc.GeneratedAt, doc.RetentionUntil,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID fetches a register row by ID.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	var doc entity.Document
	err := r.q.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.Type, &doc.Number, &doc.WorksheetID, &doc.InvoiceID,
		&doc.PDFPath, &doc.GeneratedAt, &doc.RetentionUntil,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// List returns register rows matching the filter, newest first.
func (r *DocumentRepo) List(ctx context.Context, filter repository.DocumentFilter) ([]*entity.Document, error) {
	conds := []string{}
	args := []any{}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.WorksheetID != "" {
		args = append(args, filter.WorksheetID)
		conds = append(conds, fmt.Sprintf("worksheet_id = $%d", len(args)))
	}
	if filter.InvoiceID != "" {
		args = append(args, filter.InvoiceID)
		conds = append(conds, fmt.Sprintf("invoice_id = $%d", len(args)))
	}
	query := `SELECT ` + documentColumns + ` FROM documents`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY generated_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var list []*entity.Document
	for rows.Next() {
		var doc entity.Document
		if err := rows.Scan(&doc.ID, &doc.Type, &doc.Number, &doc.WorksheetID, &doc.InvoiceID,
			&doc.PDFPath, &doc.GeneratedAt, &doc.RetentionUntil); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, &doc)
	}
	return list, rows.Err()
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/numbering"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = "id, number, dentist_id, is_draft, issue_date, subtotal, discount_rate, discount_amount, tax_rate, tax_amount, total, payment_status, pdf_path, notes, created_at, updated_at"

// invoiceYearLockClass namespaces the finalization advisory lock so it cannot
// collide with any other advisory lock in the database.
const invoiceYearLockClass = 7402

// InvoiceRepo implements InvoiceRepository on PostgreSQL (usable with pool or
// tx). Covers the invoice header, its line items and the per-year lock that
// serializes number assignment.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository builds the invoice adapter. Pass the pool or a tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persists the invoice header. Drafts carry an empty number; the
// partial unique index on number only applies once it is assigned.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.Number, invoice.DentistID, invoice.IsDraft, invoice.IssueDate,
		invoice.Subtotal, invoice.DiscountRate, invoice.DiscountAmount, invoice.TaxRate,
		invoice.TaxAmount, invoice.Total, invoice.PaymentStatus, invoice.PDFPath, invoice.Notes,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: invoice number %s", domain.ErrConflict, invoice.Number)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID fetches an invoice by ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "invoice "+id)
}

// GetForUpdate fetches an invoice and locks the row until the transaction
// ends, serializing finalization against concurrent edits.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "invoice "+id)
}

// Update rewrites the invoice header.
func (r *InvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET number = $2, dentist_id = $3, is_draft = $4, issue_date = $5, subtotal = $6,
		    discount_rate = $7, discount_amount = $8, tax_rate = $9, tax_amount = $10,
		    total = $11, payment_status = $12, pdf_path = $13, notes = $14, updated_at = $15
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.Number, invoice.DentistID, invoice.IsDraft, invoice.IssueDate,
		invoice.Subtotal, invoice.DiscountRate, invoice.DiscountAmount, invoice.TaxRate,
		invoice.TaxAmount, invoice.Total, invoice.PaymentStatus, invoice.PDFPath, invoice.Notes,
		invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: invoice number %s", domain.ErrConflict, invoice.Number)
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %s", domain.ErrNotFound, invoice.ID)
	}
	return nil
}

// List returns invoices matching the filter, newest first.
func (r *InvoiceRepo) List(ctx context.Context, filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	conds := []string{}
	args := []any{}
	if filter.DentistID != "" {
		args = append(args, filter.DentistID)
		conds = append(conds, fmt.Sprintf("dentist_id = $%d", len(args)))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.DentistID, &inv.IsDraft, &inv.IssueDate,
			&inv.Subtotal, &inv.DiscountRate, &inv.DiscountAmount, &inv.TaxRate,
			&inv.TaxAmount, &inv.Total, &inv.PaymentStatus, &inv.PDFPath, &inv.Notes,
			&inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

// Delete removes an invoice and its line items (ON DELETE CASCADE).
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %s", domain.ErrNotFound, id)
	}
	return nil
}

// AddLineItem appends one line to the invoice.
func (r *InvoiceRepo) AddLineItem(ctx context.Context, item *entity.InvoiceLineItem) error {
	query := `
		INSERT INTO invoice_line_items (id, invoice_id, worksheet_id, description, quantity, unit_price, amount, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.InvoiceID, item.WorksheetID, item.Description,
		item.Quantity, item.UnitPrice, item.Amount, item.Position,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// ListLineItems returns the invoice's lines in display order.
func (r *InvoiceRepo) ListLineItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceLineItem, error) {
	query := `
		SELECT id, invoice_id, worksheet_id, description, quantity, unit_price, amount, position
		FROM invoice_line_items WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceLineItem
	for rows.Next() {
		var item entity.InvoiceLineItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.WorksheetID, &item.Description,
			&item.Quantity, &item.UnitPrice, &item.Amount, &item.Position); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}

// ReplaceLineItems swaps the whole line set. Only called on drafts.
func (r *InvoiceRepo) ReplaceLineItems(ctx context.Context, invoiceID string, items []*entity.InvoiceLineItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_line_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("clear invoice lines: %w", err)
	}
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.InvoiceID = invoiceID
		if err := r.AddLineItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// LockYear takes the transaction-scoped advisory lock for one invoicing year.
// Every finalization of that year funnels through this lock, so the max-scan
// over existing numbers cannot race. Released automatically at commit or
// rollback.
func (r *InvoiceRepo) LockYear(ctx context.Context, year int) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, invoiceYearLockClass, year); err != nil {
		return fmt.Errorf("lock invoice year %d: %w", year, err)
	}
	return nil
}

// NumbersForYear returns every assigned invoice number of the year. Callers
// hold the year lock while deriving the next sequence from the result.
func (r *InvoiceRepo) NumbersForYear(ctx context.Context, year int) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT number FROM invoices WHERE number LIKE $1`, numbering.InvoicePrefix(year)+"%")
	if err != nil {
		return nil, fmt.Errorf("numbers for year: %w", err)
	}
	defer rows.Close()
	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan invoice number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (r *InvoiceRepo) scanOne(row pgx.Row, ref string) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.DentistID, &inv.IsDraft, &inv.IssueDate,
		&inv.Subtotal, &inv.DiscountRate, &inv.DiscountAmount, &inv.TaxRate,
		&inv.TaxAmount, &inv.Total, &inv.PaymentStatus, &inv.PDFPath, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("get %s: %w", ref, err)
	}
	return &inv, nil
}

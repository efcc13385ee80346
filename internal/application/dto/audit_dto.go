package dto

import "encoding/json"

// ListAuditRequest query for GET /api/audit.
type ListAuditRequest struct {
	EntityType string `query:"entity_type"`
	EntityID   string `query:"entity_id"`
	Action     string `query:"action"`
	ActorID    string `query:"actor_id"`
	From       string `query:"from"` // YYYY-MM-DD
	To         string `query:"to"`   // YYYY-MM-DD, exclusive
	PageRequest
}

// AuditEntryResponse one ledger line. Before/After are raw JSON snapshots.
type AuditEntryResponse struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id"`
	ActorRole  string          `json:"actor_role"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

// DocumentResponse one register row for a generated PDF.
type DocumentResponse struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Number         string `json:"number"`
	WorksheetID    string `json:"worksheet_id,omitempty"`
	InvoiceID      string `json:"invoice_id,omitempty"`
	PDFPath        string `json:"pdf_path"`
	GeneratedAt    string `json:"generated_at"`
	RetentionUntil string `json:"retention_until"`
}

// ListDocumentsRequest query for GET /api/documents.
type ListDocumentsRequest struct {
	Type        string `query:"type"`
	WorksheetID string `query:"worksheet_id"`
	InvoiceID   string `query:"invoice_id"`
	PageRequest
}

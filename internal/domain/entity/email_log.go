package entity

import "time"

// Email delivery statuses as reported by the mail provider.
const (
	EmailStatusQueued = "QUEUED"
	EmailStatusSent   = "SENT"
	EmailStatusFailed = "FAILED"
)

// EmailLog records every outbound invoice mail: recipient, which invoice, and
// what the provider said. Kept so billing disputes can show when an invoice
// was actually sent.
type EmailLog struct {
	ID        string
	InvoiceID string
	Recipient string
	Subject   string
	Status    string
	Error     string // provider error message when Status is FAILED
	SentAt    time.Time
}

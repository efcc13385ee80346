package entity

import "time"

// Dentist is a client practice of the lab. RequiresInvoicing controls the
// delivery flow: when false, QC approval pushes the order straight to
// DELIVERED without ever touching billing (internal and courtesy work).
type Dentist struct {
	ID                string
	Name              string
	ClinicName        string
	Email             string
	Phone             string
	Address           string
	VATNumber         string
	RequiresInvoicing bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

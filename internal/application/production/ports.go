// Package production owns the order lifecycle: intake, the status moves on
// sheet and order, QC submission and the Annex XIII paperwork that follows an
// approval.
package production

import (
	"context"
	"time"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// TxRunner runs fn inside one transaction, handing it transactional variants
// of the repositories the lifecycle touches. Any error from fn rolls the
// whole unit back.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		worksheetRepo repository.WorkSheetRepository,
		qcRepo repository.QCRepository,
		counterRepo repository.CounterRepository,
		auditRepo repository.AuditRepository,
	) error) error
}

// AnnexProduct is one prosthetic line on the Annex XIII statement.
type AnnexProduct struct {
	Description string
	Teeth       string
	Quantity    int
}

// AnnexData is the full data set the Annex XIII statement renders: the lab's
// MDR identity, the device identification, the prescriber, the product lines
// and the material usage trace of the sheet.
type AnnexData struct {
	DocumentNumber    string
	WorksheetNumber   string
	OrderNumber       string
	PatientRef        string
	LabName           string
	MDRRegistrationNo string
	LabAddress        string
	DentistName       string
	ClinicName        string
	Products          []AnnexProduct
	Materials         []repository.ReverseTraceRow
	QCResult          string
	QCCheckedAt       time.Time
}

// AnnexGenerator renders the statement and stores the PDF, returning the
// object key for the document register. Wiring may leave the generator nil
// when no renderer is configured; generation is then skipped.
type AnnexGenerator interface {
	RenderAnnex(ctx context.Context, data AnnexData) (pdfPath string, err error)
}

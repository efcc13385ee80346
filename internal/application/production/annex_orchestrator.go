package production

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/audit"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/numbering"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

// AnnexOrchestrator produces the Annex XIII statement after a sheet passes
// QC: gather the device data and the material trace, render through the
// generator port, register the document, audit it. It always runs after the
// verdict has committed; nothing here can unwind an approval.
type AnnexOrchestrator struct {
	worksheetRepo   repository.WorkSheetRepository
	orderRepo       repository.OrderRepository
	dentistRepo     repository.DentistRepository
	qcRepo          repository.QCRepository
	consumptionRepo repository.ConsumptionRepository
	configRepo      repository.LabConfigRepository
	documentRepo    repository.DocumentRepository
	auditRepo       repository.AuditRepository
	generator       AnnexGenerator
}

// NewAnnexOrchestrator builds the orchestrator. generator may be nil; every
// run is then skipped with a debug line.
func NewAnnexOrchestrator(
	worksheetRepo repository.WorkSheetRepository,
	orderRepo repository.OrderRepository,
	dentistRepo repository.DentistRepository,
	qcRepo repository.QCRepository,
	consumptionRepo repository.ConsumptionRepository,
	configRepo repository.LabConfigRepository,
	documentRepo repository.DocumentRepository,
	auditRepo repository.AuditRepository,
	generator AnnexGenerator,
) *AnnexOrchestrator {
	return &AnnexOrchestrator{
		worksheetRepo:   worksheetRepo,
		orderRepo:       orderRepo,
		dentistRepo:     dentistRepo,
		qcRepo:          qcRepo,
		consumptionRepo: consumptionRepo,
		configRepo:      configRepo,
		documentRepo:    documentRepo,
		auditRepo:       auditRepo,
		generator:       generator,
	}
}

// ProcessAsync renders in a detached goroutine with its own deadline,
// decoupled from the request that triggered it.
func (o *AnnexOrchestrator) ProcessAsync(worksheetID string, actor audit.Actor) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := o.Process(ctx, worksheetID, actor); err != nil {
			log.Warn().Err(err).Str("worksheet_id", worksheetID).Msg("annex generation failed, verdict stands")
		}
	}()
}

// Process is the synchronous core: re-fetch fresh state, render, register.
func (o *AnnexOrchestrator) Process(ctx context.Context, worksheetID string, actor audit.Actor) error {
	if o.generator == nil {
		log.Debug().Str("worksheet_id", worksheetID).Msg("annex generator not configured, skipping")
		return nil
	}

	sheet, err := o.worksheetRepo.GetByID(ctx, worksheetID)
	if err != nil {
		return fmt.Errorf("fetch sheet: %w", err)
	}
	if sheet.Status != entity.WorkSheetStatusQCApproved && sheet.Status != entity.WorkSheetStatusDelivered {
		log.Debug().Str("worksheet_id", worksheetID).Str("status", sheet.Status).Msg("sheet no longer approved, skipping annex")
		return nil
	}
	order, err := o.orderRepo.GetByID(ctx, sheet.OrderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}
	dentist, err := o.dentistRepo.GetByID(ctx, order.DentistID)
	if err != nil {
		return fmt.Errorf("fetch dentist: %w", err)
	}
	verdict, err := o.qcRepo.GetByWorksheet(ctx, sheet.ID)
	if err != nil {
		return fmt.Errorf("fetch verdict: %w", err)
	}
	cfg, err := o.configRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("fetch lab profile: %w", err)
	}
	lines, err := o.worksheetRepo.ListProducts(ctx, sheet.ID)
	if err != nil {
		return fmt.Errorf("fetch product lines: %w", err)
	}
	materials, err := o.consumptionRepo.ReverseTrace(ctx, sheet.ID)
	if err != nil {
		return fmt.Errorf("fetch material trace: %w", err)
	}

	data := AnnexData{
		DocumentNumber:    numbering.AnnexNumber(sheet.Number),
		WorksheetNumber:   sheet.Number,
		OrderNumber:       order.Number,
		PatientRef:        order.PatientRef,
		LabName:           cfg.LabName,
		MDRRegistrationNo: cfg.MDRRegistrationNo,
		LabAddress:        cfg.Address,
		DentistName:       dentist.Name,
		ClinicName:        dentist.ClinicName,
		Materials:         materials,
		QCResult:          verdict.Result,
		QCCheckedAt:       verdict.CheckedAt,
	}
	for _, l := range lines {
		data.Products = append(data.Products, AnnexProduct{
			Description: l.Description,
			Teeth:       l.Teeth,
			Quantity:    l.Quantity,
		})
	}

	pdfPath, err := o.generator.RenderAnnex(ctx, data)
	if err != nil {
		return fmt.Errorf("render annex: %w", err)
	}

	now := time.Now()
	doc := &entity.Document{
		ID:             uuid.New().String(),
		Type:           entity.DocumentTypeAnnexXIII,
		Number:         data.DocumentNumber,
		WorksheetID:    &sheet.ID,
		PDFPath:        pdfPath,
		GeneratedAt:    now,
		RetentionUntil: now.AddDate(cfg.RetentionYears, 0, 0),
	}
	if err := o.documentRepo.Create(ctx, doc); err != nil {
		return fmt.Errorf("register document: %w", err)
	}

	audit.Record(ctx, o.auditRepo, actor, audit.Entry{
		Action:     entity.AuditActionDocumentGenerated,
		EntityType: "documents",
		EntityID:   doc.ID,
		After:      doc,
	})
	log.Info().Str("document", doc.Number).Str("path", pdfPath).Msg("annex statement generated")
	return nil
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/billing"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/inventory"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/production"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/usecase"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/rbac"
)

// RouterDeps carries everything the routes need. Annex and PDF may be nil
// when no renderer is configured.
type RouterDeps struct {
	Orders      *production.OrderUseCase
	Transitions *production.TransitionUseCase
	QC          *production.QCUseCase
	Annex       *production.AnnexOrchestrator
	Materials   *inventory.MaterialUseCase
	Lots        *inventory.LotUseCase
	Alerts      *inventory.AlertsUseCase
	Consume     *inventory.ConsumeUseCase
	Trace       *inventory.TraceUseCase
	Invoices    *billing.InvoiceUseCase
	Finalize    *billing.FinalizeUseCase
	Send        *billing.SendUseCase
	PDF         *billing.PDFOrchestrator
	Dentists    *usecase.DentistUseCase
	Products    *usecase.ProductUseCase
	LabConfig   *usecase.LabConfigUseCase
	Documents   *usecase.DocumentUseCase
	Audit       *usecase.AuditUseCase
	JWTSecret   string
}

// Router registers the API routes. Every route sits behind the JWT check;
// mutations additionally carry a capability gate. Reads are open to any
// authenticated role unless they expose compliance data.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders)
	orders.Post("/", RequireCapability(rbac.CapOrderManage), orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/number/:number", orderHandler.GetByNumber)
	orders.Get("/:id", orderHandler.Get)
	orders.Put("/:id", RequireCapability(rbac.CapOrderManage), orderHandler.Update)
	orders.Post("/:id/cancel", RequireCapability(rbac.CapOrderManage), orderHandler.Cancel)
	orders.Delete("/:id", RequireCapability(rbac.CapOrderManage), orderHandler.Delete)

	worksheets := api.Group("/worksheets")
	wsHandler := NewWorksheetHandler(deps.Transitions, deps.QC, deps.Consume, deps.Annex)
	worksheets.Post("/:id/start", RequireCapability(rbac.CapProductionTransition), wsHandler.StartProduction)
	worksheets.Post("/:id/submit-qc", RequireCapability(rbac.CapProductionTransition), wsHandler.SubmitToQC)
	worksheets.Post("/:id/deliver", RequireCapability(rbac.CapProductionTransition), wsHandler.Deliver)
	worksheets.Post("/:id/void", RequireCapability(rbac.CapProductionVoid), wsHandler.Void)
	worksheets.Post("/:id/qc", RequireCapability(rbac.CapQCSubmit), wsHandler.SubmitQC)
	worksheets.Get("/:id/qc", wsHandler.GetQC)
	worksheets.Post("/:id/consume", RequireCapability(rbac.CapInventoryConsume), wsHandler.Consume)
	worksheets.Post("/:id/annex", RequireCapability(rbac.CapProductionTransition), wsHandler.RegenerateAnnex)

	materials := api.Group("/materials")
	materialHandler := NewMaterialHandler(deps.Materials, deps.Lots, deps.Alerts)
	materials.Post("/", RequireCapability(rbac.CapCatalogManage), materialHandler.Create)
	materials.Get("/", materialHandler.List)
	materials.Get("/:id", materialHandler.Get)
	materials.Put("/:id", RequireCapability(rbac.CapCatalogManage), materialHandler.Update)
	materials.Delete("/:id", RequireCapability(rbac.CapCatalogManage), materialHandler.Delete)
	materials.Post("/:id/lots", RequireCapability(rbac.CapInventoryReceive), materialHandler.RecordArrival)
	materials.Get("/:id/lots", materialHandler.ListLots)

	lots := api.Group("/lots")
	lots.Get("/:id", materialHandler.GetLot)
	lots.Put("/:id", RequireCapability(rbac.CapInventoryCorrect), materialHandler.CorrectLot)
	lots.Delete("/:id", RequireCapability(rbac.CapInventoryCorrect), materialHandler.DeleteLot)

	alerts := api.Group("/inventory/alerts")
	alerts.Get("/expiring", materialHandler.Expiring)
	alerts.Get("/low-stock", materialHandler.LowStock)

	trace := api.Group("/trace", RequireCapability(rbac.CapAuditRead))
	traceHandler := NewTraceHandler(deps.Trace)
	trace.Get("/forward/:lotNumber", traceHandler.Forward)
	trace.Get("/reverse/:worksheetId", traceHandler.Reverse)

	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.Invoices, deps.Finalize, deps.Send, deps.PDF)
	invoices.Post("/", RequireCapability(rbac.CapBillingManage), invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.Get)
	invoices.Put("/:id", RequireCapability(rbac.CapBillingManage), invoiceHandler.Update)
	invoices.Delete("/:id", RequireCapability(rbac.CapBillingManage), invoiceHandler.Delete)
	invoices.Post("/:id/finalize", RequireCapability(rbac.CapBillingFinalize), invoiceHandler.Finalize)
	invoices.Post("/:id/cancel", RequireCapability(rbac.CapBillingFinalize), invoiceHandler.Cancel)
	invoices.Post("/:id/viewed", RequireCapability(rbac.CapBillingManage), invoiceHandler.MarkViewed)
	invoices.Post("/:id/paid", RequireCapability(rbac.CapBillingManage), invoiceHandler.MarkPaid)
	invoices.Post("/:id/send", RequireCapability(rbac.CapBillingManage), invoiceHandler.Send)
	invoices.Get("/:id/emails", invoiceHandler.EmailHistory)
	invoices.Post("/:id/pdf", RequireCapability(rbac.CapBillingManage), invoiceHandler.RegeneratePDF)

	dentists := api.Group("/dentists")
	dentistHandler := NewDentistHandler(deps.Dentists)
	dentists.Post("/", RequireCapability(rbac.CapCatalogManage), dentistHandler.Create)
	dentists.Get("/", dentistHandler.List)
	dentists.Get("/:id", dentistHandler.Get)
	dentists.Put("/:id", RequireCapability(rbac.CapCatalogManage), dentistHandler.Update)
	dentists.Delete("/:id", RequireCapability(rbac.CapCatalogManage), dentistHandler.Delete)

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.Products)
	products.Post("/", RequireCapability(rbac.CapCatalogManage), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.Get)
	products.Put("/:id", RequireCapability(rbac.CapCatalogManage), productHandler.Update)
	products.Delete("/:id", RequireCapability(rbac.CapCatalogManage), productHandler.Delete)

	labConfig := api.Group("/config")
	configHandler := NewConfigHandler(deps.LabConfig)
	labConfig.Get("/", configHandler.Get)
	labConfig.Put("/", RequireCapability(rbac.CapCatalogManage), configHandler.Update)

	documents := api.Group("/documents", RequireCapability(rbac.CapAuditRead))
	documentHandler := NewDocumentHandler(deps.Documents)
	documents.Get("/", documentHandler.List)
	documents.Get("/:id", documentHandler.Get)
	documents.Get("/:id/download", documentHandler.Download)

	auditHandler := NewAuditHandler(deps.Audit)
	api.Get("/audit", RequireCapability(rbac.CapAuditRead), auditHandler.List)
}

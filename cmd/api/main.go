package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/billing"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/inventory"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/production"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/usecase"
	"github.com/Magneteek/SmileLAB-sub002/internal/infrastructure/blobstore"
	"github.com/Magneteek/SmileLAB-sub002/internal/infrastructure/docgen"
	"github.com/Magneteek/SmileLAB-sub002/internal/infrastructure/postgres"
	httpRouter "github.com/Magneteek/SmileLAB-sub002/internal/interfaces/http"
	"github.com/Magneteek/SmileLAB-sub002/pkg/config"
	"github.com/Magneteek/SmileLAB-sub002/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to PostgreSQL")
	}
	defer pool.Close()

	orderRepo := postgres.NewOrderRepository(pool)
	worksheetRepo := postgres.NewWorkSheetRepository(pool)
	materialRepo := postgres.NewMaterialRepository(pool)
	lotRepo := postgres.NewMaterialLotRepository(pool)
	consumptionRepo := postgres.NewConsumptionRepository(pool)
	qcRepo := postgres.NewQCRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	dentistRepo := postgres.NewDentistRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	emailLogRepo := postgres.NewEmailLogRepository(pool)
	labConfigRepo := postgres.NewLabConfigRepository(pool)

	inventoryRunner := postgres.NewInventoryTxRunner(pool)
	productionRunner := postgres.NewProductionTxRunner(pool)
	billingRunner := postgres.NewBillingTxRunner(pool)

	// Artifact store: only wired when a bucket is configured. Downloads and
	// the cancelled-invoice purge are disabled without it.
	var (
		billingArtifacts  billing.ArtifactStore
		documentArtifacts usecase.ArtifactStore
	)
	if cfg.Storage.Bucket != "" {
		store, err := blobstore.New(ctx, cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to artifact store")
		}
		billingArtifacts = store
		documentArtifacts = store
	}

	// Document renderer: only wired when a base URL is configured. Annex and
	// invoice PDF generation are skipped without it.
	var (
		annexGen   production.AnnexGenerator
		invoiceGen billing.InvoicePDFGenerator
	)
	if cfg.DocGen.BaseURL != "" {
		client := docgen.NewClient(cfg.DocGen.BaseURL)
		annexGen = client
		invoiceGen = client
	}

	// No email transport is wired yet; Send reports it as not configured.
	var emailSender billing.EmailSender

	materialUC := inventory.NewMaterialUseCase(materialRepo, lotRepo, consumptionRepo)
	lotUC := inventory.NewLotUseCase(inventoryRunner, materialRepo, lotRepo)
	consumeUC := inventory.NewConsumeUseCase(inventoryRunner, materialRepo)
	traceUC := inventory.NewTraceUseCase(worksheetRepo, consumptionRepo)
	alertsUC := inventory.NewAlertsUseCase(lotRepo)

	annexOrch := production.NewAnnexOrchestrator(
		worksheetRepo, orderRepo, dentistRepo, qcRepo,
		consumptionRepo, labConfigRepo, documentRepo, auditRepo, annexGen,
	)
	orderUC := production.NewOrderUseCase(productionRunner, orderRepo, worksheetRepo, dentistRepo, productRepo)
	transitionUC := production.NewTransitionUseCase(productionRunner)
	qcUC := production.NewQCUseCase(productionRunner, worksheetRepo, orderRepo, dentistRepo, qcRepo, annexOrch)

	pdfOrch := billing.NewPDFOrchestrator(
		invoiceRepo, dentistRepo, labConfigRepo, documentRepo, auditRepo, invoiceGen,
	)
	invoiceUC := billing.NewInvoiceUseCase(
		billingRunner, invoiceRepo, orderRepo, worksheetRepo,
		dentistRepo, labConfigRepo, billingArtifacts, pdfOrch,
	)
	finalizeUC := billing.NewFinalizeUseCase(billingRunner, pdfOrch)
	sendUC := billing.NewSendUseCase(
		billingRunner, invoiceRepo, dentistRepo, emailLogRepo, emailSender, billingArtifacts,
	)

	dentistUC := usecase.NewDentistUseCase(dentistRepo, orderRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	labConfigUC := usecase.NewLabConfigUseCase(labConfigRepo, auditRepo)
	documentUC := usecase.NewDocumentUseCase(documentRepo, documentArtifacts)
	auditUC := usecase.NewAuditUseCase(auditRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "SmileLAB API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Orders:      orderUC,
		Transitions: transitionUC,
		QC:          qcUC,
		Annex:       annexOrch,
		Materials:   materialUC,
		Lots:        lotUC,
		Alerts:      alertsUC,
		Consume:     consumeUC,
		Trace:       traceUC,
		Invoices:    invoiceUC,
		Finalize:    finalizeUC,
		Send:        sendUC,
		PDF:         pdfOrch,
		Dentists:    dentistUC,
		Products:    productUC,
		LabConfig:   labConfigUC,
		Documents:   documentUC,
		Audit:       auditUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}

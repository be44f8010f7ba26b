// Package http expone la API REST sobre Fiber: CRUD de empresas, sedes y
// facturas, más los endpoints de sincronización con QuickBooks Online.
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/application/billing"
	"github.com/jhoicas/Mantenimiento-api/internal/application/sync"
	"github.com/jhoicas/Mantenimiento-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC    *usecase.CompanyUseCase
	LocationUC   *usecase.LocationUseCase
	InvoiceUC    *billing.InvoiceUseCase
	PDFUC        *billing.PDFUseCase
	Orchestrator *sync.Orchestrator
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Companies (protegido)
	companies := protected.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Post("/", companyHandler.Create)
	companies.Get("/", companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", companyHandler.Update)
	companies.Get("/:id/locations", NewLocationHandler(deps.LocationUC).ListByCompany)

	// Locations (protegido)
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Post("/", locationHandler.Create)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Put("/:id", locationHandler.Update)

	// Invoices (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PDFUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Patch("/:id/status", invoiceHandler.UpdateStatus)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	locations.Get("/:id/invoices", invoiceHandler.ListByLocation)

	// Sync QBO (protegido; disparar sincronizaciones requiere rol con permiso
	// de facturación)
	qbo := protected.Group("/qbo", RequireRole("admin", "operador"))
	syncHandler := NewSyncHandler(deps.Orchestrator)
	qbo.Post("/sync", syncHandler.SyncAll)
	qbo.Post("/pull", syncHandler.Pull)
	qbo.Post("/companies/:id/sync", syncHandler.SyncCompany)
	qbo.Post("/locations/:id/sync", syncHandler.SyncLocation)
	qbo.Post("/invoices/:id/sync", syncHandler.SyncInvoice)
}

package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// PDFUseCase genera la representación gráfica (PDF) de una factura de servicio.
type PDFUseCase struct {
	invoices  repository.InvoiceRepository
	locations repository.LocationRepository
	companies repository.CompanyRepository
	generator InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoices repository.InvoiceRepository,
	locations repository.LocationRepository,
	companies repository.CompanyRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoices:  invoices,
		locations: locations,
		companies: companies,
		generator: generator,
	}
}

// DownloadInvoicePDF recupera la factura con sus líneas, la sede y (si existe)
// la empresa padre, y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si la factura o la sede no existen.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	inv, lines, err := uc.invoices.GetWithLines(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}

	loc, err := uc.locations.GetByID(ctx, inv.LocationID)
	if err != nil || loc == nil {
		return nil, "", fmt.Errorf("pdf: obtener sede: %w", domain.ErrNotFound)
	}

	var company *entity.Company
	if loc.CompanyID != "" {
		company, err = uc.companies.GetByID(ctx, loc.CompanyID)
		if err != nil {
			return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
		}
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv, lines, loc, company)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	name := inv.ExternalDocNumber
	if name == "" {
		name = inv.ID
	}
	return pdfBytes, fmt.Sprintf("factura_%s.pdf", name), nil
}

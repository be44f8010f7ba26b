// Package billing contiene los casos de uso de facturación de servicios de
// mantenimiento: creación de facturas con sus líneas, cambios de estado y la
// representación gráfica en PDF.
package billing

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// InvoicePDFGenerator genera la representación gráfica de una factura de
// servicio. La implementación vive en infrastructure/pdf.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(
		ctx context.Context,
		inv *entity.Invoice,
		lines []*entity.InvoiceLine,
		loc *entity.Location,
		parent *entity.Company, // nil para sedes standalone
	) ([]byte, error)
}

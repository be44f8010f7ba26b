package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice, lines []*entity.InvoiceLine) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetWithLines devuelve la cabecera y las líneas ordenadas por LineNumber.
	GetWithLines(ctx context.Context, id string) (*entity.Invoice, []*entity.InvoiceLine, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.Invoice, error)
	GetByExternalID(ctx context.Context, externalID string) (*entity.Invoice, error)
	SaveExternalLink(ctx context.Context, id, externalID, externalVersion, externalDocNumber string) error
}

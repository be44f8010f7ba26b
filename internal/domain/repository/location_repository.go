package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Location, error)
	ListPendingSync(ctx context.Context) ([]*entity.Location, error)
	GetByExternalID(ctx context.Context, externalID string) (*entity.Location, error)
	// SaveExternalLink escribe ExternalID/ExternalVersion y, para sedes con
	// padre, el ExternalParentID confirmado por la respuesta de QBO.
	SaveExternalLink(ctx context.Context, id, externalID, externalVersion, externalParentID string) error
}

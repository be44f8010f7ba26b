package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)
	// ListPendingSync devuelve las empresas activas sin ExternalID más las que
	// tienen cambios locales posteriores al último sync.
	ListPendingSync(ctx context.Context) ([]*entity.Company, error)
	GetByExternalID(ctx context.Context, externalID string) (*entity.Company, error)
	// SaveExternalLink escribe el par ExternalID/ExternalVersion. Es el único
	// camino para mutar el enlace QBO: garantiza el invariante "ambos o ninguno".
	SaveExternalLink(ctx context.Context, id, externalID, externalVersion string) error
}

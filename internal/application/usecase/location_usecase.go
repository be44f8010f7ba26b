package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// LocationUseCase aplica reglas de negocio para sedes de servicio.
type LocationUseCase struct {
	locations repository.LocationRepository
	companies repository.CompanyRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(locations repository.LocationRepository, companies repository.CompanyRepository) *LocationUseCase {
	return &LocationUseCase{locations: locations, companies: companies}
}

// Create crea una sede. Con CompanyID valida que la empresa exista; vacío crea
// una sede standalone. La jerarquía local es de dos niveles como máximo por
// construcción: una sede jamás cuelga de otra sede.
func (uc *LocationUseCase) Create(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.CompanyID != "" {
		parent, err := uc.companies.GetByID(ctx, in.CompanyID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, domain.ErrNotFound
		}
	}
	now := time.Now()
	loc := &entity.Location{
		ID:             uuid.New().String(),
		CompanyID:      in.CompanyID,
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		ServiceAddress: addressFromDTO(in.Service),
		BillWithParent: in.BillWithParent,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.locations.Create(ctx, loc); err != nil {
		return nil, err
	}
	return entityToLocationResponse(loc), nil
}

// GetByID obtiene una sede por ID.
func (uc *LocationUseCase) GetByID(ctx context.Context, id string) (*dto.LocationResponse, error) {
	loc, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	return entityToLocationResponse(loc), nil
}

// Update aplica cambios parciales. Cambiar BillWithParent aquí NO reenvía nada
// a QBO: el destino de facturación se deriva en el próximo sync.
func (uc *LocationUseCase) Update(ctx context.Context, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	loc, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		loc.Name = *in.Name
	}
	if in.Email != nil {
		loc.Email = *in.Email
	}
	if in.Phone != nil {
		loc.Phone = *in.Phone
	}
	if in.Service != nil {
		loc.ServiceAddress = addressFromDTO(*in.Service)
	}
	if in.BillWithParent != nil {
		loc.BillWithParent = *in.BillWithParent
	}
	if in.Inactive != nil {
		// La desactivación local se empuja como Active=false en el próximo
		// sync; una sede sincronizada nunca vuelve a ser "no sincronizada".
		loc.Inactive = *in.Inactive
	}
	loc.UpdatedAt = time.Now()
	if err := uc.locations.Update(ctx, loc); err != nil {
		return nil, err
	}
	return entityToLocationResponse(loc), nil
}

// ListByCompany lista las sedes de una empresa con paginación.
func (uc *LocationUseCase) ListByCompany(ctx context.Context, companyID string, page dto.PageRequest) (*dto.LocationListResponse, error) {
	page.DefaultPage()
	list, err := uc.locations.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *entityToLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func entityToLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:               l.ID,
		CompanyID:        l.CompanyID,
		Name:             l.Name,
		Email:            l.Email,
		Phone:            l.Phone,
		Service:          addressToDTO(l.ServiceAddress),
		BillWithParent:   l.BillWithParent,
		Inactive:         l.Inactive,
		ExternalID:       l.ExternalID,
		ExternalVersion:  l.ExternalVersion,
		ExternalParentID: l.ExternalParentID,
		Synced:           l.IsSynced(),
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

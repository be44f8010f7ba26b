package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// Asegura que LocationRepo implementa repository.LocationRepository.
var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación del puerto LocationRepository sobre PostgreSQL.
// company_id es NULLABLE en la tabla (sede standalone); en la entidad se
// representa como string vacío.
type LocationRepo struct {
	pool *pgxpool.Pool
}

// NewLocationRepository construye el adaptador de persistencia para sedes.
func NewLocationRepository(pool *pgxpool.Pool) *LocationRepo {
	return &LocationRepo{pool: pool}
}

const locationColumns = `
	id, COALESCE(company_id, ''), name, email, phone,
	service_line1, service_city, service_state, service_postal_code, service_country,
	bill_with_parent, inactive, external_id, external_version, external_parent_id,
	created_at, updated_at`

func scanLocation(row interface{ Scan(...any) error }) (*entity.Location, error) {
	var l entity.Location
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.Name, &l.Email, &l.Phone,
		&l.ServiceAddress.Line1, &l.ServiceAddress.City, &l.ServiceAddress.State,
		&l.ServiceAddress.PostalCode, &l.ServiceAddress.Country,
		&l.BillWithParent, &l.Inactive, &l.ExternalID, &l.ExternalVersion, &l.ExternalParentID,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// nullable convierte "" a NULL para la columna company_id.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create persiste una nueva sede.
func (r *LocationRepo) Create(ctx context.Context, loc *entity.Location) error {
	query := `
		INSERT INTO locations (
			id, company_id, name, email, phone,
			service_line1, service_city, service_state, service_postal_code, service_country,
			bill_with_parent, inactive, external_id, external_version, external_parent_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,'','','',$13,$14)`
	_, err := r.pool.Exec(ctx, query,
		loc.ID, nullable(loc.CompanyID), loc.Name, loc.Email, loc.Phone,
		loc.ServiceAddress.Line1, loc.ServiceAddress.City, loc.ServiceAddress.State,
		loc.ServiceAddress.PostalCode, loc.ServiceAddress.Country,
		loc.BillWithParent, loc.Inactive, loc.CreatedAt, loc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID obtiene una sede por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	l, err := scanLocation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

// GetByExternalID obtiene una sede por su Id QBO.
func (r *LocationRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE external_id = $1`
	l, err := scanLocation(r.pool.QueryRow(ctx, query, externalID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location by external id: %w", err)
	}
	return l, nil
}

// Update actualiza los campos de negocio; el enlace QBO solo lo escribe
// SaveExternalLink.
func (r *LocationRepo) Update(ctx context.Context, loc *entity.Location) error {
	query := `
		UPDATE locations SET
			name = $2, email = $3, phone = $4,
			service_line1 = $5, service_city = $6, service_state = $7,
			service_postal_code = $8, service_country = $9,
			bill_with_parent = $10, inactive = $11, updated_at = $12
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query,
		loc.ID, loc.Name, loc.Email, loc.Phone,
		loc.ServiceAddress.Line1, loc.ServiceAddress.City, loc.ServiceAddress.State,
		loc.ServiceAddress.PostalCode, loc.ServiceAddress.Country,
		loc.BillWithParent, loc.Inactive, loc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	return nil
}

// ListByCompany devuelve las sedes de una empresa con paginación.
func (r *LocationRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Location, error) {
	query := `SELECT ` + locationColumns + `
		FROM locations WHERE company_id = $1
		ORDER BY created_at LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	return collectLocations(rows)
}

// ListPendingSync sedes no inactivas sin ExternalID más las modificadas
// después del último sync. El orden por created_at hace el batch determinista.
func (r *LocationRepo) ListPendingSync(ctx context.Context) ([]*entity.Location, error) {
	query := `SELECT ` + locationColumns + `
		FROM locations
		WHERE external_id = '' OR updated_at > synced_at
		ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending locations: %w", err)
	}
	defer rows.Close()
	return collectLocations(rows)
}

func collectLocations(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]*entity.Location, error) {
	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// SaveExternalLink escribe ExternalID/ExternalVersion y el ExternalParentID
// confirmado por la respuesta QBO, junto con la marca de sync.
func (r *LocationRepo) SaveExternalLink(ctx context.Context, id, externalID, externalVersion, externalParentID string) error {
	query := `
		UPDATE locations SET
			external_id = $2, external_version = $3, external_parent_id = $4, synced_at = now()
		WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, externalID, externalVersion, externalParentID)
	if err != nil {
		return fmt.Errorf("save location external link: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

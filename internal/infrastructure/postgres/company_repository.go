package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

const companyColumns = `
	id, name, legal_name, email, phone,
	billing_line1, billing_city, billing_state, billing_postal_code, billing_country,
	is_active, external_id, external_version, created_at, updated_at`

func scanCompany(row interface{ Scan(...any) error }) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(
		&c.ID, &c.Name, &c.LegalName, &c.Email, &c.Phone,
		&c.BillingAddress.Line1, &c.BillingAddress.City, &c.BillingAddress.State,
		&c.BillingAddress.PostalCode, &c.BillingAddress.Country,
		&c.IsActive, &c.ExternalID, &c.ExternalVersion, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste una nueva empresa. El enlace QBO nace vacío.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (
			id, name, legal_name, email, phone,
			billing_line1, billing_city, billing_state, billing_postal_code, billing_country,
			is_active, external_id, external_version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,'','',$12,$13)`
	_, err := r.pool.Exec(ctx, query,
		company.ID, company.Name, company.LegalName, company.Email, company.Phone,
		company.BillingAddress.Line1, company.BillingAddress.City, company.BillingAddress.State,
		company.BillingAddress.PostalCode, company.BillingAddress.Country,
		company.IsActive, company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	c, err := scanCompany(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// GetByExternalID obtiene una empresa por su Id QBO (pull/reconciliación).
func (r *CompanyRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE external_id = $1`
	c, err := scanCompany(r.pool.QueryRow(ctx, query, externalID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company by external id: %w", err)
	}
	return c, nil
}

// Update actualiza los campos de negocio. El enlace QBO NO se toca aquí:
// solo SaveExternalLink puede escribir ese par.
func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	query := `
		UPDATE companies SET
			name = $2, legal_name = $3, email = $4, phone = $5,
			billing_line1 = $6, billing_city = $7, billing_state = $8,
			billing_postal_code = $9, billing_country = $10,
			is_active = $11, updated_at = $12
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query,
		company.ID, company.Name, company.LegalName, company.Email, company.Phone,
		company.BillingAddress.Line1, company.BillingAddress.City, company.BillingAddress.State,
		company.BillingAddress.PostalCode, company.BillingAddress.Country,
		company.IsActive, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

// List devuelve empresas con paginación.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ListPendingSync empresas activas sin ExternalID más las modificadas después
// del último sync (updated_at posterior al último SaveExternalLink).
func (r *CompanyRepo) ListPendingSync(ctx context.Context) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + `
		FROM companies
		WHERE is_active = true
		  AND (external_id = '' OR updated_at > synced_at)
		ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// SaveExternalLink escribe el par ExternalID/ExternalVersion junto con la
// marca de sync. Único camino de escritura del enlace QBO.
func (r *CompanyRepo) SaveExternalLink(ctx context.Context, id, externalID, externalVersion string) error {
	query := `
		UPDATE companies SET external_id = $2, external_version = $3, synced_at = now()
		WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, externalID, externalVersion)
	if err != nil {
		return fmt.Errorf("save company external link: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

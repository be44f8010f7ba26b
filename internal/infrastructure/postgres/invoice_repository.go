package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// Asegura que InvoiceRepo implementa repository.InvoiceRepository.
var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación del puerto InvoiceRepository sobre PostgreSQL.
// Cabecera y líneas se insertan en una sola transacción; los montos van como
// NUMERIC y entran/salen como decimal gracias al codec del pool.
type InvoiceRepo struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository construye el adaptador de persistencia para facturas.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

const invoiceColumns = `
	id, location_id, COALESCE(company_id, ''), status, txn_date, due_date,
	customer_note, private_note, subtotal, tax_total, grand_total,
	external_id, external_version, external_doc_number, created_at, updated_at`

func scanInvoice(row interface{ Scan(...any) error }) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.LocationID, &inv.CompanyID, &inv.Status, &inv.TxnDate, &inv.DueDate,
		&inv.CustomerNote, &inv.PrivateNote, &inv.Subtotal, &inv.TaxTotal, &inv.GrandTotal,
		&inv.ExternalID, &inv.ExternalVersion, &inv.ExternalDocNumber, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserta cabecera y líneas en una transacción: o entra todo o nada.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice, lines []*entity.InvoiceLine) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (
			id, location_id, company_id, status, txn_date, due_date,
			customer_note, private_note, subtotal, tax_total, grand_total,
			external_id, external_version, external_doc_number, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,'','','',$12,$13)`,
		inv.ID, inv.LocationID, nullable(inv.CompanyID), inv.Status, inv.TxnDate, inv.DueDate,
		inv.CustomerNote, inv.PrivateNote, inv.Subtotal, inv.TaxTotal, inv.GrandTotal,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	for _, l := range lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_lines (
				id, invoice_id, line_number, description, quantity, unit_price,
				external_item_ref, external_tax_code_ref
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			l.ID, l.InvoiceID, l.LineNumber, l.Description, l.Quantity, l.UnitPrice,
			l.ExternalItemRef, l.ExternalTaxCodeRef,
		)
		if err != nil {
			return fmt.Errorf("insert invoice line %d: %w", l.LineNumber, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID obtiene la cabecera de una factura.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetWithLines devuelve la cabecera y las líneas ordenadas por line_number.
func (r *InvoiceRepo) GetWithLines(ctx context.Context, id string) (*entity.Invoice, []*entity.InvoiceLine, error) {
	inv, err := r.GetByID(ctx, id)
	if err != nil || inv == nil {
		return inv, nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_id, line_number, description, quantity, unit_price,
		       external_item_ref, external_tax_code_ref
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY line_number`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.LineNumber, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.ExternalItemRef, &l.ExternalTaxCodeRef); err != nil {
			return nil, nil, fmt.Errorf("scan invoice line: %w", err)
		}
		lines = append(lines, &l)
	}
	return inv, lines, rows.Err()
}

// GetByExternalID obtiene una factura por su Id QBO.
func (r *InvoiceRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE external_id = $1`
	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, externalID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by external id: %w", err)
	}
	return inv, nil
}

// Update actualiza la cabecera (estado, notas, totales). Las líneas de una
// factura en estado terminal no se tocan; esa regla vive en el caso de uso.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices SET
			status = $2, txn_date = $3, due_date = $4, customer_note = $5, private_note = $6,
			subtotal = $7, tax_total = $8, grand_total = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query,
		inv.ID, inv.Status, inv.TxnDate, inv.DueDate, inv.CustomerNote, inv.PrivateNote,
		inv.Subtotal, inv.TaxTotal, inv.GrandTotal, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// ListByLocation devuelve las facturas de una sede, recientes primero.
func (r *InvoiceRepo) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices WHERE location_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// SaveExternalLink escribe ExternalID/ExternalVersion/DocNumber tras una
// respuesta QBO confirmada.
func (r *InvoiceRepo) SaveExternalLink(ctx context.Context, id, externalID, externalVersion, externalDocNumber string) error {
	query := `
		UPDATE invoices SET
			external_id = $2, external_version = $3, external_doc_number = $4, synced_at = now()
		WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, externalID, externalVersion, externalDocNumber)
	if err != nil {
		return fmt.Errorf("save invoice external link: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

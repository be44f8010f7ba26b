package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memInvoiceRepo struct {
	items map[string]*entity.Invoice
	lines map[string][]*entity.InvoiceLine
}

var _ repository.InvoiceRepository = (*memInvoiceRepo)(nil)

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{
		items: make(map[string]*entity.Invoice),
		lines: make(map[string][]*entity.InvoiceLine),
	}
}

func (r *memInvoiceRepo) Create(_ context.Context, inv *entity.Invoice, lines []*entity.InvoiceLine) error {
	cp := *inv
	r.items[inv.ID] = &cp
	r.lines[inv.ID] = lines
	return nil
}

func (r *memInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	inv, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *memInvoiceRepo) GetWithLines(_ context.Context, id string) (*entity.Invoice, []*entity.InvoiceLine, error) {
	inv, ok := r.items[id]
	if !ok {
		return nil, nil, nil
	}
	cp := *inv
	return &cp, r.lines[id], nil
}

func (r *memInvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	if _, ok := r.items[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *inv
	r.items[inv.ID] = &cp
	return nil
}

func (r *memInvoiceRepo) ListByLocation(_ context.Context, locationID string, limit, offset int) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.items {
		if inv.LocationID == locationID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) GetByExternalID(_ context.Context, externalID string) (*entity.Invoice, error) {
	for _, inv := range r.items {
		if inv.ExternalID == externalID {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memInvoiceRepo) SaveExternalLink(_ context.Context, id, externalID, externalVersion, externalDocNumber string) error {
	inv, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.ExternalID = externalID
	inv.ExternalVersion = externalVersion
	inv.ExternalDocNumber = externalDocNumber
	return nil
}

type memLocationRepo struct {
	items map[string]*entity.Location
}

var _ repository.LocationRepository = (*memLocationRepo)(nil)

func newMemLocationRepo() *memLocationRepo {
	return &memLocationRepo{items: make(map[string]*entity.Location)}
}

func (r *memLocationRepo) Create(_ context.Context, loc *entity.Location) error {
	cp := *loc
	r.items[loc.ID] = &cp
	return nil
}

func (r *memLocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	loc, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *loc
	return &cp, nil
}

func (r *memLocationRepo) Update(_ context.Context, loc *entity.Location) error {
	if _, ok := r.items[loc.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *loc
	r.items[loc.ID] = &cp
	return nil
}

func (r *memLocationRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Location, error) {
	var out []*entity.Location
	for _, loc := range r.items {
		if loc.CompanyID == companyID {
			cp := *loc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memLocationRepo) ListPendingSync(_ context.Context) ([]*entity.Location, error) {
	return nil, nil
}

func (r *memLocationRepo) GetByExternalID(_ context.Context, externalID string) (*entity.Location, error) {
	for _, loc := range r.items {
		if loc.ExternalID == externalID {
			cp := *loc
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memLocationRepo) SaveExternalLink(_ context.Context, id, externalID, externalVersion, externalParentID string) error {
	loc, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	loc.ExternalID = externalID
	loc.ExternalVersion = externalVersion
	loc.ExternalParentID = externalParentID
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newTestUseCase() (*InvoiceUseCase, *memInvoiceRepo, *memLocationRepo) {
	invoices := newMemInvoiceRepo()
	locations := newMemLocationRepo()
	locations.items["l1"] = &entity.Location{ID: "l1", CompanyID: "c1", Name: "Planta Norte"}
	return NewInvoiceUseCase(invoices, locations), invoices, locations
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		LocationID: "l1",
		TxnDate:    "2025-06-15",
		TaxRate:    dec("0.19"),
		Lines: []dto.InvoiceLineRequest{
			{Description: "Mantenimiento preventivo HVAC", Quantity: dec("2"), UnitPrice: dec("150.00")},
			{Description: "Repuesto filtro", Quantity: dec("1"), UnitPrice: dec("45.50")},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateCalculaTotalesConDecimal(t *testing.T) {
	uc, _, _ := newTestUseCase()

	out, err := uc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	// subtotal = 2*150.00 + 1*45.50 = 345.50
	// tax      = 345.50 * 0.19 = 65.645 -> 65.65 (redondeo a 2 decimales)
	assert.True(t, dec("345.50").Equal(out.Subtotal), "subtotal debe ser 345.50, fue %s", out.Subtotal)
	assert.True(t, dec("65.65").Equal(out.TaxTotal), "tax debe redondearse a 65.65, fue %s", out.TaxTotal)
	assert.True(t, dec("411.15").Equal(out.GrandTotal), "total debe ser 411.15, fue %s", out.GrandTotal)
	assert.Equal(t, entity.InvoiceStatusDraft, out.Status, "toda factura nueva nace en draft")
	assert.False(t, out.Synced, "una factura recién creada no está sincronizada")
	require.Len(t, out.Lines, 2)
	assert.Equal(t, 1, out.Lines[0].LineNumber)
	assert.Equal(t, 2, out.Lines[1].LineNumber)
}

func TestCreateHeredaLaEmpresaDeLaSede(t *testing.T) {
	uc, _, _ := newTestUseCase()

	out, err := uc.Create(context.Background(), createRequest())
	require.NoError(t, err)
	assert.Equal(t, "c1", out.CompanyID, "la factura hereda la empresa padre de la sede")
	assert.Equal(t, "l1", out.LocationID)
}

func TestCreateSedeInexistenteFalla(t *testing.T) {
	uc, _, _ := newTestUseCase()

	req := createRequest()
	req.LocationID = "no-existe"
	_, err := uc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateSinLineasFalla(t *testing.T) {
	uc, _, _ := newTestUseCase()

	req := createRequest()
	req.Lines = nil
	_, err := uc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateLineaConCantidadCeroFalla(t *testing.T) {
	uc, _, _ := newTestUseCase()

	req := createRequest()
	req.Lines[0].Quantity = decimal.Zero
	_, err := uc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreatePrecioNegativoFalla(t *testing.T) {
	uc, _, _ := newTestUseCase()

	req := createRequest()
	req.Lines[1].UnitPrice = dec("-1.00")
	_, err := uc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateFechaInvalidaFalla(t *testing.T) {
	uc, _, _ := newTestUseCase()

	req := createRequest()
	req.TxnDate = "15/06/2025"
	_, err := uc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests UpdateStatus
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateStatusTransicionaADraftASent(t *testing.T) {
	uc, _, _ := newTestUseCase()
	created, err := uc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	out, err := uc.UpdateStatus(context.Background(), created.ID, entity.InvoiceStatusSent)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusSent, out.Status)
}

func TestUpdateStatusFacturaPagadaQuedaBloqueada(t *testing.T) {
	uc, _, _ := newTestUseCase()
	created, err := uc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	_, err = uc.UpdateStatus(context.Background(), created.ID, entity.InvoiceStatusPaid)
	require.NoError(t, err)

	// paid es terminal para edición: no se puede volver a draft ni a sent.
	_, err = uc.UpdateStatus(context.Background(), created.ID, entity.InvoiceStatusDraft)
	assert.True(t, errors.Is(err, domain.ErrInvoiceLocked),
		"una factura pagada no admite volver a draft, err fue: %v", err)
}

func TestUpdateStatusFacturaPagadaPuedeAnularse(t *testing.T) {
	uc, _, _ := newTestUseCase()
	created, err := uc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	_, err = uc.UpdateStatus(context.Background(), created.ID, entity.InvoiceStatusPaid)
	require.NoError(t, err)

	// void sí es una transición válida desde paid (reversa contable).
	out, err := uc.UpdateStatus(context.Background(), created.ID, entity.InvoiceStatusVoid)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusVoid, out.Status)
}

func TestUpdateStatusEstadoDesconocidoFalla(t *testing.T) {
	uc, _, _ := newTestUseCase()
	created, err := uc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	_, err = uc.UpdateStatus(context.Background(), created.ID, "archivada")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateStatusFacturaInexistenteFalla(t *testing.T) {
	uc, _, _ := newTestUseCase()

	_, err := uc.UpdateStatus(context.Background(), "no-existe", entity.InvoiceStatusSent)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// InvoiceUseCase crea facturas de servicio y gestiona sus transiciones de
// estado. Los montos se calculan aquí una sola vez con decimal (jamás float) y
// la cabecera + líneas se guardan en una sola transacción del repositorio.
type InvoiceUseCase struct {
	invoices  repository.InvoiceRepository
	locations repository.LocationRepository
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(invoices repository.InvoiceRepository, locations repository.LocationRepository) *InvoiceUseCase {
	return &InvoiceUseCase{invoices: invoices, locations: locations}
}

// Create crea la factura con sus líneas. La sede debe existir; cantidades y
// precios deben ser no negativos, con al menos una línea.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.LocationID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	loc, err := uc.locations.GetByID(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	if in.TaxRate.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	invoiceID := uuid.New().String()

	lines := make([]*entity.InvoiceLine, 0, len(in.Lines))
	subtotal := decimal.Zero
	for i, l := range in.Lines {
		if !l.Quantity.GreaterThan(decimal.Zero) || l.UnitPrice.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: línea %d con cantidad o precio inválido", domain.ErrInvalidInput, i+1)
		}
		line := &entity.InvoiceLine{
			ID:                 uuid.New().String(),
			InvoiceID:          invoiceID,
			LineNumber:         i + 1,
			Description:        l.Description,
			Quantity:           l.Quantity,
			UnitPrice:          l.UnitPrice,
			ExternalItemRef:    l.ItemRef,
			ExternalTaxCodeRef: l.TaxCodeRef,
		}
		subtotal = subtotal.Add(line.Amount())
		lines = append(lines, line)
	}
	taxTotal := subtotal.Mul(in.TaxRate).Round(2)

	inv := &entity.Invoice{
		ID:           invoiceID,
		LocationID:   loc.ID,
		CompanyID:    loc.CompanyID,
		Status:       entity.InvoiceStatusDraft,
		TxnDate:      now,
		CustomerNote: in.CustomerNote,
		PrivateNote:  in.PrivateNote,
		Subtotal:     subtotal,
		TaxTotal:     taxTotal,
		GrandTotal:   subtotal.Add(taxTotal),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.TxnDate != "" {
		t, err := time.Parse("2006-01-02", in.TxnDate)
		if err != nil {
			return nil, fmt.Errorf("%w: txn_date inválida", domain.ErrInvalidInput)
		}
		inv.TxnDate = t
	}
	if in.DueDate != "" {
		t, err := time.Parse("2006-01-02", in.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: due_date inválida", domain.ErrInvalidInput)
		}
		inv.DueDate = t
	}

	if err := uc.invoices.Create(ctx, inv, lines); err != nil {
		return nil, err
	}
	return entityToInvoiceResponse(inv, lines), nil
}

// GetByID obtiene la factura con sus líneas.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, lines, err := uc.invoices.GetWithLines(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return entityToInvoiceResponse(inv, lines), nil
}

// ListByLocation lista las facturas de una sede.
func (uc *InvoiceUseCase) ListByLocation(ctx context.Context, locationID string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page.DefaultPage()
	list, err := uc.invoices.ListByLocation(ctx, locationID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *entityToInvoiceResponse(inv, nil))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// UpdateStatus transición de estado local. paid y void bloquean las líneas:
// desde ahí solo queda el push de estado hacia QBO, nunca una edición.
func (uc *InvoiceUseCase) UpdateStatus(ctx context.Context, id, status string) (*dto.InvoiceResponse, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, status)
	}
	inv, lines, err := uc.invoices.GetWithLines(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.LinesLocked() && status != entity.InvoiceStatusVoid && status != inv.Status {
		return nil, fmt.Errorf("%w: la factura %s está en estado terminal %s", domain.ErrInvoiceLocked, id, inv.Status)
	}
	inv.Status = status
	inv.UpdatedAt = time.Now()
	if err := uc.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return entityToInvoiceResponse(inv, lines), nil
}

func validStatus(s string) bool {
	switch s {
	case entity.InvoiceStatusDraft, entity.InvoiceStatusSent, entity.InvoiceStatusPartialPaid,
		entity.InvoiceStatusPaid, entity.InvoiceStatusVoid, entity.InvoiceStatusCancelled:
		return true
	}
	return false
}

func entityToInvoiceResponse(inv *entity.Invoice, lines []*entity.InvoiceLine) *dto.InvoiceResponse {
	if inv == nil {
		return nil
	}
	resp := &dto.InvoiceResponse{
		ID:                inv.ID,
		LocationID:        inv.LocationID,
		CompanyID:         inv.CompanyID,
		Status:            inv.Status,
		CustomerNote:      inv.CustomerNote,
		Subtotal:          inv.Subtotal,
		TaxTotal:          inv.TaxTotal,
		GrandTotal:        inv.GrandTotal,
		ExternalID:        inv.ExternalID,
		ExternalVersion:   inv.ExternalVersion,
		ExternalDocNumber: inv.ExternalDocNumber,
		Synced:            inv.IsSynced(),
	}
	if !inv.TxnDate.IsZero() {
		resp.TxnDate = inv.TxnDate.Format("2006-01-02")
	}
	if !inv.DueDate.IsZero() {
		resp.DueDate = inv.DueDate.Format("2006-01-02")
	}
	resp.Lines = make([]dto.InvoiceLineResponse, 0, len(lines))
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.InvoiceLineResponse{
			ID:          l.ID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      l.Amount(),
		})
	}
	return resp
}

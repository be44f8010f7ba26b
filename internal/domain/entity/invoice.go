package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados locales de una factura de servicio.
const (
	InvoiceStatusDraft       = "draft"
	InvoiceStatusSent        = "sent"
	InvoiceStatusPartialPaid = "partial_paid"
	InvoiceStatusPaid        = "paid"
	InvoiceStatusVoid        = "void"
	InvoiceStatusCancelled   = "cancelled"
)

// Invoice factura por servicios de mantenimiento prestados en una sede.
// LocationID es siempre una sede, nunca una empresa a secas: el destino de
// facturación en QBO (empresa padre o la propia sede) se deriva en el momento
// del sync a partir de Location.BillWithParent.
type Invoice struct {
	ID           string
	LocationID   string
	CompanyID    string // referencia desnormalizada a la empresa padre; vacío si la sede es standalone
	Status       string
	TxnDate      time.Time
	DueDate      time.Time
	CustomerNote string // nota visible para el cliente; el sync le añade el token "(Location ID: ...)"
	PrivateNote  string

	// Montos en decimal (NUMERIC en DB) para evitar deriva de flotantes.
	Subtotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal

	ExternalID        string
	ExternalVersion   string
	ExternalDocNumber string // DocNumber asignado por QBO

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSynced informa si la factura ya existe en QBO.
func (i *Invoice) IsSynced() bool {
	return i.ExternalID != "" && i.ExternalVersion != ""
}

// LinesLocked informa si la factura ya no admite edición de líneas.
// paid y void son terminales para las líneas, pero la factura puede necesitar
// todavía un último push de estado hacia QBO.
func (i *Invoice) LinesLocked() bool {
	return i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusVoid
}

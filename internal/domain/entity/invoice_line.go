package entity

import "github.com/shopspring/decimal"

// InvoiceLine línea de detalle de una factura de servicio.
type InvoiceLine struct {
	ID          string
	InvoiceID   string
	LineNumber  int // define el orden de las líneas en QBO (LineNum)
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal

	ExternalItemRef    string // ItemRef en QBO (servicio/repuesto del catálogo)
	ExternalTaxCodeRef string // TaxCodeRef en QBO
}

// Amount devuelve Quantity × UnitPrice recalculado. El subtotal almacenado
// nunca se reenvía a QBO: se recalcula siempre en el momento del mapeo.
func (l *InvoiceLine) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

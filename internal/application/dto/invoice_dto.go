package dto

import "github.com/shopspring/decimal"

// CreateInvoiceRequest body para POST /api/invoices. La factura siempre se
// emite contra una sede; el destino de facturación en QBO (sede o empresa
// padre) se deriva en el momento del sync, no aquí.
type CreateInvoiceRequest struct {
	LocationID   string               `json:"location_id"`
	TxnDate      string               `json:"txn_date,omitempty"` // AAAA-MM-DD; vacío = hoy
	DueDate      string               `json:"due_date,omitempty"`
	CustomerNote string               `json:"customer_note,omitempty"`
	PrivateNote  string               `json:"private_note,omitempty"`
	TaxRate      decimal.Decimal      `json:"tax_rate"` // fracción, ej. 0.19
	Lines        []InvoiceLineRequest `json:"lines"`
}

// InvoiceLineRequest línea de servicio de la factura.
type InvoiceLineRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ItemRef     string          `json:"item_ref,omitempty"`     // catálogo QBO
	TaxCodeRef  string          `json:"tax_code_ref,omitempty"` // código de impuesto QBO
}

// UpdateInvoiceStatusRequest body para PATCH /api/invoices/:id/status.
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent partial_paid paid void cancelled"`
}

// InvoiceResponse factura con detalle para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID                string                `json:"id"`
	LocationID        string                `json:"location_id"`
	CompanyID         string                `json:"company_id,omitempty"`
	Status            string                `json:"status"`
	TxnDate           string                `json:"txn_date,omitempty"`
	DueDate           string                `json:"due_date,omitempty"`
	CustomerNote      string                `json:"customer_note,omitempty"`
	Subtotal          decimal.Decimal       `json:"subtotal"`
	TaxTotal          decimal.Decimal       `json:"tax_total"`
	GrandTotal        decimal.Decimal       `json:"grand_total"`
	ExternalID        string                `json:"external_id,omitempty"`
	ExternalVersion   string                `json:"external_version,omitempty"`
	ExternalDocNumber string                `json:"external_doc_number,omitempty"`
	Synced            bool                  `json:"synced"`
	Lines             []InvoiceLineResponse `json:"lines"`
}

// InvoiceLineResponse línea en la respuesta, con el monto recalculado.
type InvoiceLineResponse struct {
	ID          string          `json:"id"`
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceListResponse lista paginada de facturas de una sede.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

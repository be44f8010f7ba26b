// Package qbo implementa la frontera con QuickBooks Online: wire types JSON,
// mapper local⇄QBO, validador de jerarquía y los clientes (HTTP real y en
// memoria para dev/tests).
package qbo

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ref referencia por valor a otra entidad QBO (CustomerRef, ParentRef, ItemRef...).
type Ref struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

// PhysicalAddress bloque de dirección QBO. Se omite por completo cuando la
// dirección local está vacía: QBO distingue bloque ausente de bloque en blanco.
type PhysicalAddress struct {
	Line1                  string `json:"Line1,omitempty"`
	City                   string `json:"City,omitempty"`
	CountrySubDivisionCode string `json:"CountrySubDivisionCode,omitempty"`
	PostalCode             string `json:"PostalCode,omitempty"`
	Country                string `json:"Country,omitempty"`
}

// Telephone teléfono en formato libre QBO.
type Telephone struct {
	FreeFormNumber string `json:"FreeFormNumber,omitempty"`
}

// EmailAddress correo principal QBO.
type EmailAddress struct {
	Address string `json:"Address,omitempty"`
}

// MemoRef nota visible al cliente (CustomerMemo).
type MemoRef struct {
	Value string `json:"value"`
}

// MetaData tiempos de creación/actualización que QBO adjunta en las respuestas.
type MetaData struct {
	CreateTime      time.Time `json:"CreateTime,omitempty"`
	LastUpdatedTime time.Time `json:"LastUpdatedTime,omitempty"`
}

// Customer payload de Customer/Sub-Customer QBO (outbound e inbound).
// Job, ParentRef y BillWithParent son punteros: solo viajan para Sub-Customers
// y en ese caso viajan SIEMPRE, también en updates, porque cualquiera de los
// tres puede cambiar con independencia de los otros.
type Customer struct {
	ID               string           `json:"Id,omitempty"`
	SyncToken        string           `json:"SyncToken,omitempty"`
	DisplayName      string           `json:"DisplayName"`
	CompanyName      string           `json:"CompanyName,omitempty"`
	PrimaryPhone     *Telephone       `json:"PrimaryPhone,omitempty"`
	PrimaryEmailAddr *EmailAddress    `json:"PrimaryEmailAddr,omitempty"`
	BillAddr         *PhysicalAddress `json:"BillAddr,omitempty"`
	Active           bool             `json:"Active"`
	Job              *bool            `json:"Job,omitempty"`
	ParentRef        *Ref             `json:"ParentRef,omitempty"`
	BillWithParent   *bool            `json:"BillWithParent,omitempty"`
	MetaData         *MetaData        `json:"MetaData,omitempty"`
}

// DetailTypeSalesItem único DetailType que emite este motor.
const DetailTypeSalesItem = "SalesItemLineDetail"

// SalesItemLineDetail detalle de línea de venta.
type SalesItemLineDetail struct {
	Qty        decimal.Decimal `json:"Qty"`
	UnitPrice  decimal.Decimal `json:"UnitPrice"`
	ItemRef    *Ref            `json:"ItemRef,omitempty"`
	TaxCodeRef *Ref            `json:"TaxCodeRef,omitempty"`
}

// Line línea de factura QBO. Amount se recalcula SIEMPRE como Qty×UnitPrice
// en el mapeo; nunca se copia de un subtotal almacenado posiblemente viejo.
type Line struct {
	ID                  string               `json:"Id,omitempty"`
	LineNum             int                  `json:"LineNum,omitempty"`
	Description         string               `json:"Description,omitempty"`
	Amount              decimal.Decimal      `json:"Amount"`
	DetailType          string               `json:"DetailType"`
	SalesItemLineDetail *SalesItemLineDetail `json:"SalesItemLineDetail,omitempty"`
}

// Invoice payload de factura QBO (outbound e inbound).
type Invoice struct {
	ID           string           `json:"Id,omitempty"`
	SyncToken    string           `json:"SyncToken,omitempty"`
	DocNumber    string           `json:"DocNumber,omitempty"`
	CustomerRef  Ref              `json:"CustomerRef"`
	TxnDate      string           `json:"TxnDate,omitempty"` // AAAA-MM-DD
	DueDate      string           `json:"DueDate,omitempty"`
	Line         []Line           `json:"Line"`
	BillAddr     *PhysicalAddress `json:"BillAddr,omitempty"`
	ShipAddr     *PhysicalAddress `json:"ShipAddr,omitempty"`
	CustomerMemo *MemoRef         `json:"CustomerMemo,omitempty"`
	PrivateNote  string           `json:"PrivateNote,omitempty"`
	CurrencyRef  *Ref             `json:"CurrencyRef,omitempty"`

	// Solo inbound: QBO es la fuente de verdad del dinero cobrado.
	TotalAmt decimal.Decimal `json:"TotalAmt"`
	Balance  decimal.Decimal `json:"Balance"`
	MetaData *MetaData       `json:"MetaData,omitempty"`
}

// DateFormat formato de fecha de los campos TxnDate/DueDate.
const DateFormat = "2006-01-02"

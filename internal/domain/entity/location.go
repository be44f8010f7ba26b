package entity

import "time"

// Location sitio de servicio de un cliente (segundo nivel de la jerarquía).
// Con CompanyID se mapea a un Sub-Customer de QBO bajo la empresa padre;
// sin CompanyID es una sede independiente y se mapea a un Customer top-level.
type Location struct {
	ID             string
	CompanyID      string // vacío = sede sin empresa padre (standalone)
	Name           string
	Email          string
	Phone          string
	ServiceAddress Address

	// BillWithParent decide el destino de facturación: true = las facturas de
	// esta sede se emiten contra la empresa padre; false = contra la sede.
	// Se evalúa en el momento del sync, nunca se almacena el destino derivado.
	BillWithParent bool
	Inactive       bool

	ExternalID      string
	ExternalVersion string
	// ExternalParentID refleja el ParentRef que QBO conoce. Puede divergir de
	// CompanyID si la sede se reasignó localmente y aún no se re-sincroniza.
	ExternalParentID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSynced informa si la sede ya existe en QBO.
func (l *Location) IsSynced() bool {
	return l.ExternalID != "" && l.ExternalVersion != ""
}

// HasParent informa si la sede pertenece a una empresa.
func (l *Location) HasParent() bool {
	return l.CompanyID != ""
}

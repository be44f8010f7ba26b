package entity

import "time"

// Company empresa cliente (nivel superior de la jerarquía de facturación).
// Se mapea a un Customer top-level en QuickBooks Online.
type Company struct {
	ID             string
	Name           string
	LegalName      string // razón social; si está vacía se usa Name como CompanyName
	Email          string
	Phone          string
	BillingAddress Address
	IsActive       bool

	// Enlace con QBO. Invariante: ExternalID y ExternalVersion van siempre
	// juntos (ambos vacíos = nunca sincronizada). El único escritor del par
	// es SaveExternalLink, después de una respuesta exitosa del WS.
	ExternalID      string
	ExternalVersion string // SyncToken de QBO; lo dicta la respuesta, nunca se calcula localmente

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSynced informa si la empresa ya existe en QBO.
func (c *Company) IsSynced() bool {
	return c.ExternalID != "" && c.ExternalVersion != ""
}

// CompanyName devuelve la razón social a enviar a QBO (LegalName ?? Name).
func (c *Company) CompanyName() string {
	if c.LegalName != "" {
		return c.LegalName
	}
	return c.Name
}

package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa cliente.
type CreateCompanyRequest struct {
	Name      string     `json:"name" validate:"required,min=1,max=200"`
	LegalName string     `json:"legal_name" validate:"omitempty,max=200"`
	Email     string     `json:"email" validate:"omitempty,email"`
	Phone     string     `json:"phone"`
	Billing   AddressDTO `json:"billing_address"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	Name      *string     `json:"name" validate:"omitempty,min=1,max=200"`
	LegalName *string     `json:"legal_name" validate:"omitempty,max=200"`
	Email     *string     `json:"email" validate:"omitempty,email"`
	Phone     *string     `json:"phone"`
	Billing   *AddressDTO `json:"billing_address"`
	IsActive  *bool       `json:"is_active"`
}

// CompanyResponse salida de una empresa, con el enlace QBO expuesto en solo
// lectura (el par external_id/external_version solo lo escribe el sync).
type CompanyResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	LegalName       string     `json:"legal_name,omitempty"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Billing         AddressDTO `json:"billing_address"`
	IsActive        bool       `json:"is_active"`
	ExternalID      string     `json:"external_id,omitempty"`
	ExternalVersion string     `json:"external_version,omitempty"`
	Synced          bool       `json:"synced"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

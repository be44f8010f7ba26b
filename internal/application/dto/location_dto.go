package dto

import "time"

// CreateLocationRequest entrada para crear una sede de servicio.
// CompanyID vacío crea una sede standalone (sin empresa padre).
type CreateLocationRequest struct {
	CompanyID      string     `json:"company_id"`
	Name           string     `json:"name" validate:"required,min=1,max=200"`
	Email          string     `json:"email" validate:"omitempty,email"`
	Phone          string     `json:"phone"`
	Service        AddressDTO `json:"service_address"`
	BillWithParent bool       `json:"bill_with_parent"`
}

// UpdateLocationRequest entrada para actualizar una sede (campos opcionales).
type UpdateLocationRequest struct {
	Name           *string     `json:"name" validate:"omitempty,min=1,max=200"`
	Email          *string     `json:"email" validate:"omitempty,email"`
	Phone          *string     `json:"phone"`
	Service        *AddressDTO `json:"service_address"`
	BillWithParent *bool       `json:"bill_with_parent"`
	Inactive       *bool       `json:"inactive"`
}

// LocationResponse salida de una sede.
type LocationResponse struct {
	ID               string     `json:"id"`
	CompanyID        string     `json:"company_id,omitempty"`
	Name             string     `json:"name"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Service          AddressDTO `json:"service_address"`
	BillWithParent   bool       `json:"bill_with_parent"`
	Inactive         bool       `json:"inactive"`
	ExternalID       string     `json:"external_id,omitempty"`
	ExternalVersion  string     `json:"external_version,omitempty"`
	ExternalParentID string     `json:"external_parent_id,omitempty"`
	Synced           bool       `json:"synced"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// LocationListResponse lista paginada de sedes.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrForbidden    = errors.New("acceso denegado")

	// ErrInvoiceLocked la factura está en paid/void y no admite editar líneas.
	ErrInvoiceLocked = errors.New("la factura no admite más cambios de líneas")

	// Errores de contrato del caller hacia el motor de sync: se detectan en
	// local y nunca generan una llamada de red.
	ErrMissingExternalID       = errors.New("update solicitado sobre una entidad sin ExternalID/SyncToken")
	ErrBillingTargetUnresolved = errors.New("ninguna referencia de cliente QBO disponible para la factura")
	ErrHierarchyTooDeep        = errors.New("el customer QBO está a profundidad 3; requiere resolución manual")
)

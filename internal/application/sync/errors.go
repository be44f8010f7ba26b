// Package sync implementa el orquestador de sincronización con QuickBooks
// Online: decide create vs update vs void por entidad, ordena padre antes que
// hijo, clasifica fallos y agrega resultados parciales por batch.
package sync

import (
	"errors"
	"fmt"

	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/qbo"
)

// Códigos estables legibles por máquina. Acompañan siempre a un mensaje humano;
// ningún error se traga en silencio: un batch devuelve un resultado por entidad.
const (
	// CodeNotConfigured sin credencial QBO. Fatal, jamás se reintenta.
	CodeNotConfigured = "NOT_CONFIGURED"
	// CodeMissingExternalID update sobre una entidad sin sincronizar. Error de
	// programación del caller; se detecta en local, nunca viaja por la red.
	CodeMissingExternalID = "MISSING_EXTERNAL_ID"
	// CodeBillingTargetUnresolved factura sin referencia de cliente resoluble.
	CodeBillingTargetUnresolved = "BILLING_TARGET_UNRESOLVED"
	// CodeDuplicateName QBO rechazó por DisplayName duplicado. Se reintenta UNA
	// vez tras aplicar el helper de unicidad; después se reporta.
	CodeDuplicateName = "DUPLICATE_NAME"
	// CodeParentNotSynced sede cuyo padre aún no tiene ExternalID. Nunca se
	// reintenta: el caller re-ejecuta el batch cuando el padre esté sincronizado.
	CodeParentNotSynced = "PARENT_NOT_SYNCED"
	// CodeStaleVersion el SyncToken enviado ya no es el vigente: otro cliente
	// escribió primero. Se reporta para que el caller relea y decida.
	CodeStaleVersion = "STALE_VERSION"
	// CodeHierarchyTooDeep el registro remoto está a profundidad 3.
	CodeHierarchyTooDeep = "HIERARCHY_TOO_DEEP"
	// CodeNotFound la entidad local no existe.
	CodeNotFound = "NOT_FOUND"
	// CodeUnmatched registro remoto sin contraparte local resoluble (pull).
	CodeUnmatched = "UNMATCHED"

	CodeCreateFailed = "CREATE_FAILED"
	CodeUpdateFailed = "UPDATE_FAILED"
	CodeVoidFailed   = "VOID_FAILED"
)

// Error error de sincronización con código estable + causa subyacente.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code string, err error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// classifyCallError traduce un fallo de llamada QBO al código de la taxonomía.
// failCode es el código genérico de la operación (CREATE_FAILED/UPDATE_FAILED/
// VOID_FAILED) que se usa cuando el fault no tiene clasificación más precisa.
func classifyCallError(err error, failCode, context string) *Error {
	var apiErr *qbo.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsDuplicateName():
			return wrapError(CodeDuplicateName, err, "%s: DisplayName duplicado en QBO", context)
		case apiErr.IsStaleSyncToken():
			return wrapError(CodeStaleVersion, err, "%s: SyncToken viejo, otro cliente escribió primero", context)
		case apiErr.IsAuth():
			return wrapError(CodeNotConfigured, err, "%s: credencial QBO rechazada", context)
		}
	}
	return wrapError(failCode, err, "%s", context)
}

// Package qbo contiene las reglas puras de nombres y jerarquía que impone
// QuickBooks Online sobre los Customers, sin dependencias de red ni de wire types.
package qbo

import (
	"fmt"
	"strings"
	"time"
)

// DisplayNameSeparator separa el nombre del padre y el de la sede en el
// DisplayName de un Sub-Customer. Es una convención de presentación de QBO,
// no un adorno: el parser inbound depende de ella para recuperar la jerarquía.
const DisplayNameSeparator = ": "

// MaxUniqueNameAttempts intentos con sufijo " (n)" antes de caer al timestamp.
const MaxUniqueNameAttempts = 50

// BuildDisplayName construye el DisplayName de un Sub-Customer:
// "{ParentName}: {LocationName}". El nombre de la sede se conserva literal
// aunque contenga el separador; SplitDisplayName parte solo en la primera ocurrencia.
func BuildDisplayName(parentName, locationName string) string {
	return parentName + DisplayNameSeparator + locationName
}

// SplitDisplayName descompone un DisplayName de Sub-Customer en
// {parentName, locationName}. Parte únicamente en la PRIMERA ocurrencia del
// separador: si el nombre de la sede contiene ": ", la cola queda intacta.
// ok=false cuando el nombre no contiene el separador (dato remoto creado a
// mano en la consola de QBO; el caller lo trata como warning, no como fallo).
func SplitDisplayName(displayName string) (parentName, locationName string, ok bool) {
	idx := strings.Index(displayName, DisplayNameSeparator)
	if idx < 0 {
		return "", displayName, false
	}
	return displayName[:idx], displayName[idx+len(DisplayNameSeparator):], true
}

// BuildUniqueDisplayName devuelve desired si no está tomado; si ya existe,
// prueba `desired (2)`, `desired (3)`, ... hasta MaxUniqueNameAttempts y como
// último recurso añade un timestamp. QBO rechaza DisplayNames duplicados de
// plano, por eso este helper se invoca ANTES de la llamada de creación, no
// para interpretar un rechazo después.
func BuildUniqueDisplayName(desired string, taken map[string]bool) string {
	if !taken[desired] {
		return desired
	}
	for n := 2; n <= MaxUniqueNameAttempts; n++ {
		candidate := fmt.Sprintf("%s (%d)", desired, n)
		if !taken[candidate] {
			return candidate
		}
	}
	return fmt.Sprintf("%s (%d)", desired, time.Now().Unix())
}

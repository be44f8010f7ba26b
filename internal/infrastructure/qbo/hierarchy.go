package qbo

import (
	"fmt"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
)

// ValidateHierarchyDepth verifica que un customer candidato respete el límite
// de dos niveles de QBO. Camina el ParentRef UNA vez contra la tabla de
// customers conocidos: si el padre tiene a su vez ParentRef, el candidato es
// un nodo ilegal de profundidad 3 y se reporta sin intentar sincronizarlo
// (requiere resolución manual, nunca automática).
//
// Un ParentRef que no aparece en byID no se puede verificar y se acepta: el
// pull trabaja sobre un snapshot eventualmente consistente.
func ValidateHierarchyDepth(candidate *Customer, byID map[string]*Customer) error {
	if candidate.ParentRef == nil {
		return nil
	}
	parent, known := byID[candidate.ParentRef.Value]
	if !known {
		return nil
	}
	if parent.ParentRef != nil {
		return fmt.Errorf("customer %s (%q) cuelga de %s que ya es sub-customer de %s: %w",
			candidate.ID, candidate.DisplayName, parent.ID, parent.ParentRef.Value, domain.ErrHierarchyTooDeep)
	}
	return nil
}

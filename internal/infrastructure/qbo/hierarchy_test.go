package qbo_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/qbo"
)

func customersByID(customers ...*qbo.Customer) map[string]*qbo.Customer {
	byID := make(map[string]*qbo.Customer, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
	}
	return byID
}

func TestValidateHierarchyDepth_SinPadre(t *testing.T) {
	candidate := &qbo.Customer{ID: "1", DisplayName: "Top"}
	assert.NoError(t, qbo.ValidateHierarchyDepth(candidate, customersByID(candidate)))
}

func TestValidateHierarchyDepth_PadreTopLevel(t *testing.T) {
	parent := &qbo.Customer{ID: "1", DisplayName: "Acme"}
	candidate := &qbo.Customer{ID: "2", DisplayName: "Acme: Bodega", ParentRef: &qbo.Ref{Value: "1"}}
	assert.NoError(t, qbo.ValidateHierarchyDepth(candidate, customersByID(parent, candidate)))
}

// TestValidateHierarchyDepth_Profundidad3 un candidato cuyo padre ya es
// sub-customer es un nodo ilegal de profundidad 3: se reporta, no se sincroniza.
func TestValidateHierarchyDepth_Profundidad3(t *testing.T) {
	grandparent := &qbo.Customer{ID: "1", DisplayName: "Acme"}
	parent := &qbo.Customer{ID: "2", DisplayName: "Acme: Bodega", ParentRef: &qbo.Ref{Value: "1"}}
	candidate := &qbo.Customer{ID: "3", DisplayName: "Acme: Bodega: Piso 2", ParentRef: &qbo.Ref{Value: "2"}}

	err := qbo.ValidateHierarchyDepth(candidate, customersByID(grandparent, parent, candidate))
	assert.True(t, errors.Is(err, domain.ErrHierarchyTooDeep))
}

// TestValidateHierarchyDepth_PadreDesconocido un ParentRef fuera del snapshot
// no se puede verificar; se acepta (consistencia eventual del pull).
func TestValidateHierarchyDepth_PadreDesconocido(t *testing.T) {
	candidate := &qbo.Customer{ID: "9", DisplayName: "Huérfano", ParentRef: &qbo.Ref{Value: "404"}}
	assert.NoError(t, qbo.ValidateHierarchyDepth(candidate, customersByID(candidate)))
}

package qbo_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/qbo"
)

// ── DisplayName de Sub-Customer ───────────────────────────────────────────────

func TestBuildDisplayName_Simple(t *testing.T) {
	assert.Equal(t, "Acme S.A.: Bodega Norte", qbo.BuildDisplayName("Acme S.A.", "Bodega Norte"))
}

// TestSplitDisplayName_RoundTrip verifica que cualquier nombre construido por
// el builder se recupera exacto, incluso cuando el nombre de la sede contiene
// el separador ": " (se parte solo en la primera ocurrencia).
func TestSplitDisplayName_RoundTrip(t *testing.T) {
	cases := []struct {
		parent, location string
	}{
		{"Acme S.A.", "Bodega Norte"},
		{"Acme S.A.", "Planta: Línea 2"},
		{"Acme", "A: B: C"},
		{"Grupo Éxito", "Sede Calle 80"},
	}
	for _, tc := range cases {
		built := qbo.BuildDisplayName(tc.parent, tc.location)
		parent, location, ok := qbo.SplitDisplayName(built)
		require.True(t, ok, "el nombre construido siempre contiene el separador: %q", built)
		assert.Equal(t, tc.parent, parent)
		assert.Equal(t, tc.location, location, "la cola debe conservarse literal")
	}
}

func TestSplitDisplayName_SinSeparador(t *testing.T) {
	parent, location, ok := qbo.SplitDisplayName("Sede Sola")
	assert.False(t, ok, "un nombre sin separador no es un Sub-Customer bien formado")
	assert.Empty(t, parent)
	assert.Equal(t, "Sede Sola", location)
}

// ── Unicidad de nombres ───────────────────────────────────────────────────────

func TestBuildUniqueDisplayName_Libre(t *testing.T) {
	assert.Equal(t, "Acme", qbo.BuildUniqueDisplayName("Acme", map[string]bool{}))
}

func TestBuildUniqueDisplayName_Tomado(t *testing.T) {
	taken := map[string]bool{"Acme": true}
	assert.Equal(t, "Acme (2)", qbo.BuildUniqueDisplayName("Acme", taken))
}

func TestBuildUniqueDisplayName_SiguienteSufijo(t *testing.T) {
	taken := map[string]bool{"Acme": true, "Acme (2)": true}
	assert.Equal(t, "Acme (3)", qbo.BuildUniqueDisplayName("Acme", taken))
}

// TestBuildUniqueDisplayName_FallbackTimestamp agota los sufijos numéricos y
// verifica que el último recurso es un sufijo distinto de todos los tomados.
func TestBuildUniqueDisplayName_FallbackTimestamp(t *testing.T) {
	taken := map[string]bool{"Acme": true}
	for n := 2; n <= qbo.MaxUniqueNameAttempts; n++ {
		taken[fmt.Sprintf("Acme (%d)", n)] = true
	}
	got := qbo.BuildUniqueDisplayName("Acme", taken)
	assert.False(t, taken[got], "el fallback debe producir un nombre no tomado")
	assert.True(t, strings.HasPrefix(got, "Acme ("), "el fallback conserva el nombre base: %q", got)
}

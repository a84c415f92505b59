package texto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizar valida el plegado de tildes y el recorte para búsqueda.
func TestNormalizar(t *testing.T) {
	casos := []struct {
		entrada  string
		esperado string
	}{
		{"Azúcar", "azucar"},
		{"  CAFÉ molido ", "cafe molido"},
		{"ñoquis", "noquis"}, // la eñe también pliega: el operador tipea "n"
		{"yerba", "yerba"},
		{"", ""},
	}
	for _, c := range casos {
		assert.Equal(t, c.esperado, Normalizar(c.entrada), "entrada %q", c.entrada)
	}
}

// Package texto normaliza términos de búsqueda: el operador tipea rápido y
// sin tildes, y el catálogo puede tener los nombres acentuados (o al revés).
package texto

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var plegador = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalizar devuelve el término en minúsculas, sin marcas diacríticas y con
// los espacios de los extremos recortados. "Azúcar " y "azucar" normalizan
// al mismo valor.
func Normalizar(s string) string {
	plegado, _, err := transform.String(plegador, s)
	if err != nil {
		plegado = s
	}
	return strings.ToLower(strings.TrimSpace(plegado))
}

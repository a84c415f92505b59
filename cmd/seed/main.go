// seed genera un script SQL con datos iniciales de demostración: una
// sucursal, un operador de caja y un catálogo mínimo con stock.
//
// Uso: go run ./cmd/seed [email] [password]
// Por defecto crea operador demo@puntosur.ar / cambiame123.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_demo.sql
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/puntosur/facturacion-api/pkg/texto"
	"golang.org/x/crypto/bcrypt"
)

type producto struct {
	codigo  string
	barcode string
	nombre  string
	precio  string
	tasaIVA string
	stock   int
}

var catalogo = []producto{
	{"AZ001", "7790001000011", "Azúcar Ledesma 1kg", "1450.00", "21", 40},
	{"YE002", "7790001000028", "Yerba Playadito 500g", "3200.00", "21", 25},
	{"LE003", "7790001000035", "Leche entera La Serenísima 1L", "1890.00", "21", 60},
	{"PA004", "7790001000042", "Pan lactal Bimbo 460g", "2750.00", "21", 15},
	{"HA005", "", "Harina 000 Cañuelas 1kg", "980.00", "10.5", 50},
	{"AG006", "7790001000066", "Agua mineral Villavicencio 2L", "1200.00", "21", 30},
}

func main() {
	email := "demo@puntosur.ar"
	password := "cambiame123"
	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	if len(os.Args) > 2 {
		password = os.Args[2]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hashear password: %v\n", err)
		os.Exit(1)
	}

	branchID := uuid.NewString()
	operatorID := uuid.NewString()

	var sb strings.Builder
	sb.WriteString("-- Datos de demostración. Generado por cmd/seed; no editar a mano.\n\n")

	fmt.Fprintf(&sb,
		"INSERT INTO branches (id, nombre, direccion, punto_venta) VALUES\n    (%s, %s, %s, 1);\n\n",
		lit(branchID), lit("Casa Central"), lit("Av. San Martín 1234, Mendoza"))

	fmt.Fprintf(&sb,
		"INSERT INTO operators (id, nombre, email, password_hash, branch_id) VALUES\n    (%s, %s, %s, %s, %s);\n\n",
		lit(operatorID), lit("Operador Demo"), lit(email), lit(string(hash)), lit(branchID))

	sb.WriteString("INSERT INTO products (id, codigo, barcode, nombre, nombre_normalizado, precio, tasa_iva) VALUES\n")
	ids := make([]string, len(catalogo))
	for i, p := range catalogo {
		ids[i] = uuid.NewString()
		sep := ","
		if i == len(catalogo)-1 {
			sep = ";"
		}
		fmt.Fprintf(&sb, "    (%s, %s, %s, %s, %s, %s, %s)%s\n",
			lit(ids[i]), lit(p.codigo), lit(p.barcode), lit(p.nombre),
			lit(texto.Normalizar(p.nombre)), p.precio, p.tasaIVA, sep)
	}
	sb.WriteString("\n")

	sb.WriteString("INSERT INTO stock (product_id, branch_id, cantidad) VALUES\n")
	for i, p := range catalogo {
		sep := ","
		if i == len(catalogo)-1 {
			sep = ";"
		}
		fmt.Fprintf(&sb, "    (%s, %s, %d)%s\n", lit(ids[i]), lit(branchID), p.stock, sep)
	}

	outPath := "internal/infrastructure/postgres/migrations/002_seed_demo.sql"
	if err := os.WriteFile(outPath, []byte(sb.String()), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir %s: %v\n", outPath, err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s (operador %s)\n", outPath, email)
}

// lit escapa un literal SQL de texto.
func lit(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

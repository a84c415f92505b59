package entity

import "time"

// Categorías fiscales del cliente. La categoría determina el tipo de
// comprobante por defecto (RI → A, resto → B, exento → C).
const (
	CategoriaResponsableInscripto = "RESPONSABLE_INSCRIPTO"
	CategoriaMonotributo          = "MONOTRIBUTO"
	CategoriaConsumidorFinal      = "CONSUMIDOR_FINAL"
	CategoriaExento               = "EXENTO"
)

// Client representa un cliente de facturación.
type Client struct {
	ID              string
	Nombre          string
	Documento       string // CUIT o DNI
	CategoriaFiscal string
	Email           string
	Telefono        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ConsumidorFinalAnonimo es la identidad por defecto cuando la venta no tiene
// cliente asignado.
func ConsumidorFinalAnonimo() *Client {
	return &Client{
		ID:              "consumidor-final",
		Nombre:          "Consumidor Final",
		Documento:       "0",
		CategoriaFiscal: CategoriaConsumidorFinal,
	}
}

// TipoComprobantePorDefecto deriva el tipo fiscal implicado por la categoría.
func (c *Client) TipoComprobantePorDefecto() string {
	switch c.CategoriaFiscal {
	case CategoriaResponsableInscripto:
		return TipoFacturaA
	case CategoriaExento:
		return TipoFacturaC
	default:
		return TipoFacturaB
	}
}

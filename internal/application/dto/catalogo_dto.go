package dto

import "github.com/shopspring/decimal"

// CreateProductRequest alta de producto en el catálogo.
type CreateProductRequest struct {
	Codigo  string          `json:"codigo" validate:"required"`
	Barcode string          `json:"barcode,omitempty"`
	Nombre  string          `json:"nombre" validate:"required"`
	Precio  decimal.Decimal `json:"precio"`
	TasaIVA decimal.Decimal `json:"tasa_iva"`
}

// ProductResponse producto del catálogo.
type ProductResponse struct {
	ID      string          `json:"id"`
	Codigo  string          `json:"codigo"`
	Barcode string          `json:"barcode,omitempty"`
	Nombre  string          `json:"nombre"`
	Precio  decimal.Decimal `json:"precio"`
	TasaIVA decimal.Decimal `json:"tasa_iva"`
}

// CreateClientRequest alta de cliente de facturación.
type CreateClientRequest struct {
	Nombre          string `json:"nombre" validate:"required"`
	Documento       string `json:"documento" validate:"required"`
	CategoriaFiscal string `json:"categoria_fiscal" validate:"required"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	Telefono        string `json:"telefono,omitempty"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID              string `json:"id"`
	Nombre          string `json:"nombre"`
	Documento       string `json:"documento"`
	CategoriaFiscal string `json:"categoria_fiscal"`
	Email           string `json:"email,omitempty"`
	Telefono        string `json:"telefono,omitempty"`
}

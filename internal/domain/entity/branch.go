package entity

import "time"

// Branch es una sucursal (punto de venta) con stock y numeración propios.
type Branch struct {
	ID          string
	Nombre      string
	Direccion   string
	PuntoVenta  int // número de punto de venta asignado por la autoridad fiscal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

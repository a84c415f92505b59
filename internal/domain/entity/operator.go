package entity

import "time"

// Operator es el usuario de caja que opera el punto de venta.
type Operator struct {
	ID           string
	Nombre       string
	Email        string
	PasswordHash string
	BranchID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

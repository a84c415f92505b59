package entity

import "time"

// Stock es la existencia actual de un producto en una sucursal.
type Stock struct {
	ProductID string
	BranchID  string
	Cantidad  int64
	UpdatedAt time.Time
}

package entity

import "time"

// FiscalAuthorization es el resultado de la autorización de la autoridad
// fiscal para un comprobante. Se produce una sola vez por documento emitido y
// no se muta después.
type FiscalAuthorization struct {
	Exito          bool
	Numero         int64
	CAE            string
	CAEVencimiento time.Time
	ErrorDetalle   string
}

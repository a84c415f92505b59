package draft

import (
	"time"

	"github.com/puntosur/facturacion-api/internal/domain/entity"
)

// Estados del ciclo de vida de la venta en curso.
const (
	EstadoComposicion = "COMPOSICION" // mutable por el manager
	EstadoLiquidacion = "LIQUIDACION" // tomada por el orquestador
	EstadoConfirmada  = "CONFIRMADA"  // comprobante emitido
	EstadoFallida     = "FALLIDA"     // liquidación falló; PasoFallido indica dónde
)

// Draft es la venta en curso: cliente, tipo de comprobante, líneas, ajuste y
// flag de IVA. Es propiedad exclusiva del Manager hasta que el orquestador de
// liquidación la toma; se consume y cierra exactamente una vez.
type Draft struct {
	ID           string
	Client       *entity.Client // nil → consumidor final anónimo
	Tipo         string
	Lines        []entity.LineItem
	Ajuste       entity.Ajuste
	IVAAplicable bool
	BranchID     string
	OperatorID   string
	CreatedAt    time.Time

	Estado      string
	PasoFallido string // paso del orquestador que falló, si Estado == FALLIDA
}

// ClienteResuelto devuelve el cliente asignado o la identidad anónima de
// consumidor final.
func (d *Draft) ClienteResuelto() *entity.Client {
	if d.Client != nil {
		return d.Client
	}
	return entity.ConsumidorFinalAnonimo()
}

// Package pdf implementa la representación gráfica del comprobante emitido.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Sucursal + letra │ Tipo + N° (PtoVta-Numero) + Fecha│
//	│  ─────────────────────────────────────────────────────────  │
//	│  RECEPTOR: Nombre + CUIT/DNI + categoría                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | IVA | Subtotal         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Ajuste / Neto / IVA / TOTAL             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: CAE + vencimiento + QR, o leyenda de contingencia   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/puntosur/facturacion-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 20, Green: 60, Blue: 110}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var letraPorTipo = map[string]string{
	entity.TipoFacturaA:    "A",
	entity.TipoFacturaB:    "B",
	entity.TipoFacturaC:    "C",
	entity.TipoComprobX:    "X",
	entity.TipoPresupuesto: "P",
}

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoRenderer genera el PDF del comprobante usando Maroto v2.
type MarotoRenderer struct{}

// NewMarotoRenderer construye el renderer.
func NewMarotoRenderer() *MarotoRenderer { return &MarotoRenderer{} }

// Render genera el PDF y devuelve sus bytes.
func (g *MarotoRenderer) Render(
	_ context.Context,
	comp *entity.Comprobante,
	branch *entity.Branch,
	client *entity.Client,
	details []*entity.ComprobanteDetail,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(tituloDocumento(comp.Tipo), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(comp, branch))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(receptorRow(client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(details) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(comp))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(comp, branch) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func tituloDocumento(tipo string) string {
	switch tipo {
	case entity.TipoPresupuesto:
		return "Presupuesto"
	case entity.TipoComprobX:
		return "Comprobante X"
	}
	return "Factura " + letraPorTipo[tipo]
}

// headerRow: sucursal + letra grande (izq) y tipo + numeración + fecha (der).
func headerRow(comp *entity.Comprobante, branch *entity.Branch) core.Row {
	numero := fmt.Sprintf("%04d-%08d", branch.PuntoVenta, comp.Numero)
	fecha := comp.Fecha.Format("02/01/2006")

	return row.New(18).Add(
		col.New(2).Add(
			text.New(letraPorTipo[comp.Tipo], props.Text{
				Style: fontstyle.Bold, Size: 22, Align: align.Center,
				Color: colorPrimary, Top: 2,
			}),
		),
		col.New(5).Add(
			text.New(branch.Nombre, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New(branch.Direccion, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(tituloDocumento(comp.Tipo), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(numero, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// receptorRow: datos del cliente.
func receptorRow(client *entity.Client) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(client.Nombre, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("CUIT/DNI: %s   |   %s",
				nonEmpty(client.Documento, "—"),
				client.CategoriaFiscal,
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("P. Unit.", 2, align.Right),
		h("IVA%", 1, align.Center),
		h("Subtotal", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea del comprobante.
func tableDetailRows(details []*entity.ComprobanteDetail) []core.Row {
	result := make([]core.Row, 0, len(details))
	for _, d := range details {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", d.Cantidad),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				d.Nombre,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatImporte(d.PrecioUnitario),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				d.TasaIVA.StringFixed(1),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				formatImporte(d.Subtotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(comp *entity.Comprobante) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	labels := []core.Component{label("Subtotal:")}
	values := []core.Component{value(formatImporte(comp.Subtotal))}
	if comp.AjusteTipo == entity.AjusteDescuento {
		labels = append(labels, label(fmt.Sprintf("Descuento %s%%:", comp.AjustePct.StringFixed(1))))
		values = append(values, value("-"+formatImporte(comp.Subtotal.Sub(comp.NetoAjustado))))
	} else if comp.AjusteTipo == entity.AjusteRecargo {
		labels = append(labels, label(fmt.Sprintf("Recargo %s%%:", comp.AjustePct.StringFixed(1))))
		values = append(values, value(formatImporte(comp.NetoAjustado.Sub(comp.Subtotal))))
	}
	labels = append(labels, label("IVA:"), grandLabel("TOTAL:"))
	values = append(values, value(formatImporte(comp.TotalIVA)), grandValue(formatImporte(comp.Total)))

	return row.New(28).Add(
		col.New(4),
		col.New(4).Add(labels...),
		col.New(4).Add(values...),
	)
}

// footerRows: CAE + QR de validación, o leyenda según el estado.
func footerRows(comp *entity.Comprobante, branch *entity.Branch) []core.Row {
	switch comp.Estado {
	case entity.EstadoAutorizado:
		vto := ""
		if comp.CAEVencimiento != nil {
			vto = comp.CAEVencimiento.Format("02/01/2006")
		}
		qr := fmt.Sprintf("https://www.afip.gob.ar/fe/qr/?pto_vta=%d&numero=%d&cae=%s",
			branch.PuntoVenta, comp.Numero, comp.CAE)
		return []core.Row{
			row.New(6).Add(col.New(12).Add(
				text.New("CAE: "+comp.CAE+"   Vto.: "+vto, props.Text{
					Style: fontstyle.Bold, Size: 8, Top: 1,
				}),
			)),
			row.New(40).Add(
				col.New(4).Add(code.NewQr(qr, props.Rect{Percent: 90, Center: true})),
				col.New(8).Add(
					text.New("Escanee el código QR para validar\neste comprobante.", props.Text{
						Size: 8, Top: 4, Left: 3, Color: colorGray,
					}),
				),
			),
		}
	case entity.EstadoNoAutorizado:
		return []core.Row{
			row.New(10).Add(col.New(12).Add(
				text.New("COMPROBANTE EMITIDO EN CONTINGENCIA - PENDIENTE DE AUTORIZACIÓN (SIN CAE)", props.Text{
					Style: fontstyle.Bold, Size: 9, Align: align.Center,
					Color: colorPrimary, Top: 2,
				}),
			)),
		}
	case entity.EstadoPresupuestado:
		return []core.Row{
			row.New(10).Add(col.New(12).Add(
				text.New("PRESUPUESTO - DOCUMENTO NO VÁLIDO COMO FACTURA", props.Text{
					Style: fontstyle.Bold, Size: 9, Align: align.Center,
					Color: colorGray, Top: 2,
				}),
			)),
		}
	}
	return []core.Row{
		row.New(10).Add(col.New(12).Add(
			text.New("DOCUMENTO INTERNO SIN VALOR FISCAL", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center,
				Color: colorGray, Top: 2,
			}),
		)),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatImporte formatea un monto con separador de miles y dos decimales.
// Ej: 25000 → "$ 25.000,00"
func formatImporte(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	neg := false
	if fixed[0] == '-' {
		neg = true
		fixed = fixed[1:]
	}
	entero, dec := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	n := len(entero)
	buf := make([]byte, 0, n+n/3)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, entero[i])
	}
	out := "$ " + string(buf) + "," + dec
	if neg {
		out = "-" + out
	}
	return out
}

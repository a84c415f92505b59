package http

import (
	"github.com/puntosur/facturacion-api/internal/application/draft"
	"github.com/puntosur/facturacion-api/internal/application/dto"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/totals"
)

func toVentaResponse(d *draft.Draft, r totals.Result) dto.VentaResponse {
	lines := make([]dto.LineItemResponse, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, dto.LineItemResponse{
			ID:             l.ID,
			ProductID:      l.ProductID,
			Codigo:         l.Codigo,
			Nombre:         l.Nombre,
			PrecioUnitario: l.PrecioUnitario,
			PrecioOriginal: l.PrecioOriginal,
			Cantidad:       l.Cantidad,
			TasaIVA:        l.TasaIVA,
			Subtotal:       l.Subtotal(),
			Manual:         l.Manual,
		})
	}
	return dto.VentaResponse{
		ID:           d.ID,
		Estado:       d.Estado,
		Tipo:         d.Tipo,
		Cliente:      toClientResponse(d.ClienteResuelto()),
		Lines:        lines,
		AjusteTipo:   d.Ajuste.Tipo,
		AjustePct:    d.Ajuste.Pct,
		IVAAplicable: d.IVAAplicable,
		Totales: dto.TotalsResponse{
			Subtotal:     r.Subtotal,
			NetoAjustado: r.NetoAjustado,
			IVAPorTasa:   r.IVAPorTasa,
			TotalIVA:     r.TotalIVA,
			Total:        r.Total,
		},
		PasoFallido: d.PasoFallido,
	}
}

func toClientResponse(c *entity.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:              c.ID,
		Nombre:          c.Nombre,
		Documento:       c.Documento,
		CategoriaFiscal: c.CategoriaFiscal,
		Email:           c.Email,
		Telefono:        c.Telefono,
	}
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:      p.ID,
		Codigo:  p.Codigo,
		Barcode: p.Barcode,
		Nombre:  p.Nombre,
		Precio:  p.Precio,
		TasaIVA: p.TasaIVA,
	}
}

func toComprobanteResponse(comp *entity.Comprobante, puntoVenta int, clienteNombre string) dto.ComprobanteResponse {
	return dto.ComprobanteResponse{
		ID:             comp.ID,
		Tipo:           comp.Tipo,
		Numero:         comp.Numero,
		PuntoVenta:     puntoVenta,
		Fecha:          comp.Fecha,
		ClienteNombre:  clienteNombre,
		Subtotal:       comp.Subtotal,
		AjusteTipo:     comp.AjusteTipo,
		AjustePct:      comp.AjustePct,
		NetoAjustado:   comp.NetoAjustado,
		TotalIVA:       comp.TotalIVA,
		Total:          comp.Total,
		Estado:         comp.Estado,
		CAE:            comp.CAE,
		CAEVencimiento: comp.CAEVencimiento,
		MedioPago:      comp.MedioPago,
	}
}

func toDetailResponses(details []*entity.ComprobanteDetail) []dto.ComprobanteDetailResponse {
	out := make([]dto.ComprobanteDetailResponse, 0, len(details))
	for _, d := range details {
		out = append(out, dto.ComprobanteDetailResponse{
			Codigo:         d.Codigo,
			Nombre:         d.Nombre,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			TasaIVA:        d.TasaIVA,
			Subtotal:       d.Subtotal,
		})
	}
	return out
}

package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/puntosur/facturacion-api/internal/application/dto"
	"github.com/puntosur/facturacion-api/internal/application/payment"
	"github.com/puntosur/facturacion-api/internal/application/settlement"
	"github.com/puntosur/facturacion-api/internal/domain"
)

// respondError mapea errores del dominio a status HTTP. Centralizado para que
// todos los handlers devuelvan el mismo shape de error.
func respondError(c *fiber.Ctx, err error) error {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "STOCK_INSUFICIENTE",
			Message: fmt.Sprintf("stock insuficiente: disponible %d", stockErr.Available),
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, settlement.ErrVentaYaLiquidada), errors.Is(err, payment.ErrPagoYaConfirmado):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, payment.ErrMontoInsuficiente),
		errors.Is(err, settlement.ErrVentaSinLineas),
		errors.Is(err, settlement.ErrVentaSinPago),
		errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrAutoridadFiscal):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Code:    "AUTORIDAD_FISCAL",
			Message: "la autoridad fiscal no autorizó el comprobante; reintente o emita en contingencia",
		})
	case errors.Is(err, domain.ErrPasarelaPago):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "PASARELA_PAGO", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

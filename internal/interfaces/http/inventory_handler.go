package http

import (
	"errors"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"

	"github.com/jcastro/figuras-api/internal/application/dto"
	"github.com/jcastro/figuras-api/internal/application/inventory"
	"github.com/jcastro/figuras-api/internal/domain"
	"github.com/jcastro/figuras-api/internal/domain/entity"
)

// InventoryHandler maneja las entradas y salidas de stock.
// Las rutas reciben cantidades positivas; la dirección la decide el endpoint
// y el motor deriva el tipo del signo resultante.
type InventoryHandler struct {
	uc       *inventory.RegisterMovementUseCase
	validate *validator.Validate
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, validate: validator.New()}
}

// Inbound godoc
// @Summary      Registrar entrada de stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockRequest  true  "figure_id y quantity (positiva)"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/inbound [post]
func (h *InventoryHandler) Inbound(c *fiber.Ctx) error {
	return h.register(c, +1)
}

// Outbound godoc
// @Summary      Registrar salida de stock (venta)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockRequest  true  "figure_id, quantity (positiva) y sale_price opcional"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/outbound [post]
func (h *InventoryHandler) Outbound(c *fiber.Ctx) error {
	return h.register(c, -1)
}

func (h *InventoryHandler) register(c *fiber.Ctx, sign int64) error {
	var in dto.StockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "figure_id y quantity positiva son requeridos"})
	}

	input := inventory.MovementInput{
		FigureID: in.FigureID,
		Quantity: sign * in.Quantity,
	}
	if sign < 0 {
		input.SalePrice = in.SalePrice
	}

	mov, err := h.uc.RegisterMovement(c.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "figura no encontrada"})
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID,
		FigureID:  m.FigureID,
		Quantity:  m.Quantity,
		Type:      m.Type,
		SalePrice: m.SalePrice,
		MovedAt:   m.MovedAt,
	}
}

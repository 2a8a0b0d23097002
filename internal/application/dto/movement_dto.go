package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRequest body de POST /api/stock/inbound y /api/stock/outbound.
// La cantidad siempre se envía en positivo; la ruta decide la dirección.
type StockRequest struct {
	FigureID  string           `json:"figure_id" validate:"required"`
	Quantity  int64            `json:"quantity" validate:"required,gt=0"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"` // solo salidas
}

// MovementResponse salida de un movimiento registrado.
type MovementResponse struct {
	ID        string           `json:"id"`
	FigureID  string           `json:"figure_id"`
	Quantity  int64            `json:"quantity"`
	Type      string           `json:"type"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
	MovedAt   time.Time        `json:"moved_at"`
}

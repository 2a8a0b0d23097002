package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jcastro/figuras-api/internal/domain/entity"
)

// StockMovementRepository puerto de persistencia del libro de movimientos.
// El libro es append-only: no hay Update ni Delete de movimientos individuales.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	// SumQuantity devuelve el stock actual: suma de cantidades del libro (0 sin movimientos).
	SumQuantity(figureID string) (int64, error)
	// TotalsFor devuelve stock y ventas totales de una figura en una sola consulta.
	// Ventas = suma de sale_price * |quantity| sobre movimientos OUT (precio ausente cuenta 0).
	TotalsFor(figureID string) (stock int64, totalSales decimal.Decimal, err error)
	// ListSales lista los movimientos OUT de una figura, más recientes primero.
	ListSales(figureID string) ([]*entity.StockMovement, error)
}

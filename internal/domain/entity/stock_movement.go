package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// MovementTypeFor deriva el tipo estrictamente del signo de la cantidad.
// Política única del motor: el tipo nunca lo decide el caller, así no puede divergir del signo.
func MovementTypeFor(quantity int64) string {
	if quantity > 0 {
		return MovementTypeIN
	}
	return MovementTypeOUT
}

// StockMovement es una entrada inmutable del libro de movimientos: cantidad con signo
// (positiva entrada, negativa salida), tipo derivado del signo y precio de venta unitario
// opcional (solo tiene sentido en salidas). Una vez escrito no se modifica ni se borra
// individualmente; solo desaparece en cascada al eliminar la figura.
type StockMovement struct {
	ID        string
	FigureID  string
	Quantity  int64
	Type      string
	SalePrice *decimal.Decimal
	MovedAt   time.Time
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Figure representa una figura coleccionable del catálogo.
// La tupla (Manufacturer, Brand, Character, ModelName, CostPrice) es la identidad
// usada por la deduplicación: dos solicitudes con la misma tupla son la misma figura.
// No existe columna de stock: la cantidad actual se deriva siempre del libro de movimientos.
type Figure struct {
	ID           string
	Manufacturer string
	Brand        string
	Character    string
	ModelName    string
	CostPrice    decimal.Decimal  // costo de adquisición, parte de la identidad
	Msrp         *decimal.Decimal // precio sugerido, opcional
	IP           *string          // colección o serie, texto libre opcional
	ImageURL     *string
	CreatedAt    time.Time
}

// SameIdentity compara la tupla de identidad con igualdad exacta
// (strings sensibles a mayúsculas, decimal exacto).
func (f *Figure) SameIdentity(manufacturer, brand, character, modelName string, costPrice decimal.Decimal) bool {
	return f.Manufacturer == manufacturer &&
		f.Brand == brand &&
		f.Character == character &&
		f.ModelName == modelName &&
		f.CostPrice.Equal(costPrice)
}

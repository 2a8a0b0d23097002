package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateFigureRequest entrada del alta (multipart). Si la tupla de identidad ya
// existe en el catálogo, el alta se convierte en una entrada de stock sobre la
// figura existente y la imagen se ignora.
type CreateFigureRequest struct {
	Manufacturer string           `form:"manufacturer" validate:"required,min=1,max=200"`
	Brand        string           `form:"brand" validate:"required,min=1,max=200"`
	Character    string           `form:"character" validate:"required,min=1,max=200"`
	ModelName    string           `form:"model_name" validate:"required,min=1,max=200"`
	CostPrice    decimal.Decimal  `form:"cost_price"`
	Msrp         *decimal.Decimal `form:"msrp"`
	IP           *string          `form:"ip" validate:"omitempty,max=120"`
	Qty          int64            `form:"qty" validate:"min=0"` // 0 -> 1 por defecto
}

// UpdateFigureRequest actualización parcial: solo los campos presentes cambian.
// Qty, si viene, es el stock deseado; la diferencia con el stock actual se
// escribe como movimiento de corrección.
type UpdateFigureRequest struct {
	Manufacturer *string          `json:"manufacturer" validate:"omitempty,min=1,max=200"`
	Brand        *string          `json:"brand" validate:"omitempty,min=1,max=200"`
	Character    *string          `json:"character" validate:"omitempty,min=1,max=200"`
	ModelName    *string          `json:"model_name" validate:"omitempty,min=1,max=200"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	Msrp         *decimal.Decimal `json:"msrp"`
	IP           *string          `json:"ip" validate:"omitempty,max=120"`
	Qty          *int64           `json:"qty" validate:"omitempty,min=0"`
}

// FigureResponse salida de una figura con sus agregados derivados del libro.
type FigureResponse struct {
	ID           string           `json:"id"`
	Manufacturer string           `json:"manufacturer"`
	Brand        string           `json:"brand"`
	Character    string           `json:"character"`
	ModelName    string           `json:"model_name"`
	CostPrice    decimal.Decimal  `json:"cost_price"`
	Msrp         *decimal.Decimal `json:"msrp,omitempty"`
	IP           *string          `json:"ip,omitempty"`
	ImageURL     *string          `json:"image_url,omitempty"`
	Qty          int64            `json:"qty"`
	TotalSales   decimal.Decimal  `json:"total_sales"`
	CreatedAt    time.Time        `json:"created_at"`
}

// FigureListResponse lista paginada de figuras.
type FigureListResponse struct {
	Items []FigureResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// FilterOptionsResponse valores distintos para los selectores de filtro.
type FilterOptionsResponse struct {
	Manufacturer []string `json:"manufacturer"`
	Brand        []string `json:"brand"`
	Character    []string `json:"character"`
	ModelName    []string `json:"model_name"`
	IP           []string `json:"ip"`
}

// SaleItemResponse una venta del detalle: cantidad en positivo.
type SaleItemResponse struct {
	Quantity  int64            `json:"quantity"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
	MovedAt   time.Time        `json:"moved_at"`
}

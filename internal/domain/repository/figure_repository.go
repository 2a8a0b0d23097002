package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jcastro/figuras-api/internal/domain/entity"
)

// FigureWithTotals es el modelo de lectura del listado: la figura más sus
// agregados derivados del libro (stock actual y ventas totales) calculados
// en la misma consulta para que ambos salgan del mismo estado del libro.
type FigureWithTotals struct {
	Figure     entity.Figure
	Stock      int64
	TotalSales decimal.Decimal
}

// FilterOptions valores distintos de los atributos del catálogo, para los
// selectores de filtro del frontend.
type FilterOptions struct {
	Manufacturers []string
	Brands        []string
	Characters    []string
	ModelNames    []string
	IPs           []string
}

// FigureRepository puerto de persistencia del catálogo de figuras.
type FigureRepository interface {
	Create(figure *entity.Figure) error
	// GetByID devuelve nil, nil si la figura no existe.
	GetByID(id string) (*entity.Figure, error)
	// GetForUpdate obtiene la figura bloqueando su fila (SELECT FOR UPDATE).
	// Es el punto de serialización por figura del motor de movimientos.
	GetForUpdate(id string) (*entity.Figure, error)
	// GetByIdentity busca por la tupla exacta de identidad. Si hubiera más de una
	// coincidencia se devuelve la primera por (created_at, id).
	GetByIdentity(manufacturer, brand, character, modelName string, costPrice decimal.Decimal) (*entity.Figure, error)
	Update(figure *entity.Figure) error
	// Delete elimina la figura y, por cascada, todos sus movimientos.
	// Devuelve domain.ErrNotFound si no existe.
	Delete(id string) error
	// ListWithTotals lista el catálogo con stock y ventas agregados en una sola
	// consulta (snapshot consistente del libro).
	ListWithTotals(limit, offset int) ([]*FigureWithTotals, error)
	FilterOptions() (*FilterOptions, error)
}

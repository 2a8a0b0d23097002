package inventory

import (
	"context"
	"io"

	"github.com/jcastro/figuras-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza atomicidad entre la lectura de stock y el append del movimiento.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		figRepo repository.FigureRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// ImageStore capacidad inyectada de almacenamiento de imágenes (disco local o
// Storage remoto, elegido al arranque). Devuelve la URL pública del recurso.
type ImageStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
}

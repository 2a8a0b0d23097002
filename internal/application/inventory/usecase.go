package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcastro/figuras-api/internal/domain"
	"github.com/jcastro/figuras-api/internal/domain/entity"
	"github.com/jcastro/figuras-api/internal/domain/repository"
)

// RegisterMovementUseCase es el escritor del libro: valida y agrega movimientos de stock
// de forma transaccional, con bloqueo de la fila de la figura (SELECT FOR UPDATE) entre
// la lectura del stock y el append, para cerrar la carrera check-then-act.
type RegisterMovementUseCase struct {
	txRunner TxRunner
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner}
}

// MovementInput entrada para registrar un movimiento.
// Quantity es un entero con signo distinto de cero: positivo entra, negativo sale.
// El tipo IN/OUT se deriva del signo; nunca lo aporta el caller.
// SalePrice solo aplica a salidas; en entradas se descarta.
type MovementInput struct {
	FigureID  string
	Quantity  int64
	SalePrice *decimal.Decimal
}

// RegisterMovement abre una transacción, bloquea la figura, verifica que el stock
// resultante no quede negativo y agrega el movimiento con timestamp del servidor.
// Errores: ErrInvalidInput (cantidad cero o figura vacía), ErrNotFound (figura
// inexistente), ErrInsufficientStock (la salida dejaría el stock bajo cero; el
// libro queda intacto).
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInput) (*entity.StockMovement, error) {
	if input.FigureID == "" || input.Quantity == 0 {
		return nil, domain.ErrInvalidInput
	}

	var created *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		figRepo repository.FigureRepository,
		movRepo repository.StockMovementRepository,
	) error {
		mov, err := uc.AppendInTx(figRepo, movRepo, input.FigureID, input.Quantity, input.SalePrice, time.Now())
		if err != nil {
			return err
		}
		created = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CorrectTo ajusta el stock de una figura a desiredQty escribiendo un único movimiento
// por la diferencia (sin precio de venta: es una corrección, no una venta). Con delta
// cero no escribe nada y devuelve nil, nil. desiredQty negativo se rechaza antes de
// tocar el libro.
func (uc *RegisterMovementUseCase) CorrectTo(ctx context.Context, figureID string, desiredQty int64) (*entity.StockMovement, error) {
	if figureID == "" {
		return nil, domain.ErrInvalidInput
	}
	if desiredQty < 0 {
		return nil, domain.ErrInvalidInput
	}

	var created *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		figRepo repository.FigureRepository,
		movRepo repository.StockMovementRepository,
	) error {
		fig, err := figRepo.GetForUpdate(figureID)
		if err != nil {
			return err
		}
		if fig == nil {
			return domain.ErrNotFound
		}
		current, err := movRepo.SumQuantity(figureID)
		if err != nil {
			return err
		}
		delta := desiredQty - current
		if delta == 0 {
			return nil
		}
		mov := newMovement(figureID, delta, nil, time.Now())
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		created = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AppendInTx agrega un movimiento usando repositorios ya atados a la transacción del
// caller (p.ej. el alta de figura con su entrada inicial). Bloquea la fila de la figura,
// recalcula el stock desde el libro y rechaza con ErrInsufficientStock si la suma
// quedaría negativa.
func (uc *RegisterMovementUseCase) AppendInTx(
	figRepo repository.FigureRepository,
	movRepo repository.StockMovementRepository,
	figureID string,
	quantity int64,
	salePrice *decimal.Decimal,
	now time.Time,
) (*entity.StockMovement, error) {
	if quantity == 0 {
		return nil, domain.ErrInvalidInput
	}
	if quantity > 0 {
		// El precio de venta no tiene sentido en entradas; se descarta.
		salePrice = nil
	}

	fig, err := figRepo.GetForUpdate(figureID)
	if err != nil {
		return nil, err
	}
	if fig == nil {
		return nil, domain.ErrNotFound
	}

	current, err := movRepo.SumQuantity(figureID)
	if err != nil {
		return nil, err
	}
	if current+quantity < 0 {
		return nil, domain.ErrInsufficientStock
	}

	mov := newMovement(figureID, quantity, salePrice, now)
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func newMovement(figureID string, quantity int64, salePrice *decimal.Decimal, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:        uuid.New().String(),
		FigureID:  figureID,
		Quantity:  quantity,
		Type:      entity.MovementTypeFor(quantity),
		SalePrice: salePrice,
		MovedAt:   now,
	}
}

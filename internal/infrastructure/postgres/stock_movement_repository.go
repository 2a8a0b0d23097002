package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcastro/figuras-api/internal/domain/entity"
	"github.com/jcastro/figuras-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Solo inserta y lee: el libro es append-only.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento de stock.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, figure_id, quantity, movement_type, sale_price, moved_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.FigureID, movement.Quantity, movement.Type,
		movement.SalePrice, movement.MovedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// SumQuantity devuelve el stock actual de una figura: suma de cantidades del libro.
func (r *StockMovementRepo) SumQuantity(figureID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(quantity), 0)::bigint FROM stock_movements WHERE figure_id = $1`,
		figureID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum quantity: %w", err)
	}
	return sum, nil
}

// TotalsFor calcula stock y ventas totales en una sola consulta sobre el libro.
// Las ventas suman sale_price * -quantity de los OUT (la cantidad OUT es negativa,
// el producto sale positivo); precio ausente cuenta como 0.
func (r *StockMovementRepo) TotalsFor(figureID string) (int64, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)::bigint,
		       COALESCE(SUM(CASE WHEN movement_type = 'OUT'
		                         THEN COALESCE(sale_price, 0) * -quantity
		                         ELSE 0 END), 0)::numeric
		FROM stock_movements
		WHERE figure_id = $1`
	var stock int64
	var sales decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, figureID).Scan(&stock, &sales); err != nil {
		return 0, decimal.Zero, fmt.Errorf("totals for figure: %w", err)
	}
	return stock, sales, nil
}

// ListSales lista los movimientos OUT de una figura, más recientes primero.
func (r *StockMovementRepo) ListSales(figureID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, figure_id, quantity, movement_type, sale_price, moved_at
		FROM stock_movements
		WHERE figure_id = $1 AND movement_type = 'OUT'
		ORDER BY moved_at DESC, id DESC`
	rows, err := r.q.Query(context.Background(), query, figureID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.FigureID, &m.Quantity, &m.Type, &m.SalePrice, &m.MovedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

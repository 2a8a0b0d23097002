package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jcastro/figuras-api/internal/domain"
	"github.com/jcastro/figuras-api/internal/domain/entity"
	"github.com/jcastro/figuras-api/internal/domain/repository"
)

var _ repository.FigureRepository = (*FigureRepo)(nil)

const figureColumns = `id, manufacturer, brand, character, model_name, cost_price, msrp, ip, image_url, created_at`

// FigureRepo implementación de FigureRepository sobre PostgreSQL (usable con pool o tx).
type FigureRepo struct {
	q Querier
}

// NewFigureRepository construye el adaptador de catálogo. Pasar pool o tx (Querier).
func NewFigureRepository(q Querier) *FigureRepo {
	return &FigureRepo{q: q}
}

// Create persiste una nueva figura. La tupla de identidad tiene índice único:
// un choque se traduce a ErrDuplicate.
func (r *FigureRepo) Create(figure *entity.Figure) error {
	query := `
		INSERT INTO figures (id, manufacturer, brand, character, model_name, cost_price, msrp, ip, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		figure.ID, figure.Manufacturer, figure.Brand, figure.Character, figure.ModelName,
		figure.CostPrice, figure.Msrp, figure.IP, figure.ImageURL, figure.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert figure: %w", err)
	}
	return nil
}

// GetByID obtiene una figura por ID. Devuelve nil, nil si no existe.
func (r *FigureRepo) GetByID(id string) (*entity.Figure, error) {
	query := `SELECT ` + figureColumns + ` FROM figures WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get figure")
}

// GetForUpdate obtiene la figura y bloquea su fila (SELECT FOR UPDATE).
// Dentro de una transacción serializa todas las escrituras del libro de esa figura.
func (r *FigureRepo) GetForUpdate(id string) (*entity.Figure, error) {
	query := `SELECT ` + figureColumns + ` FROM figures WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get figure for update")
}

// GetByIdentity busca la figura con la tupla exacta de identidad.
// Orden determinista por si existieran duplicados previos al índice único.
func (r *FigureRepo) GetByIdentity(manufacturer, brand, character, modelName string, costPrice decimal.Decimal) (*entity.Figure, error) {
	query := `
		SELECT ` + figureColumns + `
		FROM figures
		WHERE manufacturer = $1 AND brand = $2 AND character = $3 AND model_name = $4 AND cost_price = $5
		ORDER BY created_at, id
		LIMIT 1`
	row := r.q.QueryRow(context.Background(), query, manufacturer, brand, character, modelName, costPrice)
	return r.scanOne(row, "get figure by identity")
}

// Update actualiza los campos descriptivos de una figura (el stock se maneja vía movimientos).
func (r *FigureRepo) Update(figure *entity.Figure) error {
	query := `
		UPDATE figures
		SET manufacturer = $2, brand = $3, character = $4, model_name = $5,
		    cost_price = $6, msrp = $7, ip = $8, image_url = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		figure.ID, figure.Manufacturer, figure.Brand, figure.Character, figure.ModelName,
		figure.CostPrice, figure.Msrp, figure.IP, figure.ImageURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update figure: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una figura; el FK con ON DELETE CASCADE arrastra sus movimientos.
func (r *FigureRepo) Delete(id string) error {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM figures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete figure: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListWithTotals lista el catálogo con stock y ventas derivados del libro en una sola
// consulta (LEFT JOIN + GROUP BY), de modo que ambos agregados salen del mismo snapshot.
func (r *FigureRepo) ListWithTotals(limit, offset int) ([]*repository.FigureWithTotals, error) {
	query := `
		SELECT f.id, f.manufacturer, f.brand, f.character, f.model_name, f.cost_price,
		       f.msrp, f.ip, f.image_url, f.created_at,
		       COALESCE(SUM(m.quantity), 0)::bigint AS stock,
		       COALESCE(SUM(CASE WHEN m.movement_type = 'OUT'
		                         THEN COALESCE(m.sale_price, 0) * -m.quantity
		                         ELSE 0 END), 0)::numeric AS total_sales
		FROM figures f
		LEFT JOIN stock_movements m ON m.figure_id = f.id
		GROUP BY f.id
		ORDER BY f.created_at DESC, f.id
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list figures: %w", err)
	}
	defer rows.Close()

	var list []*repository.FigureWithTotals
	for rows.Next() {
		var item repository.FigureWithTotals
		f := &item.Figure
		if err := rows.Scan(&f.ID, &f.Manufacturer, &f.Brand, &f.Character, &f.ModelName,
			&f.CostPrice, &f.Msrp, &f.IP, &f.ImageURL, &f.CreatedAt,
			&item.Stock, &item.TotalSales); err != nil {
			return nil, fmt.Errorf("scan figure totals: %w", err)
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}

// FilterOptions devuelve los valores distintos de cada atributo filtrable, ordenados.
func (r *FigureRepo) FilterOptions() (*repository.FilterOptions, error) {
	opts := &repository.FilterOptions{}
	targets := []struct {
		query string
		dst   *[]string
	}{
		{`SELECT DISTINCT manufacturer FROM figures ORDER BY manufacturer`, &opts.Manufacturers},
		{`SELECT DISTINCT brand FROM figures ORDER BY brand`, &opts.Brands},
		{`SELECT DISTINCT character FROM figures ORDER BY character`, &opts.Characters},
		{`SELECT DISTINCT model_name FROM figures ORDER BY model_name`, &opts.ModelNames},
		{`SELECT DISTINCT ip FROM figures WHERE ip IS NOT NULL ORDER BY ip`, &opts.IPs},
	}
	for _, t := range targets {
		values, err := r.distinctValues(t.query)
		if err != nil {
			return nil, err
		}
		*t.dst = values
	}
	return opts, nil
}

func (r *FigureRepo) distinctValues(query string) ([]string, error) {
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("filter options: %w", err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan filter option: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (r *FigureRepo) scanOne(row pgx.Row, op string) (*entity.Figure, error) {
	var f entity.Figure
	err := row.Scan(&f.ID, &f.Manufacturer, &f.Brand, &f.Character, &f.ModelName,
		&f.CostPrice, &f.Msrp, &f.IP, &f.ImageURL, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &f, nil
}

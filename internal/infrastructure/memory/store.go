// Package memory implementa los puertos de persistencia en memoria,
// para tests y desarrollo local sin PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jcastro/figuras-api/internal/application/inventory"
	"github.com/jcastro/figuras-api/internal/domain"
	"github.com/jcastro/figuras-api/internal/domain/entity"
	"github.com/jcastro/figuras-api/internal/domain/repository"
)

// Store guarda catálogo y libro en memoria. Expone los mismos puertos que los
// adaptadores de PostgreSQL. La serialización por figura del motor se logra con
// un mutex global en el TxRunner, que además restaura un snapshot si el callback
// falla (equivalente al Rollback).
type Store struct {
	mu        sync.Mutex
	figures   map[string]entity.Figure
	movements []entity.StockMovement
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{figures: make(map[string]entity.Figure)}
}

// FigureRepo devuelve el repositorio de catálogo sobre este almacén.
func (s *Store) FigureRepo() repository.FigureRepository { return &figureRepo{s: s} }

// MovementRepo devuelve el repositorio del libro sobre este almacén.
func (s *Store) MovementRepo() repository.StockMovementRepository { return &movementRepo{s: s} }

// TxRunner devuelve el runner transaccional sobre este almacén.
func (s *Store) TxRunner() inventory.TxRunner { return &txRunner{s: s} }

// ─────────────────────────────────────────────────────────────────────────────

type txRunner struct {
	s *Store
}

// Run serializa la transacción con el mutex global y revierte al snapshot si fn falla.
func (r *txRunner) Run(_ context.Context, fn func(
	figRepo repository.FigureRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapFigures := make(map[string]entity.Figure, len(r.s.figures))
	for id, f := range r.s.figures {
		snapFigures[id] = f
	}
	snapMovements := append([]entity.StockMovement(nil), r.s.movements...)

	if err := fn(&figureRepo{s: r.s}, &movementRepo{s: r.s}); err != nil {
		r.s.figures = snapFigures
		r.s.movements = snapMovements
		return err
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────

type figureRepo struct {
	s *Store
}

func (r *figureRepo) Create(figure *entity.Figure) error {
	if _, ok := r.s.figures[figure.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, f := range r.s.figures {
		if f.SameIdentity(figure.Manufacturer, figure.Brand, figure.Character, figure.ModelName, figure.CostPrice) {
			return domain.ErrDuplicate
		}
	}
	r.s.figures[figure.ID] = *figure
	return nil
}

func (r *figureRepo) GetByID(id string) (*entity.Figure, error) {
	f, ok := r.s.figures[id]
	if !ok {
		return nil, nil
	}
	out := f
	return &out, nil
}

// GetForUpdate en memoria equivale a GetByID: el mutex del TxRunner ya serializa.
func (r *figureRepo) GetForUpdate(id string) (*entity.Figure, error) {
	return r.GetByID(id)
}

func (r *figureRepo) GetByIdentity(manufacturer, brand, character, modelName string, costPrice decimal.Decimal) (*entity.Figure, error) {
	var matches []entity.Figure
	for _, f := range r.s.figures {
		if f.SameIdentity(manufacturer, brand, character, modelName, costPrice) {
			matches = append(matches, f)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	// Misma elección determinista que el adaptador SQL: primera por (created_at, id).
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	first := matches[0]
	return &first, nil
}

func (r *figureRepo) Update(figure *entity.Figure) error {
	if _, ok := r.s.figures[figure.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.figures[figure.ID] = *figure
	return nil
}

func (r *figureRepo) Delete(id string) error {
	if _, ok := r.s.figures[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.figures, id)
	// Cascada: el libro de esa figura desaparece con ella.
	kept := r.s.movements[:0]
	for _, m := range r.s.movements {
		if m.FigureID != id {
			kept = append(kept, m)
		}
	}
	r.s.movements = kept
	return nil
}

func (r *figureRepo) ListWithTotals(limit, offset int) ([]*repository.FigureWithTotals, error) {
	all := make([]entity.Figure, 0, len(r.s.figures))
	for _, f := range r.s.figures {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	list := make([]*repository.FigureWithTotals, 0, len(all))
	for _, f := range all {
		stock, sales := totals(r.s.movements, f.ID)
		list = append(list, &repository.FigureWithTotals{Figure: f, Stock: stock, TotalSales: sales})
	}
	return list, nil
}

func (r *figureRepo) FilterOptions() (*repository.FilterOptions, error) {
	opts := &repository.FilterOptions{}
	seen := map[string]map[string]bool{
		"manufacturer": {}, "brand": {}, "character": {}, "model_name": {}, "ip": {},
	}
	add := func(col, v string, dst *[]string) {
		if v == "" || seen[col][v] {
			return
		}
		seen[col][v] = true
		*dst = append(*dst, v)
	}
	for _, f := range r.s.figures {
		add("manufacturer", f.Manufacturer, &opts.Manufacturers)
		add("brand", f.Brand, &opts.Brands)
		add("character", f.Character, &opts.Characters)
		add("model_name", f.ModelName, &opts.ModelNames)
		if f.IP != nil {
			add("ip", *f.IP, &opts.IPs)
		}
	}
	for _, dst := range []*[]string{&opts.Manufacturers, &opts.Brands, &opts.Characters, &opts.ModelNames, &opts.IPs} {
		sort.Strings(*dst)
	}
	return opts, nil
}

// ─────────────────────────────────────────────────────────────────────────────

type movementRepo struct {
	s *Store
}

func (r *movementRepo) Create(movement *entity.StockMovement) error {
	r.s.movements = append(r.s.movements, *movement)
	return nil
}

func (r *movementRepo) SumQuantity(figureID string) (int64, error) {
	stock, _ := totals(r.s.movements, figureID)
	return stock, nil
}

func (r *movementRepo) TotalsFor(figureID string) (int64, decimal.Decimal, error) {
	stock, sales := totals(r.s.movements, figureID)
	return stock, sales, nil
}

func (r *movementRepo) ListSales(figureID string) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for i := range r.s.movements {
		m := r.s.movements[i]
		if m.FigureID == figureID && m.Type == entity.MovementTypeOUT {
			out := m
			list = append(list, &out)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].MovedAt.Equal(list[j].MovedAt) {
			return list[i].MovedAt.After(list[j].MovedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func totals(movements []entity.StockMovement, figureID string) (int64, decimal.Decimal) {
	var stock int64
	sales := decimal.Zero
	for _, m := range movements {
		if m.FigureID != figureID {
			continue
		}
		stock += m.Quantity
		if m.Type == entity.MovementTypeOUT && m.SalePrice != nil {
			qty := m.Quantity
			if qty < 0 {
				qty = -qty
			}
			sales = sales.Add(m.SalePrice.Mul(decimal.NewFromInt(qty)))
		}
	}
	return stock, sales
}

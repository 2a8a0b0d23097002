package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcastro/figuras-api/internal/application/dto"
	"github.com/jcastro/figuras-api/internal/application/inventory"
	"github.com/jcastro/figuras-api/internal/domain"
	"github.com/jcastro/figuras-api/internal/domain/entity"
	"github.com/jcastro/figuras-api/internal/domain/repository"
)

// ImageUpload imagen recibida en el alta de una figura nueva.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// FigureUseCase gestiona el catálogo de figuras: alta con deduplicación,
// lecturas con agregados derivados del libro, actualización parcial con
// corrección de stock, y borrado en cascada.
type FigureUseCase struct {
	figRepo  repository.FigureRepository
	movRepo  repository.StockMovementRepository
	txRunner inventory.TxRunner
	movement *inventory.RegisterMovementUseCase
	images   inventory.ImageStore
}

// NewFigureUseCase construye el caso de uso.
func NewFigureUseCase(
	figRepo repository.FigureRepository,
	movRepo repository.StockMovementRepository,
	txRunner inventory.TxRunner,
	movement *inventory.RegisterMovementUseCase,
	images inventory.ImageStore,
) *FigureUseCase {
	return &FigureUseCase{
		figRepo:  figRepo,
		movRepo:  movRepo,
		txRunner: txRunner,
		movement: movement,
		images:   images,
	}
}

// CreateOrRestock es el flujo de alta completo:
//  1. Deduplicación por la tupla (manufacturer, brand, character, model_name, cost_price).
//  2. Con coincidencia: entrada de stock sobre la figura existente; no se crea fila
//     nueva ni se toca la imagen.
//  3. Sin coincidencia: exige imagen y cantidad positiva, guarda la imagen, y crea
//     figura + entrada inicial en UNA transacción (si falla el movimiento, la fila
//     del catálogo se revierte).
//
// Cantidad solicitada cero se interpreta como 1.
func (uc *FigureUseCase) CreateOrRestock(ctx context.Context, in dto.CreateFigureRequest, image *ImageUpload) (*dto.FigureResponse, error) {
	qty := in.Qty
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, domain.ErrInvalidInput
	}

	existing, err := uc.figRepo.GetByIdentity(in.Manufacturer, in.Brand, in.Character, in.ModelName, in.CostPrice)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if _, err := uc.movement.RegisterMovement(ctx, inventory.MovementInput{
			FigureID: existing.ID,
			Quantity: qty,
		}); err != nil {
			return nil, err
		}
		return uc.withTotals(existing)
	}

	// Figura nueva: la imagen es obligatoria.
	if image == nil || image.Filename == "" || image.Content == nil {
		return nil, domain.ErrInvalidInput
	}

	filename := uuid.New().String() + filepath.Ext(image.Filename)
	imageURL, err := uc.images.Save(ctx, filename, image.Content)
	if err != nil {
		// Nada escrito todavía: ni fila de catálogo ni movimiento.
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	now := time.Now()
	figure := &entity.Figure{
		ID:           uuid.New().String(),
		Manufacturer: in.Manufacturer,
		Brand:        in.Brand,
		Character:    in.Character,
		ModelName:    in.ModelName,
		CostPrice:    in.CostPrice,
		Msrp:         in.Msrp,
		IP:           in.IP,
		ImageURL:     &imageURL,
		CreatedAt:    now,
	}

	// Alta + entrada inicial como unidad atómica.
	err = uc.txRunner.Run(ctx, func(
		figRepo repository.FigureRepository,
		movRepo repository.StockMovementRepository,
	) error {
		if err := figRepo.Create(figure); err != nil {
			return err
		}
		_, err := uc.movement.AppendInTx(figRepo, movRepo, figure.ID, qty, nil, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := toFigureResponse(figure, qty, decimal.Zero)
	return &resp, nil
}

// GetByID devuelve una figura con stock y ventas recalculados del libro.
func (uc *FigureUseCase) GetByID(ctx context.Context, id string) (*dto.FigureResponse, error) {
	figure, err := uc.figRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if figure == nil {
		return nil, domain.ErrNotFound
	}
	return uc.withTotals(figure)
}

// List lista el catálogo con los agregados del libro (una sola consulta).
func (uc *FigureUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.FigureListResponse, error) {
	page.DefaultPage()
	list, err := uc.figRepo.ListWithTotals(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.FigureResponse, 0, len(list))
	for _, row := range list {
		items = append(items, toFigureResponse(&row.Figure, row.Stock, row.TotalSales))
	}
	return &dto.FigureListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update aplica una actualización parcial (solo campos presentes) y, si viene Qty,
// corrige el stock al valor deseado con un movimiento por la diferencia.
func (uc *FigureUseCase) Update(ctx context.Context, id string, in dto.UpdateFigureRequest) (*dto.FigureResponse, error) {
	if in.Qty != nil && *in.Qty < 0 {
		return nil, domain.ErrInvalidInput
	}

	figure, err := uc.figRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if figure == nil {
		return nil, domain.ErrNotFound
	}

	if in.Manufacturer != nil {
		figure.Manufacturer = *in.Manufacturer
	}
	if in.Brand != nil {
		figure.Brand = *in.Brand
	}
	if in.Character != nil {
		figure.Character = *in.Character
	}
	if in.ModelName != nil {
		figure.ModelName = *in.ModelName
	}
	if in.CostPrice != nil {
		figure.CostPrice = *in.CostPrice
	}
	if in.Msrp != nil {
		figure.Msrp = in.Msrp
	}
	if in.IP != nil {
		figure.IP = in.IP
	}

	if err := uc.figRepo.Update(figure); err != nil {
		return nil, err
	}

	if in.Qty != nil {
		if _, err := uc.movement.CorrectTo(ctx, id, *in.Qty); err != nil {
			return nil, err
		}
	}

	return uc.withTotals(figure)
}

// Delete elimina la figura y todos sus movimientos (cascada), de forma irrecuperable.
func (uc *FigureUseCase) Delete(ctx context.Context, id string) error {
	return uc.figRepo.Delete(id)
}

// Sales devuelve el detalle de ventas (movimientos OUT) de una figura,
// con las cantidades en positivo y más recientes primero.
func (uc *FigureUseCase) Sales(ctx context.Context, id string) ([]dto.SaleItemResponse, error) {
	figure, err := uc.figRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if figure == nil {
		return nil, domain.ErrNotFound
	}
	movements, err := uc.movRepo.ListSales(id)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleItemResponse, 0, len(movements))
	for _, m := range movements {
		qty := m.Quantity
		if qty < 0 {
			qty = -qty
		}
		items = append(items, dto.SaleItemResponse{
			Quantity:  qty,
			SalePrice: m.SalePrice,
			MovedAt:   m.MovedAt,
		})
	}
	return items, nil
}

// FilterOptions devuelve los valores distintos de los atributos filtrables.
func (uc *FigureUseCase) FilterOptions(ctx context.Context) (*dto.FilterOptionsResponse, error) {
	opts, err := uc.figRepo.FilterOptions()
	if err != nil {
		return nil, err
	}
	return &dto.FilterOptionsResponse{
		Manufacturer: opts.Manufacturers,
		Brand:        opts.Brands,
		Character:    opts.Characters,
		ModelName:    opts.ModelNames,
		IP:           opts.IPs,
	}, nil
}

func (uc *FigureUseCase) withTotals(figure *entity.Figure) (*dto.FigureResponse, error) {
	stock, sales, err := uc.movRepo.TotalsFor(figure.ID)
	if err != nil {
		return nil, err
	}
	resp := toFigureResponse(figure, stock, sales)
	return &resp, nil
}

func toFigureResponse(f *entity.Figure, stock int64, sales decimal.Decimal) dto.FigureResponse {
	return dto.FigureResponse{
		ID:           f.ID,
		Manufacturer: f.Manufacturer,
		Brand:        f.Brand,
		Character:    f.Character,
		ModelName:    f.ModelName,
		CostPrice:    f.CostPrice,
		Msrp:         f.Msrp,
		IP:           f.IP,
		ImageURL:     f.ImageURL,
		Qty:          stock,
		TotalSales:   sales,
		CreatedAt:    f.CreatedAt,
	}
}

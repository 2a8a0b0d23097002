package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastro/figuras-api/internal/application/inventory"
	"github.com/jcastro/figuras-api/internal/domain"
	"github.com/jcastro/figuras-api/internal/domain/entity"
	"github.com/jcastro/figuras-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newEngine(t *testing.T) (*inventory.RegisterMovementUseCase, *memory.Store, string) {
	t.Helper()
	store := memory.NewStore()
	uc := inventory.NewRegisterMovementUseCase(store.TxRunner())

	fig := &entity.Figure{
		ID:           uuid.New().String(),
		Manufacturer: "Good Smile",
		Brand:        "Nendoroid",
		Character:    "Miku",
		ModelName:    "2023 ver.",
		CostPrice:    decimal.RequireFromString("10.00"),
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.FigureRepo().Create(fig))
	return uc, store, fig.ID
}

func mustStock(t *testing.T, store *memory.Store, figureID string) int64 {
	t.Helper()
	stock, err := store.MovementRepo().SumQuantity(figureID)
	require.NoError(t, err)
	return stock
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// RegisterMovement
// ──────────────────────────────────────────────────────────────────────────────

// Una entrada seguida de una salida: el stock es la suma de cantidades del libro.
func TestRegisterMovement_EntradaYSalida(t *testing.T) {
	uc, store, figID := newEngine(t)
	ctx := context.Background()

	in, err := uc.RegisterMovement(ctx, inventory.MovementInput{FigureID: figID, Quantity: 8})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeIN, in.Type, "cantidad positiva debe derivar tipo IN")
	assert.Equal(t, int64(8), in.Quantity)
	assert.False(t, in.MovedAt.IsZero(), "el timestamp lo asigna el servidor al escribir")

	out, err := uc.RegisterMovement(ctx, inventory.MovementInput{
		FigureID:  figID,
		Quantity:  -6,
		SalePrice: price("20.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeOUT, out.Type, "cantidad negativa debe derivar tipo OUT")

	assert.Equal(t, int64(2), mustStock(t, store, figID))

	_, sales, err := store.MovementRepo().TotalsFor(figID)
	require.NoError(t, err)
	assert.True(t, sales.Equal(decimal.RequireFromString("120.00")),
		"ventas = precio x cantidad vendida, obtuvo %s", sales)
}

// Una salida que dejaría el stock negativo se rechaza y el libro queda intacto.
func TestRegisterMovement_StockInsuficiente(t *testing.T) {
	uc, store, figID := newEngine(t)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, inventory.MovementInput{FigureID: figID, Quantity: 2})
	require.NoError(t, err)

	_, err = uc.RegisterMovement(ctx, inventory.MovementInput{FigureID: figID, Quantity: -5})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(2), mustStock(t, store, figID), "el rechazo no debe escribir nada")
}

// Sin movimientos, cualquier salida se rechaza (stock parte de 0).
func TestRegisterMovement_SalidaSinStock(t *testing.T) {
	uc, store, figID := newEngine(t)

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInput{FigureID: figID, Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(0), mustStock(t, store, figID))
}

// El precio de venta no aplica a entradas: se descarta en vez de almacenarse.
func TestRegisterMovement_PrecioDescartadoEnEntrada(t *testing.T) {
	uc, _, figID := newEngine(t)

	mov, err := uc.RegisterMovement(context.Background(), inventory.MovementInput{
		FigureID:  figID,
		Quantity:  3,
		SalePrice: price("99.99"),
	})
	require.NoError(t, err)
	assert.Nil(t, mov.SalePrice, "una entrada no lleva precio de venta")
}

func TestRegisterMovement_EntradaInvalida(t *testing.T) {
	uc, _, figID := newEngine(t)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, inventory.MovementInput{FigureID: figID, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero no es un movimiento")

	_, err = uc.RegisterMovement(ctx, inventory.MovementInput{FigureID: "", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterMovement_FiguraInexistente(t *testing.T) {
	uc, _, _ := newEngine(t)

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInput{
		FigureID: uuid.New().String(),
		Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Lecturas repetidas sin escrituras intermedias devuelven lo mismo.
func TestTotales_LecturaIdempotente(t *testing.T) {
	uc, store, figID := newEngine(t)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, inventory.MovementInput{FigureID: figID, Quantity: 4})
	require.NoError(t, err)
	_, err = uc.RegisterMovement(ctx, inventory.MovementInput{FigureID: figID, Quantity: -1, SalePrice: price("15.50")})
	require.NoError(t, err)

	s1, v1, err := store.MovementRepo().TotalsFor(figID)
	require.NoError(t, err)
	s2, v2, err := store.MovementRepo().TotalsFor(figID)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
	assert.True(t, v1.Equal(v2))
}

// ──────────────────────────────────────────────────────────────────────────────
// CorrectTo (corrección de stock desde la actualización de figura)
// ──────────────────────────────────────────────────────────────────────────────

func TestCorrectTo_AjustaPorDiferencia(t *testing.T) {
	uc, store, figID := newEngine(t)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, inventory.MovementInput{FigureID: figID, Quantity: 2})
	require.NoError(t, err)

	mov, err := uc.CorrectTo(ctx, figID, 10)
	require.NoError(t, err)
	require.NotNil(t, mov)
	assert.Equal(t, int64(8), mov.Quantity, "la corrección escribe solo la diferencia")
	assert.Equal(t, entity.MovementTypeIN, mov.Type)
	assert.Nil(t, mov.SalePrice, "una corrección no es una venta")
	assert.Equal(t, int64(10), mustStock(t, store, figID))

	mov, err = uc.CorrectTo(ctx, figID, 7)
	require.NoError(t, err)
	require.NotNil(t, mov)
	assert.Equal(t, int64(-3), mov.Quantity)
	assert.Equal(t, entity.MovementTypeOUT, mov.Type)
	assert.Equal(t, int64(7), mustStock(t, store, figID))
}

func TestCorrectTo_SinDiferenciaNoEscribe(t *testing.T) {
	uc, store, figID := newEngine(t)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, inventory.MovementInput{FigureID: figID, Quantity: 5})
	require.NoError(t, err)

	mov, err := uc.CorrectTo(ctx, figID, 5)
	require.NoError(t, err)
	assert.Nil(t, mov, "delta cero no genera movimiento")
	assert.Equal(t, int64(5), mustStock(t, store, figID))
}

func TestCorrectTo_RechazaNegativoYFiguraInexistente(t *testing.T) {
	uc, _, figID := newEngine(t)
	ctx := context.Background()

	_, err := uc.CorrectTo(ctx, figID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "stock deseado negativo se rechaza antes de tocar el libro")

	_, err = uc.CorrectTo(ctx, uuid.New().String(), 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

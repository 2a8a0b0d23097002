package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastro/figuras-api/internal/application/dto"
	"github.com/jcastro/figuras-api/internal/application/inventory"
	"github.com/jcastro/figuras-api/internal/application/usecase"
	"github.com/jcastro/figuras-api/internal/infrastructure/memory"
	httpRouter "github.com/jcastro/figuras-api/internal/interfaces/http"
)

type staticImages struct{}

func (staticImages) Save(_ context.Context, filename string, content io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, content)
	return "/static/" + filename, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	movementUC := inventory.NewRegisterMovementUseCase(store.TxRunner())
	figureUC := usecase.NewFigureUseCase(store.FigureRepo(), store.MovementRepo(), store.TxRunner(), movementUC, staticImages{})

	app := fiber.New()
	httpRouter.Router(app, httpRouter.RouterDeps{
		FigureUC:         figureUC,
		RegisterMovement: movementUC,
	})
	return app
}

// multipartFigure arma el form del alta con una imagen PNG mínima.
func multipartFigure(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withImage {
		fw, err := w.CreateFormFile("image", "figura.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func mikuForm(qty string) map[string]string {
	return map[string]string{
		"manufacturer": "Good Smile",
		"brand":        "Nendoroid",
		"character":    "Miku",
		"model_name":   "2023 ver.",
		"cost_price":   "10.00",
		"qty":          qty,
	}
}

func createFigure(t *testing.T, app *fiber.App, qty string) dto.FigureResponse {
	t.Helper()
	body, contentType := multipartFigure(t, mikuForm(qty), true)
	req := httptest.NewRequest(http.MethodPost, "/api/figures/", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out dto.FigureResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/figures
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateFigure_Multipart(t *testing.T) {
	app := newTestApp(t)

	out := createFigure(t, app, "5")
	assert.Equal(t, "Miku", out.Character)
	assert.Equal(t, int64(5), out.Qty)
	require.NotNil(t, out.ImageURL)
	assert.True(t, strings.HasPrefix(*out.ImageURL, "/static/"))
}

// Repetir el alta con la misma identidad suma stock en lugar de duplicar.
func TestCreateFigure_ReingresoPorIdentidad(t *testing.T) {
	app := newTestApp(t)

	first := createFigure(t, app, "5")

	body, contentType := multipartFigure(t, mikuForm("3"), false)
	req := httptest.NewRequest(http.MethodPost, "/api/figures/", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var second dto.FigureResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(8), second.Qty)
}

func TestCreateFigure_NuevaSinImagen(t *testing.T) {
	app := newTestApp(t)

	body, contentType := multipartFigure(t, mikuForm("1"), false)
	req := httptest.NewRequest(http.MethodPost, "/api/figures/", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateFigure_CampoRequeridoAusente(t *testing.T) {
	app := newTestApp(t)

	fields := mikuForm("1")
	delete(fields, "character")
	body, contentType := multipartFigure(t, fields, true)
	req := httptest.NewRequest(http.MethodPost, "/api/figures/", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/figures y /api/figures/:id
// ──────────────────────────────────────────────────────────────────────────────

func TestListAndGetFigure(t *testing.T) {
	app := newTestApp(t)
	fig := createFigure(t, app, "4")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/figures/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list dto.FigureListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, fig.ID, list.Items[0].ID)
	assert.Equal(t, int64(4), list.Items[0].Qty)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/figures/"+fig.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetFigure_Inexistente(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/figures/no-existe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// PUT y DELETE /api/figures/:id
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateFigure_ParcialConCorreccion(t *testing.T) {
	app := newTestApp(t)
	fig := createFigure(t, app, "2")

	req := httptest.NewRequest(http.MethodPut, "/api/figures/"+fig.ID,
		strings.NewReader(`{"brand":"Figma","qty":10}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out dto.FigureResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Figma", out.Brand)
	assert.Equal(t, "Good Smile", out.Manufacturer, "campo ausente no cambia")
	assert.Equal(t, int64(10), out.Qty, "qty es el stock deseado tras la corrección")
}

func TestDeleteFigure(t *testing.T) {
	app := newTestApp(t)
	fig := createFigure(t, app, "1")

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/figures/"+fig.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/figures/"+fig.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/stock/inbound y /api/stock/outbound
// ──────────────────────────────────────────────────────────────────────────────

func TestStock_EntradaYSalida(t *testing.T) {
	app := newTestApp(t)
	fig := createFigure(t, app, "2")

	resp := postJSON(t, app, "/api/stock/inbound", `{"figure_id":"`+fig.ID+`","quantity":6}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var mov dto.MovementResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&mov))
	assert.Equal(t, "IN", mov.Type)
	assert.Equal(t, int64(6), mov.Quantity)

	resp = postJSON(t, app, "/api/stock/outbound", `{"figure_id":"`+fig.ID+`","quantity":3,"sale_price":"20.00"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&mov))
	assert.Equal(t, "OUT", mov.Type)
	assert.Equal(t, int64(-3), mov.Quantity, "el libro guarda la salida en negativo")
	require.NotNil(t, mov.SalePrice)
	assert.True(t, mov.SalePrice.Equal(decimal.RequireFromString("20.00")))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/figures/"+fig.ID, nil))
	require.NoError(t, err)
	var out dto.FigureResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(5), out.Qty, "2 + 6 - 3")
	assert.True(t, out.TotalSales.Equal(decimal.RequireFromString("60.00")))
}

func TestStock_SalidaInsuficiente(t *testing.T) {
	app := newTestApp(t)
	fig := createFigure(t, app, "1")

	resp := postJSON(t, app, "/api/stock/outbound", `{"figure_id":"`+fig.ID+`","quantity":5}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "INSUFFICIENT_STOCK", out.Code)
}

func TestStock_ValidacionDeBody(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/api/stock/inbound", `{"quantity":5}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "figure_id es requerido")

	resp = postJSON(t, app, "/api/stock/inbound", `{"figure_id":"x","quantity":0}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "la cantidad debe ser positiva")

	resp = postJSON(t, app, "/api/stock/inbound", `no-es-json`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/api/stock/inbound", `{"figure_id":"no-existe","quantity":1}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/figures/:id/sales y /api/filters
// ──────────────────────────────────────────────────────────────────────────────

func TestSales_Detalle(t *testing.T) {
	app := newTestApp(t)
	fig := createFigure(t, app, "10")

	resp := postJSON(t, app, "/api/stock/outbound", `{"figure_id":"`+fig.ID+`","quantity":4,"sale_price":"15.50"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/figures/"+fig.ID+"/sales", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var sales []dto.SaleItemResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sales))
	require.Len(t, sales, 1)
	assert.Equal(t, int64(4), sales[0].Quantity, "el detalle expone la cantidad en positivo")
}

func TestFilters(t *testing.T) {
	app := newTestApp(t)
	createFigure(t, app, "1")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/filters", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var opts dto.FilterOptionsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&opts))
	assert.Equal(t, []string{"Good Smile"}, opts.Manufacturer)
	assert.Equal(t, []string{"Miku"}, opts.Character)
}

func TestExport_DevuelveXlsx(t *testing.T) {
	app := newTestApp(t)
	createFigure(t, app, "2")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/figures/export", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "figuras.xlsx")
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
}

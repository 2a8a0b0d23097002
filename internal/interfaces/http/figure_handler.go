package http

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jcastro/figuras-api/internal/application/dto"
	"github.com/jcastro/figuras-api/internal/application/usecase"
	"github.com/jcastro/figuras-api/internal/domain"
	"github.com/jcastro/figuras-api/internal/infrastructure/excel"
)

// FigureHandler maneja las peticiones HTTP del catálogo de figuras.
type FigureHandler struct {
	uc       *usecase.FigureUseCase
	validate *validator.Validate
}

// NewFigureHandler construye el handler.
func NewFigureHandler(uc *usecase.FigureUseCase) *FigureHandler {
	return &FigureHandler{uc: uc, validate: validator.New()}
}

// Create godoc
// @Summary      Crear figura (o reingresar stock si ya existe)
// @Description  Si la tupla fabricante/marca/personaje/modelo/costo ya existe,
//
//	se registra una entrada de stock sobre la figura existente en lugar
//	de crear un duplicado. Para figuras nuevas la imagen es obligatoria.
//
// @Tags         figures
// @Accept       multipart/form-data
// @Produce      json
// @Param        manufacturer  formData  string  true   "Fabricante"
// @Param        brand         formData  string  true   "Marca"
// @Param        character     formData  string  true   "Personaje"
// @Param        model_name    formData  string  true   "Modelo"
// @Param        cost_price    formData  number  true   "Costo de adquisición"
// @Param        msrp          formData  number  false  "Precio sugerido"
// @Param        ip            formData  string  false  "Colección / serie"
// @Param        qty           formData  int     false  "Cantidad inicial (defecto 1)"
// @Param        image         formData  file    false  "Imagen (obligatoria para figuras nuevas)"
// @Success      201  {object}  dto.FigureResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/figures [post]
func (h *FigureHandler) Create(c *fiber.Ctx) error {
	in, err := parseCreateForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	if err := h.validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	var image *usecase.ImageUpload
	if fh, err := c.FormFile("image"); err == nil && fh != nil && strings.TrimSpace(fh.Filename) != "" {
		file, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "imagen ilegible"})
		}
		defer file.Close()
		image = &usecase.ImageUpload{Filename: fh.Filename, Content: file}
	}

	out, err := h.uc.CreateOrRestock(c.Context(), *in, image)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "figura nueva requiere imagen y cantidad positiva"})
		}
		if errors.Is(err, domain.ErrStorage) {
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "STORAGE", Message: "no se pudo guardar la imagen"})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "figura duplicada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar figuras con stock y ventas derivados del libro
// @Tags         figures
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(100)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.FigureListResponse
// @Router       /api/figures [get]
func (h *FigureHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", 100),
		Offset: c.QueryInt("offset", 0),
	}
	out, err := h.uc.List(c.Context(), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener figura por ID
// @Tags         figures
// @Produce      json
// @Param        id  path  string  true  "ID de la figura"
// @Success      200  {object}  dto.FigureResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/figures/{id} [get]
func (h *FigureHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "figura no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar figura (parcial) con corrección opcional de stock
// @Description  Solo cambian los campos presentes en el body. Si viene qty, se
//
//	escribe un movimiento por la diferencia con el stock actual.
//
// @Tags         figures
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la figura"
// @Param        body  body  dto.UpdateFigureRequest  true  "Campos a actualizar"
// @Success      200  {object}  dto.FigureResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/figures/{id} [put]
func (h *FigureHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateFigureRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "figura no encontrada"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "qty no puede ser negativo"})
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "otra figura ya tiene esa identidad"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar figura y todos sus movimientos (cascada)
// @Tags         figures
// @Produce      json
// @Param        id  path  string  true  "ID de la figura"
// @Success      200  {object}  map[string]bool
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/figures/{id} [delete]
func (h *FigureHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "figura no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Sales godoc
// @Summary      Detalle de ventas de una figura (movimientos OUT)
// @Tags         figures
// @Produce      json
// @Param        id  path  string  true  "ID de la figura"
// @Success      200  {array}   dto.SaleItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/figures/{id}/sales [get]
func (h *FigureHandler) Sales(c *fiber.Ctx) error {
	out, err := h.uc.Sales(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "figura no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Filters godoc
// @Summary      Valores distintos de los atributos, para los selectores de filtro
// @Tags         figures
// @Produce      json
// @Success      200  {object}  dto.FilterOptionsResponse
// @Router       /api/filters [get]
func (h *FigureHandler) Filters(c *fiber.Ctx) error {
	out, err := h.uc.FilterOptions(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar el catálogo con stock y ventas a xlsx
// @Tags         figures
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /api/figures/export [get]
func (h *FigureHandler) Export(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), dto.PageRequest{Limit: 500})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	f, err := excel.BuildFiguresWorkbook(out.Items)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	defer f.Close()

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="figuras.xlsx"`)
	if err := f.Write(c.Response().BodyWriter()); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("no se pudo generar el Excel")
	}
	return nil
}

// parseCreateForm arma el DTO del alta desde el multipart. Los decimales se
// parsean a mano: el BodyParser de fiber no entiende decimal.Decimal en forms.
func parseCreateForm(c *fiber.Ctx) (*dto.CreateFigureRequest, error) {
	in := &dto.CreateFigureRequest{
		Manufacturer: strings.TrimSpace(c.FormValue("manufacturer")),
		Brand:        strings.TrimSpace(c.FormValue("brand")),
		Character:    strings.TrimSpace(c.FormValue("character")),
		ModelName:    strings.TrimSpace(c.FormValue("model_name")),
	}

	costPrice, err := decimal.NewFromString(c.FormValue("cost_price"))
	if err != nil {
		return nil, errors.New("cost_price inválido")
	}
	in.CostPrice = costPrice

	if v := c.FormValue("msrp"); v != "" {
		msrp, err := decimal.NewFromString(v)
		if err != nil {
			return nil, errors.New("msrp inválido")
		}
		in.Msrp = &msrp
	}
	if v := strings.TrimSpace(c.FormValue("ip")); v != "" {
		in.IP = &v
	}
	if v := c.FormValue("qty"); v != "" {
		qty, err := strconv.ParseInt(v, 10, 64)
		if err != nil || qty < 0 {
			return nil, errors.New("qty inválido")
		}
		in.Qty = qty
	}
	return in, nil
}

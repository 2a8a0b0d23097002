package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jcastro/figuras-api/internal/application/inventory"
	"github.com/jcastro/figuras-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	FigureUC         *usecase.FigureUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	figures := api.Group("/figures")
	figureHandler := NewFigureHandler(deps.FigureUC)
	figures.Post("/", figureHandler.Create)
	figures.Get("/", figureHandler.List)
	figures.Get("/export", figureHandler.Export)
	figures.Get("/:id", figureHandler.GetByID)
	figures.Put("/:id", figureHandler.Update)
	figures.Delete("/:id", figureHandler.Delete)
	figures.Get("/:id/sales", figureHandler.Sales)

	api.Get("/filters", figureHandler.Filters)

	stock := api.Group("/stock")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement)
	stock.Post("/inbound", inventoryHandler.Inbound)
	stock.Post("/outbound", inventoryHandler.Outbound)
}

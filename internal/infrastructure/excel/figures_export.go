// Package excel genera el export del catálogo a xlsx.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jcastro/figuras-api/internal/application/dto"
)

// BuildFiguresWorkbook arma un libro con el catálogo y sus agregados derivados
// (stock actual y ventas totales). El caller es responsable de Close.
func BuildFiguresWorkbook(items []dto.FigureResponse) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Figuras"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("renombrar hoja: %w", err)
	}

	headers := []string{"Fabricante", "Marca", "Personaje", "Modelo", "Colección", "Costo", "MSRP", "Stock", "Ventas"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("escribir cabecera: %w", err)
		}
	}

	for row, item := range items {
		values := []any{
			item.Manufacturer,
			item.Brand,
			item.Character,
			item.ModelName,
			strOrEmpty(item.IP),
			item.CostPrice.InexactFloat64(),
			msrpOrEmpty(item),
			item.Qty,
			item.TotalSales.InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("escribir fila %d: %w", row+2, err)
			}
		}
	}
	return f, nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func msrpOrEmpty(item dto.FigureResponse) any {
	if item.Msrp == nil {
		return ""
	}
	return item.Msrp.InexactFloat64()
}

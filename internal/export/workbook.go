// internal/export/workbook.go
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/pipeline"
)

const sheetName = "Frecuencia"

// BuildWorkbook flattens the per-customer month×SKU counts into one
// spreadsheet: a row per (customer, month, sku) with the quantity
// bought. Delivery lines are already excluded by the aggregator.
func BuildWorkbook(customers []domain.CustomerAggregate, temporal *pipeline.TemporalAggregator) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := []interface{}{"Cliente", "Email", "Telefono", "Mes", "Codigo", "Cantidad"}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	rowNum := 2
	for _, c := range customers {
		counts := temporal.SKUMonthCounts(c.Orders)

		months := make([]string, 0, len(counts))
		for month := range counts {
			months = append(months, month)
		}
		sort.Strings(months)

		for _, month := range months {
			skus := make([]string, 0, len(counts[month]))
			for sku := range counts[month] {
				skus = append(skus, sku)
			}
			sort.Strings(skus)

			for _, sku := range skus {
				row := []interface{}{c.Name, c.Email, c.Phone, month, sku, counts[month][sku]}
				cell := fmt.Sprintf("A%d", rowNum)
				if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
					return nil, fmt.Errorf("failed to write row %d: %w", rowNum, err)
				}
				rowNum++
			}
		}
	}

	return f, nil
}

// WriteWorkbook builds and saves the export to disk.
func WriteWorkbook(path string, customers []domain.CustomerAggregate, temporal *pipeline.TemporalAggregator) error {
	f, err := BuildWorkbook(customers, temporal)
	if err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// internal/ingest/source.go
package ingest

import "github.com/David815-hue/FrecuenciaCompra-sub000/internal/pipeline"

// DefaultHeaderColumns matches the order-management export this system
// receives today. The mapping is data, not logic: a changed export only
// needs a new mapping, never a pipeline change.
func DefaultHeaderColumns() pipeline.HeaderColumns {
	return pipeline.HeaderColumns{
		OrderID:  "Numero de Orden",
		Status:   "Estado",
		Name:     "Cliente",
		Email:    "Email",
		Phone:    "Telefono",
		City:     "Ciudad",
		Date:     "Fecha",
		Channel:  "Canal",
		POSUser:  "Usuario POS",
		Identity: "Cedula",
	}
}

// DefaultLineColumns matches the POS line-item export.
func DefaultLineColumns() pipeline.LineColumns {
	return pipeline.LineColumns{
		OrderID:     "Pedido",
		SKU:         "Codigo",
		Description: "Descripcion",
		Quantity:    "Cantidad",
		Total:       "Total",
		Identity:    "Cedula",
	}
}

// internal/service/dashboard_test.go
package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/config"
)

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		DeliveredStatus: "Entregado",
		DeliverySKU:     "DELIVERY",
	}
}

// buildWorkbook writes rows into a fresh in-memory xlsx, the same shape
// the exports arrive in.
func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func headerWorkbook(t *testing.T, dataRows ...[]interface{}) *bytes.Reader {
	rows := [][]interface{}{
		{"Numero de Orden", "Estado", "Cliente", "Email", "Telefono", "Ciudad", "Fecha", "Canal", "Usuario POS", "Cedula"},
	}
	return buildWorkbook(t, append(rows, dataRows...))
}

func lineWorkbook(t *testing.T, dataRows ...[]interface{}) *bytes.Reader {
	rows := [][]interface{}{
		{"Pedido", "Codigo", "Descripcion", "Cantidad", "Total", "Cedula"},
	}
	return buildWorkbook(t, append(rows, dataRows...))
}

func TestProcessUploadEndToEnd(t *testing.T) {
	svc := NewDashboardService(testPipelineConfig(), nil, nil, nil, nil)

	headers := headerWorkbook(t,
		[]interface{}{"0001234-I", "Entregado", "Juan Perez", "juan@example.com", "0990000001", "Quito", "45292", "Tienda", "pos1", "1700000001"},
		[]interface{}{"0005678-I", "Cancelado", "Otro Cliente", "otro@example.com", "", "", "45292", "", "", ""},
	)
	lines := lineWorkbook(t,
		[]interface{}{"1234", "SKU1", "Producto uno", "2", "50.00", "1700000001"},
	)

	snap, err := svc.ProcessUpload(context.Background(), headers, lines, "headers.xlsx", "lines.xlsx")
	require.NoError(t, err)

	assert.Equal(t, 1, snap.OrderCount, "cancelled order is filtered out")
	require.Len(t, snap.Customers, 1)

	c := snap.Customers[0]
	assert.Equal(t, "juan@example.com", c.Key)
	assert.Equal(t, 50.0, c.TotalInvestment)
	assert.Equal(t, "1700000001", c.Identity)

	require.Len(t, c.Orders, 1)
	order := c.Orders[0]
	assert.Equal(t, "1234", order.OrderID)
	assert.Equal(t, "0001234-I", order.RawID)
	assert.Equal(t, "2024-01-01", order.OrderDate.Format("2006-01-02"))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2.0, order.Items[0].Quantity)
}

func TestCustomersQueryGuard(t *testing.T) {
	svc := NewDashboardService(testPipelineConfig(), nil, nil, nil, nil)

	headers := headerWorkbook(t,
		[]interface{}{"1", "Entregado", "Juan Perez", "juan@example.com", "", "", "45292", "", "", ""},
		[]interface{}{"2", "Entregado", "Maria Sol", "maria@example.com", "", "", "45292", "", "", ""},
	)
	lines := lineWorkbook(t)

	_, err := svc.ProcessUpload(context.Background(), headers, lines, "h.xlsx", "l.xlsx")
	require.NoError(t, err)

	all, err := svc.Customers("ju")
	require.NoError(t, err)
	assert.Len(t, all, 2, "queries under the minimum length return everything")

	filtered, err := svc.Customers("juan")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "juan@example.com", filtered[0].Key)

	none, err := svc.Customers("zzzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQueriesBeforeUploadFail(t *testing.T) {
	svc := NewDashboardService(testPipelineConfig(), nil, nil, nil, nil)

	_, err := svc.Customers("")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, err = svc.CustomerHeatmap("any")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, err = svc.RFM(time.Time{})
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestCustomerHeatmap(t *testing.T) {
	svc := NewDashboardService(testPipelineConfig(), nil, nil, nil, nil)

	// Serial 45292 is 2024-01-01; 45352 is 2024-03-01: gap month in between.
	headers := headerWorkbook(t,
		[]interface{}{"1", "Entregado", "Juan Perez", "juan@example.com", "", "", "45292", "", "", ""},
		[]interface{}{"2", "Entregado", "Juan Perez", "juan@example.com", "", "", "45352", "", "", ""},
	)
	lines := lineWorkbook(t,
		[]interface{}{"1", "SKU1", "Producto", "1", "10.00", ""},
		[]interface{}{"2", "SKU1", "Producto", "1", "20.00", ""},
	)

	_, err := svc.ProcessUpload(context.Background(), headers, lines, "h.xlsx", "l.xlsx")
	require.NoError(t, err)

	heatmap, err := svc.CustomerHeatmap("juan@example.com")
	require.NoError(t, err)

	require.Len(t, heatmap.Months, 3)
	assert.Equal(t, "2024-01", heatmap.Months[0].Key)
	assert.Equal(t, "2024-02", heatmap.Months[1].Key)
	assert.Zero(t, heatmap.Months[1].Count)
	assert.Equal(t, "2024-03", heatmap.Months[2].Key)

	require.Len(t, heatmap.Days, 2)
	assert.Equal(t, 1, heatmap.Days[0].Level)

	_, err = svc.CustomerHeatmap("nobody@example.com")
	assert.Error(t, err)
}

// internal/pipeline/normalize.go
package pipeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/gestor"
)

// Row is one spreadsheet row keyed by column header.
type Row map[string]string

// serialEpochOffsetDays converts spreadsheet serial dates (days since
// 1899-12-30) to the Unix epoch.
const serialEpochOffsetDays = 25569

// HeaderColumns maps the order-management export's headers onto the
// fields the normalizer needs. Header strings are source-specific and
// injected, never hardcoded here.
type HeaderColumns struct {
	OrderID  string
	Status   string
	Name     string
	Email    string
	Phone    string
	City     string
	Date     string
	Channel  string
	POSUser  string
	Identity string
}

// LineColumns maps the POS line-item export's headers.
type LineColumns struct {
	OrderID     string
	SKU         string
	Description string
	Quantity    string
	Total       string
	Identity    string
}

// HeaderRecord is a cleaned order header before the join.
type HeaderRecord struct {
	OrderID      string
	RawID        string
	CustomerName string
	Email        string
	Phone        string
	City         string
	Identity     string
	OrderDate    time.Time
	HasDate      bool
	Channel      string
	POSUser      string
	GestorName   string
	GestorZone   string
}

// LineRow is a cleaned POS line before per-order aggregation.
type LineRow struct {
	OrderID     string
	SKU         string
	Description string
	Quantity    float64
	LineTotal   float64
	Identity    string
}

// Normalizer cleans and type-coerces raw rows from either source.
type Normalizer struct {
	DeliveredStatus string
	Gestores        *gestor.Directory
}

// NormalizeHeaders keeps only rows whose status equals the delivered
// value and coerces them into HeaderRecords. Rows with unparseable
// dates are kept with HasDate=false; date-bucketed views skip them.
func (n *Normalizer) NormalizeHeaders(rows []Row, cols HeaderColumns) []HeaderRecord {
	out := make([]HeaderRecord, 0, len(rows))
	for _, row := range rows {
		status := strings.TrimSpace(row[cols.Status])
		if !strings.EqualFold(status, n.DeliveredStatus) {
			continue
		}

		rawID := strings.TrimSpace(row[cols.OrderID])
		rec := HeaderRecord{
			OrderID:      NormalizeOrderID(rawID),
			RawID:        rawID,
			CustomerName: strings.TrimSpace(row[cols.Name]),
			Email:        strings.TrimSpace(row[cols.Email]),
			Phone:        strings.TrimSpace(row[cols.Phone]),
			City:         strings.TrimSpace(row[cols.City]),
			Identity:     strings.TrimSpace(row[cols.Identity]),
			Channel:      strings.TrimSpace(row[cols.Channel]),
			POSUser:      strings.TrimSpace(row[cols.POSUser]),
		}
		rec.OrderDate, rec.HasDate = ParseOrderDate(row[cols.Date])

		if n.Gestores != nil {
			if rep, ok := n.Gestores.Lookup(rec.POSUser); ok {
				rec.GestorName = rep.Name
				rec.GestorZone = rep.Zone
			}
		}

		out = append(out, rec)
	}
	return out
}

// NormalizeLines coerces POS line rows. Lines without an order id are
// dropped since they can never join.
func (n *Normalizer) NormalizeLines(rows []Row, cols LineColumns) []LineRow {
	out := make([]LineRow, 0, len(rows))
	for _, row := range rows {
		rawID := strings.TrimSpace(row[cols.OrderID])
		if rawID == "" {
			continue
		}
		out = append(out, LineRow{
			OrderID:     NormalizeOrderID(rawID),
			SKU:         strings.TrimSpace(row[cols.SKU]),
			Description: strings.TrimSpace(row[cols.Description]),
			Quantity:    parseAmount(row[cols.Quantity]),
			LineTotal:   parseAmount(row[cols.Total]),
			Identity:    strings.TrimSpace(row[cols.Identity]),
		})
	}
	return out
}

// NormalizeOrderID strips leading zeros and a trailing "-I" suffix so
// both exports agree on the join key. An all-zeros id stays "0" so it
// cannot collide with genuinely blank ids.
func NormalizeOrderID(raw string) string {
	id := strings.TrimSpace(raw)
	id = strings.TrimSuffix(id, "-I")
	trimmed := strings.TrimLeft(id, "0")
	if trimmed == "" && id != "" {
		return "0"
	}
	return trimmed
}

// ParseOrderDate interprets numeric cells as spreadsheet serial dates
// (days since 1899-12-30, the 25569-day Unix offset). String cells get
// native layouts first, then a DD/MM/YYYY rewrite. Anything else is
// reported invalid rather than failing the row.
func ParseOrderDate(raw string) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		ms := int64((serial - serialEpochOffsetDays) * 86400 * 1000)
		return time.UnixMilli(ms).UTC(), true
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"2006/01/02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}

	// DD/MM/YYYY rewritten to YYYY-MM-DD
	if parts := strings.Split(v, "/"); len(parts) == 3 {
		rewritten := parts[2] + "-" + pad2(parts[1]) + "-" + pad2(parts[0])
		if t, err := time.Parse("2006-01-02", rewritten); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// parseAmount tolerates thousands separators the way the exports write
// them; anything unparseable becomes 0.
func parseAmount(raw string) float64 {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", "")
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

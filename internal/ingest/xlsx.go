// internal/ingest/xlsx.go
package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/pipeline"
)

// ReadXLSX reads the first sheet of a workbook into rows keyed by the
// header row's column names. Cell values stay raw strings; type
// coercion is the normalizer's job.
func ReadXLSX(path string) ([]pipeline.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	return readFirstSheet(f, path)
}

// ReadXLSXFrom reads a workbook from a stream, for uploads that never
// touch disk.
func ReadXLSXFrom(r io.Reader, name string) ([]pipeline.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx stream %s: %w", name, err)
	}
	defer f.Close()

	return readFirstSheet(f, name)
}

func readFirstSheet(f *excelize.File, name string) ([]pipeline.Row, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", name)
	}

	iter, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer iter.Close()

	var header []string
	var out []pipeline.Row
	for iter.Next() {
		record, err := iter.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", name, err)
		}
		if header == nil {
			header = make([]string, len(record))
			for i, h := range record {
				header[i] = strings.TrimSpace(h)
			}
			continue
		}

		row := make(pipeline.Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = record[i]
			}
		}
		out = append(out, row)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", name, err)
	}

	return out, nil
}

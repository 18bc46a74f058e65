package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// TemplateSheet - имя листа в шаблоне.
const TemplateSheet = "Invoice Template"

// TemplateHeaders - заголовки шаблона массового импорта.
var TemplateHeaders = []string{"User Name", "Customer Name", "Tax Code", "Email", "Phone Number", "Order Number", "Address"}

var templateWidths = []float64{15, 20, 15, 25, 15, 15, 30}

// BuildTemplate формирует xlsx с одной строкой заголовков.
func BuildTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := make([]interface{}, len(TemplateHeaders))
	for i, h := range TemplateHeaders {
		headers[i] = h
	}
	if err := f.SetSheetRow(TemplateSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, w := range templateWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(TemplateSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("set width of %s: %w", col, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(TemplateHeaders), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(TemplateSheet, "A1", last, style); err != nil {
		return nil, fmt.Errorf("style headers: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildCSVTemplate формирует csv только с заголовками.
func BuildCSVTemplate() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(TemplateHeaders); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Package export renders projected visitor rows as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/visitor-register/internal/visitor"
)

const sheet = "Visitors"

// ContentType is the MIME type of the produced file.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// VisitorsWorkbook writes one header row with the schema's field names (in
// vocabulary order) followed by one row per projected visitor.  Nil values
// become empty cells.
func VisitorsWorkbook(schema visitor.Schema, rows []visitor.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	fields := schema.Fields()
	for col, field := range fields {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, field.String()); err != nil {
			return nil, err
		}
	}
	for i, row := range rows {
		for col, field := range fields {
			v := row[field.String()]
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, fmt.Sprint(v)); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

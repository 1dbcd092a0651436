package output

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"timesheet/worklog"
)

const excelSheetName = "Timesheet"

// secondsColumn holds numeric values in the spreadsheet.
const secondsColumn = 5

type ExcelRenderer struct{}

// Render builds an .xlsx workbook with the same rows as the CSV export.
func (r *ExcelRenderer) Render(entries []worklog.Entry, opts Options) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), excelSheetName); err != nil {
		return nil, fmt.Errorf("rename excel sheet: %w", err)
	}

	for col, header := range csvHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(excelSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	rows := csvRows(BuildSummary(entries, opts.Timezone))
	for i, values := range rows {
		row := i + 2
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			var cellValue any = value
			if col == secondsColumn {
				if seconds, err := strconv.Atoi(value); err == nil {
					cellValue = seconds
				}
			}
			if err := file.SetCellValue(excelSheetName, cell, cellValue); err != nil {
				return nil, fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode excel output: %w", err)
	}
	return buf.Bytes(), nil
}

package reader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractCSV renders each row as "cell | cell | cell", one row per
// line, so column adjacency survives chunking.
func extractCSV(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to parse CSV: %w", err)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, " | "))
	}
	return strings.Join(lines, "\n"), nil
}

// extractExcel renders every sheet the same way as CSV, with a sheet
// name heading and a blank line between sheets.
func extractExcel(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sheets []string
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %s: %w", name, err)
		}

		lines := make([]string, 0, len(rows)+1)
		lines = append(lines, "Sheet: "+name)
		for _, row := range rows {
			if line := strings.Join(row, " | "); strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
		sheets = append(sheets, strings.Join(lines, "\n"))
	}

	return strings.Join(sheets, "\n\n"), nil
}

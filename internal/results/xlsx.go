package results

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "raceseries/internal/errors"
)

// loadXLSX reads a race results sheet exported by timing systems that only
// produce Excel workbooks. The header row is located by looking for the key
// result columns, so extra banner rows above the data are tolerated.
func (l *Loader) loadXLSX(filePath string) (*Race, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewInputError("failed to open race results workbook", err).
			WithContext("file", filePath)
	}
	defer f.Close()

	rows, sheetName, err := findResultsSheet(f)
	if err != nil {
		return nil, apperrors.NewInputError(err.Error(), nil).
			WithContext("file", filePath)
	}

	l.logger.Debug("found results sheet",
		"file", filePath,
		"sheet", sheetName,
		"total_rows", len(rows))

	headerRow, cols := findHeaderRow(rows)
	if headerRow == -1 {
		return nil, apperrors.NewInputError(
			"could not find header row in results sheet", nil).
			WithContext("file", filePath)
	}
	if err := requireColumns(cols, filePath); err != nil {
		return nil, err
	}

	race := newRace(filePath)

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		record, err := parseFinisher(row, cols)
		if err != nil {
			return nil, apperrors.NewInputError(
				fmt.Sprintf("invalid race results row %d", i+1), err).
				WithContext("file", filePath)
		}
		race.Results = append(race.Results, *record)
	}

	return race, nil
}

// findResultsSheet returns the rows of the first sheet that carries finisher
// data, preferring a sheet named "Results" when present.
func findResultsSheet(f *excelize.File) ([][]string, string, error) {
	sheets := f.GetSheetList()

	for _, name := range sheets {
		if strings.EqualFold(strings.TrimSpace(name), "results") {
			rows, err := f.GetRows(name)
			if err == nil && len(rows) > 1 {
				return rows, name, nil
			}
		}
	}

	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) < 2 {
			continue
		}
		if row, _ := headerColumns(rows); row != -1 {
			return rows, name, nil
		}
	}

	return nil, "", fmt.Errorf("could not find results sheet in workbook")
}

func findHeaderRow(rows [][]string) (int, map[string]int) {
	return headerColumns(rows)
}

// headerColumns scans for the first row that maps all of the place, name,
// and time columns, accepting the column name variants timing systems use.
func headerColumns(rows [][]string) (int, map[string]int) {
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}

		cols := make(map[string]int, len(row))
		for j, header := range row {
			headerLower := strings.ToLower(strings.TrimSpace(header))
			switch {
			case headerLower == "place" || headerLower == "position" || headerLower == "pos":
				cols["place"] = j
			case headerLower == "name" || strings.Contains(headerLower, "runner"):
				cols["name"] = j
			case headerLower == "time" || strings.Contains(headerLower, "finish time") ||
				strings.Contains(headerLower, "chip time") || strings.Contains(headerLower, "gun time"):
				if _, mapped := cols["time"]; !mapped {
					cols["time"] = j
				}
			case headerLower == "age":
				cols["age"] = j
			case headerLower == "gender" || headerLower == "sex":
				cols["gender"] = j
			case strings.Contains(headerLower, "bib"):
				cols["bib_number"] = j
			}
		}

		if hasResultColumns(cols) {
			return i, cols
		}
	}
	return -1, nil
}

func hasResultColumns(cols map[string]int) bool {
	for _, required := range []string{"place", "name", "time"} {
		if _, ok := cols[required]; !ok {
			return false
		}
	}
	return true
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Package dataset loads and saves tabular datasets for curation. Format
// selection sniffs the file content rather than trusting the extension: a
// spreadsheet container is read with excelize, anything else as delimited
// text.
package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"molcure/domain/dataset"
	"molcure/internal/errors"
)

var zipMagic = []byte("PK\x03\x04")

// LoadTable reads a dataset file into a table. Columns where every non-empty
// cell parses as a number become float columns (empty cells are NaN);
// everything else stays as strings.
func LoadTable(path string) (*dataset.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading dataset %s", path)
	}

	var rows [][]string
	if bytes.HasPrefix(data, zipMagic) {
		rows, err = readXLSX(data)
	} else {
		rows, err = readCSV(data)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing dataset %s", path)
	}
	return tableFromRows(rows)
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.DataError("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func tableFromRows(rows [][]string) (*dataset.Table, error) {
	if len(rows) < 2 {
		return nil, errors.DataError("dataset must have a header row and at least one data row")
	}

	header := rows[0]
	body := rows[1:]

	t := dataset.NewTable()
	for ci, name := range header {
		if name == "" {
			return nil, errors.DataError(fmt.Sprintf("column %d has an empty header", ci))
		}
		cells := make([]string, len(body))
		for ri, row := range body {
			if ci < len(row) {
				cells[ri] = row[ci]
			}
		}
		if err := t.SetColumn(name, coerceColumn(cells)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// coerceColumn promotes a column to floats when every non-empty cell is
// numeric.
func coerceColumn(cells []string) dataset.Column {
	numeric := true
	floats := make(dataset.FloatColumn, len(cells))
	for i, cell := range cells {
		if cell == "" {
			floats[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			break
		}
		floats[i] = v
	}
	if numeric {
		return floats
	}
	return dataset.StringColumn(cells)
}

// WriteCSV saves a table as comma-separated text. NaN and undetermined flags
// are written as empty cells so a round trip preserves missingness.
func WriteCSV(t *dataset.Table, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	names := t.Columns()
	if err := w.Write(names); err != nil {
		return err
	}

	record := make([]string, len(names))
	for row := 0; row < t.NumRows(); row++ {
		for i, name := range names {
			v, err := t.Value(name, row)
			if err != nil {
				return err
			}
			record[i] = cellString(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func cellString(v interface{}) string {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	case dataset.Flag:
		switch x {
		case dataset.FlagTrue:
			return "true"
		case dataset.FlagFalse:
			return "false"
		default:
			return ""
		}
	default:
		return fmt.Sprintf("%v", v)
	}
}

package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a numeric table read from disk, header excluded.
type Table struct {
	Header []string
	Rows   [][]float64
}

// Load reads a numeric table from a .csv or .xlsx file. The first row is a
// header; every other cell must parse as a float.
func Load(path string) (Table, error) {
	if _, err := os.Stat(path); err != nil {
		return Table{}, fmt.Errorf("dataset: stat %s: %w", path, err)
	}

	var (
		rows [][]string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return Table{}, fmt.Errorf("dataset: unsupported file type %q", ext)
	}

	if err != nil {
		return Table{}, err
	}

	return parseRows(path, rows)
}

// LoadLabeled reads a features table and a single-column labels table and
// pairs them row by row.
func LoadLabeled(featuresPath, labelsPath string) (Dataset, error) {
	features, err := Load(featuresPath)
	if err != nil {
		return Dataset{}, err
	}

	labelTable, err := Load(labelsPath)
	if err != nil {
		return Dataset{}, err
	}

	labels := make([]int, len(labelTable.Rows))
	for i, row := range labelTable.Rows {
		if len(row) != 1 {
			return Dataset{}, fmt.Errorf("%w: %s row %d has %d columns, want 1", ErrInvalid, labelsPath, i+1, len(row))
		}

		// Labels are stored as floats in the source tables (0.0 / 1.0).
		v := row[0]
		if v != math.Trunc(v) {
			return Dataset{}, fmt.Errorf("%w: %s row %d label %v is not integral", ErrInvalid, labelsPath, i+1, v)
		}

		labels[i] = int(v)
	}

	d, err := New(features.Rows, labels)
	if err != nil {
		return Dataset{}, fmt.Errorf("%s + %s: %w", featuresPath, labelsPath, err)
	}

	return d, nil
}

// LoadSplit loads the train and validation partitions and checks that both
// have the same number of feature columns.
func LoadSplit(trainX, trainY, valX, valY string) (train, val Dataset, err error) {
	if train, err = LoadLabeled(trainX, trainY); err != nil {
		return Dataset{}, Dataset{}, err
	}

	if val, err = LoadLabeled(valX, valY); err != nil {
		return Dataset{}, Dataset{}, err
	}

	if train.Dim() != val.Dim() {
		return Dataset{}, Dataset{}, fmt.Errorf("%w: train has %d features, validation has %d", ErrInvalid, train.Dim(), val.Dim())
	}

	return train, val, nil
}

//////
// Readers.
//////

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}

	return rows, nil
}

// readXLSX reads the first sheet of the workbook.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("dataset: %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s sheet %q: %w", path, sheets[0], err)
	}

	return rows, nil
}

func parseRows(path string, rows [][]string) (Table, error) {
	if len(rows) < 2 {
		return Table{}, fmt.Errorf("%w: %s must have a header row and at least one data row", ErrInvalid, path)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	out := make([][]float64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return Table{}, fmt.Errorf("%w: %s row %d has %d cells, header has %d", ErrInvalid, path, i+1, len(row), len(header))
		}

		values := make([]float64, len(row))
		for j, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return Table{}, fmt.Errorf("%w: %s row %d column %q: %v", ErrInvalid, path, i+1, header[j], err)
			}

			values[j] = v
		}

		out = append(out, values)
	}

	return Table{Header: header, Rows: out}, nil
}

package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// NormalizeHeader lower-cases a column name and joins whitespace runs with "_".
func NormalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(h))), "_")
}

// ReadCSV reads a header-led CSV stream into rows, skipping blank lines.
func ReadCSV(r io.Reader) ([]Row, error) {
	const op = "records.ReadCSV"

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: header: %w", op, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = NormalizeHeader(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []Row
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if blank(fields) {
			continue
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(fields) {
				row[col] = fields[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func ReadCSVFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("records.ReadCSVFile: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

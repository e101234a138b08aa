package sheet

import (
	"crypto/sha256"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// columns is the required CSV header, in order.
var columns = []string{
	"level", "name", "description", "length", "datatype", "occurs",
	"optional", "nullok", "nls", "samples", "remarks", "physical",
	"testvalue", "hardrule",
}

// ReadFile loads one sheet from a CSV file. The sheet name is the file's
// base name without extension; the provenance hash covers the raw bytes.
func ReadFile(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sheet file: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sum := sha256.Sum256(data)

	rows, err := parseCSV(name, string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Sheet{
		Name: name,
		Hash: fmt.Sprintf("sha256:%x", sum),
		Rows: rows,
	}, nil
}

// parseCSV decodes the header line and data rows. Only shape problems are
// rejected here (wrong header, bad field count, non-integer level); the
// builder owns every semantic check so it can accumulate them per row.
func parseCSV(sheetName, content string) ([]Row, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = len(columns)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty sheet: missing header line")
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		num := i + 1
		for j := range rec {
			rec[j] = strings.TrimSpace(rec[j])
		}
		level, err := strconv.Atoi(rec[0])
		if err != nil || level < 0 {
			return nil, fmt.Errorf("row %d: level %q is not a non-negative integer", num, rec[0])
		}
		rows = append(rows, Row{
			Sheet:       sheetName,
			Num:         num,
			Level:       level,
			Name:        rec[1],
			Description: rec[2],
			Length:      rec[3],
			Datatype:    rec[4],
			Occurs:      rec[5],
			Optional:    truthy(rec[6]),
			NullOK:      truthy(rec[7]),
			NLS:         truthy(rec[8]),
			Samples:     rec[9],
			Remarks:     rec[10],
			Physical:    rec[11],
			TestValue:   rec[12],
			HardRule:    rec[13],
		})
	}
	return rows, nil
}

func checkHeader(rec []string) error {
	for i, want := range columns {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), want) {
			return fmt.Errorf("header column %d is %q, want %q", i+1, rec[i], want)
		}
	}
	return nil
}

// truthy interprets the flag columns. The row source contract normalizes
// flags upstream; anything not affirmative reads as false.
func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}

package aggregate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FlightRecord is one row of the historical flight dataset.
type FlightRecord struct {
	Airline     string
	AirportFrom string
	AirportTo   string
	DayOfWeek   int
	Time        float64
	Length      float64
	Delay       float64
}

// requiredColumns must be present in the dataset header. Time and Length are
// carried when present but are not required for aggregation.
var requiredColumns = []string{"Airline", "AirportFrom", "AirportTo", "DayOfWeek", "Delay"}

// ReadDataset reads the historical dataset CSV. The file must have a header
// row; columns are matched by name, so column order does not matter. Rows
// with malformed numerics are skipped rather than failing the whole pass.
func ReadDataset(path string) ([]FlightRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return readDataset(f)
}

func readDataset(r io.Reader) ([]FlightRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", col)
		}
	}

	var records []FlightRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}

		rec, ok := parseRecord(row, colIdx)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(row []string, colIdx map[string]int) (FlightRecord, bool) {
	day, err := strconv.Atoi(get(row, colIdx, "DayOfWeek"))
	if err != nil {
		return FlightRecord{}, false
	}
	delay, err := strconv.ParseFloat(get(row, colIdx, "Delay"), 64)
	if err != nil {
		return FlightRecord{}, false
	}

	return FlightRecord{
		Airline:     get(row, colIdx, "Airline"),
		AirportFrom: get(row, colIdx, "AirportFrom"),
		AirportTo:   get(row, colIdx, "AirportTo"),
		DayOfWeek:   day,
		Time:        floatOrZero(get(row, colIdx, "Time")),
		Length:      floatOrZero(get(row, colIdx, "Length")),
		Delay:       delay,
	}, true
}

func get(row []string, colIdx map[string]int, col string) string {
	i, ok := colIdx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func floatOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

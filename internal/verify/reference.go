package verify

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/studiofarzulla/alpha-asymmetry/internal/alpha"
	"github.com/studiofarzulla/alpha-asymmetry/internal/series"
)

// LoadReference reads a published alpha dataset from CSV. Expected
// columns: date (2006-01-02), alpha_type, value — one row per
// observation, header row required.
func LoadReference(path string) (map[alpha.Type]series.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference: %w", err)
	}
	defer file.Close()
	return readReference(file)
}

func readReference(r io.Reader) (map[alpha.Type]series.Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if header[0] != "date" || header[1] != "alpha_type" || header[2] != "value" {
		return nil, fmt.Errorf("unexpected header %v, want [date alpha_type value]", header)
	}

	buckets := make(map[alpha.Type][]series.Point)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		ts, err := time.ParseInLocation("2006-01-02", row[0], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date %q: %w", line, row[0], err)
		}
		value, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse value %q: %w", line, row[2], err)
		}
		typ := alpha.Type(row[1])
		buckets[typ] = append(buckets[typ], series.Point{Ts: ts, Value: value})
	}

	out := make(map[alpha.Type]series.Series, len(buckets))
	for typ, points := range buckets {
		out[typ] = series.New(points)
	}
	return out, nil
}

package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	ColumnSubmission = "Submission"
	ColumnSchedule   = "Schedule"
	ColumnAverage    = "Average"

	utf8BOM = "\ufeff"
)

// ErrInput is returned when the input can't be opened, read, or lacks required columns.
var ErrInput = errors.New("invalid input")

// Columns names the header cells holding each observation field.
type Columns struct {
	Submission string `yaml:"submission"`
	Schedule   string `yaml:"schedule"`
	Average    string `yaml:"average"`
}

// DefaultColumns returns the standard simulator export header names.
func DefaultColumns() Columns {
	return Columns{
		Submission: ColumnSubmission,
		Schedule:   ColumnSchedule,
		Average:    ColumnAverage,
	}
}

// IngestFile reads all observations from the CSV file at path.
func IngestFile(path string, cols Columns) ([]Observation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: error opening %s: %w", ErrInput, path, err)
	}
	defer file.Close()

	list, err := Ingest(file, cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// Ingest reads all observations from r. The first record must be a header
// containing the configured column names; extra columns are ignored.
func Ingest(r io.Reader, cols Columns) ([]Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrInput)
		}
		return nil, fmt.Errorf("%w: error reading header: %w", ErrInput, err)
	}

	idx, err := columnIndex(header, cols)
	if err != nil {
		return nil, err
	}

	list := make([]Observation, 0)
	missing := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: error reading row %d: %w", ErrInput, len(list)+2, err)
		}

		o := Observation{
			Submission: field(rec, idx[0]),
			Schedule:   field(rec, idx[1]),
			Average:    ParseAverage(field(rec, idx[2])),
		}
		if !o.Average.Valid {
			missing++
		}
		list = append(list, o)
	}

	slog.Debug("observations ingested", "rows", len(list), "missing", missing)
	return list, nil
}

func columnIndex(header []string, cols Columns) ([3]int, error) {
	idx := [3]int{-1, -1, -1}
	want := [3]string{cols.Submission, cols.Schedule, cols.Average}

	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		for j, w := range want {
			if idx[j] < 0 && h == w {
				idx[j] = i
			}
		}
	}

	var absent []string
	for j, w := range want {
		if idx[j] < 0 {
			absent = append(absent, w)
		}
	}
	if len(absent) > 0 {
		return idx, fmt.Errorf("%w: header missing required columns: %s", ErrInput, strings.Join(absent, ", "))
	}
	return idx, nil
}

// field returns rec[i], or empty when the row is shorter than the header.
func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

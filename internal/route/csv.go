package route

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/shipsim/internal/dynamo"
)

// CSVOptions select columns and thinning for LoadCSV.
type CSVOptions struct {
	XColumn string
	YColumn string
	// Sampling keeps every n-th data row; values below 1 keep all rows.
	Sampling int
}

func DefaultCSVOptions() CSVOptions {
	return CSVOptions{XColumn: "x", YColumn: "y", Sampling: 2}
}

// LoadCSV reads a recorded track with a header row. Column names match
// case-insensitively.
func LoadCSV(r io.Reader, opts CSVOptions) (dynamo.Path, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	xi, yi := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case strings.ToLower(opts.XColumn):
			xi = i
		case strings.ToLower(opts.YColumn):
			yi = i
		}
	}
	if xi < 0 || yi < 0 {
		return nil, fmt.Errorf("columns %q and %q not found in header %v", opts.XColumn, opts.YColumn, header)
	}

	step := max(opts.Sampling, 1)
	var path dynamo.Path
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row+2, err)
		}
		if row%step != 0 {
			continue
		}
		if len(rec) <= max(xi, yi) {
			return nil, fmt.Errorf("row %d: %d fields", row+2, len(rec))
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[xi]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: x: %w", row+2, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[yi]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: y: %w", row+2, err)
		}
		path = append(path, dynamo.Point{X: x, Y: y})
	}

	if err := path.Validate(); err != nil {
		return nil, err
	}
	return path, nil
}

func LoadCSVFile(name string, opts CSVOptions) (dynamo.Path, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCSV(f, opts)
}

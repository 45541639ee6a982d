package errorlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tkarimi/residual/internal/domain/model"
)

// Reader re-reads the whole log file on demand.
type Reader struct {
	path string
}

// NewReader creates a reader for the log at path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Records parses every well-formed row. Rows with the wrong column count or
// non-numeric values are skipped, not fatal. A missing file maps to
// ErrLogMissing and a log with no valid rows to ErrNoRecords; both are
// recoverable conditions for the caller's retry loop.
func (r *Reader) Records(ctx context.Context) ([]model.ErrorRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLogMissing, r.path)
		}
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // tolerate ragged rows, skip them below

	var records []model.ErrorRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRead, err)
		}
		if len(row) != 4 {
			continue
		}
		gt, err1 := strconv.ParseFloat(row[1], 64)
		pred, err2 := strconv.ParseFloat(row[2], 64)
		abs, err3 := strconv.ParseFloat(row[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		records = append(records, model.ErrorRecord{
			ID:            row[0],
			GroundTruth:   gt,
			Prediction:    pred,
			AbsoluteError: abs,
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, r.path)
	}
	return records, nil
}

// Errors returns just the absolute-error column, the visualizer's input.
func (r *Reader) Errors(ctx context.Context) ([]float64, error) {
	records, err := r.Records(ctx)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(records))
	for i, rec := range records {
		values[i] = rec.AbsoluteError
	}
	return values, nil
}

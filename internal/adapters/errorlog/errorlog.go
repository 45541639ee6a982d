// Package errorlog persists completed correlations as an append-only CSV.
//
// One line per record, no header: id,ground_truth,prediction,absolute_error.
// Rows are durable once written and never mutated; the visualizer re-reads
// the whole file on every tick.
package errorlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tkarimi/residual/internal/domain/model"
	"github.com/tkarimi/residual/pkg/metrics"
)

const dirPermission = 0o750

// Writer appends error records to the log file.
type Writer struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// NewWriter creates the log's parent directory and opens the file for append.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermission); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAppend, err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAppend, err)
	}
	return &Writer{path: path, f: f}, nil
}

// Append writes one record as a CSV line.
func (w *Writer) Append(ctx context.Context, rec model.ErrorRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	line := fmt.Sprintf("%s,%s,%s,%s\n",
		rec.ID,
		model.FormatFloat(rec.GroundTruth),
		model.FormatFloat(rec.Prediction),
		model.FormatFloat(rec.AbsoluteError),
	)
	if _, err := w.f.WriteString(line); err != nil {
		metrics.RecordAppendError()
		return fmt.Errorf("%w: %v", ErrAppend, err)
	}
	metrics.RecordRecordAppended()
	return nil
}

// Close releases the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

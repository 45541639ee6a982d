package dataset

import "errors"

// Sentinel kinds for dataset loading errors.
var (
	ErrLoadDataset  = errors.New("load dataset failed")
	ErrEmptyDataset = errors.New("dataset has no rows")
)

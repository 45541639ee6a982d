package render

import "errors"

// Sentinel kinds for render errors. Both are recoverable: the visualizer
// logs and retries on its next tick.
var (
	ErrNoData = errors.New("no error values to plot")
	ErrRender = errors.New("render plot failed")
)

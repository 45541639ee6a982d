package render

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithBins sets the histogram bin count.
func WithBins(bins int) Option {
	return func(r *Renderer) {
		if bins > 0 {
			r.bins = bins
		}
	}
}

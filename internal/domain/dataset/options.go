package dataset

// settings collects construction-time options.
type settings struct {
	path string
	seed int64
}

// Option applies a configuration option to a Dataset under construction.
type Option func(*settings)

// WithCSVPath loads rows from a headerless numeric CSV instead of the
// synthetic set. The last column is the target.
func WithCSVPath(path string) Option {
	return func(s *settings) {
		s.path = path
	}
}

// WithSeed overrides the sampling (and synthesis) seed.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

// Package dataset provides the fixed tabular dataset the producer samples from.
//
// Rows are loaded once (from a CSV file or the built-in synthetic generator)
// and never change afterwards, so sampling needs no locking.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/tkarimi/residual/internal/domain/model"
)

// Synthetic dataset shape, mirroring the classic diabetes regression set.
const (
	syntheticRows     = 442
	syntheticFeatures = 10
	syntheticSeed     = 42
)

// Dataset is an immutable collection of samples.
type Dataset struct {
	rows []model.Sample
	rng  *rand.Rand
}

// New loads a dataset with the given options. Without options it builds the
// deterministic synthetic set.
func New(opts ...Option) (*Dataset, error) {
	s := &settings{
		seed: syntheticSeed,
	}
	for _, opt := range opts {
		opt(s)
	}

	d := &Dataset{rng: rand.New(rand.NewSource(s.seed))}

	var err error
	if s.path != "" {
		d.rows, err = loadCSV(s.path)
	} else {
		d.rows = synthesize(s.seed)
	}
	if err != nil {
		return nil, err
	}
	if len(d.rows) == 0 {
		return nil, ErrEmptyDataset
	}
	return d, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Sample returns a uniformly random row.
func (d *Dataset) Sample() model.Sample {
	return d.rows[d.rng.Intn(len(d.rows))]
}

// loadCSV reads a headerless CSV where every column is numeric and the last
// column is the target.
func loadCSV(path string) ([]model.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadDataset, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	r := csv.NewReader(f)
	var rows []model.Sample
	for line := 1; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadDataset, err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: line %d has %d columns, need at least 2", ErrLoadDataset, line, len(record))
		}
		sample := model.Sample{Features: make([]float64, len(record)-1)}
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %v", ErrLoadDataset, line, i+1, err)
			}
			if i == len(record)-1 {
				sample.Target = v
			} else {
				sample.Features[i] = v
			}
		}
		rows = append(rows, sample)
	}
	return rows, nil
}

// synthesize builds a deterministic regression dataset: standardized feature
// vectors with a fixed linear relationship to the target plus Gaussian noise.
func synthesize(seed int64) []model.Sample {
	rng := rand.New(rand.NewSource(seed))

	weights := make([]float64, syntheticFeatures)
	for i := range weights {
		weights[i] = rng.NormFloat64() * 30
	}

	rows := make([]model.Sample, syntheticRows)
	for r := range rows {
		features := make([]float64, syntheticFeatures)
		target := 150.0
		for i := range features {
			features[i] = rng.NormFloat64() * 0.05
			target += features[i] * weights[i]
		}
		target += rng.NormFloat64() * 5
		rows[r] = model.Sample{Features: features, Target: target}
	}
	return rows
}

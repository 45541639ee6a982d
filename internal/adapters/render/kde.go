package render

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"
)

// kde evaluates a Gaussian kernel density estimate of values at n points
// spanning the data range padded by three bandwidths. Bandwidth follows
// Silverman's rule of thumb, the same default seaborn's kdeplot used.
func kde(values []float64, n int) plotter.XYs {
	h := silvermanBandwidth(values)

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	lo -= 3 * h
	hi += 3 * h

	pts := make(plotter.XYs, n)
	step := (hi - lo) / float64(n-1)
	norm := 1 / (float64(len(values)) * h * math.Sqrt(2*math.Pi))
	for i := range pts {
		x := lo + float64(i)*step
		var density float64
		for _, v := range values {
			z := (x - v) / h
			density += math.Exp(-0.5 * z * z)
		}
		pts[i] = plotter.XY{X: x, Y: density * norm}
	}
	return pts
}

// silvermanBandwidth is 1.06 * sigma * n^(-1/5), floored so that a constant
// sample still yields a drawable curve.
func silvermanBandwidth(values []float64) float64 {
	sigma := stat.StdDev(values, nil)
	h := 1.06 * sigma * math.Pow(float64(len(values)), -0.2)
	if h <= 0 || math.IsNaN(h) {
		return 1e-3
	}
	return h
}

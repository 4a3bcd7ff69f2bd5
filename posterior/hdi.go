package posterior

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Interval is a highest-density credible interval.
type Interval struct {
	Min float64
	Max float64
}

// Width is the interval length.
func (iv Interval) Width() float64 {
	return iv.Max - iv.Min
}

// HDI computes the highest density interval of the given credible mass from
// a representative sample: the narrowest window of ceil(mass*N) consecutive
// sorted values. Unlike a symmetric quantile interval this stays honest for
// skewed posteriors.
func HDI(samples []float64, mass float64) (Interval, error) {
	if len(samples) < 1 {
		return Interval{}, errors.Errorf("Need at least one sample for an HDI")
	}
	if mass <= 0 || mass > 1 {
		return Interval{}, errors.Errorf("Credible mass must be in (0, 1], got %v", mass)
	}
	if len(samples) == 1 {
		return Interval{Min: samples[0], Max: samples[0]}, nil
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	window := int(math.Ceil(mass * float64(len(sorted))))
	if window < 2 {
		window = 2
	}
	if window >= len(sorted) {
		return Interval{Min: sorted[0], Max: sorted[len(sorted)-1]}, nil
	}

	best := 0
	bestWidth := sorted[window-1] - sorted[0]
	for i := 1; i+window <= len(sorted); i++ {
		w := sorted[i+window-1] - sorted[i]
		if w < bestWidth {
			bestWidth = w
			best = i
		}
	}

	return Interval{Min: sorted[best], Max: sorted[best+window-1]}, nil
}

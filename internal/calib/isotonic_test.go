package calib

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ones(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func TestFitNonIncreasingHandCases(t *testing.T) {
	assert.Equal(t, []float64{3, 1.5, 1.5}, fitNonIncreasing([]float64{3, 1, 2}, ones(3)))
	assert.Equal(t, []float64{4, 2, 2, 2}, fitNonIncreasing([]float64{4, 1, 3, 2}, ones(4)))
}

func TestFitNonIncreasingKeepsSortedInput(t *testing.T) {
	in := []float64{5, 4, 4, 1}
	assert.Equal(t, in, fitNonIncreasing(in, ones(4)))
}

func TestFitNonIncreasingCollapsesRisingInput(t *testing.T) {
	// A fully rising sequence pools into one block at the mean.
	assert.Equal(t, []float64{2, 2, 2}, fitNonIncreasing([]float64{1, 2, 3}, ones(3)))
}

func TestFitNonIncreasingWeighted(t *testing.T) {
	// The heavier point dominates the pooled mean.
	got := fitNonIncreasing([]float64{1, 3}, []float64{1, 3})
	assert.Equal(t, []float64{2.5, 2.5}, got)
}

func TestFitNonIncreasingIdempotent(t *testing.T) {
	w := []float64{2, 1, 3, 1, 2}
	first := fitNonIncreasing([]float64{0.9, 0.95, 0.4, 0.6, 0.1}, w)
	assert.Equal(t, first, fitNonIncreasing(first, w))
}

package calib

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// kernelWindowSigmas bounds how far a kernel contributes to the grid. A
// Gaussian term beyond 10 sigma is under 1e-21 of its peak, orders of
// magnitude below any usable minimum density floor.
const kernelWindowSigmas = 10

// kdeOnGrid estimates the sample density at each grid point as the mean
// Gaussian kernel contribution over the sample. The sample must be sorted
// ascending; the grid may be anything.
func kdeOnGrid(sorted []float64, grid []float64, bandwidth float64) []float64 {
	kernel := distuv.Normal{Mu: 0, Sigma: bandwidth}
	window := kernelWindowSigmas * bandwidth
	inv := 1 / float64(len(sorted))

	dens := make([]float64, len(grid))
	for i, x := range grid {
		lo := sort.SearchFloat64s(sorted, x-window)
		hi := sort.SearchFloat64s(sorted, x+window)
		var sum float64
		for _, v := range sorted[lo:hi] {
			sum += kernel.Prob(x - v)
		}
		dens[i] = sum * inv
	}
	return dens
}

// monotoneDensity forces a density curve unimodal: non-decreasing up to the
// highest point, non-increasing after it. Each side becomes the average of
// its running extreme and the opposite extreme running in from the far end,
// which splits the correction between raising dips and lowering spikes.
func monotoneDensity(dens []float64) []float64 {
	peak := floats.MaxIdx(dens)
	out := make([]float64, len(dens))

	// Rising side, peak excluded.
	rise := dens[:peak]
	prefixMax := make([]float64, len(rise))
	runMax := math.Inf(-1)
	for i, v := range rise {
		runMax = math.Max(runMax, v)
		prefixMax[i] = runMax
	}
	runMin := math.Inf(1)
	for i := len(rise) - 1; i >= 0; i-- {
		runMin = math.Min(runMin, rise[i])
		out[i] = (prefixMax[i] + runMin) / 2
	}

	// Falling side, peak included.
	fall := dens[peak:]
	prefixMin := make([]float64, len(fall))
	runMin = math.Inf(1)
	for i, v := range fall {
		runMin = math.Min(runMin, v)
		prefixMin[i] = runMin
	}
	runMax = math.Inf(-1)
	for i := len(fall) - 1; i >= 0; i-- {
		runMax = math.Max(runMax, fall[i])
		out[peak+i] = (prefixMin[i] + runMax) / 2
	}
	return out
}

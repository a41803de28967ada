// Package calib fits per-stratum calibration tables that map raw
// log-likelihood ratios onto empirically supported ones. Only
// reference-correct observations are needed: the alternate-correct density is
// taken as the mirror image of the reference density around zero.
package calib

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Default hyperparameters for mirrored calibration.
const (
	DefaultMaxInputLLR = 200
	DefaultNumValues   = 5001
	DefaultBandwidth   = 0.8
	DefaultMinDensity  = 5e-8
)

// ErrLowDensity reports a sample too thin to support calibration on any
// usable LLR range.
var ErrLowDensity = errors.New("smoothed density below floor")

// Params are the mirrored calibration hyperparameters.
type Params struct {
	// MaxInputLLR bounds the LLR domain. The effective bound shrinks when
	// the smoothed density cannot meet MinDensity at the edges.
	MaxInputLLR int
	// NumValues is the calibration table resolution.
	NumValues int
	// Bandwidth is the Gaussian kernel bandwidth of the density estimate.
	Bandwidth float64
	// MinDensity is the density both domain edges must reach. Must be
	// positive; it is what keeps every probability away from 0 and 1 and
	// the output table finite.
	MinDensity float64
}

func DefaultParams() Params {
	return Params{
		MaxInputLLR: DefaultMaxInputLLR,
		NumValues:   DefaultNumValues,
		Bandwidth:   DefaultBandwidth,
		MinDensity:  DefaultMinDensity,
	}
}

func (p Params) validate() error {
	if p.MaxInputLLR < 1 {
		return fmt.Errorf("max input llr must be at least 1, got %d", p.MaxInputLLR)
	}
	if p.NumValues < 3 {
		return fmt.Errorf("num values must be at least 3, got %d", p.NumValues)
	}
	if p.Bandwidth <= 0 {
		return fmt.Errorf("bandwidth must be positive, got %g", p.Bandwidth)
	}
	if p.MinDensity <= 0 {
		return fmt.Errorf("min density must be positive, got %g", p.MinDensity)
	}
	return nil
}

// PlotData carries the intermediate curves for diagnostic rendering.
type PlotData struct {
	Grid     []float64
	RawRef   []float64
	MonoRef  []float64
	RawAlt   []float64
	MonoAlt  []float64
	RawProb  []float64
	MonoProb []float64
}

// Result is one stratum's calibration: a non-decreasing table of corrected
// LLRs over an evenly spaced grid spanning Range.
type Result struct {
	Table []float64
	Range [2]float64
	Plot  *PlotData
}

// ComputeMirrored builds the calibration for one stratum from the LLRs of
// reference-correct observations.
//
// The reference density is a Gaussian KDE over the sample, forced unimodal.
// Mirroring it around zero gives the alternate density, the pointwise ratio
// alt/(ref+alt) gives an empirical alt probability, and a non-increasing
// isotonic fit of that probability, weighted by total density, re-expressed
// as log odds is the table. When the unimodal density at either edge of
// [-MaxInputLLR, MaxInputLLR] falls under MinDensity the domain shrinks by
// one and everything is recomputed; below [-1, 1] ErrLowDensity is returned.
func ComputeMirrored(llrs []float64, p Params, wantPlot bool) (*Result, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(llrs) == 0 {
		return nil, errors.New("no llr observations for stratum")
	}

	sorted := make([]float64, len(llrs))
	copy(sorted, llrs)
	sort.Float64s(sorted)

	effMax := float64(p.MaxInputLLR)
	var grid, rawRef, monoRef []float64
	for {
		grid = floats.Span(make([]float64, p.NumValues), -effMax, effMax)
		rawRef = kdeOnGrid(sorted, grid, p.Bandwidth)
		monoRef = monotoneDensity(rawRef)
		if monoRef[0] >= p.MinDensity && monoRef[len(monoRef)-1] >= p.MinDensity {
			break
		}
		effMax--
		if effMax < 1 {
			return nil, fmt.Errorf("%w: edge density %g under %g even on [-1, 1]",
				ErrLowDensity, math.Min(monoRef[0], monoRef[len(monoRef)-1]), p.MinDensity)
		}
	}

	rawAlt := reversed(rawRef)
	monoAlt := reversed(monoRef)

	// Unimodality puts the minimum of monoRef at an edge, so the edge check
	// above bounds every density point from below and each probability lands
	// strictly inside (0, 1).
	rawProb := make([]float64, p.NumValues)
	weights := make([]float64, p.NumValues)
	for i := range rawProb {
		total := monoRef[i] + monoAlt[i]
		rawProb[i] = monoAlt[i] / total
		weights[i] = total
	}

	monoProb := fitNonIncreasing(rawProb, weights)

	table := make([]float64, p.NumValues)
	for i, pr := range monoProb {
		table[i] = math.Log((1 - pr) / pr)
	}

	res := &Result{Table: table, Range: [2]float64{-effMax, effMax}}
	if wantPlot {
		res.Plot = &PlotData{
			Grid:     grid,
			RawRef:   rawRef,
			MonoRef:  monoRef,
			RawAlt:   rawAlt,
			MonoAlt:  monoAlt,
			RawProb:  rawProb,
			MonoProb: monoProb,
		}
	}
	return res, nil
}

func reversed(vals []float64) []float64 {
	out := make([]float64, len(vals))
	copy(out, vals)
	floats.Reverse(out)
	return out
}

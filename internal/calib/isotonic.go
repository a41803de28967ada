package calib

// fitNonIncreasing returns the weighted least squares non-increasing fit of
// ys by pool adjacent violators: walk left to right, and whenever the tail
// rises, merge it into its neighbor at their weighted mean until order is
// restored. Weights must be positive.
func fitNonIncreasing(ys, weights []float64) []float64 {
	type block struct {
		value  float64
		weight float64
		count  int
	}

	blocks := make([]block, 0, len(ys))
	for i, y := range ys {
		blocks = append(blocks, block{value: y, weight: weights[i], count: 1})
		for len(blocks) > 1 && blocks[len(blocks)-2].value < blocks[len(blocks)-1].value {
			a, b := blocks[len(blocks)-2], blocks[len(blocks)-1]
			merged := block{
				value:  (a.value*a.weight + b.value*b.weight) / (a.weight + b.weight),
				weight: a.weight + b.weight,
				count:  a.count + b.count,
			}
			blocks = blocks[:len(blocks)-2]
			blocks = append(blocks, merged)
		}
	}

	out := make([]float64, 0, len(ys))
	for _, b := range blocks {
		for i := 0; i < b.count; i++ {
			out = append(out, b.value)
		}
	}
	return out
}

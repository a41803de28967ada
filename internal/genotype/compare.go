package genotype

import "math"

// Confusion is a genotype confusion matrix indexed [truth][called].
type Confusion [3][3]int

// Compare counts genotype agreement over the sites present in both call
// sets. Sites unique to either side carry no signal about genotyping and are
// left out.
func Compare(truth, called map[Key]Class) Confusion {
	var c Confusion
	for key, t := range truth {
		if m, ok := called[key]; ok {
			c[t][m]++
		}
	}
	return c
}

// Stat holds one truth class's scores. All fields are NaN when the class has
// no support on either side of the comparison.
type Stat struct {
	F1        float64
	Precision float64
	Recall    float64
}

// Stats scores each truth class from the matrix margins. A class nobody
// called, or that never occurs in truth, has undefined precision or recall;
// it reports NaN rather than a misleading zero.
func (c Confusion) Stats() [3]Stat {
	var out [3]Stat
	for i, class := range Classes {
		truthTotal, calledTotal := 0, 0
		for _, other := range Classes {
			truthTotal += c[class][other]
			calledTotal += c[other][class]
		}
		if truthTotal == 0 || calledTotal == 0 {
			out[i] = Stat{F1: math.NaN(), Precision: math.NaN(), Recall: math.NaN()}
			continue
		}
		agree := float64(c[class][class])
		precision := agree / float64(calledTotal)
		recall := agree / float64(truthTotal)
		out[i] = Stat{
			F1:        2 * precision * recall / (precision + recall),
			Precision: precision,
			Recall:    recall,
		}
	}
	return out
}

// nanMean averages the values that are not NaN; all NaN in means NaN out.
func nanMean(vals ...float64) float64 {
	sum, n := 0.0, 0
	for _, v := range vals {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

package genotype

import (
	"fmt"
	"io"
)

// Report layout shared with downstream scrapers: every column is 12
// characters, left aligned, stats printed to 4 decimal places.
const (
	headerFmt   = "%-12s%-12s%-12s%-12s%-12s%-12s%-12s\n"
	rowFmt      = "%-12s%-12d%-12d%-12d%-12.4f%-12.4f%-12.4f\n"
	meanFmt     = "%48s%-12.4f%-12.4f%-12.4f\n"
	meanRowName = "Mean Stats:   "
)

// WriteReport prints one variant class's confusion matrix with per truth
// class F1, precision and recall, followed by the NaN-aware column means.
func WriteReport(w io.Writer, class VariantClass, c Confusion) error {
	stats := c.Stats()

	if _, err := fmt.Fprintf(w, "%s\n", class); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, headerFmt,
		`Truth\Calls`, "HomRef", "Het", "HomAlt", "F1", "Precision", "Recall"); err != nil {
		return err
	}
	for _, t := range Classes {
		s := stats[t]
		if _, err := fmt.Fprintf(w, rowFmt,
			t, c[t][HomRef], c[t][Het], c[t][HomAlt], s.F1, s.Precision, s.Recall); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, meanFmt, meanRowName,
		nanMean(stats[0].F1, stats[1].F1, stats[2].F1),
		nanMean(stats[0].Precision, stats[1].Precision, stats[2].Precision),
		nanMean(stats[0].Recall, stats[1].Recall, stats[2].Recall)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

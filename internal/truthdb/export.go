package truthdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"varcal/internal/genotype"
)

// WriteGroundTruth labels each stored call against known genotypes and
// writes calibration input lines, "is_ref_correct llr ref_seq alt_seq". A
// read at a hom_ref site carries a correct reference allele, at a hom_alt
// site an incorrect one. Het sites and sites missing from the truth set are
// skipped: per-read truth is ambiguous there. Returns the written and
// skipped counts.
func (db *DB) WriteGroundTruth(w io.Writer, truth map[genotype.Key]genotype.Class) (int, int, error) {
	written, skipped := 0, 0
	bw := bufio.NewWriter(w)

	err := db.ForEachCall(func(c Call) error {
		class, ok := truth[genotype.Key{Chrom: c.Chrom, Pos: c.Pos, Ref: c.RefSeq, Alt: c.AltSeq}]
		if !ok || class == genotype.Het {
			skipped++
			return nil
		}
		label := "True"
		if class == genotype.HomAlt {
			label = "False"
		}
		score := strconv.FormatFloat(c.Score, 'g', -1, 64)
		if _, err := fmt.Fprintf(bw, "%s %s %s %s\n", label, score, c.RefSeq, c.AltSeq); err != nil {
			return err
		}
		written++
		return nil
	})
	if err != nil {
		return written, skipped, err
	}
	if err := bw.Flush(); err != nil {
		return written, skipped, err
	}
	return written, skipped, nil
}

// Package genotype reads diploid genotype calls from VCF files and scores
// one call set against another.
package genotype

import (
	"fmt"

	"github.com/vertgenlab/gonomics/vcf"
)

// Class is a diploid genotype classification.
type Class int

const (
	HomRef Class = iota
	Het
	HomAlt
)

var classNames = [...]string{"hom_ref", "het", "hom_alt"}

func (c Class) String() string {
	if c < HomRef || c > HomAlt {
		return fmt.Sprintf("Class(%d)", int(c))
	}
	return classNames[int(c)]
}

// Classes lists the genotype classes in report order.
var Classes = [3]Class{HomRef, Het, HomAlt}

// VariantClass buckets variants by the shape of their alleles.
type VariantClass int

const (
	SNP VariantClass = iota
	DEL
	INS
)

var variantClassNames = [...]string{"SNP", "DEL", "INS"}

func (v VariantClass) String() string {
	if v < SNP || v > INS {
		return fmt.Sprintf("VariantClass(%d)", int(v))
	}
	return variantClassNames[int(v)]
}

// VariantClasses lists the variant classes in report order.
var VariantClasses = [3]VariantClass{SNP, DEL, INS}

// Key identifies a variant record for matching across call sets.
type Key struct {
	Chrom string
	Pos   int
	Ref   string
	Alt   string
}

// CallSet holds one VCF's genotype classifications, bucketed by variant
// class and keyed by site.
type CallSet map[VariantClass]map[Key]Class

// Flatten merges the per-class maps into one site lookup.
func (cs CallSet) Flatten() map[Key]Class {
	out := make(map[Key]Class)
	for _, m := range cs {
		for k, c := range m {
			out[k] = c
		}
	}
	return out
}

// Classify reduces a genotype to its class by the set of distinct allele
// indices: {0} is hom_ref and {0, 1} het; anything else, including missing
// alleles and higher alt indices, counts as hom_alt.
func Classify(alleles []int16) Class {
	seen := make(map[int16]bool, len(alleles))
	for _, a := range alleles {
		seen[a] = true
	}
	switch {
	case len(seen) == 1 && seen[0]:
		return HomRef
	case len(seen) == 2 && seen[0] && seen[1]:
		return Het
	}
	return HomAlt
}

func variantClassOf(ref, alt string) VariantClass {
	switch {
	case len(ref) == len(alt):
		return SNP
	case len(ref) > len(alt):
		return DEL
	}
	return INS
}

// ReadCalls loads a VCF into per-class genotype classifications. Records
// with more than one alternate allele are skipped entirely; only the first
// sample's genotype is read.
func ReadCalls(path string) (CallSet, error) {
	records, _ := vcf.GoReadToChan(path)

	calls := CallSet{}
	for _, vc := range VariantClasses {
		calls[vc] = make(map[Key]Class)
	}
	for v := range records {
		if len(v.Alt) != 1 {
			continue
		}
		if len(v.Samples) == 0 {
			return nil, fmt.Errorf("%s: record %s:%d carries no sample genotype", path, v.Chr, v.Pos)
		}
		key := Key{Chrom: v.Chr, Pos: v.Pos, Ref: v.Ref, Alt: v.Alt[0]}
		calls[variantClassOf(v.Ref, v.Alt[0])][key] = Classify(v.Samples[0].Alleles)
	}
	return calls, nil
}

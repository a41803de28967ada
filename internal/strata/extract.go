package strata

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// RefCorrectToken marks records where the reference allele was the true
// call. Any other token in the first column excludes the record.
const RefCorrectToken = "True"

// genericFraction is the share of the pooled substitution LLRs sampled into
// the generic stratum.
const genericFraction = 12

// Extract reads ground truth LLR records, one per line as
//
//	is_ref_correct llr ref_seq alt_seq
//
// and buckets the usable LLRs by stratum. Records that are not
// reference-correct or have a NaN LLR are skipped. maxIndelLen > 0 drops
// records whose ref and alt lengths differ by more than that; 0 keeps all.
func Extract(r io.Reader, maxIndelLen int) (map[Key][]float64, error) {
	out := make(map[Key][]float64)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineno := 0
	for sc.Scan() {
		lineno++
		fields := strings.Fields(sc.Text())
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: expected 4 fields, got %d", lineno, len(fields))
		}
		llr, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse llr %q: %w", lineno, fields[1], err)
		}
		refSeq, altSeq := fields[2], fields[3]

		if fields[0] != RefCorrectToken {
			continue
		}
		if math.IsNaN(llr) {
			continue
		}
		diff := len(refSeq) - len(altSeq)
		if diff < 0 {
			diff = -diff
		}
		if maxIndelLen > 0 && diff > maxIndelLen {
			continue
		}

		var key Key
		switch {
		case len(refSeq) == 1 && len(altSeq) == 1:
			key = SubstitutionKey(refSeq, altSeq)
		case len(refSeq) > len(altSeq):
			key = DeletionKey(diff)
		default:
			key = InsertionKey(diff)
		}
		out[key] = append(out[key], llr)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read llr records: %w", err)
	}
	return out, nil
}

// ExtractFile is Extract over the file at path.
func ExtractFile(path string, maxIndelLen int) (map[Key][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ground truth llrs: %w", err)
	}
	defer f.Close()

	m, err := Extract(f, maxIndelLen)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// AddGeneric pools every substitution LLR and installs a 1/12 sample of the
// pool as the generic (N, N) stratum. The draw is without replacement from a
// seeded source, so a fixed seed reproduces the same stratum, and with it the
// same artifact. Returns the sample size.
func AddGeneric(m map[Key][]float64, seed int64) int {
	generic := GenericKey()
	var pool []float64
	for _, k := range SortedKeys(m) {
		if k.Family != Substitution || k == generic {
			continue
		}
		pool = append(pool, m[k]...)
	}

	n := len(pool) / genericFraction
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	sample := make([]float64, n)
	copy(sample, pool[:n])
	m[generic] = sample
	return n
}

// IndelCoverage verifies the extracted strata cover insertions and deletions
// symmetrically: both length sets must be identical and contiguous from 1.
// Returns the largest covered indel length.
func IndelCoverage(m map[Key][]float64) (int, error) {
	ins := familyLengths(m, Insertion)
	del := familyLengths(m, Deletion)
	if len(ins) == 0 && len(del) == 0 {
		return 0, fmt.Errorf("no indel strata present")
	}
	if !slices.Equal(ins, del) {
		return 0, fmt.Errorf("insertions cover lengths %v but deletions cover %v; both must cover the same lengths", ins, del)
	}
	for i, length := range ins {
		if length != i+1 {
			return 0, fmt.Errorf("indel lengths %v must cover every length from 1 to %d", ins, ins[len(ins)-1])
		}
	}
	return ins[len(ins)-1], nil
}

func familyLengths(m map[Key][]float64, family Family) []int {
	var lengths []int
	for k := range m {
		if k.Family == family {
			lengths = append(lengths, k.Length)
		}
	}
	sort.Ints(lengths)
	return lengths
}

package calib

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"varcal/internal/npz"
	"varcal/internal/strata"
)

// StratifyTypeSNPRef is the only stratification scheme varcal produces:
// substitutions keyed by reference and alternate base, indels by length.
const StratifyTypeSNPRef = "snp_ref"

// Member name templates, shared with the downstream scorer. The scorer
// rebuilds these names from each variant it scores, so they are part of the
// artifact's contract and cannot drift.
const (
	snpCalibTmplt  = "snp_ref_%s_alt_%s_calibration"
	snpRangeTmplt  = "snp_ref_%s_alt_%s_llr_range"
	delCalibTmplt  = "del_len_%d_calibration"
	delRangeTmplt  = "del_len_%d_llr_range"
	insCalibTmplt  = "ins_len_%d_calibration"
	insRangeTmplt  = "ins_len_%d_llr_range"
	stratifyKey    = "stratify_type"
	numValsKey     = "smooth_nvals"
	maxIndelLenKey = "max_indel_len"
)

// Entry pairs one stratum's calibration table with its LLR range.
type Entry struct {
	Table []float64
	Range [2]float64
}

// Artifact is a complete calibration run: a table and range per stratum plus
// the metadata the scorer needs to look tables up.
type Artifact struct {
	StratifyType string
	NumValues    int
	MaxIndelLen  int
	Strata       map[strata.Key]Entry
}

func NewArtifact(numValues, maxIndelLen int) *Artifact {
	return &Artifact{
		StratifyType: StratifyTypeSNPRef,
		NumValues:    numValues,
		MaxIndelLen:  maxIndelLen,
		Strata:       make(map[strata.Key]Entry),
	}
}

// Add records one stratum's calibration.
func (a *Artifact) Add(key strata.Key, res *Result) {
	a.Strata[key] = Entry{Table: res.Table, Range: res.Range}
}

// Lookup returns the entry for key.
func (a *Artifact) Lookup(key strata.Key) (Entry, bool) {
	e, ok := a.Strata[key]
	return e, ok
}

func memberNames(k strata.Key) (calibName, rangeName string, err error) {
	switch k.Family {
	case strata.Substitution:
		return fmt.Sprintf(snpCalibTmplt, k.Ref, k.Alt), fmt.Sprintf(snpRangeTmplt, k.Ref, k.Alt), nil
	case strata.Deletion:
		return fmt.Sprintf(delCalibTmplt, k.Length), fmt.Sprintf(delRangeTmplt, k.Length), nil
	case strata.Insertion:
		return fmt.Sprintf(insCalibTmplt, k.Length), fmt.Sprintf(insRangeTmplt, k.Length), nil
	}
	return "", "", fmt.Errorf("unknown stratum family %d", int(k.Family))
}

// WriteFile saves the artifact in the savez layout the scorer reads:
// metadata first, then per family all calibration tables followed by all
// ranges, strata in sorted order throughout. The layout is fixed so the same
// artifact always serializes to the same bytes.
func (a *Artifact) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	w := npz.NewWriter(f)

	writeAll := func() error {
		if err := w.WriteString(stratifyKey, a.StratifyType); err != nil {
			return err
		}
		if err := w.WriteInt64(numValsKey, int64(a.NumValues)); err != nil {
			return err
		}
		if err := w.WriteInt64(maxIndelLenKey, int64(a.MaxIndelLen)); err != nil {
			return err
		}
		keys := strata.SortedKeys(a.Strata)
		for _, family := range []strata.Family{strata.Substitution, strata.Deletion, strata.Insertion} {
			for _, k := range keys {
				if k.Family != family {
					continue
				}
				calibName, _, err := memberNames(k)
				if err != nil {
					return err
				}
				if err := w.WriteFloat64s(calibName, a.Strata[k].Table); err != nil {
					return err
				}
			}
			for _, k := range keys {
				if k.Family != family {
					continue
				}
				_, rangeName, err := memberNames(k)
				if err != nil {
					return err
				}
				rng := a.Strata[k].Range
				if err := w.WriteFloat64s(rangeName, rng[:]); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := writeAll(); err != nil {
		w.Close()
		f.Close()
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finish artifact %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close artifact %s: %w", path, err)
	}
	return nil
}

// ReadFile loads an artifact written by WriteFile, or by any savez producer
// using the same member scheme. Members that match no template are ignored.
func ReadFile(path string) (*Artifact, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	a := &Artifact{Strata: make(map[strata.Key]Entry)}
	if a.StratifyType, err = r.String(stratifyKey); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	nv, err := r.Int64(numValsKey)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	a.NumValues = int(nv)
	mil, err := r.Int64(maxIndelLenKey)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	a.MaxIndelLen = int(mil)

	for _, name := range r.Keys() {
		key, isRange, ok := parseMemberName(name)
		if !ok {
			continue
		}
		vals, err := r.Float64s(name)
		if err != nil {
			return nil, fmt.Errorf("artifact %s: %w", path, err)
		}
		entry := a.Strata[key]
		if isRange {
			if len(vals) != 2 {
				return nil, fmt.Errorf("artifact %s: member %s holds %d values, want 2", path, name, len(vals))
			}
			copy(entry.Range[:], vals)
		} else {
			entry.Table = vals
		}
		a.Strata[key] = entry
	}
	return a, nil
}

func parseMemberName(name string) (key strata.Key, isRange bool, ok bool) {
	rest, isRange, ok := trimMemberKind(name)
	if !ok {
		return strata.Key{}, false, false
	}
	switch {
	case strings.HasPrefix(rest, "snp_ref_"):
		ref, alt, found := strings.Cut(strings.TrimPrefix(rest, "snp_ref_"), "_alt_")
		if !found || ref == "" || alt == "" {
			return strata.Key{}, false, false
		}
		return strata.SubstitutionKey(ref, alt), isRange, true
	case strings.HasPrefix(rest, "del_len_"):
		n, err := strconv.Atoi(strings.TrimPrefix(rest, "del_len_"))
		if err != nil {
			return strata.Key{}, false, false
		}
		return strata.DeletionKey(n), isRange, true
	case strings.HasPrefix(rest, "ins_len_"):
		n, err := strconv.Atoi(strings.TrimPrefix(rest, "ins_len_"))
		if err != nil {
			return strata.Key{}, false, false
		}
		return strata.InsertionKey(n), isRange, true
	}
	return strata.Key{}, false, false
}

func trimMemberKind(name string) (string, bool, bool) {
	switch {
	case strings.HasSuffix(name, "_calibration"):
		return strings.TrimSuffix(name, "_calibration"), false, true
	case strings.HasSuffix(name, "_llr_range"):
		return strings.TrimSuffix(name, "_llr_range"), true, true
	}
	return "", false, false
}

package strata

import (
	"fmt"
	"sort"
)

// Family tags the three stratum families a calibration covers.
type Family int

const (
	Substitution Family = iota
	Deletion
	Insertion
)

// GenericBase names the pooled substitution stratum that covers variants
// without a dedicated table, multi-base substitutions mostly.
const GenericBase = "N"

// Key identifies one calibration stratum. Ref and Alt are set for
// substitutions, Length for the indel families.
type Key struct {
	Family Family
	Ref    string
	Alt    string
	Length int
}

func SubstitutionKey(ref, alt string) Key {
	return Key{Family: Substitution, Ref: ref, Alt: alt}
}

func DeletionKey(length int) Key {
	return Key{Family: Deletion, Length: length}
}

func InsertionKey(length int) Key {
	return Key{Family: Insertion, Length: length}
}

func GenericKey() Key {
	return SubstitutionKey(GenericBase, GenericBase)
}

// String names the stratum the way progress logs and plot titles show it.
func (k Key) String() string {
	switch k.Family {
	case Substitution:
		return fmt.Sprintf("SNP: %s -> %s", k.Ref, k.Alt)
	case Deletion:
		return fmt.Sprintf("Deletion Length %d", k.Length)
	case Insertion:
		return fmt.Sprintf("Insertion Length %d", k.Length)
	}
	return fmt.Sprintf("unknown stratum family %d", int(k.Family))
}

// Less orders keys substitutions first, then deletions, then insertions,
// which is the order strata are calibrated and saved in.
func (k Key) Less(other Key) bool {
	if k.Family != other.Family {
		return k.Family < other.Family
	}
	if k.Family == Substitution {
		if k.Ref != other.Ref {
			return k.Ref < other.Ref
		}
		return k.Alt < other.Alt
	}
	return k.Length < other.Length
}

// SortedKeys returns the stratum keys of m in deterministic order.
func SortedKeys[V any](m map[Key]V) []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

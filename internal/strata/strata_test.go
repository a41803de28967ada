package strata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRouting(t *testing.T) {
	input := strings.Join([]string{
		"True 2.5 A T",
		"True -1.25 A T",
		"False 9.0 A T",
		"True nan A T",
		"True 4.0 C G",
		"True -3.0 ATT A",
		"True 3.5 A AG",
	}, "\n") + "\n"

	m, err := Extract(strings.NewReader(input), 0)
	require.NoError(t, err)

	assert.Equal(t, []float64{2.5, -1.25}, m[SubstitutionKey("A", "T")])
	assert.Equal(t, []float64{4.0}, m[SubstitutionKey("C", "G")])
	assert.Equal(t, []float64{-3.0}, m[DeletionKey(2)])
	assert.Equal(t, []float64{3.5}, m[InsertionKey(1)])
	assert.Len(t, m, 4, "skipped records must not create strata")
}

func TestExtractIndelCap(t *testing.T) {
	input := "True 1.0 ATT A\nTrue 2.0 AT A\nTrue 3.0 A AT\n"

	m, err := Extract(strings.NewReader(input), 1)
	require.NoError(t, err)

	assert.NotContains(t, m, DeletionKey(2))
	assert.Equal(t, []float64{2.0}, m[DeletionKey(1)])
	assert.Equal(t, []float64{3.0}, m[InsertionKey(1)])
}

func TestExtractEqualLengthMultiBase(t *testing.T) {
	// A multi-base substitution has no stratum of its own; it lands in the
	// zero length insertion bucket, which the coverage check then rejects.
	m, err := Extract(strings.NewReader("True 1.0 AT GC\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0}, m[InsertionKey(0)])
}

func TestExtractMalformed(t *testing.T) {
	_, err := Extract(strings.NewReader("True 2.5 A\n"), 0)
	assert.Error(t, err, "short line")

	_, err = Extract(strings.NewReader("True 2.5 A T extra\n"), 0)
	assert.Error(t, err, "long line")

	_, err = Extract(strings.NewReader("True 2.5 A T\n\nTrue 1.0 A T\n"), 0)
	assert.Error(t, err, "blank line")

	_, err = Extract(strings.NewReader("True abc A T\n"), 0)
	assert.Error(t, err, "bad llr")

	// The LLR is parsed before the label filter applies.
	_, err = Extract(strings.NewReader("False abc A T\n"), 0)
	assert.Error(t, err, "bad llr on excluded record")
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.txt")
	require.NoError(t, os.WriteFile(path, []byte("True 2.5 A T\n"), 0o644))

	m, err := ExtractFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5}, m[SubstitutionKey("A", "T")])

	_, err = ExtractFile(filepath.Join(t.TempDir(), "missing.txt"), 0)
	assert.Error(t, err)
}

func TestAddGeneric(t *testing.T) {
	build := func() map[Key][]float64 {
		m := make(map[Key][]float64)
		for i := 0; i < 30; i++ {
			m[SubstitutionKey("A", "T")] = append(m[SubstitutionKey("A", "T")], float64(i))
		}
		for i := 0; i < 18; i++ {
			m[SubstitutionKey("C", "G")] = append(m[SubstitutionKey("C", "G")], 100+float64(i))
		}
		m[DeletionKey(1)] = []float64{-1, -2}
		return m
	}

	m := build()
	n := AddGeneric(m, 7)
	assert.Equal(t, 48/genericFraction, n)
	sample := m[GenericKey()]
	require.Len(t, sample, n)

	// Sampled values come from the substitution pool, never the indels.
	for _, v := range sample {
		assert.True(t, (v >= 0 && v < 30) || (v >= 100 && v < 118), "unexpected sample value %v", v)
	}

	// A fixed seed reproduces the same stratum.
	again := build()
	AddGeneric(again, 7)
	assert.Equal(t, sample, again[GenericKey()])
}

func TestIndelCoverage(t *testing.T) {
	m := map[Key][]float64{
		SubstitutionKey("A", "T"): {1},
		InsertionKey(1):           {1},
		InsertionKey(2):           {1},
		DeletionKey(1):            {1},
		DeletionKey(2):            {1},
	}
	maxLen, err := IndelCoverage(m)
	require.NoError(t, err)
	assert.Equal(t, 2, maxLen)

	delete(m, DeletionKey(2))
	_, err = IndelCoverage(m)
	assert.Error(t, err, "asymmetric coverage")

	m[DeletionKey(2)] = []float64{1}
	m[InsertionKey(4)] = []float64{1}
	m[DeletionKey(4)] = []float64{1}
	_, err = IndelCoverage(m)
	assert.Error(t, err, "gap in lengths")

	_, err = IndelCoverage(map[Key][]float64{SubstitutionKey("A", "T"): {1}})
	assert.Error(t, err, "no indels at all")
}

func TestSortedKeys(t *testing.T) {
	m := map[Key][]float64{
		InsertionKey(2):           {1},
		DeletionKey(1):            {1},
		SubstitutionKey("C", "A"): {1},
		SubstitutionKey("A", "T"): {1},
		InsertionKey(1):           {1},
	}

	want := []Key{
		SubstitutionKey("A", "T"),
		SubstitutionKey("C", "A"),
		DeletionKey(1),
		InsertionKey(1),
		InsertionKey(2),
	}
	assert.Equal(t, want, SortedKeys(m))
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "SNP: A -> T", SubstitutionKey("A", "T").String())
	assert.Equal(t, "Deletion Length 2", DeletionKey(2).String())
	assert.Equal(t, "Insertion Length 1", InsertionKey(1).String())
}

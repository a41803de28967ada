package truthdb

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varcal/internal/genotype"
	"varcal/internal/strata"
)

func testCalls() []Call {
	return []Call{
		{ReadID: "read1", Chrom: "chr1", Pos: 100, Score: 2.5, RefSeq: "A", AltSeq: "T"},
		{ReadID: "read2", Chrom: "chr1", Pos: 200, Score: -1.25, RefSeq: "G", AltSeq: "C"},
		{ReadID: "read3", Chrom: "chr1", Pos: 300, Score: 3, RefSeq: "C", AltSeq: "G"},
		{ReadID: "read4", Chrom: "chr9", Pos: 999, Score: 4, RefSeq: "A", AltSeq: "C"},
	}
}

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calls.sqlite3")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestInsertAndIterate(t *testing.T) {
	db, _ := openTestDB(t)

	for _, c := range testCalls() {
		require.NoError(t, db.InsertCall(c))
	}

	n, err := db.CountCalls()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	var got []Call
	require.NoError(t, db.ForEachCall(func(c Call) error {
		got = append(got, c)
		return nil
	}))
	assert.Equal(t, testCalls(), got, "calls must come back in insertion order")
}

func TestReopen(t *testing.T) {
	db, path := openTestDB(t)
	require.NoError(t, db.InsertCall(testCalls()[0]))
	require.NoError(t, db.Close())

	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()

	n, err := db2.CountCalls()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriteGroundTruth(t *testing.T) {
	db, _ := openTestDB(t)
	for _, c := range testCalls() {
		require.NoError(t, db.InsertCall(c))
	}

	truth := map[genotype.Key]genotype.Class{
		{Chrom: "chr1", Pos: 100, Ref: "A", Alt: "T"}: genotype.HomRef,
		{Chrom: "chr1", Pos: 200, Ref: "G", Alt: "C"}: genotype.HomAlt,
		{Chrom: "chr1", Pos: 300, Ref: "C", Alt: "G"}: genotype.Het,
	}

	var buf bytes.Buffer
	written, skipped, err := db.WriteGroundTruth(&buf, truth)
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Equal(t, 2, skipped, "het and unknown sites are skipped")

	want := "True 2.5 A T\nFalse -1.25 G C\n"
	assert.Equal(t, want, buf.String())

	// The exported lines feed straight back into stratification.
	m, err := strata.Extract(strings.NewReader(buf.String()), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5}, m[strata.SubstitutionKey("A", "T")])
	assert.NotContains(t, m, strata.SubstitutionKey("G", "C"), "alt-correct records carry no reference LLR signal")
}

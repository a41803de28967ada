package genotype

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		alleles []int16
		want    Class
	}{
		{[]int16{0, 0}, HomRef},
		{[]int16{0}, HomRef},
		{[]int16{0, 1}, Het},
		{[]int16{1, 0}, Het},
		{[]int16{1, 1}, HomAlt},
		{[]int16{1}, HomAlt},
		{[]int16{1, 2}, HomAlt},
		{[]int16{0, 2}, HomAlt},
		{[]int16{-1, -1}, HomAlt},
		{nil, HomAlt},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.alleles), "alleles %v", tc.alleles)
	}
}

func TestVariantClassOf(t *testing.T) {
	assert.Equal(t, SNP, variantClassOf("A", "T"))
	assert.Equal(t, SNP, variantClassOf("AT", "GC"))
	assert.Equal(t, DEL, variantClassOf("ATT", "A"))
	assert.Equal(t, INS, variantClassOf("A", "AGG"))
}

func TestReadCalls(t *testing.T) {
	content := "##fileformat=VCFv4.2\n" +
		"##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tsample1\n" +
		"chr1\t100\t.\tA\tT\t100\tPASS\t.\tGT\t0/1\n" +
		"chr1\t200\t.\tG\tC\t100\tPASS\t.\tGT\t1/1\n" +
		"chr1\t300\t.\tC\tA,G\t100\tPASS\t.\tGT\t1/2\n" +
		"chr1\t400\t.\tATT\tA\t100\tPASS\t.\tGT\t0/0\n" +
		"chr1\t500\t.\tA\tAGG\t100\tPASS\t.\tGT\t1|1\n" +
		"chr2\t100\t.\tT\tC\t100\tPASS\t.\tGT\t0/0\n"
	path := filepath.Join(t.TempDir(), "calls.vcf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	calls, err := ReadCalls(path)
	require.NoError(t, err)

	wantSNP := map[Key]Class{
		{Chrom: "chr1", Pos: 100, Ref: "A", Alt: "T"}: Het,
		{Chrom: "chr1", Pos: 200, Ref: "G", Alt: "C"}: HomAlt,
		{Chrom: "chr2", Pos: 100, Ref: "T", Alt: "C"}: HomRef,
	}
	assert.Equal(t, wantSNP, calls[SNP], "multi-allelic record must be skipped")

	wantDEL := map[Key]Class{
		{Chrom: "chr1", Pos: 400, Ref: "ATT", Alt: "A"}: HomRef,
	}
	assert.Equal(t, wantDEL, calls[DEL])

	wantINS := map[Key]Class{
		{Chrom: "chr1", Pos: 500, Ref: "A", Alt: "AGG"}: HomAlt,
	}
	assert.Equal(t, wantINS, calls[INS])
}

func TestFlatten(t *testing.T) {
	cs := CallSet{
		SNP: {Key{Chrom: "1", Pos: 1, Ref: "A", Alt: "T"}: Het},
		DEL: {Key{Chrom: "1", Pos: 2, Ref: "AT", Alt: "A"}: HomAlt},
		INS: {},
	}
	flat := cs.Flatten()
	require.Len(t, flat, 2)
	assert.Equal(t, Het, flat[Key{Chrom: "1", Pos: 1, Ref: "A", Alt: "T"}])
	assert.Equal(t, HomAlt, flat[Key{Chrom: "1", Pos: 2, Ref: "AT", Alt: "A"}])
}

// Package genome provides reference chromosome metadata.
package genome

import "strings"

// Assembly is the reference assembly the chromosome table describes.
const Assembly = "GRCh38"

// grch38 maps primary assembly contigs to their length in bases.
var grch38 = map[string]int64{
	"chr1":  248956422,
	"chr2":  242193529,
	"chr3":  198295559,
	"chr4":  190214555,
	"chr5":  181538259,
	"chr6":  170805979,
	"chr7":  159345973,
	"chr8":  145138636,
	"chr9":  138394717,
	"chr10": 133797422,
	"chr11": 135086622,
	"chr12": 133275309,
	"chr13": 114364328,
	"chr14": 107043718,
	"chr15": 101991189,
	"chr16": 90338345,
	"chr17": 83257441,
	"chr18": 80373285,
	"chr19": 58617616,
	"chr20": 64444167,
	"chr21": 46709983,
	"chr22": 50818468,
	"chrX":  156040895,
	"chrY":  57227415,
}

// Length returns the length in bases of a chromosome, or false if the
// chromosome is not in the reference table.
func Length(chrom string) (int64, bool) {
	n, ok := grch38[Canonical(chrom)]
	return n, ok
}

// Contains reports whether pos is a valid 0-based position on chrom.
func Contains(chrom string, pos int64) bool {
	n, ok := Length(chrom)
	return ok && pos >= 0 && pos < n
}

// Canonical returns the "chr"-prefixed form of a chromosome name
// (e.g., "12" -> "chr12", "x" -> "chrX"). Names already carrying the
// prefix are returned unchanged.
func Canonical(chrom string) string {
	if strings.HasPrefix(chrom, "chr") {
		return chrom
	}
	switch chrom {
	case "x":
		return "chrX"
	case "y":
		return "chrY"
	}
	return "chr" + chrom
}

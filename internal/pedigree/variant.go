package pedigree

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-ped/internal/genome"
)

// Locus identifies a single base on a reference chromosome.
type Locus struct {
	Chrom string // canonical chromosome name (e.g., "chr12")
	Pos   int64  // 0-based position
}

func (l Locus) String() string {
	return fmt.Sprintf("%s:%d", l.Chrom, l.Pos)
}

// Variant is a single nucleotide variant at a validated genomic locus.
// Its coordinates and alleles are fixed at construction; only the owning
// person changes, through Person.AddVariant and Person.RemoveVariant.
type Variant struct {
	chrom  string
	pos    int64
	ref    string // empty when the reference allele is not known
	alt    string
	person *Person
}

// NewVariant creates a validated SNV. chrom may be given with or without
// the "chr" prefix; pos is 0-based; ref may be empty when unknown.
// Alleles are case-insensitive and stored upper-case.
func NewVariant(chrom string, pos int64, ref, alt string) (*Variant, error) {
	if chrom != "" {
		chrom = genome.Canonical(chrom)
	}
	f := variantFields{
		Chrom: chrom,
		Pos:   pos,
		Ref:   strings.ToUpper(ref),
		Alt:   strings.ToUpper(alt),
	}
	if err := checkVariant(f); err != nil {
		return nil, err
	}
	return &Variant{chrom: f.Chrom, pos: f.Pos, ref: f.Ref, alt: f.Alt}, nil
}

// Chrom returns the canonical chromosome name.
func (v *Variant) Chrom() string { return v.chrom }

// Pos returns the 0-based position.
func (v *Variant) Pos() int64 { return v.pos }

// Ref returns the reference allele, or "" if unknown.
func (v *Variant) Ref() string { return v.ref }

// HasRef reports whether the reference allele is known.
func (v *Variant) HasRef() bool { return v.ref != "" }

// Alt returns the alternate allele.
func (v *Variant) Alt() string { return v.alt }

// Locus returns the variant's chromosome and position.
func (v *Variant) Locus() Locus { return Locus{Chrom: v.chrom, Pos: v.pos} }

// Person returns the person carrying this variant, or nil if unattached.
func (v *Variant) Person() *Person { return v.person }

// String formats the variant as chrom:pos:ref>alt, with '?' for an unknown ref.
func (v *Variant) String() string {
	ref := v.ref
	if ref == "" {
		ref = "?"
	}
	return fmt.Sprintf("%s:%d:%s>%s", v.chrom, v.pos, ref, v.alt)
}

// Package output provides tab-delimited writers for pedigree data.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-ped/internal/pedigree"
)

// Missing is written for unknown values. The CLI reads it back as absent
// through the people.missing and variants.missing config defaults.
const Missing = "NA"

// TabWriter writes rows in tab-delimited format under a fixed header.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

func newTabWriter(w io.Writer, columns ...string) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w), columns: columns}
}

// Columns returns the header columns.
func (tw *TabWriter) Columns() []string {
	return tw.columns
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

func (tw *TabWriter) writeRow(values ...string) error {
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// PeopleWriter writes people in the people file layout, so its output can
// be loaded again.
type PeopleWriter struct {
	*TabWriter
}

// NewPeopleWriter creates a people writer.
func NewPeopleWriter(w io.Writer) *PeopleWriter {
	return &PeopleWriter{newTabWriter(w, pedigree.PeopleColumns...)}
}

// Write writes a single person.
func (pw *PeopleWriter) Write(p *pedigree.Person) error {
	return pw.WriteFields(p.Name(), string(p.Gender()), nameOrMissing(p.Father()), nameOrMissing(p.Mother()))
}

// WriteFields writes a person given as column values. Empty parents are
// written as Missing.
func (pw *PeopleWriter) WriteFields(name, gender, father, mother string) error {
	return pw.writeRow(name, gender, orMissing(father), orMissing(mother))
}

// WriteAll writes every person in ps.
func (pw *PeopleWriter) WriteAll(ps pedigree.People) error {
	for _, p := range ps {
		if err := pw.Write(p); err != nil {
			return err
		}
	}
	return nil
}

// VariantWriter writes variants in the variants file layout.
type VariantWriter struct {
	*TabWriter
}

// NewVariantWriter creates a variant writer.
func NewVariantWriter(w io.Writer) *VariantWriter {
	return &VariantWriter{newTabWriter(w, pedigree.VariantColumns...)}
}

// Write writes a single variant. Unattached variants have a missing person.
func (vw *VariantWriter) Write(v *pedigree.Variant) error {
	return vw.WriteFields(v.Chrom(), v.Pos(), v.Ref(), v.Alt(), nameOrMissing(v.Person()))
}

// WriteFields writes a variant given as column values. An empty ref or
// person is written as Missing.
func (vw *VariantWriter) WriteFields(chrom string, pos int64, ref, alt, person string) error {
	return vw.writeRow(chrom, strconv.FormatInt(pos, 10), orMissing(ref), alt, orMissing(person))
}

// RelativesWriter writes named relation groups, one person per line.
type RelativesWriter struct {
	*TabWriter
}

// NewRelativesWriter creates a relatives writer.
func NewRelativesWriter(w io.Writer) *RelativesWriter {
	return &RelativesWriter{newTabWriter(w, "relation", "name", "gender")}
}

// Write writes every person in ps under relation. An empty group writes nothing.
func (rw *RelativesWriter) Write(relation string, ps pedigree.People) error {
	for _, p := range ps {
		if err := rw.writeRow(relation, p.Name(), string(p.Gender())); err != nil {
			return err
		}
	}
	return nil
}

func nameOrMissing(p *pedigree.Person) string {
	if p == nil {
		return Missing
	}
	return p.Name()
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}

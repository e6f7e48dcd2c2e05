package pedigree

import (
	"fmt"
	"strconv"

	"github.com/inodb/vibe-ped/internal/tsv"
)

// People file columns.
const (
	ColName   = "name"
	ColGender = "gender"
	ColFather = "father"
	ColMother = "mother"
)

// Variants file columns.
const (
	ColChrom  = "chrom"
	ColPos    = "pos"
	ColRef    = "ref"
	ColAlt    = "alt"
	ColPerson = "person"
)

// PeopleColumns is the column order of a headerless people file.
var PeopleColumns = []string{ColName, ColGender, ColFather, ColMother}

// VariantColumns is the column order of a headerless variants file.
var VariantColumns = []string{ColChrom, ColPos, ColRef, ColAlt, ColPerson}

// PersonRecordFromRow converts a people file row. The gender column is
// taken verbatim so that PED codes such as "0" reach ResolveGender even
// when the reader treats them as missing values.
func PersonRecordFromRow(row *tsv.Row) PersonRecord {
	name, _ := row.Get(ColName)
	father, _ := row.Get(ColFather)
	mother, _ := row.Get(ColMother)
	return PersonRecord{
		Line:   row.Line,
		Name:   name,
		Gender: row.Raw(ColGender),
		Father: father,
		Mother: mother,
	}
}

// VariantRecordFromRow converts a variants file row. A missing or
// non-integer position fails with ErrInvalidVariant.
func VariantRecordFromRow(row *tsv.Row) (VariantRecord, error) {
	chrom, _ := row.Get(ColChrom)
	ref, _ := row.Get(ColRef)
	alt, _ := row.Get(ColAlt)
	person, _ := row.Get(ColPerson)

	raw, ok := row.Get(ColPos)
	if !ok {
		return VariantRecord{}, &Error{Kind: ErrInvalidVariant, Subject: chrom, Line: row.Line, Detail: "pos is required"}
	}
	pos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return VariantRecord{}, &Error{
			Kind: ErrInvalidVariant, Subject: chrom, Line: row.Line,
			Detail: fmt.Sprintf("invalid position %q", raw),
		}
	}

	return VariantRecord{
		Line:   row.Line,
		Chrom:  chrom,
		Pos:    pos,
		Ref:    ref,
		Alt:    alt,
		Person: person,
	}, nil
}

// ReadPeople reads every remaining row of r as a person record.
func ReadPeople(r *tsv.Reader) ([]PersonRecord, error) {
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read people: %w", err)
	}
	records := make([]PersonRecord, len(rows))
	for i, row := range rows {
		records[i] = PersonRecordFromRow(row)
	}
	return records, nil
}

// ReadVariants reads every remaining row of r as a variant record.
func ReadVariants(r *tsv.Reader) ([]VariantRecord, error) {
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read variants: %w", err)
	}
	records := make([]VariantRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := VariantRecordFromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

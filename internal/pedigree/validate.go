package pedigree

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/inodb/vibe-ped/internal/genome"
)

// MaxNameLength is the maximum length of a person's name, in characters.
const MaxNameLength = 255

// fieldValidate is shared by Person and Variant construction.
// Initialized in init() with the genomic validators.
var fieldValidate *validator.Validate

func init() {
	fieldValidate = validator.New()

	_ = fieldValidate.RegisterValidation("nucleotide", validateNucleotide)
	_ = fieldValidate.RegisterValidation("chrom", validateChrom)
	fieldValidate.RegisterStructValidation(validateLocus, variantFields{})
}

// personFields holds the validated attributes of a Person.
type personFields struct {
	Name string `validate:"required,max=255"`
}

// variantFields holds the validated attributes of a Variant.
type variantFields struct {
	Chrom string `validate:"required,chrom"`
	Pos   int64
	Ref   string `validate:"omitempty,nucleotide,nefield=Alt"`
	Alt   string `validate:"required,nucleotide"`
}

// validateNucleotide accepts exactly one of A, C, G, T.
func validateNucleotide(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "A", "C", "G", "T":
		return true
	}
	return false
}

func validateChrom(fl validator.FieldLevel) bool {
	_, ok := genome.Length(fl.Field().String())
	return ok
}

// validateLocus checks 0 <= pos < length(chrom). Unknown chromosomes are
// reported by the chrom tag, not here.
func validateLocus(sl validator.StructLevel) {
	v := sl.Current().Interface().(variantFields)
	n, ok := genome.Length(v.Chrom)
	if !ok {
		return
	}
	if !genome.Contains(v.Chrom, v.Pos) {
		sl.ReportError(v.Pos, "Pos", "Pos", "locus", fmt.Sprintf("%d", n))
	}
}

func checkName(name string) error {
	err := fieldValidate.Struct(personFields{Name: name})
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return newError(ErrInvalidName, name, "%v", err)
	}
	switch verrs[0].Tag() {
	case "required":
		return newError(ErrInvalidName, name, "name must not be empty")
	default:
		return newError(ErrInvalidName, truncate(name, 32), "name exceeds %d characters", MaxNameLength)
	}
}

func checkVariant(f variantFields) error {
	err := fieldValidate.Struct(f)
	if err == nil {
		return nil
	}
	locus := fmt.Sprintf("%s:%d", f.Chrom, f.Pos)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return newError(ErrInvalidVariant, locus, "%v", err)
	}
	rules := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rules = append(rules, describeRule(fe, f))
	}
	return newError(ErrInvalidVariant, locus, "%s", strings.Join(rules, "; "))
}

// describeRule renders a violated variant rule for the caller.
func describeRule(fe validator.FieldError, f variantFields) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", strings.ToLower(fe.Field()))
	case "chrom":
		return fmt.Sprintf("chromosome %q is not in the %s reference", f.Chrom, genome.Assembly)
	case "locus":
		return fmt.Sprintf("position %d is outside [0, %s) for %s", f.Pos, fe.Param(), f.Chrom)
	case "nucleotide":
		return fmt.Sprintf("%s allele %q is not a single nucleotide (A, C, G, T)", strings.ToLower(fe.Field()), fe.Value())
	case "nefield":
		return fmt.Sprintf("alt allele %q equals ref allele", f.Alt)
	}
	return fe.Error()
}

// truncate shortens s to n characters.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

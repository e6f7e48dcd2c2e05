package output

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"go.uber.org/multierr"

	"github.com/inodb/vibe-ped/internal/pedigree"
	"github.com/inodb/vibe-ped/internal/tsv"
)

// ValidationWriter writes the violations found while loading a pedigree.
type ValidationWriter struct {
	w          *tabwriter.Writer
	violations int
	byKind     map[string]int
	kinds      []string // first-seen order
}

// NewValidationWriter creates a new validation output writer.
func NewValidationWriter(w io.Writer) *ValidationWriter {
	return &ValidationWriter{
		w:      tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		byKind: make(map[string]int),
	}
}

// WriteHeader writes the validation output header.
func (v *ValidationWriter) WriteHeader() error {
	_, err := fmt.Fprintln(v.w, "Stage\tLine\tKind\tSubject\tDetail")
	return err
}

// WriteErrors writes one line per violation in err, which may aggregate
// several. stage names the input being loaded ("people" or "variants").
func (v *ValidationWriter) WriteErrors(stage string, err error) error {
	for _, e := range multierr.Errors(err) {
		line, kind, subject, detail := "-", "error", "-", e.Error()

		var pe *pedigree.Error
		var parseErr *tsv.ParseError
		switch {
		case errors.As(e, &pe):
			kind = pe.Kind.Error()
			detail = orDash(pe.Detail)
			subject = orDash(pe.Subject)
			if pe.Line > 0 {
				line = strconv.Itoa(pe.Line)
			}
		case errors.As(e, &parseErr):
			kind = "parse error"
			detail = parseErr.Message
			line = strconv.Itoa(parseErr.Line)
		}

		v.count(kind)
		if _, werr := fmt.Fprintf(v.w, "%s\t%s\t%s\t%s\t%s\n", stage, line, kind, subject, detail); werr != nil {
			return werr
		}
	}
	return nil
}

func (v *ValidationWriter) count(kind string) {
	if _, ok := v.byKind[kind]; !ok {
		v.kinds = append(v.kinds, kind)
	}
	v.byKind[kind]++
	v.violations++
}

// Flush flushes the writer.
func (v *ValidationWriter) Flush() error {
	return v.w.Flush()
}

// Violations returns the number of violations written.
func (v *ValidationWriter) Violations() int {
	return v.violations
}

// WriteSummary writes a summary of the validation results.
func (v *ValidationWriter) WriteSummary(w io.Writer, people, variants int) {
	fmt.Fprintf(w, "\nValidation Summary:\n")
	fmt.Fprintf(w, "  People:      %d\n", people)
	fmt.Fprintf(w, "  Variants:    %d\n", variants)
	fmt.Fprintf(w, "  Violations:  %d\n", v.violations)
	for _, kind := range v.kinds {
		fmt.Fprintf(w, "    %-22s %d\n", kind+":", v.byKind[kind])
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

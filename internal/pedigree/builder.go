package pedigree

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-ped/internal/genome"
)

// PersonRecord is one row of a people file.
type PersonRecord struct {
	Line   int    // source line, 0 if not from a file
	Name   string
	Gender string // raw gender token
	Father string // empty when unknown
	Mother string // empty when unknown
}

// VariantRecord is one row of a variants file.
type VariantRecord struct {
	Line   int
	Chrom  string
	Pos    int64 // 0-based
	Ref    string
	Alt    string
	Person string
}

// Pedigree holds the people and variants loaded from one dataset.
//
// People are loaded once with LoadPeople; variants may then be loaded in
// one or more batches with LoadVariants. Each load validates the whole
// batch first and commits nothing if any row is rejected; the returned
// error aggregates every violation found in the failing stage.
type Pedigree struct {
	people   map[string]*Person
	variants []*Variant
	loaded   bool
	logger   *zap.Logger
}

// New creates an empty pedigree.
func New() *Pedigree {
	return &Pedigree{
		people: make(map[string]*Person),
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for load progress messages.
func (pd *Pedigree) SetLogger(l *zap.Logger) {
	pd.logger = l
}

// LoadPeople validates a batch of person records and builds the graph.
//
// Stages, each aborting the load if it finds a violation:
//  1. names are unique (ErrDuplicateName)
//  2. every named father and mother is itself a record (ErrUnknownParent)
//  3. the parent links form a DAG (ErrCyclicPedigree)
//  4. each record makes a valid Person (ErrInvalidName, ErrInvalidGender)
//  5. parents are linked in topological order (ErrRoleMismatch)
func (pd *Pedigree) LoadPeople(records []PersonRecord) error {
	if pd.loaded {
		return newError(ErrPeopleAlreadyLoaded, "", "%d people already loaded", len(pd.people))
	}

	byName := make(map[string]*PersonRecord, len(records))
	var errs error
	for i := range records {
		r := &records[i]
		if prev, ok := byName[r.Name]; ok {
			errs = multierr.Append(errs, &Error{
				Kind: ErrDuplicateName, Subject: r.Name, Line: r.Line,
				Detail: fmt.Sprintf("first declared on line %d", prev.Line),
			})
			continue
		}
		byName[r.Name] = r
	}
	if errs != nil {
		return errs
	}

	for _, r := range records {
		for _, ref := range [...]struct{ role, name string }{{"father", r.Father}, {"mother", r.Mother}} {
			if ref.name == "" {
				continue
			}
			if _, ok := byName[ref.name]; !ok {
				errs = multierr.Append(errs, &Error{
					Kind: ErrUnknownParent, Subject: ref.name, Line: r.Line,
					Detail: fmt.Sprintf("%s of %q is not declared", ref.role, r.Name),
				})
			}
		}
	}
	if errs != nil {
		return errs
	}

	order, err := parentsFirst(records, byName)
	if err != nil {
		return err
	}

	people := make(map[string]*Person, len(records))
	for _, r := range records {
		p, err := NewPerson(r.Name, r.Gender, nil, nil)
		if err != nil {
			errs = multierr.Append(errs, atLine(err, r.Line))
			continue
		}
		people[r.Name] = p
	}
	if errs != nil {
		return errs
	}

	for _, r := range order {
		child := people[r.Name]
		if r.Father != "" {
			if err := child.SetFather(people[r.Father]); err != nil {
				errs = multierr.Append(errs, atLine(err, r.Line))
			} else {
				pd.logger.Debug("linked father", zap.String("child", r.Name), zap.String("father", r.Father))
			}
		}
		if r.Mother != "" {
			if err := child.SetMother(people[r.Mother]); err != nil {
				errs = multierr.Append(errs, atLine(err, r.Line))
			} else {
				pd.logger.Debug("linked mother", zap.String("child", r.Name), zap.String("mother", r.Mother))
			}
		}
	}
	if errs != nil {
		return errs
	}

	pd.people = people
	pd.loaded = true
	pd.logger.Info("loaded people", zap.Int("people", len(people)))
	return nil
}

// parentsFirst orders records so every parent precedes its children,
// failing with ErrCyclicPedigree if someone is their own ancestor.
func parentsFirst(records []PersonRecord, byName map[string]*PersonRecord) ([]*PersonRecord, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(records))
	order := make([]*PersonRecord, 0, len(records))

	var visit func(r *PersonRecord, path []string) error
	visit = func(r *PersonRecord, path []string) error {
		switch state[r.Name] {
		case done:
			return nil
		case visiting:
			start := 0
			for i, name := range path {
				if name == r.Name {
					start = i
					break
				}
			}
			loop := append(path[start:len(path):len(path)], r.Name)
			return &Error{
				Kind: ErrCyclicPedigree, Subject: r.Name, Line: r.Line,
				Detail: "ancestry loop " + strings.Join(loop, " -> "),
			}
		}

		state[r.Name] = visiting
		path = append(path, r.Name)
		for _, parent := range [...]string{r.Father, r.Mother} {
			if parent == "" {
				continue
			}
			if err := visit(byName[parent], path); err != nil {
				return err
			}
		}
		state[r.Name] = done
		order = append(order, r)
		return nil
	}

	for i := range records {
		r := byName[records[i].Name]
		if state[r.Name] == unvisited {
			if err := visit(r, nil); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

// LoadVariants validates a batch of variant records and attaches them to
// the loaded people.
//
// Stages, each aborting the load if it finds a violation:
//  1. every named person is loaded (ErrUnknownPerson)
//  2. no (chrom, pos, person) repeats within the batch (ErrDuplicateVariant)
//  3. each record makes a valid Variant (ErrInvalidVariant)
//  4. each variant attaches to its person (ErrDuplicatePosition against
//     variants loaded by an earlier batch)
func (pd *Pedigree) LoadVariants(records []VariantRecord) error {
	if !pd.loaded {
		return newError(ErrPeopleNotLoaded, "", "load people before variants")
	}

	var errs error
	for _, r := range records {
		if _, ok := pd.people[r.Person]; !ok {
			errs = multierr.Append(errs, &Error{
				Kind: ErrUnknownPerson, Subject: r.Person, Line: r.Line,
				Detail: fmt.Sprintf("variant %s:%d names an unknown person", r.Chrom, r.Pos),
			})
		}
	}
	if errs != nil {
		return errs
	}

	type batchKey struct {
		locus  Locus
		person string
	}
	firstLine := make(map[batchKey]int, len(records))
	for _, r := range records {
		chrom := r.Chrom
		if chrom != "" {
			chrom = genome.Canonical(chrom)
		}
		k := batchKey{Locus{chrom, r.Pos}, r.Person}
		if line, ok := firstLine[k]; ok {
			errs = multierr.Append(errs, &Error{
				Kind: ErrDuplicateVariant, Subject: k.locus.String(), Line: r.Line,
				Detail: fmt.Sprintf("repeats line %d for %q", line, r.Person),
			})
			continue
		}
		firstLine[k] = r.Line
	}
	if errs != nil {
		return errs
	}

	built := make([]*Variant, len(records))
	for i, r := range records {
		v, err := NewVariant(r.Chrom, r.Pos, r.Ref, r.Alt)
		if err != nil {
			errs = multierr.Append(errs, atLine(err, r.Line))
			continue
		}
		built[i] = v
	}
	if errs != nil {
		return errs
	}

	attached := make([]*Variant, 0, len(built))
	for i, v := range built {
		if err := pd.people[records[i].Person].AddVariant(v); err != nil {
			errs = multierr.Append(errs, atLine(err, records[i].Line))
			continue
		}
		attached = append(attached, v)
	}
	if errs != nil {
		for _, v := range attached {
			_ = v.person.RemoveVariant(v)
		}
		return errs
	}

	pd.variants = append(pd.variants, built...)
	pd.logger.Info("loaded variants", zap.Int("variants", len(built)), zap.Int("total", len(pd.variants)))
	return nil
}

// Loaded reports whether people have been loaded.
func (pd *Pedigree) Loaded() bool {
	return pd.loaded
}

// Person returns the person with the given name.
func (pd *Pedigree) Person(name string) (*Person, bool) {
	p, ok := pd.people[name]
	return p, ok
}

// People returns every person, sorted by name.
func (pd *Pedigree) People() People {
	ps := make(People, 0, len(pd.people))
	for _, p := range pd.people {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].name < ps[j].name })
	return ps
}

// Len returns the number of people.
func (pd *Pedigree) Len() int {
	return len(pd.people)
}

// Variants returns every loaded variant in load order.
func (pd *Pedigree) Variants() []*Variant {
	return slices.Clone(pd.variants)
}

// VariantsAt returns the loaded variants at chrom:pos, one per carrier.
func (pd *Pedigree) VariantsAt(chrom string, pos int64) []*Variant {
	locus := Locus{Chrom: genome.Canonical(chrom), Pos: pos}
	var out []*Variant
	for _, v := range pd.variants {
		if v.Locus() == locus {
			out = append(out, v)
		}
	}
	return out
}

// atLine records the input line on a pedigree error.
func atLine(err error, line int) error {
	var pe *Error
	if errors.As(err, &pe) && pe.Line == 0 {
		pe.Line = line
	}
	return err
}

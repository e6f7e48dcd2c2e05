package pedigree

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/inodb/vibe-ped/internal/genome"
)

// Person is a node in the pedigree graph.
//
// Parent and child links are only changed through SetMother, SetFather,
// RemoveMother, RemoveFather and AddChild, which keep both sides of every
// edge in sync and refuse links that would make a person their own ancestor.
// A Person is not safe for concurrent mutation; callers that share a graph
// across goroutines must lock the whole graph, not individual people.
type Person struct {
	name     string
	gender   Gender
	mother   *Person
	father   *Person
	children map[*Person]struct{}

	variants     []*Variant
	variantIndex map[Locus]*Variant
}

// NewPerson creates a person. gender is any token accepted by ResolveGender.
// mother and father may be nil; when given they are linked exactly as
// SetMother and SetFather would, and no link is made if either is rejected.
func NewPerson(name, gender string, mother, father *Person) (*Person, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	g, err := ResolveGender(gender)
	if err != nil {
		return nil, err
	}

	p := &Person{
		name:         name,
		gender:       g,
		children:     make(map[*Person]struct{}),
		variantIndex: make(map[Locus]*Variant),
	}

	// A new person has no descendants, so only the role checks can fail.
	if mother != nil {
		if err := p.checkRole(mother, Female); err != nil {
			return nil, err
		}
	}
	if father != nil {
		if err := p.checkRole(father, Male); err != nil {
			return nil, err
		}
	}
	if mother != nil {
		p.link(mother, Female)
	}
	if father != nil {
		p.link(father, Male)
	}
	return p, nil
}

// Name returns the person's name.
func (p *Person) Name() string { return p.name }

// Gender returns the person's reference gender.
func (p *Person) Gender() Gender { return p.gender }

// Mother returns the person's mother, or nil if unknown.
func (p *Person) Mother() *Person { return p.mother }

// Father returns the person's father, or nil if unknown.
func (p *Person) Father() *Person { return p.father }

// Children returns the person's children sorted by name.
func (p *Person) Children() People { return peopleOf(p.children) }

// SetMother makes mother this person's mother, replacing any previous mother.
// It fails with ErrRoleMismatch unless mother is female, and with
// ErrCycleDetected if mother is this person or one of their descendants.
func (p *Person) SetMother(mother *Person) error {
	return p.setParent(mother, Female)
}

// SetFather makes father this person's father, replacing any previous father.
// It fails with ErrRoleMismatch unless father is male, and with
// ErrCycleDetected if father is this person or one of their descendants.
func (p *Person) SetFather(father *Person) error {
	return p.setParent(father, Male)
}

// RemoveMother detaches this person from their mother.
func (p *Person) RemoveMother() error {
	return p.removeParent(Female)
}

// RemoveFather detaches this person from their father.
func (p *Person) RemoveFather() error {
	return p.removeParent(Male)
}

// AddChild makes this person a parent of child, as mother or father
// according to this person's gender.
//
// Every check runs before any link changes: ErrUnknownParentGender if this
// person's gender is unknown, ErrParentAlreadySet if the child already has a
// different parent in that role, ErrCycleDetected if child is this person or
// one of their ancestors. Adding an existing child again is a no-op.
func (p *Person) AddChild(child *Person) error {
	if child == nil {
		return newError(ErrNoSuchRelation, p.name, "nil child")
	}
	role := p.gender
	if role != Female && role != Male {
		return newError(ErrUnknownParentGender, p.name, "cannot add child %q", child.name)
	}

	existing := child.parent(role)
	if existing == p {
		return nil
	}
	if existing != nil {
		return newError(ErrParentAlreadySet, child.name, "%s is already %q", roleName(role), existing.name)
	}
	if child == p || p.AllAncestors().Contains(child) {
		return newError(ErrCycleDetected, child.name, "is an ancestor of %q", p.name)
	}
	return child.setParent(p, role)
}

func (p *Person) setParent(parent *Person, role Gender) error {
	if parent == nil {
		return newError(ErrNoSuchRelation, p.name, "nil %s", roleName(role))
	}
	if err := p.checkRole(parent, role); err != nil {
		return err
	}
	if p.parent(role) == parent {
		return nil
	}
	if parent == p || p.AllDescendants().Contains(parent) {
		return newError(ErrCycleDetected, parent.name, "cannot be %s of descendant %q", roleName(role), p.name)
	}
	p.link(parent, role)
	return nil
}

// checkRole enforces that mothers are female and fathers are male.
func (p *Person) checkRole(parent *Person, role Gender) error {
	if parent.gender != role {
		return newError(ErrRoleMismatch, parent.name, "%s of %q must be %s, is %s",
			roleName(role), p.name, role, parent.gender)
	}
	return nil
}

// link replaces the parent in role, updating both children sets.
func (p *Person) link(parent *Person, role Gender) {
	slot := p.parentSlot(role)
	if old := *slot; old != nil {
		delete(old.children, p)
	}
	parent.children[p] = struct{}{}
	*slot = parent
}

func (p *Person) removeParent(role Gender) error {
	slot := p.parentSlot(role)
	parent := *slot
	if parent == nil {
		return newError(ErrNoSuchRelation, p.name, "%s not set", roleName(role))
	}
	if _, ok := parent.children[p]; !ok {
		return newError(ErrInconsistentGraph, p.name, "%s %q does not list them as a child", roleName(role), parent.name)
	}
	delete(parent.children, p)
	*slot = nil
	return nil
}

func (p *Person) parent(role Gender) *Person {
	return *p.parentSlot(role)
}

func (p *Person) parentSlot(role Gender) **Person {
	if role == Female {
		return &p.mother
	}
	return &p.father
}

func roleName(role Gender) string {
	if role == Female {
		return "mother"
	}
	return "father"
}

// AddVariant attaches v to this person. It fails with ErrDuplicatePosition
// if the person already carries a variant at v's locus, and with
// ErrVariantAttached if v belongs to someone else.
func (p *Person) AddVariant(v *Variant) error {
	if v == nil {
		return newError(ErrInvalidVariant, p.name, "nil variant")
	}
	if v.person != nil && v.person != p {
		return newError(ErrVariantAttached, v.String(), "carried by %q", v.person.name)
	}
	if existing, ok := p.variantIndex[v.Locus()]; ok {
		return newError(ErrDuplicatePosition, v.Locus().String(), "%q already carries %s", p.name, existing)
	}
	p.variants = append(p.variants, v)
	p.variantIndex[v.Locus()] = v
	v.person = p
	return nil
}

// RemoveVariant detaches v from this person. It fails with ErrNoSuchVariant
// if this person does not carry v.
func (p *Person) RemoveVariant(v *Variant) error {
	if v == nil || p.variantIndex[v.Locus()] != v {
		return newError(ErrNoSuchVariant, p.name, "does not carry %v", v)
	}
	delete(p.variantIndex, v.Locus())
	p.variants = slices.DeleteFunc(p.variants, func(x *Variant) bool { return x == v })
	v.person = nil
	return nil
}

// Variants returns a snapshot of the person's variants in the order added.
func (p *Person) Variants() []*Variant {
	return slices.Clone(p.variants)
}

// Variant returns the person's variant at chrom:pos, if any.
func (p *Person) Variant(chrom string, pos int64) (*Variant, bool) {
	v, ok := p.variantIndex[Locus{Chrom: genome.Canonical(chrom), Pos: pos}]
	return v, ok
}

// HasVariantAt reports whether the person carries a variant at chrom:pos.
func (p *Person) HasVariantAt(chrom string, pos int64) bool {
	_, ok := p.Variant(chrom, pos)
	return ok
}

// Siblings returns the full siblings: people sharing both known parents.
// A person with an unknown parent has no full siblings.
func (p *Person) Siblings() People {
	if p.mother == nil || p.father == nil {
		return nil
	}
	set := make(map[*Person]struct{})
	for c := range p.mother.children {
		if _, ok := p.father.children[c]; ok && c != p {
			set[c] = struct{}{}
		}
	}
	return peopleOf(set)
}

// HalfSiblings returns people sharing exactly one parent with this person.
func (p *Person) HalfSiblings() People {
	var mc, fc map[*Person]struct{}
	if p.mother != nil {
		mc = p.mother.children
	}
	if p.father != nil {
		fc = p.father.children
	}
	set := make(map[*Person]struct{})
	for c := range mc {
		if _, ok := fc[c]; !ok && c != p {
			set[c] = struct{}{}
		}
	}
	for c := range fc {
		if _, ok := mc[c]; !ok && c != p {
			set[c] = struct{}{}
		}
	}
	return peopleOf(set)
}

// Sons returns the person's male children.
func (p *Person) Sons() People {
	return p.childrenByGender(Male)
}

// Daughters returns the person's female children.
func (p *Person) Daughters() People {
	return p.childrenByGender(Female)
}

func (p *Person) childrenByGender(g Gender) People {
	set := make(map[*Person]struct{})
	for c := range p.children {
		if c.gender == g {
			set[c] = struct{}{}
		}
	}
	return peopleOf(set)
}

// GrandparentsStructured returns the four grandparents in fixed order:
// maternal grandmother, maternal grandfather, paternal grandmother,
// paternal grandfather. Unknown slots are nil.
func (p *Person) GrandparentsStructured() [4]*Person {
	var gp [4]*Person
	if p.mother != nil {
		gp[0], gp[1] = p.mother.mother, p.mother.father
	}
	if p.father != nil {
		gp[2], gp[3] = p.father.mother, p.father.father
	}
	return gp
}

func (p *Person) String() string {
	return fmt.Sprintf("%s: gender %s; mother %s; father %s",
		p.name, p.gender, nameOrNA(p.mother), nameOrNA(p.father))
}

func nameOrNA(p *Person) string {
	if p == nil {
		return "NA"
	}
	return p.name
}

// People is a set of people, ordered by name.
type People []*Person

// Names returns the names of the people in order.
func (ps People) Names() []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.name
	}
	return names
}

// Contains reports whether p is in the set.
func (ps People) Contains(p *Person) bool {
	return slices.Contains(ps, p)
}

func (ps People) String() string {
	return "{" + strings.Join(ps.Names(), ", ") + "}"
}

func peopleOf(set map[*Person]struct{}) People {
	if len(set) == 0 {
		return nil
	}
	ps := make(People, 0, len(set))
	for p := range set {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].name < ps[j].name })
	return ps
}

package pedigree

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPerson(t *testing.T, name, gender string) *Person {
	t.Helper()
	p, err := NewPerson(name, gender, nil, nil)
	require.NoError(t, err)
	return p
}

func newTestVariant(t *testing.T, chrom string, pos int64, alt string) *Variant {
	t.Helper()
	v, err := NewVariant(chrom, pos, "", alt)
	require.NoError(t, err)
	return v
}

func TestNewPerson(t *testing.T) {
	p, err := NewPerson("kid", "NA", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "kid", p.Name())
	assert.Equal(t, Unknown, p.Gender())
	assert.Nil(t, p.Mother())
	assert.Nil(t, p.Father())
	assert.Empty(t, p.Children())
	assert.Empty(t, p.Variants())
}

func TestNewPerson_InvalidName(t *testing.T) {
	_, err := NewPerson("", "m", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NewPerson(strings.Repeat("a", MaxNameLength+1), "m", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NewPerson(strings.Repeat("a", MaxNameLength), "m", nil, nil)
	assert.NoError(t, err)
}

func TestNewPerson_LongMultibyteName(t *testing.T) {
	_, err := NewPerson(strings.Repeat("世", MaxNameLength), "m", nil, nil)
	require.NoError(t, err)

	_, err = NewPerson(strings.Repeat("世", MaxNameLength+1), "m", nil, nil)
	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.True(t, utf8.ValidString(pe.Subject))
	assert.Equal(t, strings.Repeat("世", 32)+"...", pe.Subject)
}

func TestNewPerson_InvalidGender(t *testing.T) {
	_, err := NewPerson("kid", "---", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidGender)
}

func TestNewPerson_WithParents(t *testing.T) {
	mom := newTestPerson(t, "mom", "f")
	dad := newTestPerson(t, "dad", "m")

	kid, err := NewPerson("kid", "f", mom, dad)
	require.NoError(t, err)

	assert.Same(t, mom, kid.Mother())
	assert.Same(t, dad, kid.Father())
	assert.True(t, mom.Children().Contains(kid))
	assert.True(t, dad.Children().Contains(kid))
}

func TestNewPerson_RoleMismatchLinksNothing(t *testing.T) {
	notMom := newTestPerson(t, "notmom", "m")
	dad := newTestPerson(t, "dad", "m")

	_, err := NewPerson("kid", "f", notMom, dad)
	assert.ErrorIs(t, err, ErrRoleMismatch)
	assert.Empty(t, notMom.Children())
	assert.Empty(t, dad.Children())
}

func TestSetMother(t *testing.T) {
	kid := newTestPerson(t, "kid", "NA")
	mom := newTestPerson(t, "mom", "f")

	require.NoError(t, kid.SetMother(mom))
	assert.Same(t, mom, kid.Mother())
	assert.True(t, mom.Children().Contains(kid))

	// Setting the same mother again is a no-op.
	require.NoError(t, kid.SetMother(mom))
	assert.Len(t, mom.Children(), 1)
}

func TestSetMother_ReplacesPrevious(t *testing.T) {
	kid := newTestPerson(t, "kid", "NA")
	mom := newTestPerson(t, "mom", "f")
	stepmom := newTestPerson(t, "stepmom", "f")

	require.NoError(t, kid.SetMother(mom))
	require.NoError(t, kid.SetMother(stepmom))

	assert.Same(t, stepmom, kid.Mother())
	assert.False(t, mom.Children().Contains(kid))
	assert.True(t, stepmom.Children().Contains(kid))
}

func TestSetMother_RoleMismatch(t *testing.T) {
	kid := newTestPerson(t, "kid", "NA")
	mom := newTestPerson(t, "mom", "f")
	dad := newTestPerson(t, "dad", "m")
	require.NoError(t, kid.SetMother(mom))

	err := kid.SetMother(dad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRoleMismatch)
	assert.Contains(t, err.Error(), "must be female")

	// The rejected call left the old link in place.
	assert.Same(t, mom, kid.Mother())
	assert.True(t, mom.Children().Contains(kid))
	assert.Empty(t, dad.Children())
}

func TestSetMother_Cycle(t *testing.T) {
	grandma := newTestPerson(t, "grandma", "f")
	mom := newTestPerson(t, "mom", "f")
	kid := newTestPerson(t, "kid", "f")
	require.NoError(t, mom.SetMother(grandma))
	require.NoError(t, kid.SetMother(mom))

	err := grandma.SetMother(kid)
	assert.ErrorIs(t, err, ErrCycleDetected)
	assert.Nil(t, grandma.Mother())
	assert.Empty(t, kid.Children())

	err = mom.SetMother(mom)
	assert.ErrorIs(t, err, ErrCycleDetected)
	assert.Same(t, grandma, mom.Mother())
}

func TestSetFather(t *testing.T) {
	kid := newTestPerson(t, "kid", "NA")
	dad := newTestPerson(t, "dad", "m")

	require.NoError(t, kid.SetFather(dad))
	assert.Same(t, dad, kid.Father())
	assert.True(t, dad.Children().Contains(kid))
}

func TestSetFather_Errors(t *testing.T) {
	kid := newTestPerson(t, "kid", "m")
	mom := newTestPerson(t, "mom", "f")
	dad := newTestPerson(t, "dad", "m")

	err := kid.SetFather(mom)
	assert.ErrorIs(t, err, ErrRoleMismatch)
	assert.Contains(t, err.Error(), "must be male")

	require.NoError(t, kid.SetFather(dad))
	err = dad.SetFather(kid)
	assert.ErrorIs(t, err, ErrCycleDetected)
	assert.Nil(t, dad.Father())

	err = kid.SetFather(nil)
	assert.ErrorIs(t, err, ErrNoSuchRelation)
	assert.Same(t, dad, kid.Father())
}

func TestRemoveParents(t *testing.T) {
	mom := newTestPerson(t, "mom", "f")
	dad := newTestPerson(t, "dad", "m")
	kid, err := NewPerson("kid", "m", mom, dad)
	require.NoError(t, err)

	require.NoError(t, kid.RemoveMother())
	assert.Nil(t, kid.Mother())
	assert.Empty(t, mom.Children())

	require.NoError(t, kid.RemoveFather())
	assert.Nil(t, kid.Father())
	assert.Empty(t, dad.Children())

	assert.ErrorIs(t, kid.RemoveMother(), ErrNoSuchRelation)
	assert.ErrorIs(t, kid.RemoveFather(), ErrNoSuchRelation)
}

func TestRemoveMother_Inconsistent(t *testing.T) {
	mom := newTestPerson(t, "mom", "f")
	kid, err := NewPerson("kid", "m", mom, nil)
	require.NoError(t, err)

	// Break the children side directly to simulate a corrupted graph.
	delete(mom.children, kid)

	err = kid.RemoveMother()
	assert.ErrorIs(t, err, ErrInconsistentGraph)
	assert.Same(t, mom, kid.Mother())
}

func TestAddChild(t *testing.T) {
	mom := newTestPerson(t, "mom", "f")
	dad := newTestPerson(t, "dad", "m")
	kid := newTestPerson(t, "kid", "m")

	require.NoError(t, mom.AddChild(kid))
	assert.Same(t, mom, kid.Mother())
	assert.True(t, mom.Children().Contains(kid))

	require.NoError(t, dad.AddChild(kid))
	assert.Same(t, dad, kid.Father())
	assert.True(t, dad.Children().Contains(kid))

	// Adding the same child again changes nothing.
	require.NoError(t, dad.AddChild(kid))
	assert.Len(t, dad.Children(), 1)
}

func TestAddChild_UnknownParentGender(t *testing.T) {
	parent := newTestPerson(t, "parent", "unknown")
	kid := newTestPerson(t, "kid", "m")

	err := parent.AddChild(kid)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParentGender)
	assert.Empty(t, parent.Children())
	assert.Nil(t, kid.Mother())
	assert.Nil(t, kid.Father())
}

func TestAddChild_ParentAlreadySet(t *testing.T) {
	mom := newTestPerson(t, "mom", "f")
	other := newTestPerson(t, "other", "f")
	kid, err := NewPerson("kid", "m", mom, nil)
	require.NoError(t, err)

	err = other.AddChild(kid)
	assert.ErrorIs(t, err, ErrParentAlreadySet)
	assert.Same(t, mom, kid.Mother())
	assert.Empty(t, other.Children())
}

func TestAddChild_Cycle(t *testing.T) {
	grandma := newTestPerson(t, "grandma", "f")
	mom, err := NewPerson("mom", "f", grandma, nil)
	require.NoError(t, err)
	kid, err := NewPerson("kid", "m", mom, nil)
	require.NoError(t, err)

	for _, ancestor := range []*Person{mom, grandma} {
		err := kid.AddChild(ancestor)
		assert.ErrorIs(t, err, ErrCycleDetected)
	}
	assert.ErrorIs(t, kid.AddChild(kid), ErrCycleDetected)

	// Graph unchanged.
	assert.Empty(t, kid.Children())
	assert.Nil(t, grandma.Mother())
	assert.Same(t, grandma, mom.Mother())
}

func TestAddVariant(t *testing.T) {
	p := newTestPerson(t, "kid", "m")
	v := newTestVariant(t, "chr1", 100, "A")

	require.NoError(t, p.AddVariant(v))
	assert.Same(t, p, v.Person())
	assert.Equal(t, []*Variant{v}, p.Variants())

	got, ok := p.Variant("1", 100)
	require.True(t, ok)
	assert.Same(t, v, got)
	assert.True(t, p.HasVariantAt("chr1", 100))
	assert.False(t, p.HasVariantAt("chr1", 101))
}

func TestAddVariant_DuplicatePosition(t *testing.T) {
	p := newTestPerson(t, "kid", "m")
	require.NoError(t, p.AddVariant(newTestVariant(t, "chr1", 100, "A")))

	dup := newTestVariant(t, "chr1", 100, "C")
	err := p.AddVariant(dup)
	assert.ErrorIs(t, err, ErrDuplicatePosition)
	assert.Nil(t, dup.Person())
	assert.Len(t, p.Variants(), 1)

	// Same position on another chromosome is fine.
	assert.NoError(t, p.AddVariant(newTestVariant(t, "chr2", 100, "C")))
}

func TestAddVariant_AttachedElsewhere(t *testing.T) {
	a := newTestPerson(t, "a", "m")
	b := newTestPerson(t, "b", "f")
	v := newTestVariant(t, "chrX", 5, "T")
	require.NoError(t, a.AddVariant(v))

	err := b.AddVariant(v)
	assert.ErrorIs(t, err, ErrVariantAttached)
	assert.Same(t, a, v.Person())
	assert.Empty(t, b.Variants())
}

func TestRemoveVariant(t *testing.T) {
	p := newTestPerson(t, "kid", "m")
	v1 := newTestVariant(t, "chr1", 100, "A")
	v2 := newTestVariant(t, "chr1", 200, "C")
	require.NoError(t, p.AddVariant(v1))
	require.NoError(t, p.AddVariant(v2))

	snapshot := p.Variants()

	require.NoError(t, p.RemoveVariant(v1))
	assert.Nil(t, v1.Person())
	assert.Equal(t, []*Variant{v2}, p.Variants())
	assert.False(t, p.HasVariantAt("chr1", 100))

	// Earlier snapshots are unaffected.
	assert.Len(t, snapshot, 2)

	assert.ErrorIs(t, p.RemoveVariant(v1), ErrNoSuchVariant)
	assert.ErrorIs(t, p.RemoveVariant(nil), ErrNoSuchVariant)

	// A variant at the same locus that is not attached is not removed.
	stranger := newTestVariant(t, "chr1", 200, "G")
	assert.ErrorIs(t, p.RemoveVariant(stranger), ErrNoSuchVariant)
	assert.Len(t, p.Variants(), 1)
}

// newFamily builds:
//
//	mom + dad  -> kid1 (m), kid2 (f)
//	mom + dad2 -> kid3 (m)
//	mom2 + dad -> kid4 (f)
//	mom only   -> lone (NA)
func newFamily(t *testing.T) map[string]*Person {
	t.Helper()
	f := map[string]*Person{
		"mom":  newTestPerson(t, "mom", "f"),
		"mom2": newTestPerson(t, "mom2", "f"),
		"dad":  newTestPerson(t, "dad", "m"),
		"dad2": newTestPerson(t, "dad2", "m"),
	}
	add := func(name, gender, mother, father string) {
		var m, d *Person
		if mother != "" {
			m = f[mother]
		}
		if father != "" {
			d = f[father]
		}
		p, err := NewPerson(name, gender, m, d)
		require.NoError(t, err)
		f[name] = p
	}
	add("kid1", "m", "mom", "dad")
	add("kid2", "f", "mom", "dad")
	add("kid3", "m", "mom", "dad2")
	add("kid4", "f", "mom2", "dad")
	add("lone", "NA", "mom", "")
	return f
}

func TestSiblings(t *testing.T) {
	f := newFamily(t)

	assert.Equal(t, []string{"kid2"}, f["kid1"].Siblings().Names())
	assert.Equal(t, []string{"kid1"}, f["kid2"].Siblings().Names())
	assert.Empty(t, f["kid3"].Siblings())
	assert.Empty(t, f["lone"].Siblings(), "one known parent means no full siblings")
	assert.Empty(t, f["mom"].Siblings())
}

func TestHalfSiblings(t *testing.T) {
	f := newFamily(t)

	assert.Equal(t, []string{"kid3", "kid4", "lone"}, f["kid1"].HalfSiblings().Names())
	assert.Equal(t, []string{"kid1", "kid2", "lone"}, f["kid3"].HalfSiblings().Names())
	assert.Equal(t, []string{"kid1", "kid2"}, f["kid4"].HalfSiblings().Names())

	// With only a mother known, half siblings are exactly her other children.
	assert.Equal(t, []string{"kid1", "kid2", "kid3"}, f["lone"].HalfSiblings().Names())
}

func TestSonsAndDaughters(t *testing.T) {
	f := newFamily(t)

	assert.Equal(t, []string{"kid1", "kid3"}, f["mom"].Sons().Names())
	assert.Equal(t, []string{"kid2"}, f["mom"].Daughters().Names())
	assert.Equal(t, []string{"kid1"}, f["dad"].Sons().Names())
	assert.Equal(t, []string{"kid2", "kid4"}, f["dad"].Daughters().Names())
	assert.Equal(t, []string{"kid1", "kid2", "kid3", "lone"}, f["mom"].Children().Names())
}

func TestGrandparentsStructured(t *testing.T) {
	mgm := newTestPerson(t, "mgm", "f")
	pgf := newTestPerson(t, "pgf", "m")
	mom, err := NewPerson("mom", "f", mgm, nil)
	require.NoError(t, err)
	dad, err := NewPerson("dad", "m", nil, pgf)
	require.NoError(t, err)
	kid, err := NewPerson("kid", "m", mom, dad)
	require.NoError(t, err)

	assert.Equal(t, [4]*Person{mgm, nil, nil, pgf}, kid.GrandparentsStructured())

	orphan := newTestPerson(t, "orphan", "f")
	assert.Equal(t, [4]*Person{}, orphan.GrandparentsStructured())
}

func TestPerson_String(t *testing.T) {
	mom := newTestPerson(t, "mom", "f")
	kid, err := NewPerson("kid", "NA", mom, nil)
	require.NoError(t, err)

	assert.Equal(t, "kid: gender unknown; mother mom; father NA", kid.String())
}

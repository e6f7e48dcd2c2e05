package pedigree

import "math"

// Unbounded as a maximum depth collects every generation at or beyond the minimum.
const Unbounded = math.MaxInt

// DepthRange is an inclusive range of generational depths. The querying
// person is depth 0, parents and children depth 1, grandparents and
// grandchildren depth 2, and so on.
type DepthRange struct {
	Min int
	Max int
}

// Exactly selects a single generation.
func Exactly(depth int) DepthRange {
	return DepthRange{Min: depth, Max: depth}
}

// Between selects generations min through max inclusive.
func Between(min, max int) DepthRange {
	return DepthRange{Min: min, Max: max}
}

// AtLeast selects every generation from min on.
func AtLeast(min int) DepthRange {
	return DepthRange{Min: min, Max: Unbounded}
}

func (r DepthRange) validate() error {
	if r.Min < 0 {
		return newError(ErrInvalidRange, "", "min_depth (%d) cannot be negative", r.Min)
	}
	if r.Max < r.Min {
		return newError(ErrInvalidRange, "", "max_depth (%d) cannot be less than min_depth (%d)", r.Max, r.Min)
	}
	return nil
}

// Ancestors returns the people reachable through mother/father links whose
// depth lies in r. It fails with ErrInvalidRange if r.Max < r.Min.
func (p *Person) Ancestors(r DepthRange) (People, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	return p.collect(r, parentsOf), nil
}

// Descendants returns the people reachable through child links whose depth
// lies in r. It fails with ErrInvalidRange if r.Max < r.Min.
func (p *Person) Descendants(r DepthRange) (People, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	return p.collect(r, childrenOf), nil
}

// Parents returns the known parents.
func (p *Person) Parents() People { return p.collect(Exactly(1), parentsOf) }

// Grandparents returns the known grandparents.
func (p *Person) Grandparents() People { return p.collect(Exactly(2), parentsOf) }

// GreatGrandparents returns the known great-grandparents.
func (p *Person) GreatGrandparents() People { return p.collect(Exactly(3), parentsOf) }

// AllGrandparents returns grandparents and every earlier generation.
func (p *Person) AllGrandparents() People { return p.collect(AtLeast(2), parentsOf) }

// AllAncestors returns every known ancestor.
func (p *Person) AllAncestors() People { return p.collect(AtLeast(1), parentsOf) }

// Grandchildren returns the known grandchildren.
func (p *Person) Grandchildren() People { return p.collect(Exactly(2), childrenOf) }

// AllDescendants returns every known descendant.
func (p *Person) AllDescendants() People { return p.collect(AtLeast(1), childrenOf) }

func parentsOf(p *Person, visit func(*Person)) {
	if p.mother != nil {
		visit(p.mother)
	}
	if p.father != nil {
		visit(p.father)
	}
}

func childrenOf(p *Person, visit func(*Person)) {
	for c := range p.children {
		visit(c)
	}
}

// collect walks the graph from p with an explicit stack, so deep pedigrees
// do not grow the call stack. A (person, depth) pair is expanded at most
// once, which keeps pedigrees with shared ancestors linear. The graph must
// be acyclic; the mutators guarantee it.
func (p *Person) collect(r DepthRange, next func(*Person, func(*Person))) People {
	type frame struct {
		person *Person
		depth  int
	}
	found := make(map[*Person]struct{})
	seen := make(map[frame]struct{})
	stack := []frame{{p, 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}

		if f.depth >= r.Min {
			found[f.person] = struct{}{}
		}
		if f.depth >= r.Max {
			continue
		}
		next(f.person, func(n *Person) {
			stack = append(stack, frame{n, f.depth + 1})
		})
	}
	return peopleOf(found)
}

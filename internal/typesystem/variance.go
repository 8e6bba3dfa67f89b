package typesystem

// Variance selects the direction of subtyping a Unifier enforces.
type Variance int

const (
	// Covariant checks sub <: super.
	Covariant Variance = iota
	// Invariant checks sub = super (both directions).
	Invariant
)

func (v Variance) String() string {
	if v == Invariant {
		return "invariant"
	}
	return "covariant"
}

// Mode selects how strictly missing annotations are treated by the
// pack unifier (Nonstrict allows Any to silently absorb leftover
// elements; NoCheck is accepted but no code path in this package treats
// it differently from Strict). The unification
// core only consults Mode at the few points spec.md calls out; it does
// not otherwise change dispatch.
type Mode int

const (
	Strict Mode = iota
	Nonstrict
	NoCheck
)

package typesystem

// unifyPair is a proven-compatible (super, sub) pair.
type unifyPair struct {
	super, sub TypeId
}

// UnifyCache memoizes proved subtype pairs. A pair is only cacheable
// when both sides are structurally immutable for unification purposes —
// caching a pair that contains a Free variable would be unsound, since
// that variable might later be bound to something that no longer
// satisfies the relationship.
type UnifyCache struct {
	proven map[unifyPair]bool
	// skipMemo caches, per type handle, whether that handle's subtree
	// disqualifies it from caching. The determination is itself
	// memoized because the same handle is checked repeatedly as it
	// recurs through many unification calls.
	skipMemo map[TypeId]bool
}

// NewUnifyCache creates an empty cache.
func NewUnifyCache() *UnifyCache {
	return &UnifyCache{
		proven:   map[unifyPair]bool{},
		skipMemo: map[TypeId]bool{},
	}
}

// Contains reports whether (super, sub) has already been proven
// compatible.
func (c *UnifyCache) Contains(super, sub TypeId) bool {
	return c.proven[unifyPair{super, sub}]
}

// Insert records that super and sub have been proven compatible under
// variance, subject to the cacheability check on both sides. Under
// Invariant, both orderings are inserted since the relationship holds
// symmetrically.
func (c *UnifyCache) Insert(a *Arena, super, sub TypeId, variance Variance) {
	if c.skipCache(a, super) || c.skipCache(a, sub) {
		return
	}
	c.proven[unifyPair{super, sub}] = true
	if variance == Invariant {
		c.proven[unifyPair{sub, super}] = true
	}
}

// skipCache reports whether id's subtree disqualifies it from being
// cached: a Free, Generic, Bound, or non-sealed-table node anywhere
// inside it makes the whole subtree mutable, and therefore unsafe to
// remember as "proven".
func (c *UnifyCache) skipCache(a *Arena, id TypeId) bool {
	id = Follow(a, id)
	if v, ok := c.skipMemo[id]; ok {
		return v
	}

	// Guard against cycles while computing the memoized value itself;
	// a type is presumed cacheable until proven otherwise by a
	// disqualifying descendant.
	c.skipMemo[id] = false

	skip := false
	visitor := NewVisitor(a, VisitOptions{})
	visitor.OnType = func(tid TypeId, variant TypeVariant) bool {
		if skip {
			return false
		}
		switch v := variant.(type) {
		case Free, Generic, Bound:
			skip = true
			return false
		case Table:
			if v.State != TableSealed {
				skip = true
				return false
			}
		}
		return true
	}
	visitor.OnPack = func(_ TypePackId, variant TypePackVariant) bool {
		if skip {
			return false
		}
		switch variant.(type) {
		case FreePack, GenericPack, BoundPack:
			skip = true
			return false
		}
		return true
	}
	visitor.VisitType(id)

	c.skipMemo[id] = skip
	return skip
}

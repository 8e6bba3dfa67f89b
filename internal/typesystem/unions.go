package typesystem

// unifyUnionSubtype implements spec.md §4.4's "Union subtype" rule:
// every option of sub must independently be compatible with super.
// Intermediate successes are rolled back as soon as a later option is
// tried, since only the final option's bindings are kept — an earlier
// option's speculative bindings could otherwise contradict a later
// one's.
func (u *Unifier) unifyUnionSubtype(super, sub TypeId) {
	subUnion := u.Arena.Variant(sub).(Union)
	var cause *TypeError
	failed := false
	var pending *Unifier

	for _, opt := range subUnion.Options {
		if pending != nil {
			u.discard(pending)
			pending = nil
		}
		c := u.childSameVariance()
		c.TryUnify(super, opt, false, false)
		if len(c.Errors) != 0 {
			if cause == nil {
				cause = firstErr(c.Errors)
			}
			failed = true
			u.discard(c)
			continue
		}
		pending = c
	}

	if failed {
		if pending != nil {
			u.discard(pending)
		}
		u.mismatchCause(super, sub, "not every option of the union type is compatible with the expected type", cause)
		return
	}
	if pending != nil {
		u.adopt(pending)
	}
}

// unifyUnionSupertype implements spec.md §4.4's "Union supertype" rule
// and its option-ordering heuristic.
func (u *Unifier) unifyUnionSupertype(super, sub TypeId) {
	superUnion := u.Arena.Variant(super).(Union)
	n := len(superUnion.Options)
	if n == 0 {
		u.mismatch(super, sub, "union has no options")
		return
	}

	start := u.unionStartIndex(superUnion, sub)
	heuristicFired := start != 0
	tried := 0
	var cause *TypeError

	for i := 0; i < n; i++ {
		idx := (start + i) % n
		c := u.childSameVariance()
		c.TryUnify(superUnion.Options[idx], sub, false, false)
		tried++
		if len(c.Errors) == 0 {
			u.adopt(c)
			return
		}
		if cause == nil {
			cause = firstErr(c.Errors)
		}
		u.discard(c)
	}

	err := &TypeError{Code: ErrTypeMismatch, Wanted: super, Given: sub}
	if u.tunables().ExtendedUnionMismatchError && (tried == 1 || heuristicFired) {
		err.Cause = cause
	}
	u.reportf(err)
}

// unionStartIndex picks which option of a union supertype to try first,
// per spec.md §4.4: a matching bound name, then a matching tag field,
// then a cache hit, else index 0.
func (u *Unifier) unionStartIndex(union Union, sub TypeId) int {
	if !u.tunables().UnionHeuristic {
		return 0
	}
	sub = Follow(u.Arena, sub)

	if st, ok := u.Arena.Variant(sub).(Table); ok && st.Name != "" {
		for i, opt := range union.Options {
			if ot, ok := u.Arena.Variant(Follow(u.Arena, opt)).(Table); ok && ot.Name == st.Name {
				return i
			}
		}
	}

	if tagField, tagVal, ok := tableTag(u.Arena, sub); ok {
		for i, opt := range union.Options {
			ot, ok := u.Arena.Variant(Follow(u.Arena, opt)).(Table)
			if !ok {
				continue
			}
			p, ok := ot.Props[tagField]
			if !ok {
				continue
			}
			if s, ok := u.Arena.Variant(Follow(u.Arena, p.Ty)).(Singleton); ok && s == tagVal {
				return i
			}
		}
	}

	for i, opt := range union.Options {
		if u.Cache.Contains(Follow(u.Arena, opt), sub) {
			return i
		}
	}
	return 0
}

// tableTag finds the first property of id (a table) whose type is a
// Singleton, treating it as that table's discriminant tag.
func tableTag(a *Arena, id TypeId) (string, Singleton, bool) {
	t, ok := a.Variant(id).(Table)
	if !ok {
		return "", Singleton{}, false
	}
	for _, name := range sortedPropNames(t.Props) {
		if s, ok := a.Variant(Follow(a, t.Props[name].Ty)).(Singleton); ok {
			return name, s, true
		}
	}
	return "", Singleton{}, false
}

// unifyIntersectionSupertype implements spec.md §4.4's "Intersection
// supertype" rule: every part must accept sub, and every succeeding
// child's log concats in order.
func (u *Unifier) unifyIntersectionSupertype(super, sub TypeId) {
	superInter := u.Arena.Variant(super).(Intersection)
	for _, part := range superInter.Parts {
		c := u.childSameVariance()
		c.TryUnify(part, sub, false, true)
		if len(c.Errors) != 0 {
			cause := firstErr(c.Errors)
			u.discard(c)
			u.mismatchCause(super, sub, "not every part of the intersection type accepts this value", cause)
			return
		}
		u.adopt(c)
	}
}

// unifyIntersectionSubtype implements spec.md §4.4's "Intersection
// subtype" rule: sub is compatible if any one of its parts is, tried in
// cache-informed order.
func (u *Unifier) unifyIntersectionSubtype(super, sub TypeId) {
	subInter := u.Arena.Variant(sub).(Intersection)
	order := u.intersectionOrder(subInter, super)

	var cause *TypeError
	for _, idx := range order {
		c := u.childSameVariance()
		c.TryUnify(super, subInter.Parts[idx], false, true)
		if len(c.Errors) == 0 {
			u.adopt(c)
			return
		}
		if cause == nil {
			cause = firstErr(c.Errors)
		}
		u.discard(c)
	}
	u.mismatchCause(super, sub, "no part of the intersection type is compatible with the expected type", cause)
}

func (u *Unifier) intersectionOrder(inter Intersection, super TypeId) []int {
	order := make([]int, len(inter.Parts))
	for i := range order {
		order[i] = i
	}
	if !u.tunables().UnionHeuristic {
		return order
	}
	super = Follow(u.Arena, super)
	for i, part := range inter.Parts {
		if u.Cache.Contains(super, Follow(u.Arena, part)) {
			order[0], order[i] = order[i], order[0]
			break
		}
	}
	return order
}

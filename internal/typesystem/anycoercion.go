package typesystem

// tryUnifyWithAny implements spec.md §4.9: when either side of a
// unification is Any or Error, the other side's entire reachable
// subgraph is flooded with that absorption rather than compared
// structurally. Returns false when neither side is Any/Error, meaning
// the caller should continue with the ordinary dispatch.
func (u *Unifier) tryUnifyWithAny(super, sub TypeId) bool {
	superAbsorbs := isAnyOrError(u.Arena, super)
	subAbsorbs := isAnyOrError(u.Arena, sub)
	if !superAbsorbs && !subAbsorbs {
		return false
	}
	if superAbsorbs {
		u.coerceType(sub, coercionTarget(u.Arena, super))
	} else {
		u.coerceType(super, coercionTarget(u.Arena, sub))
	}
	return true
}

func isAnyOrError(a *Arena, id TypeId) bool {
	switch a.Variant(Follow(a, id)).(type) {
	case AnyType, ErrorType:
		return true
	default:
		return false
	}
}

// coercionTarget picks what a coerced free variable is bound to: the
// error-recovery type when the absorbing side arose from an earlier
// error (so the mistake doesn't cascade), Any otherwise.
func coercionTarget(a *Arena, absorbingSide TypeId) TypeId {
	if _, ok := a.Variant(Follow(a, absorbingSide)).(ErrorType); ok {
		return a.ErrorRecoveryType
	}
	return a.AnyType
}

// coerceType walks id's reachable structure, binding every free type
// variable it finds to target and every free pack tail to a matching
// variadic-any (or error) tail. Table properties/indexers, function
// args/returns, metatable members and union/intersection members are
// descended into automatically by Visitor; primitives, generics,
// classes, and already-resolved Any/Error nodes terminate the walk.
func (u *Unifier) coerceType(id TypeId, target TypeId) {
	packErrorTail := target == u.Arena.ErrorRecoveryType

	v := NewVisitor(u.Arena, VisitOptions{})
	v.OnType = func(tid TypeId, variant TypeVariant) bool {
		switch variant.(type) {
		case Free:
			u.Log.Log(tid)
			u.Arena.SetVariant(tid, Bound{To: target})
			return false
		case Table:
			t := variant.(Table)
			if t.State == TableFree {
				u.Log.Log(tid)
				bound := target
				t.BoundTo = &bound
				u.Arena.SetVariant(tid, t)
				return false
			}
			return true
		case Primitive, Generic, Class, ErrorType, AnyType, Singleton:
			return false
		}
		return true
	}
	v.OnPack = func(pid TypePackId, variant TypePackVariant) bool {
		switch variant.(type) {
		case FreePack:
			u.Log.LogPack(pid)
			if packErrorTail {
				u.Arena.SetPackVariant(pid, BoundPack{To: u.Arena.ErrorRecoveryTypePack})
			} else {
				newPack := u.Arena.AddTypePack(VariadicPack{Ty: u.Arena.AnyType})
				u.Arena.SetPackVariant(pid, BoundPack{To: newPack})
			}
			return false
		case GenericPack, ErrorPack:
			return false
		}
		return true
	}
	v.VisitType(id)
}

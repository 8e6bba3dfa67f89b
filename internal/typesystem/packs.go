package typesystem

import "github.com/samber/lo"

// flattenPack walks a pack's rope structure into its concrete head
// types plus a terminal node: either a TypePackNode with a nil Tail
// (a closed, fixed-length pack) or one of FreePack/GenericPack/
// ErrorPack/VariadicPack.
func flattenPack(a *Arena, id TypePackId) (heads []TypeId, terminalID TypePackId, terminal TypePackVariant) {
	id = FollowPack(a, id)
	for {
		node, ok := a.PackVariant(id).(TypePackNode)
		if !ok {
			return heads, id, a.PackVariant(id)
		}
		heads = append(heads, node.Head...)
		if node.Tail == nil {
			return heads, id, node
		}
		id = FollowPack(a, *node.Tail)
	}
}

// growPackTail replaces the FreePack at termID with a fixed TypePackNode
// of n fresh types at level, via a Bound indirection so the handle's
// identity is preserved for anyone else already holding it.
func (u *Unifier) growPackTail(termID TypePackId, level TypeLevel, n int) []TypeId {
	fresh := make([]TypeId, n)
	for i := range fresh {
		fresh[i] = u.Arena.FreshType(level)
	}
	newNode := u.Arena.AddTypePack(TypePackNode{Head: fresh})
	u.Log.LogPack(termID)
	u.Arena.SetPackVariant(termID, BoundPack{To: newNode})
	return fresh
}

// TryUnifyPacks implements spec.md §4.7's pack unification: pairwise
// unification of aligned heads, then tail reconciliation depending on
// which side (if either) ran out of heads first. ctx labels a
// CountMismatch error emitted by this call with the right pack role.
func (u *Unifier) TryUnifyPacks(super, sub TypePackId, isFunctionCall bool, ctx CountMismatchCtx) {
	superHeads, superTermID, superTerm := flattenPack(u.Arena, super)
	subHeads, subTermID, subTerm := flattenPack(u.Arena, sub)

	n := len(superHeads)
	if len(subHeads) < n {
		n = len(subHeads)
	}
	for i := 0; i < n; i++ {
		u.TryUnify(superHeads[i], subHeads[i], false, false)
	}

	superExtra := superHeads[n:]
	subExtra := subHeads[n:]

	switch {
	case len(subExtra) > 0:
		u.absorbExtra(superTermID, superTerm, subExtra, len(superHeads), len(subHeads), isFunctionCall, ctx, true, subTermID, subTerm)
	case len(superExtra) > 0:
		u.absorbExtra(subTermID, subTerm, superExtra, len(subHeads), len(superHeads), isFunctionCall, ctx, false, superTermID, superTerm)
	default:
		u.unifyPackTails(superTermID, superTerm, subTermID, subTerm)
	}
}

// absorbExtra handles the case where one side (identified by
// shortTermID/shortTerm, the exhausted side's terminal) has run out of
// heads while extra elements remain on the other, whose own terminal is
// longTermID/longTerm. superIsShort reports whether the exhausted side
// is super (a call site supplying more arguments than the declared
// parameter pack names, which is always forgiven) or sub (the call site
// is short on arguments, which is a genuine CountMismatch outside of the
// usual forgiveness cases).
func (u *Unifier) absorbExtra(shortTermID TypePackId, shortTerm TypePackVariant, extra []TypeId, shortLen, longLen int, isFunctionCall bool, ctx CountMismatchCtx, superIsShort bool, longTermID TypePackId, longTerm TypePackVariant) {
	switch st := shortTerm.(type) {
	case FreePack:
		grown := u.growPackTail(shortTermID, st.Level, len(extra))
		for i, t := range extra {
			u.TryUnify(t, grown[i], false, false)
		}
		return
	case VariadicPack:
		for _, t := range extra {
			if superIsShort {
				u.TryUnify(st.Ty, t, false, false)
			} else {
				u.TryUnify(t, st.Ty, false, false)
			}
		}
		if _, longFree := longTerm.(FreePack); longFree {
			u.Log.LogPack(longTermID)
			u.Arena.SetPackVariant(longTermID, BoundPack{To: shortTermID})
		}
		return
	case ErrorPack:
		for _, t := range extra {
			u.TryUnify(t, u.Arena.ErrorRecoveryType, false, false)
		}
		return
	case GenericPack:
		u.reportf(&TypeError{Code: ErrGenericError, Msg: "generic type pack cannot absorb additional elements"})
		return
	}

	// shortTerm is a closed, fixed-length pack: the excess on the long
	// side is either forgiven or a genuine count mismatch.
	if superIsShort {
		// super is the short/exhausted side: it's sub (the long side)
		// that has extras beyond what super's closed tail can name.
		// Excess argument values supplied by a caller are never an
		// error, only excess parameters a callee expects are.
		return
	}
	if allOptionalOrAny(u.Arena, extra, u.Mode) {
		return
	}
	if !isFunctionCall {
		// Non-call context: permissible to have fewer results than
		// declared.
		return
	}
	u.reportf(&TypeError{Code: ErrCountMismatch, Expected: longLen, Actual: shortLen, Ctx: ctx})
	for _, t := range extra {
		u.TryUnify(t, u.Arena.ErrorRecoveryType, false, false)
	}
}

func allOptionalOrAny(a *Arena, ts []TypeId, mode Mode) bool {
	return lo.EveryBy(ts, func(t TypeId) bool {
		t = Follow(a, t)
		if isOptional(a, t) {
			return true
		}
		_, isAny := a.Variant(t).(AnyType)
		return isAny && mode == Nonstrict
	})
}

// unifyPackTails reconciles the two sides' terminal nodes once every
// head element has already been paired off.
func (u *Unifier) unifyPackTails(superID TypePackId, superTerm TypePackVariant, subID TypePackId, subTerm TypePackVariant) {
	if superID == subID {
		return
	}

	sf, superFree := superTerm.(FreePack)
	bf, subFree := subTerm.(FreePack)
	if superFree && subFree {
		if sf.Level.Subsumes(bf.Level) {
			u.Log.LogPack(subID)
			u.Arena.SetPackVariant(subID, BoundPack{To: superID})
		} else {
			u.Log.LogPack(superID)
			u.Arena.SetPackVariant(superID, BoundPack{To: subID})
		}
		return
	}
	if superFree {
		if u.tunables().ProperTypeLevels {
			PromoteTypePackLevels(u.Log, u.Arena, sf.Level, subID)
		}
		u.Log.LogPack(superID)
		u.Arena.SetPackVariant(superID, BoundPack{To: subID})
		return
	}
	if subFree {
		if u.tunables().ProperTypeLevels {
			PromoteTypePackLevels(u.Log, u.Arena, bf.Level, superID)
		}
		u.Log.LogPack(subID)
		u.Arena.SetPackVariant(subID, BoundPack{To: superID})
		return
	}

	if _, ok := superTerm.(ErrorPack); ok {
		return
	}
	if _, ok := subTerm.(ErrorPack); ok {
		return
	}

	sv, superVariadic := superTerm.(VariadicPack)
	bv, subVariadic := subTerm.(VariadicPack)
	switch {
	case superVariadic && subVariadic:
		u.TryUnify(sv.Ty, bv.Ty, false, false)
	case superVariadic && isEmptyFixedTail(subTerm):
	case subVariadic && isEmptyFixedTail(superTerm):
	case (superVariadic && isGenericTail(subTerm)) || (subVariadic && isGenericTail(superTerm)):
		u.reportf(&TypeError{Code: ErrGenericError, Msg: "a generic type pack cannot unify with a variadic pack"})
	case isEmptyFixedTail(superTerm) && isEmptyFixedTail(subTerm):
		// both closed with nothing left; nothing further to check.
	case isGenericTail(superTerm) && isGenericTail(subTerm):
		u.reportf(&TypeError{Code: ErrGenericError, Msg: "unrelated generic type packs"})
	default:
		u.reportf(&TypeError{Code: ErrGenericError, Msg: "incompatible type pack tails"})
	}
}

// isEmptyFixedTail reports whether v is a closed terminal returned by
// flattenPack: a TypePackNode with no tail. Its own heads were already
// collected into the flattened head list, so nothing remains past it.
func isEmptyFixedTail(v TypePackVariant) bool {
	n, ok := v.(TypePackNode)
	return ok && n.Tail == nil
}

func isGenericTail(v TypePackVariant) bool {
	_, ok := v.(GenericPack)
	return ok
}

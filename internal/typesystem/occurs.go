package typesystem

// OccursCheckType reports whether needle occurs anywhere in haystack's
// structure. skipFunctionInteriors mirrors
// Tunables.OccursCheckOkWithRecursiveFunctions: when true, a function
// type's argument/return packs are not descended into, so recursive
// function type aliases remain representable.
func OccursCheckType(a *Arena, needle, haystack TypeId, skipFunctionInteriors bool) bool {
	needle = Follow(a, needle)
	found := false
	v := NewVisitor(a, VisitOptions{SkipFunctionInteriors: skipFunctionInteriors})
	v.OnType = func(id TypeId, _ TypeVariant) bool {
		if id == needle {
			found = true
			return false
		}
		return !found
	}
	v.OnPack = func(TypePackId, TypePackVariant) bool { return !found }
	v.VisitType(haystack)
	return found
}

// OccursCheckPack reports whether needle occurs anywhere in haystack's
// structure.
func OccursCheckPack(a *Arena, needle, haystack TypePackId, skipFunctionInteriors bool) bool {
	needle = FollowPack(a, needle)
	found := false
	v := NewVisitor(a, VisitOptions{SkipFunctionInteriors: skipFunctionInteriors})
	v.OnPack = func(id TypePackId, _ TypePackVariant) bool {
		if id == needle {
			found = true
			return false
		}
		return !found
	}
	v.OnType = func(TypeId, TypeVariant) bool { return !found }
	v.VisitPack(haystack)
	return found
}

// PromoteTypeLevels lowers the level of every free type/table/function
// variable reachable from root whose level is strictly deeper than
// minLevel, journaling each mutation. This runs when a free variable at
// an outer level is bound to a structural type that itself contains
// free variables at a deeper level — those deeper variables must not
// outlive the scope they are now reachable from.
func PromoteTypeLevels(log *TxnLog, a *Arena, minLevel TypeLevel, root TypeId) {
	v := NewVisitor(a, VisitOptions{})
	v.OnType = func(id TypeId, variant TypeVariant) bool {
		switch t := variant.(type) {
		case Free:
			if minLevel.SubsumesStrict(t.Level) {
				log.Log(id)
				t.Level = minLevel
				a.SetVariant(id, t)
			}
		case Function:
			// Functions don't carry a level of their own in this data
			// model; level lives on their free constituents, which the
			// traversal will still reach through Args/Ret.
			_ = t
		case Table:
			if t.State == TableFree && minLevel.SubsumesStrict(t.Level) {
				log.Log(id)
				t.Level = minLevel
				a.SetVariant(id, t)
			}
		}
		return true
	}
	v.OnPack = func(id TypePackId, variant TypePackVariant) bool {
		if fp, ok := variant.(FreePack); ok {
			if minLevel.SubsumesStrict(fp.Level) {
				log.LogPack(id)
				a.SetPackVariant(id, FreePack{Level: minLevel})
			}
		}
		return true
	}
	v.VisitType(root)
}

// PromoteTypePackLevels is the pack-rooted counterpart of
// PromoteTypeLevels.
func PromoteTypePackLevels(log *TxnLog, a *Arena, minLevel TypeLevel, root TypePackId) {
	v := NewVisitor(a, VisitOptions{})
	v.OnType = func(id TypeId, variant TypeVariant) bool {
		switch t := variant.(type) {
		case Free:
			if minLevel.SubsumesStrict(t.Level) {
				log.Log(id)
				t.Level = minLevel
				a.SetVariant(id, t)
			}
		case Table:
			if t.State == TableFree && minLevel.SubsumesStrict(t.Level) {
				log.Log(id)
				t.Level = minLevel
				a.SetVariant(id, t)
			}
		}
		return true
	}
	v.OnPack = func(id TypePackId, variant TypePackVariant) bool {
		if fp, ok := variant.(FreePack); ok {
			if minLevel.SubsumesStrict(fp.Level) {
				log.LogPack(id)
				a.SetPackVariant(id, FreePack{Level: minLevel})
			}
		}
		return true
	}
	v.VisitPack(root)
}

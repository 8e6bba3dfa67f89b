package typesystem

// unifyTableDispatch is the Table-superordinate half of the structural
// dispatch table (spec.md §4.5). sub must be a table, or a metatable
// whose properties are looked up through its __index chain; anything
// else is a plain mismatch (a table cannot absorb a non-table shape).
func (u *Unifier) unifyTableDispatch(super TypeId, sv Table, sub TypeId, subV TypeVariant) {
	if _, ok := subV.(Metatable); ok {
		u.unifyTableAgainstMetatableSub(super, sv, sub)
		return
	}
	subT, ok := subV.(Table)
	if !ok {
		u.mismatch(super, sub, "")
		return
	}
	if !u.tunables().TableSubtypingVariance2 {
		u.unifyTablesLegacy(super, sv, sub, subT)
		return
	}
	u.unifyTablesNew(super, sub)
}

// unifyTableAgainstMetatableSub lets a table-shaped super be satisfied
// by a Metatable sub whose own table lacks a property, by falling
// through to the metatable's __index chain (spec.md §6's
// findTablePropertyRespectingMeta collaborator).
func (u *Unifier) unifyTableAgainstMetatableSub(super TypeId, sv Table, sub TypeId) {
	for _, name := range sortedPropNames(sv.Props) {
		lp := sv.Props[name]
		if rp, ok := findTablePropertyRespectingMeta(u.Arena, sub, name); ok {
			u.unifyPropertyInvariant(super, sub, name, lp, rp)
			continue
		}
		if isOptional(u.Arena, lp.Ty) {
			continue
		}
		if _, isAny := u.Arena.Variant(Follow(u.Arena, lp.Ty)).(AnyType); isAny {
			continue
		}
		u.reportf(&TypeError{Code: ErrMissingProperties, Super: super, Sub: sub, Props: []string{name}, PropsKind: PropMissing})
	}
}

// unifyTablesNew drives the variance-aware table pass to a fixed point,
// restarting (spec.md §4.5, "if an inner unification caused one of the
// tables to acquire boundTo, restart") whenever a nested unification
// causes super or sub to resolve to a different handle than it did on
// entry to this iteration.
func (u *Unifier) unifyTablesNew(super, sub TypeId) {
	limit := u.tunables().PackLoopLimit
	if limit <= 0 {
		limit = 100
	}
	for iter := 0; iter < limit; iter++ {
		super = Follow(u.Arena, super)
		sub = Follow(u.Arena, sub)

		left, lok := u.Arena.Variant(super).(Table)
		right, rok := u.Arena.Variant(sub).(Table)
		if !lok || !rok {
			u.TryUnify(super, sub, false, false)
			return
		}

		if u.unifyTablesOnce(super, sub) {
			continue
		}

		left, _ = u.Arena.Variant(Follow(u.Arena, super)).(Table)
		right, _ = u.Arena.Variant(Follow(u.Arena, sub)).(Table)
		u.finalizeTableBind(Follow(u.Arena, super), left, Follow(u.Arena, sub), right)
		return
	}
	u.reportf(&TypeError{Code: ErrUnificationTooComplex})
}

// unifyTablesOnce runs one pass of the early screen plus the main
// property/indexer comparison, reporting whether the caller must
// restart (because super or sub got rebound to a different handle
// mid-pass).
func (u *Unifier) unifyTablesOnce(super, sub TypeId) (restart bool) {
	left := u.Arena.Variant(super).(Table)
	right := u.Arena.Variant(sub).(Table)

	if u.tunables().TableUnificationEarlyTest {
		if u.earlyScreen(super, left, sub, right) {
			return false
		}
	}

	u.unifyPropsOntoRight(super, sub)
	// re-fetch: unifyPropsOntoRight may have grown/rebound sub.
	if Follow(u.Arena, super) != super || Follow(u.Arena, sub) != sub {
		return true
	}
	right = u.Arena.Variant(sub).(Table)

	u.unifyPropsOntoLeft(super, sub)
	if Follow(u.Arena, super) != super || Follow(u.Arena, sub) != sub {
		return true
	}
	left = u.Arena.Variant(super).(Table)
	right = u.Arena.Variant(sub).(Table)

	u.unifyIndexers(super, left, sub, right)
	if Follow(u.Arena, super) != super || Follow(u.Arena, sub) != sub {
		return true
	}
	return false
}

// earlyScreen implements spec.md §4.5's fast pre-check: when it can
// already tell the shapes are incompatible without doing any property
// unification, it reports the aggregate mismatch and tells the caller
// to skip the (redundant) main pass.
func (u *Unifier) earlyScreen(super TypeId, left Table, sub TypeId, right Table) (reported bool) {
	if right.Indexer == nil && right.State != TableFree {
		var missing []string
		for _, name := range sortedPropNames(left.Props) {
			if _, ok := right.Props[name]; ok {
				continue
			}
			p := left.Props[name]
			if isOptional(u.Arena, p.Ty) {
				continue
			}
			if _, isAny := u.Arena.Variant(Follow(u.Arena, p.Ty)).(AnyType); isAny {
				continue
			}
			missing = append(missing, name)
		}
		if len(missing) > 0 {
			u.reportf(&TypeError{Code: ErrMissingProperties, Super: super, Sub: sub, Props: missing, PropsKind: PropMissing})
			return true
		}
	}

	if u.Variance == Invariant && left.State != TableUnsealed && left.State != TableFree && left.Indexer == nil {
		var extra []string
		for _, name := range sortedPropNames(right.Props) {
			if _, ok := left.Props[name]; !ok {
				extra = append(extra, name)
			}
		}
		if len(extra) > 0 {
			u.reportf(&TypeError{Code: ErrMissingProperties, Super: super, Sub: sub, Props: extra, PropsKind: PropExtra})
			return true
		}
	}
	return false
}

// unifyPropsOntoRight walks every property of super (left), matching it
// against sub (right): a shared name unifies invariantly, a right-side
// string indexer absorbs it, an optional/Any left property is silently
// accepted if absent, a free right table grows to include it, and
// anything else is a missing property.
func (u *Unifier) unifyPropsOntoRight(super, sub TypeId) {
	left := u.Arena.Variant(super).(Table)
	for _, name := range sortedPropNames(left.Props) {
		lp := left.Props[name]
		right := u.Arena.Variant(Follow(u.Arena, sub)).(Table)
		if rp, ok := right.Props[name]; ok {
			u.unifyPropertyInvariant(super, sub, name, lp, rp)
			continue
		}
		if right.Indexer != nil && isString(u.Arena, right.Indexer.KeyTy) {
			u.unifyPropertyInvariant(super, sub, name, lp, Property{Ty: right.Indexer.ValTy})
			continue
		}
		if isOptional(u.Arena, lp.Ty) {
			continue
		}
		if _, isAny := u.Arena.Variant(Follow(u.Arena, lp.Ty)).(AnyType); isAny {
			continue
		}
		if right.State == TableFree {
			u.growTableProp(sub, name, lp)
			continue
		}
		u.reportf(&TypeError{Code: ErrMissingProperties, Super: super, Sub: sub, Props: []string{name}, PropsKind: PropMissing})
	}
}

// unifyPropsOntoLeft is the symmetric pass for properties present only
// on sub (right).
func (u *Unifier) unifyPropsOntoLeft(super, sub TypeId) {
	right := u.Arena.Variant(sub).(Table)
	for _, name := range sortedPropNames(right.Props) {
		left := u.Arena.Variant(Follow(u.Arena, super)).(Table)
		if _, ok := left.Props[name]; ok {
			continue // already handled by unifyPropsOntoRight
		}
		rp := right.Props[name]
		if left.Indexer != nil && isString(u.Arena, left.Indexer.KeyTy) {
			u.unifyPropertyInvariant(super, sub, name, Property{Ty: left.Indexer.ValTy}, rp)
			continue
		}
		switch left.State {
		case TableUnsealed:
			u.growTableProp(super, name, Property{Ty: u.deepOptionalize(rp.Ty), DefinitionLocation: rp.DefinitionLocation})
		case TableFree:
			u.growTableProp(super, name, rp)
		default:
			if u.Variance == Invariant {
				u.reportf(&TypeError{Code: ErrMissingProperties, Super: super, Sub: sub, Props: []string{name}, PropsKind: PropExtra})
			}
			// Covariant: extra properties on the sub side are ignored.
		}
	}
}

func (u *Unifier) unifyPropertyInvariant(super, sub TypeId, name string, lp, rp Property) {
	c := u.child(Invariant)
	c.TryUnify(lp.Ty, rp.Ty, false, false)
	if len(c.Errors) != 0 {
		u.discard(c)
		u.mismatchCause(super, sub, "property \""+name+"\" is incompatible", firstErr(c.Errors))
		return
	}
	u.adopt(c)
}

// growTableProp copy-on-writes id's Props map to add name, journaling
// the mutation. The Props map must never be mutated in place: a TxnLog
// snapshot holds the pre-mutation Table value, including its Props map
// reference, so replacing that reference (rather than mutating through
// it) is what keeps rollback correct.
func (u *Unifier) growTableProp(id TypeId, name string, p Property) {
	t := u.Arena.Variant(id).(Table)
	if _, ok := t.Props[name]; ok {
		return
	}
	newProps := make(map[string]Property, len(t.Props)+1)
	for k, v := range t.Props {
		newProps[k] = v
	}
	newProps[name] = p
	u.Log.Log(id)
	t.Props = newProps
	u.Arena.SetVariant(id, t)
}

// deepOptionalize wraps ty in a nil-union if it is not already
// optional. spec.md §4.5 calls for every nested structural type to
// gain a nil union when growing an Unsealed table; this implementation
// optionalizes only the immediate property type; a driver that needs
// unions inside a grown property's own nested tables to also read as
// optional should optionalize its inputs before construction, since
// deep-cloning an arbitrary subgraph here would itself need its own
// occurs/level bookkeeping.
func (u *Unifier) deepOptionalize(ty TypeId) TypeId {
	if isOptional(u.Arena, ty) || isNil(u.Arena, ty) {
		return ty
	}
	return u.Arena.AddType(Union{Options: []TypeId{ty, u.Arena.NilType}})
}

// unifyIndexers implements spec.md §4.5's indexer reconciliation.
func (u *Unifier) unifyIndexers(super TypeId, left Table, sub TypeId, right Table) {
	switch {
	case left.Indexer != nil && right.Indexer != nil:
		ic := u.child(Invariant)
		ic.TryUnify(left.Indexer.KeyTy, right.Indexer.KeyTy, false, false)
		ic.TryUnify(left.Indexer.ValTy, right.Indexer.ValTy, false, false)
		if len(ic.Errors) != 0 {
			u.discard(ic)
			u.mismatchCause(super, sub, "indexers are incompatible", firstErr(ic.Errors))
			return
		}
		u.adopt(ic)
	case left.Indexer != nil && right.Indexer == nil:
		u.adoptIndexerOrError(super, sub, left.Indexer, right.State)
	case left.Indexer == nil && right.Indexer != nil:
		u.adoptIndexerOrError(sub, super, right.Indexer, left.State)
	}
}

func (u *Unifier) adoptIndexerOrError(withIndexerID, withoutIndexerID TypeId, idx *Indexer, otherState TableState) {
	if otherState == TableUnsealed || otherState == TableFree {
		t := u.Arena.Variant(withoutIndexerID).(Table)
		u.Log.Log(withoutIndexerID)
		t.Indexer = &Indexer{KeyTy: idx.KeyTy, ValTy: idx.ValTy}
		u.Arena.SetVariant(withoutIndexerID, t)
		return
	}
	if u.Variance == Invariant {
		u.reportf(&TypeError{
			Code:     ErrCannotExtendTable,
			OnType:   withoutIndexerID,
			PropName: "[indexer]",
			Msg:      "table is sealed or generic and cannot grow an indexer",
		})
	}
}

// finalizeTableBind implements spec.md §4.5's closing rule: a Free
// left binds wholesale to right, else a Free right binds to left.
func (u *Unifier) finalizeTableBind(super TypeId, left Table, sub TypeId, right Table) {
	if left.State == TableFree {
		u.Log.Log(super)
		left.BoundTo = &sub
		u.Arena.SetVariant(super, left)
		return
	}
	if right.State == TableFree {
		u.Log.Log(sub)
		right.BoundTo = &super
		u.Arena.SetVariant(sub, right)
	}
}

// unifyTablesLegacy is the pre-variance-rewrite sealed-table deep
// comparison, preserved behind Tunables.TableSubtypingVariance2 exactly
// as the original migration flag gated it: every property must exist
// on both sides and unify invariantly, and indexers must align. It
// reaches the "unsealed tables are not working yet" gap named in
// spec.md's open questions — sub/super combinations involving a
// TableUnsealed side fall through to a bare mismatch here rather than
// the growth behavior unifyTablesNew implements.
func (u *Unifier) unifyTablesLegacy(super TypeId, left Table, sub TypeId, right Table) {
	for _, name := range sortedPropNames(left.Props) {
		rp, ok := right.Props[name]
		if !ok {
			u.reportf(&TypeError{Code: ErrMissingProperties, Super: super, Sub: sub, Props: []string{name}, PropsKind: PropMissing})
			continue
		}
		u.unifyPropertyInvariant(super, sub, name, left.Props[name], rp)
	}
	for _, name := range sortedPropNames(right.Props) {
		if _, ok := left.Props[name]; !ok {
			u.reportf(&TypeError{Code: ErrMissingProperties, Super: super, Sub: sub, Props: []string{name}, PropsKind: PropExtra})
		}
	}
	if left.Indexer != nil || right.Indexer != nil {
		if left.Indexer == nil || right.Indexer == nil {
			u.mismatch(super, sub, "indexer is only present on one side")
			return
		}
		ic := u.child(Invariant)
		ic.TryUnify(left.Indexer.KeyTy, right.Indexer.KeyTy, false, false)
		ic.TryUnify(left.Indexer.ValTy, right.Indexer.ValTy, false, false)
		if len(ic.Errors) != 0 {
			u.discard(ic)
			u.mismatchCause(super, sub, "indexers are incompatible", firstErr(ic.Errors))
			return
		}
		u.adopt(ic)
	}
}

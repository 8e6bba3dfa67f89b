package typesystem

// unifyFunctions implements spec.md §4.4's Function ∧ Function rule.
func (u *Unifier) unifyFunctions(super TypeId, sv Function, sub TypeId, subv Function) {
	u.propagateDefinitionSite(super, sv, sub, subv)

	genericCount := len(sv.Generics)
	if len(subv.Generics) < genericCount {
		genericCount = len(subv.Generics)
	}
	packCount := len(sv.GenericPacks)
	if len(subv.GenericPacks) < packCount {
		packCount = len(subv.GenericPacks)
	}
	if len(sv.Generics) != len(subv.Generics) || len(sv.GenericPacks) != len(subv.GenericPacks) {
		u.reportf(&TypeError{
			Code: ErrTypeMismatch, Wanted: super, Given: sub,
			Reason: "different number of generic type parameters",
		})
	}

	for i := 0; i < genericCount; i++ {
		u.Log.pushSeen(sv.Generics[i], subv.Generics[i])
	}
	defer func() {
		for i := 0; i < genericCount; i++ {
			u.Log.popSeen(sv.Generics[i], subv.Generics[i])
		}
	}()

	argsChild := u.childSameVariance()
	argsChild.TryUnifyPacks(subv.Args, sv.Args, true, CtxArg)
	var argErr *TypeError
	if len(argsChild.Errors) != 0 {
		argErr = firstErr(argsChild.Errors)
		u.discard(argsChild)
	} else {
		u.adopt(argsChild)
	}

	retChild := u.childSameVariance()
	retChild.TryUnifyPacks(sv.Ret, subv.Ret, true, CtxResult)
	var retErr *TypeError
	if len(retChild.Errors) != 0 {
		retErr = firstErr(retChild.Errors)
		if u.tunables().ExtendedFunctionMismatchError && finite(u.Arena, sv.Ret) && size(u.Arena, sv.Ret) == 1 {
			retErr = &TypeError{
				Code: ErrTypeMismatch, Wanted: super, Given: sub,
				Reason: "Return type is not compatible", Cause: retErr,
			}
		}
		u.discard(retChild)
	} else {
		u.adopt(retChild)
	}

	if argErr == nil && retErr == nil {
		return
	}
	cause := argErr
	if cause == nil {
		cause = retErr
	}
	u.mismatchCause(super, sub, "", cause)
}

// propagateDefinitionSite copies whichever side's DefinitionSite is set
// onto the other side when it is nil, mirroring the original's
// lf->definition/rf->definition swap: two function types being unified
// narrow down to one underlying declaration, so whichever side actually
// names a source location shouldn't lose it to the side dispatch
// happened to match against.
func (u *Unifier) propagateDefinitionSite(super TypeId, sv Function, sub TypeId, subv Function) {
	if sv.DefinitionSite == nil && subv.DefinitionSite != nil {
		sv.DefinitionSite = subv.DefinitionSite
		u.Log.Log(super)
		u.Arena.SetVariant(super, sv)
		return
	}
	if subv.DefinitionSite == nil && sv.DefinitionSite != nil {
		subv.DefinitionSite = sv.DefinitionSite
		u.Log.Log(sub)
		u.Arena.SetVariant(sub, subv)
	}
}

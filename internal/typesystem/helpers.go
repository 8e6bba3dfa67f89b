package typesystem

// isNil reports whether t (after Follow) is the nil primitive.
func isNil(a *Arena, t TypeId) bool {
	t = Follow(a, t)
	p, ok := a.Variant(t).(Primitive)
	return ok && p.Kind == PrimNil
}

// isString reports whether t (after Follow) is the string primitive or
// a string singleton.
func isString(a *Arena, t TypeId) bool {
	t = Follow(a, t)
	if p, ok := a.Variant(t).(Primitive); ok && p.Kind == PrimString {
		return true
	}
	if s, ok := a.Variant(t).(Singleton); ok && s.IsString {
		return true
	}
	return false
}

// isOptional reports whether t is a Union one of whose options is nil.
func isOptional(a *Arena, t TypeId) bool {
	t = Follow(a, t)
	u, ok := a.Variant(t).(Union)
	if !ok {
		return false
	}
	for _, opt := range u.Options {
		if isNil(a, opt) {
			return true
		}
	}
	return false
}

// isSubclass reports whether sub is super or a descendant of super along
// the parent chain.
func isSubclass(a *Arena, super, sub TypeId) bool {
	super = Follow(a, super)
	cur := Follow(a, sub)
	for {
		if cur == super {
			return true
		}
		c, ok := a.Variant(cur).(Class)
		if !ok || c.Parent == nil {
			return false
		}
		cur = Follow(a, *c.Parent)
	}
}

// lookupClassProp finds a property by name anywhere along cls's parent
// chain.
func lookupClassProp(a *Arena, cls TypeId, name string) (Property, bool) {
	cur := Follow(a, cls)
	for {
		c, ok := a.Variant(cur).(Class)
		if !ok {
			return Property{}, false
		}
		if p, ok := c.Props[name]; ok {
			return p, true
		}
		if c.Parent == nil {
			return Property{}, false
		}
		cur = Follow(a, *c.Parent)
	}
}

// findTablePropertyRespectingMeta looks up name on a table, falling
// through to its metatable's __index chain when the table itself lacks
// the property.
func findTablePropertyRespectingMeta(a *Arena, lhsType TypeId, name string) (Property, bool) {
	t := Follow(a, lhsType)
	switch v := a.Variant(t).(type) {
	case Table:
		if p, ok := v.Props[name]; ok {
			return p, true
		}
		return Property{}, false
	case Metatable:
		if tv, ok := a.Variant(Follow(a, v.Table)).(Table); ok {
			if p, ok := tv.Props[name]; ok {
				return p, true
			}
		}
		if idx, ok := findTablePropertyRespectingMeta(a, v.Metatable, "__index"); ok {
			return findTablePropertyRespectingMeta(a, idx.Ty, name)
		}
		return Property{}, false
	case Class:
		return lookupClassProp(a, t, name)
	default:
		return Property{}, false
	}
}

// size returns the number of concrete head elements in a pack, without
// counting a variadic or free tail.
func size(a *Arena, pack TypePackId) int {
	n := 0
	id := FollowPack(a, pack)
	for {
		v, ok := a.PackVariant(id).(TypePackNode)
		if !ok {
			return n
		}
		n += len(v.Head)
		if v.Tail == nil {
			return n
		}
		id = FollowPack(a, *v.Tail)
	}
}

// finite reports whether pack has no free, generic or variadic tail —
// i.e. its length is exactly determined.
func finite(a *Arena, pack TypePackId) bool {
	id := FollowPack(a, pack)
	switch v := a.PackVariant(id).(type) {
	case TypePackNode:
		if v.Tail == nil {
			return true
		}
		return finite(a, *v.Tail)
	default:
		_ = v
		return false
	}
}

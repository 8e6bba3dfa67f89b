package typesystem

// typeSlot is the mutable cell a TypeId indexes into. Its variant field
// is what the unifier swaps in place (Free -> Bound, Free table growing
// a BoundTo, etc.); the slice index — the TypeId itself — never changes.
type typeSlot struct {
	variant TypeVariant
}

type packSlot struct {
	variant TypePackVariant
}

// Arena owns every type and pack node allocated during a checking
// session. It never frees a node; the unifier only mutates the variant
// stored at a handle.
type Arena struct {
	types []typeSlot
	packs []packSlot

	// Singleton handles shared across the session, created once by
	// NewArena so that identity-based fast paths (e.g. `sub == super`)
	// work for the built-in leaf types.
	NilType               TypeId
	AnyType                TypeId
	StringType            TypeId
	BooleanType           TypeId
	NumberType            TypeId
	ThreadType            TypeId
	ErrorRecoveryType     TypeId
	ErrorRecoveryTypePack TypePackId
}

// NewArena creates an empty arena and pre-populates the small set of
// singleton handles every session needs (spec's "SingletonTypes"
// collaborator).
func NewArena() *Arena {
	a := &Arena{}
	a.NilType = a.AddType(Primitive{Kind: PrimNil})
	a.BooleanType = a.AddType(Primitive{Kind: PrimBoolean})
	a.NumberType = a.AddType(Primitive{Kind: PrimNumber})
	a.StringType = a.AddType(Primitive{Kind: PrimString})
	a.ThreadType = a.AddType(Primitive{Kind: PrimThread})
	a.AnyType = a.AddType(AnyType{})
	a.ErrorRecoveryType = a.AddType(ErrorType{})
	a.ErrorRecoveryTypePack = a.AddTypePack(ErrorPack{})
	return a
}

// AddType allocates a new node with the given variant and returns its
// handle.
func (a *Arena) AddType(v TypeVariant) TypeId {
	a.types = append(a.types, typeSlot{variant: v})
	return TypeId(len(a.types) - 1)
}

// AddTypePack allocates a new pack node.
func (a *Arena) AddTypePack(v TypePackVariant) TypePackId {
	a.packs = append(a.packs, packSlot{variant: v})
	return TypePackId(len(a.packs) - 1)
}

// FreshType allocates a Free type variable at the given level.
func (a *Arena) FreshType(level TypeLevel) TypeId {
	return a.AddType(Free{Level: level})
}

// FreshTypePack allocates a FreePack at the given level.
func (a *Arena) FreshTypePack(level TypeLevel) TypePackId {
	return a.AddTypePack(FreePack{Level: level})
}

// Variant returns the raw (not-followed) variant stored at id.
func (a *Arena) Variant(id TypeId) TypeVariant {
	return a.types[id].variant
}

// PackVariant returns the raw (not-followed) variant stored at id.
func (a *Arena) PackVariant(id TypePackId) TypePackVariant {
	return a.packs[id].variant
}

// SetVariant overwrites the variant stored at id. Callers must have
// already snapshotted the prior variant into a TxnLog.
func (a *Arena) SetVariant(id TypeId, v TypeVariant) {
	a.types[id].variant = v
}

// SetPackVariant overwrites the variant stored at id.
func (a *Arena) SetPackVariant(id TypePackId, v TypePackVariant) {
	a.packs[id].variant = v
}

package typesystem

// TypeId is an opaque handle to a node in the type arena. Handle identity
// is preserved across unification even as the pointed-to variant changes
// (notably from Free to Bound) — callers hold onto a TypeId, never a
// pointer to the variant itself.
type TypeId int

// TypePackId is an opaque handle to a type-pack node, representing an
// ordered sequence of types with an optional tail.
type TypePackId int

// TypeVariant is the tagged-sum payload of a type node. Exactly one
// concrete type implements it for any given node at any given time; a
// node's variant is swapped in place by the unifier (e.g. Free -> Bound),
// never replaced by allocating a new TypeId.
type TypeVariant interface {
	typeVariant()
}

// TypePackVariant is the pack analogue of TypeVariant.
type TypePackVariant interface {
	typePackVariant()
}

// Free is a type variable that has not yet been determined; it may be
// bound by unification to any type whose level it subsumes.
type Free struct {
	Level TypeLevel
}

// Bound is an indirection to another handle. Follow must be used to
// reach the canonical representative; a Bound node is never seen by
// structural dispatch.
type Bound struct {
	To TypeId
}

// Generic is universally quantified at Level; it is never mutated by
// unification.
type Generic struct {
	Level TypeLevel
}

// ErrorType arose from an earlier error. It unifies with anything
// silently, so that a single mistake does not cascade into a wall of
// unrelated diagnostics.
type ErrorType struct{}

// AnyType is the top type. It absorbs anything and propagates into any
// free variable it is unified against.
type AnyType struct{}

// PrimitiveKind enumerates the built-in primitive type kinds.
type PrimitiveKind int

const (
	PrimNil PrimitiveKind = iota
	PrimBoolean
	PrimNumber
	PrimString
	PrimThread
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimNil:
		return "nil"
	case PrimBoolean:
		return "boolean"
	case PrimNumber:
		return "number"
	case PrimString:
		return "string"
	case PrimThread:
		return "thread"
	default:
		return "<unknown primitive>"
	}
}

// Primitive is a built-in scalar type.
type Primitive struct {
	Kind PrimitiveKind
}

// Singleton is a type inhabited by exactly one literal value: either a
// specific boolean or a specific string.
type Singleton struct {
	IsString bool
	BoolVal  bool
	StrVal   string
}

func (s Singleton) String() string {
	if s.IsString {
		return "\"" + s.StrVal + "\""
	}
	if s.BoolVal {
		return "true"
	}
	return "false"
}

// Location is a minimal source position, sufficient for attributing a
// definition site to a function or property without depending on the
// driver's own AST/position types.
type Location struct {
	Line   int
	Column int
}

// Property is a table or class member: its type, and optionally where
// it was declared.
type Property struct {
	Ty                 TypeId
	DefinitionLocation *Location
}

// Function is a function type: generics, generic packs, argument pack
// and return pack.
type Function struct {
	Generics       []TypeId
	GenericPacks   []TypePackId
	Args           TypePackId
	Ret            TypePackId
	DefinitionSite *Location
}

// TableState is the property-set lifecycle marker of a table type.
type TableState int

const (
	// TableFree tables have unknown shape; both growable and bindable to
	// another type entirely.
	TableFree TableState = iota
	// TableUnsealed tables have known shape so far but may grow.
	TableUnsealed
	// TableSealed tables have a closed property set.
	TableSealed
	// TableGeneric tables are parametric and never mutated.
	TableGeneric
)

func (s TableState) String() string {
	switch s {
	case TableFree:
		return "free"
	case TableUnsealed:
		return "unsealed"
	case TableSealed:
		return "sealed"
	case TableGeneric:
		return "generic"
	default:
		return "<unknown table state>"
	}
}

// Indexer describes a table's `[K]: V` entry.
type Indexer struct {
	KeyTy TypeId
	ValTy TypeId
}

// Table is a structural table type.
type Table struct {
	Props   map[string]Property
	Indexer *Indexer
	State   TableState
	// BoundTo is set when a Free table has been unified with another
	// table wholesale; Follow chases this field the same way it chases
	// Bound for non-table nodes. nil means unbound.
	BoundTo       *TypeId
	Level         TypeLevel
	Name          string
	SyntheticName string
}

// Metatable pairs a table with its metatable.
type Metatable struct {
	Table     TypeId
	Metatable TypeId
}

// Class is a nominal type with an optional parent. Classes have no free
// type variables and are never mutated.
type Class struct {
	Name   string
	Parent *TypeId
	Props  map[string]Property
}

// Union is a type that admits any of its Options.
type Union struct {
	Options []TypeId
}

// Intersection is a type that must satisfy every one of its Parts.
type Intersection struct {
	Parts []TypeId
}

func (Free) typeVariant()         {}
func (Bound) typeVariant()        {}
func (Generic) typeVariant()      {}
func (ErrorType) typeVariant()    {}
func (AnyType) typeVariant()      {}
func (Primitive) typeVariant()    {}
func (Singleton) typeVariant()    {}
func (Function) typeVariant()     {}
func (Table) typeVariant()        {}
func (Metatable) typeVariant()    {}
func (Class) typeVariant()        {}
func (Union) typeVariant()        {}
func (Intersection) typeVariant() {}

// FreePack is an unbound pack variable.
type FreePack struct {
	Level TypeLevel
}

// BoundPack is an indirection to another pack handle.
type BoundPack struct {
	To TypePackId
}

// GenericPack is a universally quantified pack; never mutated.
type GenericPack struct{}

// ErrorPack arose from an earlier error; unifies with anything.
type ErrorPack struct{}

// TypePackNode is an ordered list of types plus an optional tail (itself
// a pack), the rope-like representation packs use so that a tail can be
// grown without reallocating the head.
type TypePackNode struct {
	Head []TypeId
	Tail *TypePackId
}

// VariadicPack is a pack tail representing zero or more homogeneous Ty
// elements.
type VariadicPack struct {
	Ty TypeId
}

func (FreePack) typePackVariant()     {}
func (BoundPack) typePackVariant()    {}
func (GenericPack) typePackVariant()  {}
func (ErrorPack) typePackVariant()    {}
func (TypePackNode) typePackVariant() {}
func (VariadicPack) typePackVariant() {}

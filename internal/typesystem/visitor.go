package typesystem

import (
	"sort"

	"github.com/samber/lo"
)

// VisitOptions tunes how a Visitor descends into composite types.
type VisitOptions struct {
	// SkipFunctionInteriors, when true, does not descend into a
	// function's argument/return packs. OccursCheck uses this so that
	// recursive function type aliases (type F = (F) -> number) remain
	// representable — see Tunables.OccursCheckOkWithRecursiveFunctions.
	SkipFunctionInteriors bool
}

// Visitor performs a generic, cycle-safe pre-order traversal of a type
// or pack graph. OnType/OnPack are called once per distinct handle
// (after Follow); returning false from either stops descent into that
// node's children without stopping the overall traversal.
type Visitor struct {
	Arena *Arena
	Opts  VisitOptions
	OnType func(TypeId, TypeVariant) bool
	OnPack func(TypePackId, TypePackVariant) bool

	seenTypes map[TypeId]bool
	seenPacks map[TypePackId]bool
}

// NewVisitor creates a Visitor with a fresh visited-set.
func NewVisitor(a *Arena, opts VisitOptions) *Visitor {
	return &Visitor{
		Arena:     a,
		Opts:      opts,
		seenTypes: map[TypeId]bool{},
		seenPacks: map[TypePackId]bool{},
	}
}

// sortedPropNames returns a table's property names in deterministic
// order, so traversal order (and therefore log/error order) does not
// depend on Go's randomized map iteration.
func sortedPropNames(props map[string]Property) []string {
	names := lo.Uniq(lo.Keys(props))
	sort.Strings(names)
	return names
}

// VisitType visits id and, if OnType allows it, its structural children.
func (v *Visitor) VisitType(id TypeId) {
	id = Follow(v.Arena, id)
	if v.seenTypes[id] {
		return
	}
	v.seenTypes[id] = true

	variant := v.Arena.Variant(id)
	descend := true
	if v.OnType != nil {
		descend = v.OnType(id, variant)
	}
	if !descend {
		return
	}

	switch t := variant.(type) {
	case Function:
		if !v.Opts.SkipFunctionInteriors {
			for _, g := range t.Generics {
				v.VisitType(g)
			}
			v.VisitPack(t.Args)
			v.VisitPack(t.Ret)
		}
	case Table:
		for _, name := range sortedPropNames(t.Props) {
			v.VisitType(t.Props[name].Ty)
		}
		if t.Indexer != nil {
			v.VisitType(t.Indexer.KeyTy)
			v.VisitType(t.Indexer.ValTy)
		}
	case Metatable:
		v.VisitType(t.Table)
		v.VisitType(t.Metatable)
	case Union:
		for _, o := range t.Options {
			v.VisitType(o)
		}
	case Intersection:
		for _, p := range t.Parts {
			v.VisitType(p)
		}
	}
}

// VisitPack visits id and, if OnPack allows it, its structural children.
func (v *Visitor) VisitPack(id TypePackId) {
	id = FollowPack(v.Arena, id)
	if v.seenPacks[id] {
		return
	}
	v.seenPacks[id] = true

	variant := v.Arena.PackVariant(id)
	descend := true
	if v.OnPack != nil {
		descend = v.OnPack(id, variant)
	}
	if !descend {
		return
	}

	switch p := variant.(type) {
	case TypePackNode:
		for _, h := range p.Head {
			v.VisitType(h)
		}
		if p.Tail != nil {
			v.VisitPack(*p.Tail)
		}
	case VariadicPack:
		v.VisitType(p.Ty)
	}
}

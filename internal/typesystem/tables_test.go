package typesystem

import (
	"testing"

	"github.com/bloxland20/luau/internal/config"
)

func TestSealedSubMissingRequiredPropertyErrors(t *testing.T) {
	a := NewArena()
	super := a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"foo": {Ty: a.NumberType}},
	})
	sub := a.AddType(Table{State: TableSealed, Props: map[string]Property{}})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(super, sub, false, false)

	if len(u.Errors) != 1 || u.Errors[0].Code != ErrMissingProperties {
		t.Fatalf("expected a single MissingProperties error, got %v", u.Errors)
	}
}

func TestSealedSubOptionalPropertyMayBeAbsent(t *testing.T) {
	a := NewArena()
	optional := a.AddType(Union{Options: []TypeId{a.NumberType, a.NilType}})
	super := a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"foo": {Ty: optional}},
	})
	sub := a.AddType(Table{State: TableSealed, Props: map[string]Property{}})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(super, sub, false, false)

	if len(u.Errors) != 0 {
		t.Errorf("expected an absent optional property not to error, got %v", u.Errors)
	}
}

func TestStringIndexerAbsorbsMissingProperty(t *testing.T) {
	a := NewArena()
	super := a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"foo": {Ty: a.NumberType}},
	})
	sub := a.AddType(Table{
		State:   TableSealed,
		Props:   map[string]Property{},
		Indexer: &Indexer{KeyTy: a.StringType, ValTy: a.NumberType},
	})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(super, sub, false, false)

	if len(u.Errors) != 0 {
		t.Errorf("expected a string indexer to absorb the missing property, got %v", u.Errors)
	}
}

func TestFreeTableGrowsToAcceptSuperProperty(t *testing.T) {
	a := NewArena()
	super := a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"foo": {Ty: a.NumberType}},
	})
	sub := a.AddType(Table{State: TableFree, Props: map[string]Property{}, Level: TypeLevel{0, 0}})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(super, sub, false, false)

	if len(u.Errors) != 0 {
		t.Fatalf("expected no errors growing a free table, got %v", u.Errors)
	}
	grown := a.Variant(Follow(a, sub)).(Table)
	if _, ok := grown.Props["foo"]; !ok {
		t.Errorf("expected sub to have grown a foo property")
	}
}

func TestUnsealedTableGrowsWithOptionalizedExtraProperty(t *testing.T) {
	a := NewArena()
	super := a.AddType(Table{State: TableUnsealed, Props: map[string]Property{}})
	sub := a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"bar": {Ty: a.NumberType}},
	})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(super, sub, false, false)

	if len(u.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", u.Errors)
	}
	grown := a.Variant(Follow(a, super)).(Table)
	prop, ok := grown.Props["bar"]
	if !ok {
		t.Fatalf("expected the unsealed table to have grown a bar property")
	}
	if !isOptional(a, prop.Ty) {
		t.Errorf("expected the grown property to be optionalized")
	}
}

func TestInvariantExtraPropertyOnSealedSubErrors(t *testing.T) {
	a := NewArena()
	super := a.AddType(Table{State: TableSealed, Props: map[string]Property{}})
	sub := a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"extra": {Ty: a.NumberType}},
	})

	u := newTestUnifier(a, Invariant)
	u.TryUnify(super, sub, false, false)

	if len(u.Errors) == 0 {
		t.Errorf("expected an extra property under Invariant to error")
	}
}

func TestCovariantExtraPropertyOnSealedSubIsIgnored(t *testing.T) {
	a := NewArena()
	super := a.AddType(Table{State: TableSealed, Props: map[string]Property{}})
	sub := a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"extra": {Ty: a.NumberType}},
	})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(super, sub, false, false)

	if len(u.Errors) != 0 {
		t.Errorf("expected an extra property under Covariant to be ignored, got %v", u.Errors)
	}
}

func TestFreeTableBindsWhollyToOtherSide(t *testing.T) {
	a := NewArena()
	super := a.AddType(Table{State: TableFree, Props: map[string]Property{}, Level: TypeLevel{0, 0}})
	sub := a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"x": {Ty: a.NumberType}},
	})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(super, sub, false, false)

	if len(u.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", u.Errors)
	}
	if Follow(a, super) != Follow(a, sub) {
		t.Errorf("expected the free super table to bind wholesale to sub")
	}
}

func TestLegacyTableUnificationRequiresExactPropertySets(t *testing.T) {
	a := NewArena()
	super := a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"x": {Ty: a.NumberType}},
	})
	sub := a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"x": {Ty: a.NumberType}, "y": {Ty: a.StringType}},
	})

	tunables := config.DefaultTunables()
	tunables.TableSubtypingVariance2 = false
	shared := NewSharedState(tunables)
	u := NewUnifier(a, Strict, Covariant, shared)
	u.TryUnify(super, sub, false, false)

	if len(u.Errors) == 0 {
		t.Errorf("expected the legacy path to reject an extra property on sub")
	}
}

func TestOneSidedIndexerAdoptedByUnsealedTable(t *testing.T) {
	a := NewArena()
	super := a.AddType(Table{
		State:   TableSealed,
		Props:   map[string]Property{},
		Indexer: &Indexer{KeyTy: a.StringType, ValTy: a.NumberType},
	})
	sub := a.AddType(Table{State: TableUnsealed, Props: map[string]Property{}})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(super, sub, false, false)

	if len(u.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", u.Errors)
	}
	grown := a.Variant(Follow(a, sub)).(Table)
	if grown.Indexer == nil {
		t.Errorf("expected sub to have adopted super's indexer")
	}
}

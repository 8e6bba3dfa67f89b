package typesystem

import (
	"testing"

	"github.com/kr/pretty"

	"github.com/bloxland20/luau/internal/config"
)

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newTestUnifier(a *Arena, variance Variance) *Unifier {
	shared := NewSharedState(config.DefaultTunables())
	return NewUnifier(a, Strict, variance, shared)
}

func TestIdentityUnificationProducesNoErrorsOrMutations(t *testing.T) {
	a := NewArena()
	table := a.AddType(Table{State: TableSealed, Props: map[string]Property{"x": {Ty: a.NumberType}}})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(table, table, false, false)

	if len(u.Errors) != 0 {
		t.Errorf("expected no errors unifying a type with itself, got %v", u.Errors)
	}
	if u.Log.Len() != 0 {
		t.Errorf("expected no log entries unifying a type with itself, got %d", u.Log.Len())
	}
}

func TestRollbackSoundnessRestoresGraph(t *testing.T) {
	a := NewArena()
	free := a.AddType(Free{Level: TypeLevel{0, 0}})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(a.NumberType, free, false, false)

	if _, ok := a.Variant(free).(Bound); !ok {
		t.Fatalf("expected free to be bound after unification")
	}

	u.Log.Rollback()

	if _, ok := a.Variant(free).(Free); !ok {
		t.Errorf("expected free restored to its original Free state, got %T", a.Variant(free))
	}
}

func TestOccursCheckFailurePlacesErrorRecoveryType(t *testing.T) {
	a := NewArena()
	free := a.AddType(Free{Level: TypeLevel{0, 0}})
	table := a.AddType(Table{
		State: TableUnsealed,
		Props: map[string]Property{"self": {Ty: free}},
	})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(table, free, false, false)

	found := false
	for _, e := range u.Errors {
		if e.Code == ErrOccursCheckFailed {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected OccursCheckFailed, got errors: %v", u.Errors)
	}
	if got, ok := a.Variant(free).(Bound); !ok || got.To != a.ErrorRecoveryType {
		t.Errorf("expected free bound to the error-recovery type, got %#v", a.Variant(free))
	}
}

func TestFreeTableGrowthMerges(t *testing.T) {
	a := NewArena()
	f := a.AddType(Free{Level: TypeLevel{0, 0}})
	g := a.AddType(Free{Level: TypeLevel{0, 0}})
	left := a.AddType(Table{State: TableFree, Props: map[string]Property{"foo": {Ty: f}}, Level: TypeLevel{0, 0}})
	right := a.AddType(Table{State: TableFree, Props: map[string]Property{"bar": {Ty: g}}, Level: TypeLevel{0, 0}})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(left, right, false, false)

	if len(u.Errors) != 0 {
		t.Fatalf("expected no errors unifying two free tables, got %v", u.Errors)
	}

	leftFinal := u.Arena.Variant(left).(Table)
	rightFinal := u.Arena.Variant(right).(Table)

	wantNames := []string{"bar", "foo"}
	if gotNames := sortedPropNames(leftFinal.Props); !equalStrings(gotNames, wantNames) {
		t.Log("left table property names diverged from expected")
		pretty.Ldiff(t, wantNames, gotNames)
		t.Fail()
	}
	if gotNames := sortedPropNames(rightFinal.Props); !equalStrings(gotNames, wantNames) {
		t.Log("right table property names diverged from expected")
		pretty.Ldiff(t, wantNames, gotNames)
		t.Fail()
	}

	boundEitherWay := leftFinal.BoundTo != nil || rightFinal.BoundTo != nil
	if !boundEitherWay {
		t.Errorf("expected one free table to bind to the other")
	}
}

// buildTaggedUnion constructs {kind:"A", a:number} | {kind:"B", b:string}.
func buildTaggedUnion(a *Arena) (union TypeId, optA, optB TypeId) {
	tagA := a.AddType(Singleton{IsString: true, StrVal: "A"})
	tagB := a.AddType(Singleton{IsString: true, StrVal: "B"})
	optA = a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"kind": {Ty: tagA}, "a": {Ty: a.NumberType}},
	})
	optB = a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"kind": {Ty: tagB}, "b": {Ty: a.StringType}},
	})
	union = a.AddType(Union{Options: []TypeId{optA, optB}})
	return union, optA, optB
}

func TestUnionHeuristicTriesMatchingTagFirst(t *testing.T) {
	a := NewArena()
	union, _, _ := buildTaggedUnion(a)

	tagB := a.AddType(Singleton{IsString: true, StrVal: "B"})
	sub := a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"kind": {Ty: tagB}, "b": {Ty: a.StringType}},
	})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(union, sub, false, false)

	if len(u.Errors) != 0 {
		t.Errorf("expected the tagged union to accept a matching-tag table, got %v", u.Errors)
	}
}

func TestEndToEndPrimitiveEquality(t *testing.T) {
	a := NewArena()
	u := newTestUnifier(a, Covariant)
	u.TryUnify(a.NumberType, a.NumberType, false, false)
	if len(u.Errors) != 0 {
		t.Errorf("unify(number, number) should not error, got %v", u.Errors)
	}
}

func TestEndToEndFunctionArgsAndReturnBind(t *testing.T) {
	a := NewArena()
	free1 := a.AddType(Free{Level: TypeLevel{0, 0}})
	free2 := a.AddType(Free{Level: TypeLevel{0, 0}})
	free3 := a.AddType(Free{Level: TypeLevel{0, 0}})

	superArgs := a.AddTypePack(TypePackNode{Head: []TypeId{free1}})
	superRet := a.AddTypePack(TypePackNode{Head: []TypeId{a.NumberType}})
	super := a.AddType(Function{Args: superArgs, Ret: superRet})

	subArgs := a.AddTypePack(TypePackNode{Head: []TypeId{free2}})
	subRet := a.AddTypePack(TypePackNode{Head: []TypeId{free3}})
	sub := a.AddType(Function{Args: subArgs, Ret: subRet})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(super, sub, false, false)

	if len(u.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", u.Errors)
	}
	if Follow(a, free2) != Follow(a, free1) {
		t.Errorf("expected free2 bound to free1 (contravariant arg unification)")
	}
	if Follow(a, free3) != a.NumberType {
		t.Errorf("expected free3 bound to number (covariant return unification)")
	}
}

func TestEndToEndFunctionReturnMismatch(t *testing.T) {
	a := NewArena()
	free1 := a.AddType(Free{Level: TypeLevel{0, 0}})
	free2 := a.AddType(Free{Level: TypeLevel{0, 0}})

	superArgs := a.AddTypePack(TypePackNode{Head: []TypeId{free1}})
	superRet := a.AddTypePack(TypePackNode{Head: []TypeId{a.NumberType}})
	super := a.AddType(Function{Args: superArgs, Ret: superRet})

	subArgs := a.AddTypePack(TypePackNode{Head: []TypeId{free2}})
	subRet := a.AddTypePack(TypePackNode{Head: []TypeId{a.StringType}})
	sub := a.AddType(Function{Args: subArgs, Ret: subRet})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(super, sub, false, false)

	if len(u.Errors) != 1 {
		t.Fatalf("expected exactly one TypeMismatch on the return type, got %v", u.Errors)
	}
	if u.Errors[0].Code != ErrTypeMismatch {
		t.Errorf("expected ErrTypeMismatch, got %s", u.Errors[0].Code)
	}
}

func TestEndToEndUnsealedTablesUnifyMatchingProps(t *testing.T) {
	a := NewArena()
	f1 := a.AddType(Free{Level: TypeLevel{0, 0}})
	f2 := a.AddType(Free{Level: TypeLevel{0, 0}})
	left := a.AddType(Table{State: TableUnsealed, Props: map[string]Property{"foo": {Ty: f1}}})
	right := a.AddType(Table{State: TableUnsealed, Props: map[string]Property{"foo": {Ty: f2}}})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(left, right, false, false)

	if len(u.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", u.Errors)
	}
	if Follow(a, f1) != Follow(a, f2) {
		t.Errorf("expected the two foo properties to be unified together")
	}
}

func TestEndToEndSpeculativeRollbackLeavesUnsealedTableEmpty(t *testing.T) {
	a := NewArena()
	unsealed := a.AddType(Table{State: TableUnsealed, Props: map[string]Property{}})
	sealed := a.AddType(Table{State: TableSealed, Props: map[string]Property{"prop": {Ty: a.NumberType}}})

	u := newTestUnifier(a, Covariant)
	errs := u.CanUnify(unsealed, sealed)
	_ = errs

	final := a.Variant(unsealed).(Table)
	if len(final.Props) != 0 {
		t.Errorf("expected unsealed table's property map to be empty after rollback, got %v", final.Props)
	}
}

func TestClassSubclassCheckWalksParentChain(t *testing.T) {
	a := NewArena()
	base := a.AddType(Class{Name: "Base", Props: map[string]Property{}})
	child := a.AddType(Class{Name: "Child", Parent: &base, Props: map[string]Property{}})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(base, child, false, false)
	if len(u.Errors) != 0 {
		t.Errorf("expected Child to unify as a subtype of Base, got %v", u.Errors)
	}

	u2 := newTestUnifier(a, Covariant)
	u2.TryUnify(child, base, false, false)
	if len(u2.Errors) == 0 {
		t.Errorf("expected Base to NOT unify as a subtype of Child")
	}
}

func TestAnyAbsorbsFreeVariable(t *testing.T) {
	a := NewArena()
	free := a.AddType(Free{Level: TypeLevel{0, 0}})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(a.AnyType, free, false, false)

	if len(u.Errors) != 0 {
		t.Fatalf("expected any to absorb a free variable without error, got %v", u.Errors)
	}
	if Follow(a, free) != a.AnyType {
		t.Errorf("expected free bound to any, got %s", TypeString(a, free))
	}
}

package typesystem

import "testing"

func TestCoerceTypeFloodsNestedFreeVariables(t *testing.T) {
	a := NewArena()
	innerFree := a.AddType(Free{Level: TypeLevel{0, 0}})
	table := a.AddType(Table{
		State: TableSealed,
		Props: map[string]Property{"x": {Ty: innerFree}},
	})

	u := newTestUnifier(a, Covariant)
	u.coerceType(table, a.AnyType)

	if Follow(a, innerFree) != a.AnyType {
		t.Errorf("expected the nested free variable to be coerced to any, got %s", TypeString(a, Follow(a, innerFree)))
	}
}

func TestCoerceTypeStopsAtPrimitivesAndClasses(t *testing.T) {
	a := NewArena()
	class := a.AddType(Class{Name: "Widget", Props: map[string]Property{}})

	u := newTestUnifier(a, Covariant)
	u.coerceType(a.NumberType, a.AnyType)
	u.coerceType(class, a.AnyType)

	if len(u.Log.entries) != 0 {
		t.Errorf("expected coercing a primitive and a class to leave no journal entries, got %d", len(u.Log.entries))
	}
}

func TestErrorAbsorptionCoercesToErrorRecoveryType(t *testing.T) {
	a := NewArena()
	free := a.AddType(Free{Level: TypeLevel{0, 0}})

	u := newTestUnifier(a, Covariant)
	u.TryUnify(a.ErrorRecoveryType, free, false, false)

	if len(u.Errors) != 0 {
		t.Fatalf("expected error-type absorption to be silent, got %v", u.Errors)
	}
	if Follow(a, free) != a.ErrorRecoveryType {
		t.Errorf("expected free bound to the error-recovery type, got %s", TypeString(a, Follow(a, free)))
	}
}

func TestFreeTableCoercedByAnyBindsWhollyToTarget(t *testing.T) {
	a := NewArena()
	freeTable := a.AddType(Table{State: TableFree, Props: map[string]Property{}, Level: TypeLevel{0, 0}})

	u := newTestUnifier(a, Covariant)
	u.coerceType(freeTable, a.AnyType)

	if Follow(a, freeTable) != a.AnyType {
		t.Errorf("expected the free table to bind wholesale to any, got %s", TypeString(a, Follow(a, freeTable)))
	}
}

func TestFreePackCoercedToVariadicAny(t *testing.T) {
	a := NewArena()
	pack := a.AddTypePack(FreePack{Level: TypeLevel{0, 0}})
	fn := a.AddType(Function{
		Args: a.AddTypePack(TypePackNode{}),
		Ret:  pack,
	})

	u := newTestUnifier(a, Covariant)
	u.coerceType(fn, a.AnyType)

	v, ok := a.PackVariant(FollowPack(a, pack)).(VariadicPack)
	if !ok {
		t.Fatalf("expected the free return pack to become a variadic pack, got %T", a.PackVariant(FollowPack(a, pack)))
	}
	if v.Ty != a.AnyType {
		t.Errorf("expected the variadic pack's element type to be any")
	}
}

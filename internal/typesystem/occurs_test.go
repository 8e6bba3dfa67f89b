package typesystem

import "testing"

func TestOccursCheckTypeDetectsSelfReference(t *testing.T) {
	a := NewArena()
	free := a.AddType(Free{Level: TypeLevel{0, 0}})
	table := a.AddType(Table{
		State: TableUnsealed,
		Props: map[string]Property{"self": {Ty: free}},
	})

	if !OccursCheckType(a, free, table, true) {
		t.Errorf("expected occurs check to detect free inside its own structure")
	}
	if OccursCheckType(a, free, a.NumberType, true) {
		t.Errorf("occurs check should not fire against an unrelated structure")
	}
}

func TestOccursCheckTypeSkipsFunctionInteriors(t *testing.T) {
	a := NewArena()
	free := a.AddType(Free{Level: TypeLevel{0, 0}})
	args := a.AddTypePack(TypePackNode{Head: []TypeId{free}})
	ret := a.AddTypePack(TypePackNode{Head: []TypeId{a.NumberType}})
	fn := a.AddType(Function{Args: args, Ret: ret})

	if OccursCheckType(a, free, fn, true) {
		t.Errorf("expected occurs check to skip function interiors when requested")
	}
	if !OccursCheckType(a, free, fn, false) {
		t.Errorf("expected occurs check to find free inside function args when not skipping")
	}
}

func TestPromoteTypeLevelsLowersDeeperFreeVars(t *testing.T) {
	a := NewArena()
	deep := a.AddType(Free{Level: TypeLevel{2, 0}})
	table := a.AddType(Table{
		State: TableUnsealed,
		Props: map[string]Property{"x": {Ty: deep}},
	})

	log := NewTxnLog(a)
	PromoteTypeLevels(log, a, TypeLevel{0, 0}, table)

	got := a.Variant(deep).(Free)
	if got.Level != (TypeLevel{0, 0}) {
		t.Errorf("expected deep free var promoted to level {0,0}, got %v", got.Level)
	}

	log.Rollback()
	restored := a.Variant(deep).(Free)
	if restored.Level != (TypeLevel{2, 0}) {
		t.Errorf("expected rollback to restore original level {2,0}, got %v", restored.Level)
	}
}

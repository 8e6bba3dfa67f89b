package typesystem

import "testing"

func TestFollowChasesBoundChain(t *testing.T) {
	a := NewArena()
	root := a.AddType(Primitive{Kind: PrimNumber})
	mid := a.AddType(Bound{To: root})
	leaf := a.AddType(Bound{To: mid})

	if got := Follow(a, leaf); got != root {
		t.Errorf("Follow(leaf) = %d, want %d", got, root)
	}
	if got := Follow(a, root); got != root {
		t.Errorf("Follow on a non-Bound node should be idempotent, got %d want %d", got, root)
	}
}

func TestFollowChasesTableBoundTo(t *testing.T) {
	a := NewArena()
	target := a.AddType(Table{State: TableSealed, Props: map[string]Property{}})
	boundTo := target
	freeTable := a.AddType(Table{State: TableFree, Props: map[string]Property{}, BoundTo: &boundTo})

	if got := Follow(a, freeTable); got != target {
		t.Errorf("Follow(freeTable) = %d, want %d", got, target)
	}
}

func TestFollowPackChasesBoundPack(t *testing.T) {
	a := NewArena()
	root := a.AddTypePack(TypePackNode{})
	mid := a.AddTypePack(BoundPack{To: root})
	leaf := a.AddTypePack(BoundPack{To: mid})

	if got := FollowPack(a, leaf); got != root {
		t.Errorf("FollowPack(leaf) = %d, want %d", got, root)
	}
}

package typesystem

// Follow chases Bound indirections (and, for tables, the BoundTo field)
// until it reaches a non-Bound node. It is idempotent and cycle-safe:
// Bound chains are acyclic by construction because binding always goes
// through the occurs check first.
func Follow(a *Arena, id TypeId) TypeId {
	for {
		switch v := a.Variant(id).(type) {
		case Bound:
			id = v.To
		case Table:
			if v.BoundTo == nil {
				return id
			}
			id = *v.BoundTo
		default:
			return id
		}
	}
}

// FollowPack chases BoundPack indirections until it reaches a non-Bound
// pack node.
func FollowPack(a *Arena, id TypePackId) TypePackId {
	for {
		if v, ok := a.PackVariant(id).(BoundPack); ok {
			id = v.To
			continue
		}
		return id
	}
}

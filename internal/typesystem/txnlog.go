package typesystem

// seenPair is a pair of type handles currently being proved compatible,
// used for co-inductive treatment of cyclic types: encountering the same
// pair a second time is assumed to succeed, and if that assumption is
// wrong the outer frame fails and rolls back.
type seenPair struct {
	a, b TypeId
}

// seenSet is the shared, by-reference seen-stack a TxnLog and every one
// of its speculative children point at. Sharing it means cycle detection
// spans branches even though each branch's mutation log is independent.
type seenSet struct {
	pairs []seenPair
}

func (s *seenSet) push(a, b TypeId) {
	s.pairs = append(s.pairs, seenPair{a, b})
}

func (s *seenSet) pop(a, b TypeId) {
	for i := len(s.pairs) - 1; i >= 0; i-- {
		if s.pairs[i] == (seenPair{a, b}) {
			s.pairs = append(s.pairs[:i], s.pairs[i+1:]...)
			return
		}
	}
}

func (s *seenSet) have(a, b TypeId) bool {
	for _, p := range s.pairs {
		if p == (seenPair{a, b}) || p == (seenPair{b, a}) {
			return true
		}
	}
	return false
}

// logEntry is a pre-mutation snapshot of a single node, sufficient to
// reconstruct the node's prior state on rollback.
type logEntry struct {
	isPack   bool
	typeID   TypeId
	packID   TypePackId
	prevType TypeVariant
	prevPack TypePackVariant
}

// TxnLog is an undo journal of type-graph mutations. Every mutation the
// unifier performs is preceded by a call to Log/LogPack capturing the
// node's pre-mutation variant; Rollback restores every snapshotted node
// in reverse order.
//
// The seen-stack is shared by reference with every child TxnLog created
// via NewChild; the mutation log itself is per-TxnLog so that
// speculative branches are independent until Concat'd in.
type TxnLog struct {
	arena   *Arena
	entries []logEntry
	seen    *seenSet
}

// NewTxnLog creates a root TxnLog with a fresh seen-stack.
func NewTxnLog(a *Arena) *TxnLog {
	return &TxnLog{arena: a, seen: &seenSet{}}
}

// NewChild creates a TxnLog for a speculative branch: it shares this
// log's seen-stack by reference but starts with an empty mutation log.
func (l *TxnLog) NewChild() *TxnLog {
	return &TxnLog{arena: l.arena, seen: l.seen}
}

// Log snapshots the current variant of id before the caller mutates it.
func (l *TxnLog) Log(id TypeId) {
	l.entries = append(l.entries, logEntry{typeID: id, prevType: l.arena.Variant(id)})
}

// LogPack snapshots the current variant of id before the caller mutates
// it.
func (l *TxnLog) LogPack(id TypePackId) {
	l.entries = append(l.entries, logEntry{isPack: true, packID: id, prevPack: l.arena.PackVariant(id)})
}

// Rollback restores every snapshotted node to its pre-mutation variant,
// in reverse order, and clears the log. A rolled-back log leaves the
// graph exactly as it was before any of its entries were recorded.
func (l *TxnLog) Rollback() {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.isPack {
			l.arena.SetPackVariant(e.packID, e.prevPack)
		} else {
			l.arena.SetVariant(e.typeID, e.prevType)
		}
	}
	l.entries = nil
}

// Concat appends other's entries after ours, adopting a successful
// speculative branch's mutations into the parent's log.
func (l *TxnLog) Concat(other *TxnLog) {
	l.entries = append(l.entries, other.entries...)
}

// Len reports how many mutations are currently journaled.
func (l *TxnLog) Len() int {
	return len(l.entries)
}

func (l *TxnLog) pushSeen(a, b TypeId)  { l.seen.push(a, b) }
func (l *TxnLog) popSeen(a, b TypeId)   { l.seen.pop(a, b) }
func (l *TxnLog) haveSeen(a, b TypeId) bool { return l.seen.have(a, b) }

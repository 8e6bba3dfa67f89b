package typesystem

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bloxland20/luau/internal/config"
)

// SharedState is shared by reference between a root Unifier and every
// speculative child it spawns, so recursion/iteration counters, the
// tunables in effect, and the ICE handler are session-wide rather than
// per-branch. The cache and arena are also session-wide but are held
// directly on Unifier since every child needs them at construction time
// anyway.
type SharedState struct {
	SessionID      string
	Tunables       config.Tunables
	ICEHandler     ICEHandler
	Trace          func(format string, args ...interface{})
	iterationCount int
}

// NewSharedState creates session-wide state tagged with a fresh
// correlation id, following the teacher's habit of tagging long-lived
// session objects for later log correlation.
func NewSharedState(tunables config.Tunables) *SharedState {
	return &SharedState{
		SessionID:  uuid.New().String(),
		Tunables:   tunables,
		ICEHandler: DefaultICEHandler,
	}
}

// Unifier decides whether sub is compatible with super under Variance,
// mutating Arena in place and journaling every mutation into Log so a
// failed speculative branch can be rolled back cleanly.
type Unifier struct {
	Arena    *Arena
	Log      *TxnLog
	Cache    *UnifyCache
	Mode     Mode
	Variance Variance
	Shared   *SharedState
	Errors   []*TypeError

	recursionDepth int
}

// NewUnifier creates a root Unifier. A driver constructs one per
// top-level tryUnify call (spec's "single checking session"); its Log
// starts with a fresh seen-stack.
func NewUnifier(a *Arena, mode Mode, variance Variance, shared *SharedState) *Unifier {
	return &Unifier{
		Arena:    a,
		Log:      NewTxnLog(a),
		Cache:    NewUnifyCache(),
		Mode:     mode,
		Variance: variance,
		Shared:   shared,
	}
}

// child creates a speculative branch: it shares the arena, cache,
// shared-state and (via Log.NewChild) the seen-stack, but owns its own
// mutation log and error vector so the caller can adopt or discard it
// independently.
func (u *Unifier) child(variance Variance) *Unifier {
	return &Unifier{
		Arena:          u.Arena,
		Log:            u.Log.NewChild(),
		Cache:          u.Cache,
		Mode:           u.Mode,
		Variance:       variance,
		Shared:         u.Shared,
		recursionDepth: u.recursionDepth + 1,
	}
}

func (u *Unifier) childSameVariance() *Unifier {
	return u.child(u.Variance)
}

// adopt merges a successful child's mutations and errors into u.
func (u *Unifier) adopt(c *Unifier) {
	u.Log.Concat(c.Log)
	u.Errors = append(u.Errors, c.Errors...)
}

// discard rolls back a failed child's speculative mutations. Its errors
// are not adopted; the caller is expected to have already inspected
// them to build its own diagnostic.
func (u *Unifier) discard(c *Unifier) {
	c.Log.Rollback()
}

func (u *Unifier) trace(format string, args ...interface{}) {
	if u.Shared != nil && u.Shared.Trace != nil {
		u.Shared.Trace(format, args...)
	}
}

func (u *Unifier) reportf(err *TypeError) {
	if u.Shared != nil {
		err.SessionID = u.Shared.SessionID
	}
	err.arena = u.Arena
	u.Errors = append(u.Errors, err)
}

func (u *Unifier) ice(message string) {
	handler := DefaultICEHandler
	if u.Shared != nil && u.Shared.ICEHandler != nil {
		handler = u.Shared.ICEHandler
	}
	handler(message)
}

func (u *Unifier) tunables() config.Tunables {
	if u.Shared != nil {
		return u.Shared.Tunables
	}
	return config.DefaultTunables()
}

// tooComplex enforces the recursion and iteration guards of spec.md
// §4.3 step 1. It must be called at the top of every tryUnify entry
// point, before Follow.
func (u *Unifier) tooComplex() bool {
	t := u.tunables()
	if t.RecursionLimit > 0 && u.recursionDepth > t.RecursionLimit {
		u.reportf(&TypeError{Code: ErrUnificationTooComplex})
		return true
	}
	if u.Shared != nil {
		u.Shared.iterationCount++
		if t.IterationLimit > 0 && u.Shared.iterationCount > t.IterationLimit {
			u.reportf(&TypeError{Code: ErrUnificationTooComplex})
			return true
		}
	}
	return false
}

// TryUnify decides whether sub is compatible with super, mutating the
// arena and journaling into u.Log. isFunctionCall and isIntersection
// both disable cache consultation (an intersection member visited during
// structural dispatch of another pair must not short-circuit on a cache
// hit meant for the outer pair); neither changes structural dispatch.
func (u *Unifier) TryUnify(super, sub TypeId, isFunctionCall, isIntersection bool) {
	if u.tooComplex() {
		return
	}

	super = Follow(u.Arena, super)
	sub = Follow(u.Arena, sub)
	u.trace("tryUnify(%s, %s) variance=%s", TypeString(u.Arena, super), TypeString(u.Arena, sub), u.Variance)
	if super == sub {
		return
	}

	superFree, superIsFree := u.Arena.Variant(super).(Free)
	subFree, subIsFree := u.Arena.Variant(sub).(Free)

	switch {
	case superIsFree && subIsFree:
		if superFree.Level.Subsumes(subFree.Level) {
			u.bindFree(sub, super)
		} else {
			u.Log.Log(sub)
			u.Arena.SetVariant(sub, Free{Level: MinLevel(subFree.Level, superFree.Level)})
			u.bindFree(super, sub)
		}
		return
	case superIsFree:
		u.bindFreeToStructural(super, superFree, sub)
		return
	case subIsFree:
		u.bindFreeToStructural(sub, subFree, super)
		return
	}

	if u.tryUnifyWithAny(super, sub) {
		return
	}

	if !isFunctionCall && !isIntersection {
		if u.Cache.Contains(super, sub) {
			return
		}
		if u.Variance == Invariant && u.Cache.Contains(sub, super) {
			return
		}
	}

	if u.Log.haveSeen(super, sub) {
		return
	}
	u.Log.pushSeen(super, sub)
	defer u.Log.popSeen(super, sub)

	u.dispatch(super, sub, isFunctionCall, isIntersection)
}

// bindFree performs `target := Bound(to)` after an occurs check,
// journaling the mutation. On occurs-check failure it binds target to
// the error-recovery type instead and reports OccursCheckFailed.
func (u *Unifier) bindFree(target, to TypeId) {
	if OccursCheckType(u.Arena, target, to, u.tunables().OccursCheckOkWithRecursiveFunctions) {
		u.Log.Log(target)
		u.Arena.SetVariant(target, Bound{To: u.Arena.ErrorRecoveryType})
		u.reportf(&TypeError{Code: ErrOccursCheckFailed})
		return
	}
	u.Log.Log(target)
	u.Arena.SetVariant(target, Bound{To: to})
}

// bindFreeToStructural implements spec.md §4.3's one-sided free-variable
// rule: free is bound to other after an occurs check, a generic-escape
// check, and (when enabled) level promotion inside other.
func (u *Unifier) bindFreeToStructural(free TypeId, freeVar Free, other TypeId) {
	if OccursCheckType(u.Arena, free, other, u.tunables().OccursCheckOkWithRecursiveFunctions) {
		u.Log.Log(free)
		u.Arena.SetVariant(free, Bound{To: u.Arena.ErrorRecoveryType})
		u.reportf(&TypeError{Code: ErrOccursCheckFailed})
		return
	}
	if g, ok := u.Arena.Variant(other).(Generic); ok {
		if !freeVar.Level.Subsumes(g.Level) {
			u.reportf(&TypeError{
				Code:   ErrGenericError,
				Msg:    "generic type would escape its scope",
				Wanted: free,
				Given:  other,
			})
			return
		}
	}
	if u.tunables().ProperTypeLevels {
		PromoteTypeLevels(u.Log, u.Arena, freeVar.Level, other)
	}
	u.Log.Log(free)
	u.Arena.SetVariant(free, Bound{To: other})
}

// CanUnify dry-runs TryUnify via a child unifier that is always rolled
// back, returning whatever errors that attempt produced.
func (u *Unifier) CanUnify(super, sub TypeId) []*TypeError {
	c := u.childSameVariance()
	c.TryUnify(super, sub, false, false)
	errs := c.Errors
	c.Log.Rollback()
	return errs
}

// dispatch performs the structural pair-match of spec.md §4.4-4.6 once
// the free-variable, any/error, cache and cycle-guard steps have all
// passed through.
func (u *Unifier) dispatch(super, sub TypeId, isFunctionCall, isIntersection bool) {
	superV := u.Arena.Variant(super)
	subV := u.Arena.Variant(sub)

	if _, ok := subV.(Union); ok {
		u.unifyUnionSubtype(super, sub)
		return
	}
	if _, ok := superV.(Union); ok {
		u.unifyUnionSupertype(super, sub)
		return
	}
	if _, ok := subV.(Intersection); ok {
		u.unifyIntersectionSubtype(super, sub)
		return
	}
	if _, ok := superV.(Intersection); ok {
		u.unifyIntersectionSupertype(super, sub)
		return
	}

	switch sv := superV.(type) {
	case Primitive:
		u.unifyPrimitive(super, sv, sub, subV)
	case Singleton:
		u.unifySingletonSuper(super, sv, sub, subV)
	case Function:
		if fv, ok := subV.(Function); ok {
			u.unifyFunctions(super, sv, sub, fv)
		} else {
			u.mismatch(super, sub, "")
		}
	case Table:
		before := len(u.Errors)
		u.unifyTableDispatch(super, sv, sub, subV)
		if len(u.Errors) == before {
			u.Cache.Insert(u.Arena, super, sub, u.Variance)
		}
	case Metatable:
		u.unifyMetatableSuper(super, sv, sub, subV)
	case Class:
		u.unifyClassSuper(super, sv, sub, subV)
	case Generic:
		if sub == super {
			return
		}
		u.mismatch(super, sub, "generics are only equal by identity")
	case Bound, Free:
		u.ice(fmt.Sprintf("dispatch reached with un-followed variant %T", sv))
	default:
		u.mismatch(super, sub, "")
	}
}

func (u *Unifier) unifyPrimitive(super TypeId, sv Primitive, sub TypeId, subV TypeVariant) {
	switch v := subV.(type) {
	case Primitive:
		if v.Kind == sv.Kind {
			return
		}
	case Singleton:
		if u.tunables().SingletonTypes && u.Variance == Covariant {
			if sv.Kind == PrimBoolean && !v.IsString {
				return
			}
			if sv.Kind == PrimString && v.IsString {
				return
			}
		}
	}
	u.mismatch(super, sub, "")
}

func (u *Unifier) unifySingletonSuper(super TypeId, sv Singleton, sub TypeId, subV TypeVariant) {
	if v, ok := subV.(Singleton); ok {
		if v.IsString == sv.IsString && v.StrVal == sv.StrVal && v.BoolVal == sv.BoolVal {
			return
		}
	}
	u.mismatch(super, sub, "")
}

// mismatch records a plain TypeMismatch, optionally wrapping a cause
// per ExtendedTypeMismatchError.
func (u *Unifier) mismatch(super, sub TypeId, reason string) {
	u.mismatchCause(super, sub, reason, nil)
}

func (u *Unifier) mismatchCause(super, sub TypeId, reason string, cause *TypeError) {
	err := &TypeError{Code: ErrTypeMismatch, Wanted: super, Given: sub, Reason: reason}
	if u.tunables().ExtendedTypeMismatchError {
		err.Cause = cause
	}
	u.reportf(err)
}

func (u *Unifier) unifyMetatableSuper(super TypeId, sv Metatable, sub TypeId, subV TypeVariant) {
	switch v := subV.(type) {
	case Metatable:
		u.TryUnify(sv.Table, v.Table, false, false)
		u.TryUnify(sv.Metatable, v.Metatable, false, false)
	case Table:
		if v.State == TableFree {
			c := u.childSameVariance()
			c.TryUnify(sv.Table, sub, false, false)
			if len(c.Errors) == 0 {
				u.adopt(c)
				u.Log.Log(sub)
				u.Arena.SetVariant(sub, Table{
					Props: v.Props, Indexer: v.Indexer, State: v.State,
					BoundTo: &super, Level: v.Level,
					Name: v.Name, SyntheticName: v.SyntheticName,
				})
			} else {
				u.discard(c)
				u.mismatchCause(super, sub, "cannot attach a metatable to this table", firstErr(c.Errors))
			}
			return
		}
		u.mismatch(super, sub, "cannot attach a metatable to a sealed, unsealed, or generic table")
	default:
		u.mismatch(super, sub, "")
	}
}

func (u *Unifier) unifyClassSuper(super TypeId, sv Class, sub TypeId, subV TypeVariant) {
	switch v := subV.(type) {
	case Class:
		if u.Variance == Invariant {
			if super == sub {
				return
			}
			u.mismatch(super, sub, "classes are only equal by identity under invariance")
			return
		}
		if isSubclass(u.Arena, super, sub) {
			return
		}
		u.mismatch(super, sub, "\""+classNameOf(u.Arena, sub)+"\" is not a subclass of \""+sv.Name+"\"")
	case Table:
		if v.State != TableFree {
			u.mismatch(super, sub, "")
			return
		}
		if v.Indexer != nil {
			u.mismatch(super, sub, "a class has no indexer")
			return
		}
		for _, name := range sortedPropNames(v.Props) {
			prop := v.Props[name]
			classProp, ok := lookupClassProp(u.Arena, super, name)
			if !ok {
				if u.tunables().ExtendedClassMismatchError {
					u.reportf(&TypeError{Code: ErrUnknownProperty, OnType: super, PropName: name})
				} else {
					u.mismatch(super, sub, "")
				}
				return
			}
			c := u.child(Invariant)
			c.TryUnify(classProp.Ty, prop.Ty, false, false)
			if len(c.Errors) != 0 {
				u.discard(c)
				u.mismatchCause(super, sub, "property \""+name+"\" is incompatible", firstErr(c.Errors))
				return
			}
			u.adopt(c)
		}
		u.Log.Log(sub)
		u.Arena.SetVariant(sub, Bound{To: super})
	default:
		u.mismatch(super, sub, "")
	}
}

func classNameOf(a *Arena, id TypeId) string {
	if c, ok := a.Variant(Follow(a, id)).(Class); ok {
		return c.Name
	}
	return TypeString(a, id)
}

func firstErr(errs []*TypeError) *TypeError {
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

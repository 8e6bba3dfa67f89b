package typesystem

import "fmt"

// ErrorCode is a stable identifier for a TypeError, independent of its
// (evolving) message text — tests and driver code should assert on
// Code, following the pattern the rest of the pack uses for its own
// diagnostics (per-kind codes rather than message matching).
type ErrorCode string

const (
	ErrTypeMismatch          ErrorCode = "U001"
	ErrMissingProperties     ErrorCode = "U002"
	ErrUnknownProperty       ErrorCode = "U003"
	ErrCountMismatch         ErrorCode = "U004"
	ErrOccursCheckFailed     ErrorCode = "U005"
	ErrGenericError          ErrorCode = "U006"
	ErrUnificationTooComplex ErrorCode = "U007"
	ErrCannotExtendTable     ErrorCode = "U008"
)

// PropKind distinguishes a MissingProperties error reported because the
// sub side lacks required properties from one reported because the sub
// side has extras an invariant comparison cannot ignore.
type PropKind int

const (
	PropMissing PropKind = iota
	PropExtra
)

func (k PropKind) String() string {
	if k == PropExtra {
		return "extra"
	}
	return "missing"
}

// CountMismatchCtx names which part of a pack comparison produced a
// CountMismatch.
type CountMismatchCtx int

const (
	CtxArg CountMismatchCtx = iota
	CtxResult
	CtxReturn
)

func (c CountMismatchCtx) String() string {
	switch c {
	case CtxArg:
		return "argument"
	case CtxResult:
		return "result"
	case CtxReturn:
		return "return"
	default:
		return "pack"
	}
}

// TypeError is the single error value this package emits. Only the
// fields relevant to Code are populated; it is intentionally one struct
// (rather than one Go type per spec.md kind) since callers dispatch on
// Code, and most kinds share the same handful of fields.
type TypeError struct {
	Code ErrorCode

	// SessionID correlates this error back to the Unifier session that
	// produced it (see SharedState.SessionID).
	SessionID string

	// TypeMismatch
	Wanted, Given TypeId
	Reason        string
	Cause         *TypeError

	// MissingProperties
	Super, Sub TypeId
	Props      []string
	PropsKind  PropKind

	// UnknownProperty
	OnType   TypeId
	PropName string

	// CountMismatch
	Expected, Actual int
	Ctx              CountMismatchCtx

	// GenericError / CannotExtendTable
	Msg string

	arena *Arena
}

func (e *TypeError) Error() string {
	switch e.Code {
	case ErrTypeMismatch:
		msg := fmt.Sprintf("type mismatch: %s is not compatible with %s", e.typeStr(e.Given), e.typeStr(e.Wanted))
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
		if e.Cause != nil {
			msg += "\n  caused by: " + e.Cause.Error()
		}
		return msg
	case ErrMissingProperties:
		return fmt.Sprintf("%s properties on %s not found in %s: %v", e.PropsKind, e.typeStr(e.Super), e.typeStr(e.Sub), e.Props)
	case ErrUnknownProperty:
		return fmt.Sprintf("unknown property %q on %s", e.PropName, e.typeStr(e.OnType))
	case ErrCountMismatch:
		return fmt.Sprintf("%s count mismatch: expected %d, got %d", e.Ctx, e.Expected, e.Actual)
	case ErrOccursCheckFailed:
		return "occurs check failed: type would be infinite"
	case ErrGenericError:
		return e.Msg
	case ErrUnificationTooComplex:
		return "type unification is too complex; consider adding a type annotation"
	case ErrCannotExtendTable:
		return fmt.Sprintf("cannot add property %q to table %s (%s)", e.PropName, e.typeStr(e.OnType), e.Msg)
	default:
		return fmt.Sprintf("unification error (%s)", e.Code)
	}
}

func (e *TypeError) typeStr(id TypeId) string {
	if e.arena == nil {
		return fmt.Sprintf("t%d", id)
	}
	return TypeString(e.arena, id)
}

// ICEHandler is called when the unifier detects an internal invariant
// violation — a bug in the driver or in this package, not a diagnostic
// to surface to a user. The default handler panics.
type ICEHandler func(message string)

// DefaultICEHandler panics, matching the stance that an ICE always
// indicates a bug rather than a recoverable condition.
func DefaultICEHandler(message string) {
	panic("internal compiler error: " + message)
}

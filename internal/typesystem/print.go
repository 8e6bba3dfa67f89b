package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// TypeString renders a human-readable (not necessarily parseable)
// representation of a type, following Bound indirections as it goes.
// It is used by trace logging and by test failure messages; error
// messages surfaced to a driver should prefer TypeError.Code and only
// fall back to this string for context.
func TypeString(a *Arena, id TypeId) string {
	return typeString(a, id, map[TypeId]bool{})
}

func typeString(a *Arena, id TypeId, seen map[TypeId]bool) string {
	id = Follow(a, id)
	if seen[id] {
		return fmt.Sprintf("<cycle t%d>", id)
	}
	seen[id] = true

	switch v := a.Variant(id).(type) {
	case Free:
		return fmt.Sprintf("t%d", id)
	case Generic:
		return fmt.Sprintf("g%d", id)
	case ErrorType:
		return "*error*"
	case AnyType:
		return "any"
	case Primitive:
		return v.Kind.String()
	case Singleton:
		return v.String()
	case Function:
		args := packString(a, v.Args, seen)
		ret := packString(a, v.Ret, seen)
		return fmt.Sprintf("(%s) -> %s", args, ret)
	case Table:
		return tableString(a, id, v, seen)
	case Metatable:
		return fmt.Sprintf("{%s @ %s}", typeString(a, v.Table, seen), typeString(a, v.Metatable, seen))
	case Class:
		return v.Name
	case Union:
		parts := make([]string, len(v.Options))
		for i, o := range v.Options {
			parts[i] = typeString(a, o, seen)
		}
		return strings.Join(parts, " | ")
	case Intersection:
		parts := make([]string, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = typeString(a, p, seen)
		}
		return strings.Join(parts, " & ")
	default:
		return fmt.Sprintf("<unknown type variant %T>", v)
	}
}

func tableString(a *Arena, id TypeId, t Table, seen map[TypeId]bool) string {
	if t.Name != "" {
		return t.Name
	}
	names := make([]string, 0, len(t.Props))
	for name := range t.Props {
		names = append(names, name)
	}
	sort.Strings(names)
	fields := make([]string, 0, len(names)+1)
	for _, name := range names {
		fields = append(fields, fmt.Sprintf("%s: %s", name, typeString(a, t.Props[name].Ty, seen)))
	}
	if t.Indexer != nil {
		fields = append(fields, fmt.Sprintf("[%s]: %s", typeString(a, t.Indexer.KeyTy, seen), typeString(a, t.Indexer.ValTy, seen)))
	}
	prefix := ""
	switch t.State {
	case TableFree:
		prefix = "*free* "
	case TableUnsealed:
		prefix = "*unsealed* "
	}
	return fmt.Sprintf("%s{ %s }", prefix, strings.Join(fields, ", "))
}

// PackString renders a type pack for debugging.
func PackString(a *Arena, id TypePackId) string {
	return packString(a, id, map[TypeId]bool{})
}

func packString(a *Arena, id TypePackId, seen map[TypeId]bool) string {
	id = FollowPack(a, id)
	switch v := a.PackVariant(id).(type) {
	case FreePack:
		return fmt.Sprintf("tp%d...", id)
	case GenericPack:
		return fmt.Sprintf("gp%d...", id)
	case ErrorPack:
		return "*errorpack*"
	case VariadicPack:
		return fmt.Sprintf("...%s", typeString(a, v.Ty, seen))
	case TypePackNode:
		parts := make([]string, len(v.Head))
		for i, h := range v.Head {
			parts[i] = typeString(a, h, seen)
		}
		joined := strings.Join(parts, ", ")
		if v.Tail != nil {
			tailStr := packString(a, *v.Tail, seen)
			if joined == "" {
				return tailStr
			}
			return joined + ", " + tailStr
		}
		return joined
	default:
		return fmt.Sprintf("<unknown pack variant %T>", v)
	}
}

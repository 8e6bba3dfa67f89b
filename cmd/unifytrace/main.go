// Command unifytrace hand-builds a handful of unification scenarios and
// runs them through the typesystem package, printing what the unifier
// decided. It has no lexer or parser of its own; every scenario is
// constructed directly against the arena.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/bloxland20/luau/internal/config"
	"github.com/bloxland20/luau/internal/typesystem"
)

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func colorize(code, s string) string {
	if !colorEnabled {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

type scenario struct {
	name        string
	speculative bool
	run         func(a *typesystem.Arena) (super, sub typesystem.TypeId)
}

func main() {
	tunablesPath := ""
	if len(os.Args) > 1 {
		tunablesPath = os.Args[1]
	}

	tunables := config.DefaultTunables()
	if tunablesPath != "" {
		loaded, err := config.LoadTunables(tunablesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unifytrace: %v\n", err)
			os.Exit(1)
		}
		tunables = loaded
	}

	scenarios := []scenario{
		{name: "number vs number", run: scenarioPrimitiveEquality},
		{name: "Fun(Free1, number) vs Fun(Free2, Free3)", run: scenarioFunctionArgsAndReturnBind},
		{name: "Fun(Free1, number) vs Fun(Free2, string)", run: scenarioFunctionReturnMismatch},
		{name: "Unsealed{foo:F1} vs Unsealed{foo:F2}", run: scenarioUnsealedTablePropUnification},
		{name: "Variadic<number> vs [number, string]", run: scenarioVariadicSecondElementMismatch},
		{name: "Variadic<boolean> vs [number, string, boolean, boolean]", run: scenarioVariadicFirstElementMismatch},
		{name: "Unsealed{} vs Sealed{prop:number} (speculative)", speculative: true, run: scenarioSpeculativeRollback},
	}

	exitCode := 0
	for _, s := range scenarios {
		a := typesystem.NewArena()
		shared := typesystem.NewSharedState(tunables)
		u := typesystem.NewUnifier(a, typesystem.Strict, typesystem.Covariant, shared)

		super, sub := s.run(a)
		var errs []*typesystem.TypeError
		if s.speculative {
			errs = u.CanUnify(super, sub)
		} else {
			u.TryUnify(super, sub, false, false)
			errs = u.Errors
		}

		fmt.Printf("%s\n", colorize("1", s.name))
		fmt.Printf("  session: %s\n", shared.SessionID)
		if len(errs) == 0 {
			fmt.Printf("  result: %s (log entries: %d)\n", colorize("32", "ok"), u.Log.Len())
		} else {
			exitCode = 1
			fmt.Printf("  result: %s\n", colorize("31", "errors"))
			for _, e := range errs {
				fmt.Printf("    - [%s] %s\n", e.Code, e.Error())
			}
		}
	}

	os.Exit(exitCode)
}

func scenarioPrimitiveEquality(a *typesystem.Arena) (super, sub typesystem.TypeId) {
	return a.NumberType, a.NumberType
}

func scenarioFunctionArgsAndReturnBind(a *typesystem.Arena) (super, sub typesystem.TypeId) {
	free1 := a.FreshType(typesystem.TypeLevel{})
	free2 := a.FreshType(typesystem.TypeLevel{})
	free3 := a.FreshType(typesystem.TypeLevel{})

	superArgs := a.AddTypePack(typesystem.TypePackNode{Head: []typesystem.TypeId{free1}})
	superRet := a.AddTypePack(typesystem.TypePackNode{Head: []typesystem.TypeId{a.NumberType}})
	super = a.AddType(typesystem.Function{Args: superArgs, Ret: superRet})

	subArgs := a.AddTypePack(typesystem.TypePackNode{Head: []typesystem.TypeId{free2}})
	subRet := a.AddTypePack(typesystem.TypePackNode{Head: []typesystem.TypeId{free3}})
	sub = a.AddType(typesystem.Function{Args: subArgs, Ret: subRet})
	return super, sub
}

func scenarioFunctionReturnMismatch(a *typesystem.Arena) (super, sub typesystem.TypeId) {
	free1 := a.FreshType(typesystem.TypeLevel{})
	free2 := a.FreshType(typesystem.TypeLevel{})

	superArgs := a.AddTypePack(typesystem.TypePackNode{Head: []typesystem.TypeId{free1}})
	superRet := a.AddTypePack(typesystem.TypePackNode{Head: []typesystem.TypeId{a.NumberType}})
	super = a.AddType(typesystem.Function{Args: superArgs, Ret: superRet})

	subArgs := a.AddTypePack(typesystem.TypePackNode{Head: []typesystem.TypeId{free2}})
	subRet := a.AddTypePack(typesystem.TypePackNode{Head: []typesystem.TypeId{a.StringType}})
	sub = a.AddType(typesystem.Function{Args: subArgs, Ret: subRet})
	return super, sub
}

func scenarioUnsealedTablePropUnification(a *typesystem.Arena) (super, sub typesystem.TypeId) {
	f1 := a.FreshType(typesystem.TypeLevel{})
	f2 := a.FreshType(typesystem.TypeLevel{})
	left := a.AddType(typesystem.Table{State: typesystem.TableUnsealed, Props: map[string]typesystem.Property{"foo": {Ty: f1}}})
	right := a.AddType(typesystem.Table{State: typesystem.TableUnsealed, Props: map[string]typesystem.Property{"foo": {Ty: f2}}})
	return left, right
}

// scenarioVariadicSecondElementMismatch wraps the pack comparison in a
// pair of no-argument functions so it can be driven through TryUnify;
// a scenario returns a pair of types, not packs, so the packs are
// compared as the functions' return packs.
func scenarioVariadicSecondElementMismatch(a *typesystem.Arena) (super, sub typesystem.TypeId) {
	variadic := a.AddTypePack(typesystem.VariadicPack{Ty: a.NumberType})
	super = a.AddType(typesystem.Function{
		Args: a.AddTypePack(typesystem.TypePackNode{}),
		Ret:  a.AddTypePack(typesystem.TypePackNode{Tail: &variadic}),
	})
	sub = a.AddType(typesystem.Function{
		Args: a.AddTypePack(typesystem.TypePackNode{}),
		Ret:  a.AddTypePack(typesystem.TypePackNode{Head: []typesystem.TypeId{a.NumberType, a.StringType}}),
	})
	return super, sub
}

func scenarioVariadicFirstElementMismatch(a *typesystem.Arena) (super, sub typesystem.TypeId) {
	variadic := a.AddTypePack(typesystem.VariadicPack{Ty: a.BooleanType})
	super = a.AddType(typesystem.Function{
		Args: a.AddTypePack(typesystem.TypePackNode{}),
		Ret:  a.AddTypePack(typesystem.TypePackNode{Tail: &variadic}),
	})
	sub = a.AddType(typesystem.Function{
		Args: a.AddTypePack(typesystem.TypePackNode{}),
		Ret: a.AddTypePack(typesystem.TypePackNode{Head: []typesystem.TypeId{
			a.NumberType, a.StringType, a.BooleanType, a.BooleanType,
		}}),
	})
	return super, sub
}

func scenarioSpeculativeRollback(a *typesystem.Arena) (super, sub typesystem.TypeId) {
	unsealed := a.AddType(typesystem.Table{State: typesystem.TableUnsealed, Props: map[string]typesystem.Property{}})
	sealed := a.AddType(typesystem.Table{State: typesystem.TableSealed, Props: map[string]typesystem.Property{"prop": {Ty: a.NumberType}}})
	return unsealed, sealed
}

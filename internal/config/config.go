package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tunables mirrors Unifier.cpp's FFlag/FInt migration scaffold: every
// behavioral choice the unification core makes is gated by a named
// field here rather than baked into the dispatch logic, so a driver can
// pin a session to legacy behavior while a rewrite of one rule rolls
// out.
type Tunables struct {
	ExtendedTypeMismatchError           bool `yaml:"extended_type_mismatch_error"`
	ExtendedUnionMismatchError          bool `yaml:"extended_union_mismatch_error"`
	ExtendedFunctionMismatchError       bool `yaml:"extended_function_mismatch_error"`
	ExtendedClassMismatchError          bool `yaml:"extended_class_mismatch_error"`
	TableUnificationEarlyTest           bool `yaml:"table_unification_early_test"`
	TableSubtypingVariance2             bool `yaml:"table_subtyping_variance_2"`
	OccursCheckOkWithRecursiveFunctions bool `yaml:"occurs_check_ok_with_recursive_functions"`
	ProperTypeLevels                    bool `yaml:"proper_type_levels"`
	UnionHeuristic                      bool `yaml:"union_heuristic"`
	SingletonTypes                      bool `yaml:"singleton_types"`

	RecursionLimit int `yaml:"recursion_limit"`
	PackLoopLimit  int `yaml:"pack_loop_limit"`
	IterationLimit int `yaml:"iteration_limit"`
}

// DefaultTunables returns the flag set every new Unifier gets when a
// driver does not call LoadTunables.
func DefaultTunables() Tunables {
	return Tunables{
		ExtendedTypeMismatchError:           DefaultExtendedTypeMismatchError,
		ExtendedUnionMismatchError:          DefaultExtendedUnionMismatchError,
		ExtendedFunctionMismatchError:       DefaultExtendedFunctionMismatchError,
		ExtendedClassMismatchError:          DefaultExtendedClassMismatchError,
		TableUnificationEarlyTest:           DefaultTableUnificationEarlyTest,
		TableSubtypingVariance2:             DefaultTableSubtypingVariance2,
		OccursCheckOkWithRecursiveFunctions: DefaultOccursCheckOkWithRecursiveFunctions,
		ProperTypeLevels:                    DefaultProperTypeLevels,
		UnionHeuristic:                      DefaultUnionHeuristic,
		SingletonTypes:                      DefaultSingletonTypes,
		RecursionLimit:                      DefaultRecursionLimit,
		PackLoopLimit:                       DefaultPackLoopLimit,
		IterationLimit:                      DefaultIterationLimit,
	}
}

// LoadTunables reads and parses a YAML tunables file, starting from
// DefaultTunables so an omitted field keeps its default rather than
// zeroing out to false/0.
func LoadTunables(path string) (Tunables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, fmt.Errorf("reading tunables %s: %w", path, err)
	}
	return ParseTunables(data, path)
}

// ParseTunables parses tunables YAML content from bytes. path is used
// only for error messages.
func ParseTunables(data []byte, path string) (Tunables, error) {
	cfg := DefaultTunables()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Tunables{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
